package maps

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"

	gmaps "googlemaps.github.io/maps"

	"github.com/gurre/cloud-api-samples/apierr"
)

// Statuses of a normalized answer.
const (
	StatusOK          = "OK"
	StatusZeroResults = "ZERO_RESULTS"
)

// DepartureLayout formats departure times in artifact names.
const DepartureLayout = "2006/01/02 15:04"

// DirectionsRequest describes one route query. A zero Departure omits departure_time.
type DirectionsRequest struct {
	Origin      string
	Destination string
	Waypoints   []string
	Optimize    bool
	Mode        string
	Departure   time.Time
	Language    string
}

// Step is one maneuver with its instruction reduced to plain text.
type Step struct {
	Instruction string `json:"instruction"`
	Distance    string `json:"distance"`
}

// Leg is the part of a route between two stops.
type Leg struct {
	StartAddress      string `json:"start_address"`
	EndAddress        string `json:"end_address"`
	Distance          string `json:"distance"`
	DistanceMeters    int    `json:"distance_meters"`
	Duration          string `json:"duration"`
	DurationSeconds   int64  `json:"duration_seconds"`
	DurationInTraffic string `json:"duration_in_traffic,omitempty"`
	Steps             []Step `json:"steps"`
}

// Route is one suggested route.
type Route struct {
	Summary       string `json:"summary"`
	Legs          []Leg  `json:"legs"`
	WaypointOrder []int  `json:"waypoint_order"`
}

// Directions is the normalized answer.
type Directions struct {
	Status string  `json:"status"`
	Routes []Route `json:"routes"`
}

// WaypointOrder returns the optimized waypoint order of the first route, if any.
func (d Directions) WaypointOrder() []int {
	if len(d.Routes) == 0 {
		return nil
	}
	return d.Routes[0].WaypointOrder
}

// BuildDirectionsRequest validates req and converts it to a Directions API request.
func BuildDirectionsRequest(req DirectionsRequest) (*gmaps.DirectionsRequest, error) {
	const op = "maps.BuildDirectionsRequest"
	if strings.TrimSpace(req.Origin) == "" || strings.TrimSpace(req.Destination) == "" {
		return nil, apierr.Configf(op, "origin and destination are required")
	}
	mode := req.Mode
	if mode == "" {
		mode = ModeDriving
	}
	if !validMode(mode) {
		return nil, apierr.Configf(op, "unsupported travel mode %q", mode)
	}

	r := &gmaps.DirectionsRequest{
		Origin:      req.Origin,
		Destination: req.Destination,
		Mode:        gmaps.Mode(mode),
		Waypoints:   append([]string(nil), req.Waypoints...),
		Optimize:    req.Optimize && len(req.Waypoints) > 0,
		Language:    req.Language,
	}
	if !req.Departure.IsZero() {
		r.DepartureTime = strconv.FormatInt(req.Departure.Unix(), 10)
	}
	return r, nil
}

// Directions asks the Directions API for routes. ZERO_RESULTS is an empty answer, not an error.
func (c *Client) Directions(ctx context.Context, req DirectionsRequest) (Directions, error) {
	const op = "maps.directions"
	if c.directions == nil {
		return Directions{}, missingClient(op, "directions")
	}
	in, err := BuildDirectionsRequest(req)
	if err != nil {
		return Directions{}, err
	}
	routes, _, err := c.directions.Directions(ctx, in)
	if err != nil {
		// The client reports every non-OK status as "maps: <STATUS> - <message>".
		if strings.Contains(err.Error(), StatusZeroResults) {
			return NormalizeDirections(nil), nil
		}
		return Directions{}, apierr.Classify(op, err)
	}
	return NormalizeDirections(routes), nil
}

// NormalizeDirections flattens decoded routes. Routes is never nil.
func NormalizeDirections(routes []gmaps.Route) Directions {
	d := Directions{Status: StatusOK, Routes: make([]Route, 0, len(routes))}
	if len(routes) == 0 {
		d.Status = StatusZeroResults
	}
	for _, r := range routes {
		route := Route{Summary: r.Summary, Legs: make([]Leg, 0, len(r.Legs)), WaypointOrder: r.WaypointOrder}
		if route.WaypointOrder == nil {
			route.WaypointOrder = []int{}
		}
		for _, l := range r.Legs {
			if l == nil {
				continue
			}
			leg := Leg{
				StartAddress:    l.StartAddress,
				EndAddress:      l.EndAddress,
				Distance:        l.Distance.HumanReadable,
				DistanceMeters:  l.Distance.Meters,
				Duration:        FormatDuration(l.Duration),
				DurationSeconds: int64(l.Duration / time.Second),
				Steps:           make([]Step, 0, len(l.Steps)),
			}
			if l.DurationInTraffic > 0 {
				leg.DurationInTraffic = FormatDuration(l.DurationInTraffic)
			}
			for _, s := range l.Steps {
				if s == nil {
					continue
				}
				leg.Steps = append(leg.Steps, Step{Instruction: PlainText(s.HTMLInstructions), Distance: s.Distance.HumanReadable})
			}
			route.Legs = append(route.Legs, leg)
		}
		d.Routes = append(d.Routes, route)
	}
	return d
}

// FormatDuration renders d rounded to the minute, e.g. "1h40m" or "25m".
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	if d <= 0 {
		return "0m"
	}
	return strings.TrimSuffix(d.String(), "0s")
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// PlainText removes HTML tags and entities from an instruction.
func PlainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(tagPattern.ReplaceAllString(s, "")))
}

// FileName is the artifact name of a saved directions response:
// <origin>_<destination>_<departure>_<mode>.json with spaces, slashes and colons replaced by
// underscores. A zero departure is written as "now".
func FileName(req DirectionsRequest) string {
	dep := "now"
	if !req.Departure.IsZero() {
		dep = req.Departure.Format(DepartureLayout)
	}
	mode := req.Mode
	if mode == "" {
		mode = ModeDriving
	}
	name := fmt.Sprintf("%s_%s_%s_%s.json", req.Origin, req.Destination, dep, mode)
	return strings.NewReplacer(" ", "_", "/", "_", ":", "_").Replace(name)
}

// LegLines renders the legs of the first route, one block per leg.
func LegLines(d Directions) []string {
	if len(d.Routes) == 0 {
		return []string{"No route found."}
	}
	var lines []string
	for _, leg := range d.Routes[0].Legs {
		lines = append(lines,
			"Start: "+leg.StartAddress,
			"End: "+leg.EndAddress,
			"Distance: "+leg.Distance,
			"Duration: "+leg.Duration,
		)
		if leg.DurationInTraffic != "" {
			lines = append(lines, "Duration in traffic: "+leg.DurationInTraffic)
		}
		for _, s := range leg.Steps {
			lines = append(lines, fmt.Sprintf("Instruction: %s Distance: %s", s.Instruction, s.Distance))
		}
		lines = append(lines, "")
	}
	return lines
}
