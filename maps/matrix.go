package maps

import (
	"context"

	"cloud.google.com/go/maps/routing/apiv2/routingpb"
	"google.golang.org/genproto/googleapis/type/latlng"

	"github.com/gurre/cloud-api-samples/apierr"
)

// MatrixFieldMask selects the element fields the Routes API returns.
const MatrixFieldMask = "originIndex,destinationIndex,duration,distanceMeters,status,condition"

// Matrix request defaults.
const (
	TravelModeDrive      = "DRIVE"
	RoutingTrafficAware  = "TRAFFIC_AWARE"
	ConditionRouteExists = "ROUTE_EXISTS"
)

// LatLng is a WGS84 coordinate.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the coordinate is inside the WGS84 ranges.
func (p LatLng) Valid() bool {
	return p.Latitude >= -90 && p.Latitude <= 90 && p.Longitude >= -180 && p.Longitude <= 180
}

// MatrixRequest describes a route matrix query. AvoidFerries applies to every origin.
type MatrixRequest struct {
	Origins           []LatLng
	Destinations      []LatLng
	TravelMode        string
	RoutingPreference string
	AvoidFerries      bool
}

// MatrixElement is the route between one origin and one destination.
type MatrixElement struct {
	OriginIndex      int    `json:"originIndex"`
	DestinationIndex int    `json:"destinationIndex"`
	DurationSeconds  int64  `json:"durationSeconds"`
	DistanceMeters   int64  `json:"distanceMeters"`
	Condition        string `json:"condition"`
	Error            string `json:"error,omitempty"`
}

func waypoint(p LatLng) *routingpb.Waypoint {
	return &routingpb.Waypoint{
		LocationType: &routingpb.Waypoint_Location{
			Location: &routingpb.Location{
				LatLng: &latlng.LatLng{Latitude: p.Latitude, Longitude: p.Longitude},
			},
		},
	}
}

// BuildMatrixRequest validates the coordinates and enum names and builds the request. Empty
// names default to DRIVE and TRAFFIC_AWARE.
func BuildMatrixRequest(req MatrixRequest) (*routingpb.ComputeRouteMatrixRequest, error) {
	const op = "maps.BuildMatrixRequest"
	if len(req.Origins) == 0 || len(req.Destinations) == 0 {
		return nil, apierr.Configf(op, "at least one origin and one destination are required")
	}

	mode, pref := req.TravelMode, req.RoutingPreference
	if mode == "" {
		mode = TravelModeDrive
	}
	if pref == "" {
		pref = RoutingTrafficAware
	}
	modeValue, ok := routingpb.RouteTravelMode_value[mode]
	if !ok {
		return nil, apierr.Configf(op, "unsupported travel mode %q", mode)
	}
	prefValue, ok := routingpb.RoutingPreference_value[pref]
	if !ok {
		return nil, apierr.Configf(op, "unsupported routing preference %q", pref)
	}

	out := &routingpb.ComputeRouteMatrixRequest{
		Origins:           make([]*routingpb.RouteMatrixOrigin, 0, len(req.Origins)),
		Destinations:      make([]*routingpb.RouteMatrixDestination, 0, len(req.Destinations)),
		TravelMode:        routingpb.RouteTravelMode(modeValue),
		RoutingPreference: routingpb.RoutingPreference(prefValue),
	}
	for i, p := range req.Origins {
		if !p.Valid() {
			return nil, apierr.Configf(op, "origin %d (%v, %v) is out of range", i, p.Latitude, p.Longitude)
		}
		o := &routingpb.RouteMatrixOrigin{Waypoint: waypoint(p)}
		if req.AvoidFerries {
			o.RouteModifiers = &routingpb.RouteModifiers{AvoidFerries: true}
		}
		out.Origins = append(out.Origins, o)
	}
	for i, p := range req.Destinations {
		if !p.Valid() {
			return nil, apierr.Configf(op, "destination %d (%v, %v) is out of range", i, p.Latitude, p.Longitude)
		}
		out.Destinations = append(out.Destinations, &routingpb.RouteMatrixDestination{Waypoint: waypoint(p)})
	}
	return out, nil
}

// RouteMatrix computes the routes between every origin and destination.
func (c *Client) RouteMatrix(ctx context.Context, req MatrixRequest) ([]MatrixElement, error) {
	const op = "routes.computeRouteMatrix"
	if c.matrix == nil {
		return nil, missingClient(op, "route matrix")
	}
	in, err := BuildMatrixRequest(req)
	if err != nil {
		return nil, err
	}
	elements, err := c.matrix.ComputeRouteMatrix(ctx, in, MatrixFieldMask)
	if err != nil {
		return nil, apierr.Classify(op, err)
	}
	return NormalizeMatrix(elements), nil
}

// NormalizeMatrix flattens the streamed elements. Unset indexes read as zero. A per-element
// status is kept as the element's error.
func NormalizeMatrix(elements []*routingpb.RouteMatrixElement) []MatrixElement {
	out := make([]MatrixElement, 0, len(elements))
	for _, el := range elements {
		if el == nil {
			continue
		}
		e := MatrixElement{
			OriginIndex:      int(el.GetOriginIndex()),
			DestinationIndex: int(el.GetDestinationIndex()),
			DurationSeconds:  el.GetDuration().GetSeconds(),
			DistanceMeters:   int64(el.GetDistanceMeters()),
		}
		if cond := el.GetCondition(); cond != routingpb.RouteMatrixElementCondition_ROUTE_MATRIX_ELEMENT_CONDITION_UNSPECIFIED {
			e.Condition = cond.String()
		}
		if st := el.GetStatus(); st.GetCode() != 0 {
			e.Error = st.GetMessage()
		}
		out = append(out, e)
	}
	return out
}
