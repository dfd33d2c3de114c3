// Package maps builds Google Maps links and queries the Directions and Routes APIs.
package maps

import (
	"net/url"
	"strings"
)

const (
	dirBaseURL  = "https://www.google.com/maps/dir/?api=1"
	pathBaseURL = "https://www.google.com/maps/dir/"
)

// Travel modes accepted by DirURL and Directions.
const (
	ModeDriving   = "driving"
	ModeWalking   = "walking"
	ModeBicycling = "bicycling"
	ModeTransit   = "transit"
)

func validMode(mode string) bool {
	switch mode {
	case ModeDriving, ModeWalking, ModeBicycling, ModeTransit:
		return true
	}
	return false
}

// DirURL returns a Maps URL with the route as query parameters. Waypoints are joined with an
// unescaped "|". An empty mode means driving.
//
// Example:
//
//	DirURL("Tokyo, Japan", "修善寺温泉", []string{"小田原城", "下田"}, "")
//	// https://www.google.com/maps/dir/?api=1&destination=%E4%BF%AE...&origin=Tokyo%2C+Japan&travelmode=driving&waypoints=%E5%B0%8F...|%E4%B8%8B%E7%94%B0
func DirURL(origin, destination string, waypoints []string, mode string) string {
	if mode == "" {
		mode = ModeDriving
	}
	q := url.Values{}
	q.Set("origin", origin)
	q.Set("destination", destination)
	q.Set("travelmode", mode)
	encoded := q.Encode()
	if len(waypoints) > 0 {
		parts := make([]string, len(waypoints))
		for i, w := range waypoints {
			parts[i] = url.QueryEscape(w)
		}
		encoded += "&waypoints=" + strings.Join(parts, "|")
	}
	return dirBaseURL + "&" + encoded
}

// PathURL returns a Maps URL with the locations as path segments. Without an order the
// waypoints share one segment joined with "|". With an order, as returned in a directions
// result, each waypoint becomes its own segment in that order. Indexes outside waypoints are
// ignored.
func PathURL(origin, destination string, waypoints []string, order []int) string {
	segments := []string{quoteLocation(origin)}
	switch {
	case len(order) > 0:
		for _, i := range order {
			if i >= 0 && i < len(waypoints) {
				segments = append(segments, quoteLocation(waypoints[i]))
			}
		}
	case len(waypoints) > 0:
		parts := make([]string, len(waypoints))
		for i, w := range waypoints {
			parts[i] = quoteLocation(w)
		}
		segments = append(segments, strings.Join(parts, "|"))
	}
	segments = append(segments, quoteLocation(destination))
	return pathBaseURL + strings.Join(segments, "/")
}

// quoteLocation percent-encodes a place name but keeps commas, colons, slashes and spaces.
func quoteLocation(s string) string {
	escaped := url.PathEscape(s)
	return strings.NewReplacer("%2C", ",", "%2F", "/", "%20", " ", "%3A", ":").Replace(escaped)
}
