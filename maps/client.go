package maps

import (
	"github.com/gurre/cloud-api-samples/apierr"
	"github.com/gurre/cloud-api-samples/gcp"
)

// Client answers route queries with the Directions and Routes APIs.
type Client struct {
	directions gcp.DirectionsClient
	matrix     gcp.RouteMatrixClient
}

// NewClient creates a Client. Either client may be nil when its queries are not issued.
func NewClient(directions gcp.DirectionsClient, matrix gcp.RouteMatrixClient) *Client {
	return &Client{directions: directions, matrix: matrix}
}

func missingClient(op, name string) error {
	return apierr.Configf(op, "no %s client configured", name)
}
