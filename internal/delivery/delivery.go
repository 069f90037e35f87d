// Package delivery defines the entry-point abstraction every transport implements.
package delivery

import "context"

// Delivery is a long-running transport (HTTP server, worker loop) started by main.
type Delivery interface {
	// Serve blocks until the transport stops or fails.
	Serve(ctx context.Context) error
}
