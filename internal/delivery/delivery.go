// Package delivery defines the contract every serving surface implements.
package delivery

import "context"

// Delivery is a long-running serving surface (HTTP server, scheduler
// loop) started by the application and stopped through fx lifecycle
// hooks.
type Delivery interface {
	Serve(ctx context.Context) error
}
