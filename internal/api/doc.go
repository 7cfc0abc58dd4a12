// Package api provides the optional localhost HTTP mirror of the
// control plane.
//
// It is a read-only data surface: device listings, per-device history
// and presence patterns, and daemon status, plus a WebSocket stream
// carrying the same events the unix-socket fanout delivers. Mutations
// stay on the unix socket; nothing here writes.
//
// The server follows the same lifecycle pattern as the other
// infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple
// goroutines.
package api
