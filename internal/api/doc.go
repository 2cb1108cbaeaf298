// Package api provides the HTTP REST API and WebSocket server for
// lockcore.
//
// It exposes trigger submission, status, history queries and export,
// user management, security reset and emergency operations to clients
// (mobile apps, dashboards, integrations), plus a WebSocket feed of
// state transitions and emergency notifications.
//
// The server follows the same lifecycle pattern as the other
// infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Authentication is bearer-JWT: POST /api/v1/auth/login exchanges a
// registered keypad code for an HS256 access token carrying the user's
// security level; all other /api/v1 routes except /health require it.
//
// Thread Safety: All methods are safe for concurrent use from multiple
// goroutines.
package api
