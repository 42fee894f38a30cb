// Package api provides the HTTP surface of an Incognito server.
//
// Endpoints:
//
// Sessions:
//   - POST /api/sessions - Create a session ({"variant": "classic"}, optional)
//   - GET /api/sessions - List sessions (sort=created|accessed, order, limit)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Play:
//   - GET /api/sessions/{id}/state - Board as seen by the players
//   - POST /api/sessions/{id}/move - {"from": "a3", "to": "b4"}
//   - POST /api/sessions/{id}/interrogate - {"from": "d2", "to": "e2"}
//   - POST /api/sessions/{id}/select - {"square": "a3"}, one click of two-click input
//   - POST /api/sessions/{id}/reset - Restart from the variant's layout
//   - GET /api/sessions/{id}/history - Paginated action log (page, limit, order)
//   - GET /api/sessions/{id}/save - The game as save-file text
//
// Variants and archive:
//   - GET /api/variants, GET /api/variants/{name}, POST /api/variants
//   - GET /api/archive?limit=N, GET /api/archive/{id}
//
// Other:
//   - GET /ws?session={id} - WebSocket state updates
//   - GET /metrics - Prometheus counters
//   - GET /health
//   - GET / - Browser board
//
// Rejected actions are not HTTP errors: they return 200 with success=false
// and the unchanged state. Errors use {"error": "..."} bodies.
//
// Usage:
//
//	server := api.NewServer(gameService, hub)
//	http.ListenAndServe(":8080", server)
package api
