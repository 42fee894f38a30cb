// Package websocket pushes live game updates to browsers watching a session.
//
// A single Hub goroutine owns the client registry. Clients connect with
// /ws?session=<id> and receive one JSON message per frame:
//
//	{"session_id":"ab12","event":"state_update","state":{...}}
//
// Other events (spy_found, spy_exposed, piece_removed, reset) carry a data
// payload instead of a state. Messages sent by clients are ignored.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	hub.BroadcastToSession(sessionID, state)
package websocket
