// Package mcp exposes an Incognito server to AI agents over the Model Context
// Protocol.
//
// The Client is a thin proxy: every tool call becomes a request against the
// REST API, so agents and browsers always see the same sessions.
//
// Tools:
//   - create_session, list_sessions, get_session
//   - game_state: board as the players see it plus legal actions
//   - move, interrogate: take an action with algebraic squares ("a3", "b4")
//   - reset_game, move_history, export_save
//   - list_variants, list_archive
//   - game_rules
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
