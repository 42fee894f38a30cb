// Package service provides the business logic layer for Incognito servers.
//
// The service package implements:
//   - Multi-session game management
//   - Variant loading through a ConfigManager
//   - Move, interrogation and two-click input processing
//   - Move history pagination and save export
//   - Archiving of finished games
//
// Core Interfaces:
//
// GameService is the main service interface used by the HTTP API and the MCP
// tools. SessionManager stores sessions, ConfigManager loads variants and
// Archive records finished games.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Each session owns its own engine and two-click selector.
// Boards are returned as StateView values in which spies are drawn as knights
// until the game is over.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("variants")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Move(ctx, info.ID, "a3", "b4")
package service
