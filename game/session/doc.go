// Package session provides session management for Incognito servers.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Short random session IDs
//   - Optional file persistence with replay on load
//   - Expiry of idle sessions from memory
//
// Core Types:
//
// Manager is the session manager used by the game service. FilePersistence
// stores each session as a small JSON envelope whose "save" field holds the
// game in save-file format, so a stored session is rebuilt by replaying its
// actions rather than by trusting a serialized board. SaveFilePersistence
// keeps one session in a plain save file, for the browser shell's --save.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs. Lookups are case-insensitive.
//
// Usage:
//
//	persistence, err := session.NewFilePersistence("sessions", configManager)
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(persistence)
//	manager.LoadPersistedSessions()
//
//	sess, err := manager.Create("", "classic", engine.DefaultConfig())
package session
