package session

import (
	"time"

	"github.com/wricardo/incognito/game/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// PersistedSessionData is the JSON envelope of a stored session. The game
// itself is kept in save-file format and restored by replay.
type PersistedSessionData struct {
	ID             string    `json:"id"`
	Variant        string    `json:"variant"`
	CreatedAt      time.Time `json:"created_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
	Save           string    `json:"save"`
}
