package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/wricardo/incognito/game/codec"
	"github.com/wricardo/incognito/game/engine"
	"github.com/wricardo/incognito/game/service"
)

// SaveFilePersistence keeps a single session in a plain save file, the format
// written by the terminal shell. It backs the --save flag of the browser shell.
type SaveFilePersistence struct {
	id     string
	path   string
	config *engine.GameConfig
}

// NewSaveFilePersistence stores the session with the given ID at path
func NewSaveFilePersistence(id, path string, config *engine.GameConfig) *SaveFilePersistence {
	if config == nil {
		config = engine.DefaultConfig()
	}
	return &SaveFilePersistence{id: strings.ToLower(id), path: path, config: config}
}

func (sp *SaveFilePersistence) owns(id string) bool {
	return strings.ToLower(id) == sp.id
}

// Save writes the session's game. Other sessions are not stored.
func (sp *SaveFilePersistence) Save(session *service.Session) error {
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}
	if !sp.owns(session.ID) {
		return nil
	}
	return codec.SaveGame(session.Engine, sp.path)
}

// Load replays the save file into a session
func (sp *SaveFilePersistence) Load(id string) (*service.Session, error) {
	if !sp.owns(id) {
		return nil, ErrSessionNotFound
	}

	eng, err := codec.LoadGameWithConfig(sp.path, sp.config)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &service.Session{
		ID:             sp.id,
		Variant:        sp.config.Name,
		Engine:         eng,
		Config:         sp.config,
		CreatedAt:      now,
		LastAccessedAt: now,
	}, nil
}

// Delete leaves the save file in place; it belongs to the player
func (sp *SaveFilePersistence) Delete(id string) error {
	return nil
}

// ListAll returns the session ID when the save file exists
func (sp *SaveFilePersistence) ListAll() ([]string, error) {
	if !sp.Exists(sp.id) {
		return []string{}, nil
	}
	return []string{sp.id}, nil
}

// Exists checks for the save file
func (sp *SaveFilePersistence) Exists(id string) bool {
	if !sp.owns(id) {
		return false
	}
	_, err := os.Stat(sp.path)
	return err == nil
}
