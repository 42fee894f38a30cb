package service

import (
	"context"
	"time"

	"github.com/wricardo/incognito/game/engine"
	"github.com/wricardo/incognito/shell"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, variant string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Move(ctx context.Context, sessionID, from, to string) (*ActionResult, error)
	Interrogate(ctx context.Context, sessionID, interrogator, target string) (*ActionResult, error)
	Select(ctx context.Context, sessionID, square string) (*SelectResult, error)
	Reset(ctx context.Context, sessionID string) (*StateView, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*StateView, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)
	ExportSave(ctx context.Context, sessionID string) (string, error)

	// Variants
	ListVariants(ctx context.Context) ([]*VariantInfo, error)
	LoadVariant(ctx context.Context, name string) (*engine.GameConfig, error)
	SaveVariant(ctx context.Context, name string, config *engine.GameConfig) error

	// Archive
	ListArchive(ctx context.Context, limit int) ([]*FinishedGame, error)
	GetArchived(ctx context.Context, id string) (*FinishedGame, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, variant string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles variant loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*VariantInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// Archive stores finished games
type Archive interface {
	Add(ctx context.Context, game *FinishedGame) error
	List(ctx context.Context, limit int) ([]*FinishedGame, error)
	Get(ctx context.Context, id string) (*FinishedGame, error)
}

// Session represents an active game session
type Session struct {
	ID             string
	Variant        string
	Engine         *engine.GameEngine
	Config         *engine.GameConfig
	Selector       shell.Selector
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
