package service

import (
	"time"

	"github.com/wricardo/incognito/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string     `json:"id"`
	Variant        string     `json:"variant"`
	CreatedAt      time.Time  `json:"created_at"`
	LastAccessedAt time.Time  `json:"last_accessed_at"`
	State          *StateView `json:"state"`
}

// StateView is the public picture of a game. Spies are drawn as knights of
// their colour until the game is over, matching what players see at the board.
type StateView struct {
	Board         []string       `json:"board"`
	CurrentPlayer engine.Color   `json:"current_player"`
	Finished      bool           `json:"finished"`
	Outcome       engine.Outcome `json:"outcome,omitempty"`
	MoveCount     int            `json:"move_count"`
	LastAction    string         `json:"last_action,omitempty"`
	Pieces        map[string]int `json:"pieces"`
	Possible      []string       `json:"possible_actions,omitempty"`
	Selected      string         `json:"selected,omitempty"`
}

// ActionResult contains the result of a move or interrogation
type ActionResult struct {
	Success  bool        `json:"success"`
	Action   string      `json:"action,omitempty"`
	SpyFound bool        `json:"spy_found,omitempty"`
	Message  string      `json:"message"`
	State    *StateView  `json:"state"`
	Events   []GameEvent `json:"events,omitempty"`
}

// SelectResult is the outcome of one click of two-click input
type SelectResult struct {
	Selector string        `json:"selector"`
	Selected string        `json:"selected,omitempty"`
	Result   *ActionResult `json:"result,omitempty"`
	State    *StateView    `json:"state"`
}

// GameEvent represents an event that occurred during play
type GameEvent struct {
	Type      string    `json:"type"` // "move", "interrogation", "piece_removed", "spy_found", "spy_exposed", "reset"
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryEntry is one logged action with its 1-based position in the log
type HistoryEntry struct {
	Number int          `json:"number"`
	Player engine.Color `json:"player"`
	Action string       `json:"action"`
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []HistoryEntry `json:"moves"`
	TotalMoves  int            `json:"total_moves"`
	Page        int            `json:"page"`
	PageSize    int            `json:"page_size"`
	TotalPages  int            `json:"total_pages"`
	HasNext     bool           `json:"has_next"`
	HasPrevious bool           `json:"has_previous"`
}

// VariantInfo provides information about a starting deployment
type VariantInfo struct {
	Filename       string       `json:"filename,omitempty"`
	VariantID      string       `json:"variant_id"` // The identifier to use for session creation
	Name           string       `json:"name"`
	Description    string       `json:"description"`
	StartingPlayer engine.Color `json:"starting_player"`
	Layout         []string     `json:"layout"`
}

// FinishedGame is an archived game
type FinishedGame struct {
	ID         string         `json:"id"`
	SessionID  string         `json:"session_id"`
	Variant    string         `json:"variant"`
	Outcome    engine.Outcome `json:"outcome"`
	Moves      int            `json:"moves"`
	Save       string         `json:"save"`
	FinishedAt time.Time      `json:"finished_at"`
}
