package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/incognito/game/codec"
	"github.com/wricardo/incognito/game/engine"
)

var (
	ErrInvalidSquare   = errors.New("invalid square")
	ErrArchiveDisabled = errors.New("archive is not configured")
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	archive  Archive
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// NewGameServiceWithArchive creates a game service that records every
// finished game in the archive
func NewGameServiceWithArchive(sessions SessionManager, configs ConfigManager, archive Archive) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		archive:  archive,
	}
}

// CreateSession creates a new game session on the named variant, or the
// default variant when the name is empty
func (s *gameServiceImpl) CreateSession(ctx context.Context, variant string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	if variant != "" {
		config, err = s.configs.LoadConfig(variant)
		if err != nil {
			if available, listErr := s.configs.ListConfigs(); listErr == nil && len(available) > 0 {
				var ids []string
				for _, v := range available {
					ids = append(ids, v.VariantID)
				}
				return nil, fmt.Errorf("failed to load variant '%s' (available: %s): %w", variant, strings.Join(ids, ", "), err)
			}
			return nil, fmt.Errorf("failed to load variant '%s': %w", variant, err)
		}
	} else {
		config = s.configs.GetDefault()
		variant = config.Name
	}

	// Let session manager generate the ID
	sess, err := s.sessions.Create("", variant, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return sessionInfo(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	return sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, sessionInfo(sess))
	}

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// Move plays a board move for the player to act
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, from, to string) (*ActionResult, error) {
	return s.play(ctx, sessionID, engine.ActionMove, from, to)
}

// Interrogate plays an interrogation for the player to act
func (s *gameServiceImpl) Interrogate(ctx context.Context, sessionID, interrogator, target string) (*ActionResult, error) {
	return s.play(ctx, sessionID, engine.ActionInterrogate, interrogator, target)
}

func (s *gameServiceImpl) play(ctx context.Context, sessionID string, kind engine.ActionKind, from, to string) (*ActionResult, error) {
	a, err := parseSquare(from)
	if err != nil {
		return nil, err
	}
	b, err := parseSquare(to)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	action := engine.Action{Kind: kind, From: a, To: b}
	player := sess.Engine.CurrentPlayer()
	wasFinished := sess.Engine.IsFinished()

	found, err := sess.Engine.Apply(action)
	if err != nil {
		return &ActionResult{
			Success: false,
			Action:  action.String(),
			Message: rejection(err),
			State:   stateView(sess),
		}, nil
	}

	sess.Selector.Clear()
	result := s.executed(ctx, sess, player, action, found, wasFinished)
	return result, nil
}

// Select feeds one click to the session's two-click selector
func (s *gameServiceImpl) Select(ctx context.Context, sessionID, square string) (*SelectResult, error) {
	sq, err := parseSquare(square)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	player := sess.Engine.CurrentPlayer()
	wasFinished := sess.Engine.IsFinished()
	click := sess.Selector.Click(sess.Engine, sq)

	result := &SelectResult{Selector: sess.Selector.State().String()}
	if pending, ok := sess.Selector.Pending(); ok {
		result.Selected = pending.String()
	}
	if click.Action != nil {
		result.Result = s.executed(ctx, sess, player, *click.Action, click.Found, wasFinished)
	}
	result.State = stateView(sess)

	return result, nil
}

// executed builds the result of an action that changed the game, persists
// the session and archives the game when the action ended it
func (s *gameServiceImpl) executed(ctx context.Context, sess *Session, player engine.Color, action engine.Action, found, wasFinished bool) *ActionResult {
	state := sess.Engine.GetState()
	events := actionEvents(player, action, state)

	result := &ActionResult{
		Success:  true,
		Action:   action.String(),
		SpyFound: found,
		Message:  events[len(events)-1].Message,
		State:    stateView(sess),
		Events:   events,
	}

	if err := s.sessions.Save(sess.ID); err != nil {
		log.Printf("Warning: failed to persist session %s after %s: %v", sess.ID, action, err)
	}

	if state.Finished && !wasFinished {
		s.archiveGame(ctx, sess)
	}

	return result
}

func (s *gameServiceImpl) archiveGame(ctx context.Context, sess *Session) {
	if s.archive == nil {
		return
	}

	state := sess.Engine.GetState()
	game := &FinishedGame{
		SessionID:  sess.ID,
		Variant:    sess.Variant,
		Outcome:    state.Outcome,
		Moves:      len(state.Log),
		Save:       string(codec.Marshal(state)),
		FinishedAt: time.Now(),
	}
	if err := s.archive.Add(ctx, game); err != nil {
		log.Printf("Warning: failed to archive session %s: %v", sess.ID, err)
		return
	}

	log.Printf("Archived game %s from session %s (%s after %d actions)", game.ID, sess.ID, game.Outcome, game.Moves)
}

// Reset restarts a session from its variant's starting position
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*StateView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	sess.Engine.Reset()
	sess.Selector.Clear()

	if err := s.sessions.Save(sessionID); err != nil {
		log.Printf("Warning: failed to persist session %s after reset: %v", sessionID, err)
	}

	return stateView(sess), nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*StateView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return stateView(sess), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	starting := sess.Config.StartingPlayer
	entry := func(i int) HistoryEntry {
		player := starting
		if i%2 == 1 {
			player = starting.Opponent()
		}
		return HistoryEntry{Number: i + 1, Player: player, Action: history[i].String()}
	}

	moves := []HistoryEntry{}
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, entry(i))
		}
	} else {
		for i := start; i < end; i++ {
			moves = append(moves, entry(i))
		}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ExportSave returns the session's game in save-file format
func (s *gameServiceImpl) ExportSave(ctx context.Context, sessionID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return "", fmt.Errorf("session not found: %w", err)
	}

	return string(codec.Marshal(sess.Engine.GetState())), nil
}

// ListVariants returns the available starting deployments
func (s *gameServiceImpl) ListVariants(ctx context.Context) ([]*VariantInfo, error) {
	return s.configs.ListConfigs()
}

// LoadVariant loads a specific starting deployment
func (s *gameServiceImpl) LoadVariant(ctx context.Context, name string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(name)
}

// SaveVariant stores a new or changed variant
func (s *gameServiceImpl) SaveVariant(ctx context.Context, name string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(name, config)
}

// ListArchive returns the most recently finished games
func (s *gameServiceImpl) ListArchive(ctx context.Context, limit int) ([]*FinishedGame, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	return s.archive.List(ctx, limit)
}

// GetArchived returns one archived game
func (s *gameServiceImpl) GetArchived(ctx context.Context, id string) (*FinishedGame, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	return s.archive.Get(ctx, id)
}

func parseSquare(s string) (engine.Square, error) {
	sq, err := engine.ParseSquare(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return engine.Square{}, fmt.Errorf("%w: %q", ErrInvalidSquare, s)
	}
	return sq, nil
}

func rejection(err error) string {
	if errors.Is(err, engine.ErrGameFinished) {
		return "The game is over"
	}
	return fmt.Sprintf("Not allowed: %v", err)
}

func sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		Variant:        sess.Variant,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		State:          stateView(sess),
	}
}

// stateView builds the public view of a session. Spies stay hidden until the
// game is over.
func stateView(sess *Session) *StateView {
	state := sess.Engine.GetState()

	view := &StateView{
		Board:         state.Board.Layout(state.Finished),
		CurrentPlayer: state.Current,
		Finished:      state.Finished,
		Outcome:       state.Outcome,
		MoveCount:     len(state.Log),
		Pieces: map[string]int{
			engine.White.String(): state.Board.Count(engine.White),
			engine.Black.String(): state.Board.Count(engine.Black),
		},
	}

	if last := sess.Engine.GetLastAction(); last != nil {
		view.LastAction = last.String()
	}
	for _, a := range sess.Engine.PossibleActions() {
		view.Possible = append(view.Possible, a.String())
	}
	if pending, ok := sess.Selector.Pending(); ok {
		view.Selected = pending.String()
	}

	return view
}

// actionEvents describes an executed action. The last event carries the
// headline message.
func actionEvents(player engine.Color, action engine.Action, state *engine.GameState) []GameEvent {
	now := time.Now()

	if action.Kind == engine.ActionMove {
		return []GameEvent{{
			Type:      "move",
			Message:   fmt.Sprintf("%s moved %s to %s", player, action.From, action.To),
			Timestamp: now,
		}}
	}

	events := []GameEvent{{
		Type:      "interrogation",
		Message:   fmt.Sprintf("%s interrogated %s from %s", player, action.To, action.From),
		Timestamp: now,
	}}

	switch state.Outcome {
	case engine.OutcomeSpyFound:
		events = append(events, GameEvent{
			Type:      "spy_found",
			Message:   fmt.Sprintf("The %s spy on %s was found. %s wins", player.Opponent(), action.To, player),
			Timestamp: now,
		})
	case engine.OutcomeSpyExposed:
		events = append(events, GameEvent{
			Type:      "spy_exposed",
			Message:   fmt.Sprintf("The %s spy on %s questioned a knight and was exposed. Game over", player, action.From),
			Timestamp: now,
		})
	default:
		events = append(events, GameEvent{
			Type:      "piece_removed",
			Message:   fmt.Sprintf("%s is a knight. The %s piece on %s is removed", action.To, player, action.From),
			Timestamp: now,
		})
	}

	return events
}
