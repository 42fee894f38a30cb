package engine

import (
	"errors"
	"fmt"
)

var (
	ErrGameFinished  = errors.New("game is finished")
	ErrIllegalAction = errors.New("illegal action")
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	Reset() *GameState
	IsFinished() bool
	CurrentPlayer() Color

	// Actions
	Move(from, to Square) bool
	Interrogate(interrogator, target Square) bool
	CanMove(from, to Square) bool
	CanInterrogate(interrogator, target Square) bool
	Apply(action Action) (bool, error)

	// Configuration
	GetConfig() *GameConfig

	// History
	GetMoveHistory() []Action
	GetLastAction() *Action
}

// GameEngine implements the Engine interface
type GameEngine struct {
	state  *GameState
	config *GameConfig
}

// NewEngine creates a new game engine with the provided configuration
func NewEngine(config *GameConfig) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	return &GameEngine{
		config: config,
		state:  InitGameStateFromConfig(config),
	}, nil
}

// NewGame creates an engine on the classic layout
func NewGame() *GameEngine {
	config := DefaultConfig()
	return &GameEngine{
		config: config,
		state:  InitGameStateFromConfig(config),
	}
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// SetState sets the game state (used when restoring sessions)
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	e.state = state
	return nil
}

// Reset restarts the game from the configured layout
func (e *GameEngine) Reset() *GameState {
	e.state = InitGameStateFromConfig(e.config)
	return e.state
}

// IsFinished reports whether the game is over
func (e *GameEngine) IsFinished() bool {
	return e.state.Finished
}

// CurrentPlayer returns the colour to act
func (e *GameEngine) CurrentPlayer() Color {
	return e.state.Current
}

// GetConfig returns the variant the engine was created with
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// CanMove checks legality without changing anything
func (e *GameEngine) CanMove(from, to Square) bool {
	return !e.state.Finished && IsLegalMove(e.state, from, to)
}

// Move plays a board move for the current player. It reports false and
// leaves the state untouched when the move is illegal or the game is over.
func (e *GameEngine) Move(from, to Square) bool {
	if !e.CanMove(from, to) {
		return false
	}
	e.state.ApplyMove(from, to)
	return true
}

// CanInterrogate checks that the current player owns the interrogator and that
// the interrogation would have an effect.
func (e *GameEngine) CanInterrogate(interrogator, target Square) bool {
	if e.state.Finished {
		return false
	}
	p := e.state.Board.At(interrogator)
	if p == nil || p.Color != e.state.Current {
		return false
	}
	return CanInterrogate(e.state, interrogator, target)
}

// Interrogate plays an interrogation for the current player and reports
// whether the enemy spy was found. An executed interrogation is logged and
// passes the turn unless it ended the game; an invalid one changes nothing.
func (e *GameEngine) Interrogate(interrogator, target Square) bool {
	if !e.CanInterrogate(interrogator, target) {
		return false
	}

	found := e.state.Interrogate(interrogator, target)
	e.state.AddToLog(Action{Kind: ActionInterrogate, From: interrogator, To: target})
	if !e.state.Finished {
		e.state.Current = e.state.Current.Opponent()
	}
	return found
}

// Apply executes a logged action. The bool is the interrogation result (always
// false for moves); the error is ErrGameFinished or ErrIllegalAction when the
// action could not be executed.
func (e *GameEngine) Apply(action Action) (bool, error) {
	if e.state.Finished {
		return false, ErrGameFinished
	}

	switch action.Kind {
	case ActionMove:
		if !e.Move(action.From, action.To) {
			return false, fmt.Errorf("%w: %s", ErrIllegalAction, action)
		}
		return false, nil
	case ActionInterrogate:
		if !e.CanInterrogate(action.From, action.To) {
			return false, fmt.Errorf("%w: %s", ErrIllegalAction, action)
		}
		return e.Interrogate(action.From, action.To), nil
	}

	return false, fmt.Errorf("%w: unknown action kind %d", ErrIllegalAction, action.Kind)
}

// GetMoveHistory returns the complete move log
func (e *GameEngine) GetMoveHistory() []Action {
	return e.state.Log
}

// GetLastAction returns the last executed action, or nil if none
func (e *GameEngine) GetLastAction() *Action {
	if len(e.state.Log) == 0 {
		return nil
	}
	return &e.state.Log[len(e.state.Log)-1]
}

// PossibleActions lists every move and interrogation open to the current player
func (e *GameEngine) PossibleActions() []Action {
	if e.state.Finished {
		return nil
	}

	var actions []Action
	for _, from := range AllSquares() {
		p := e.state.Board.At(from)
		if p == nil || p.Color != e.state.Current {
			continue
		}
		for _, to := range LegalMoves(e.state, from) {
			actions = append(actions, Action{Kind: ActionMove, From: from, To: to})
		}
		for _, to := range InterrogationTargets(e.state, from) {
			actions = append(actions, Action{Kind: ActionInterrogate, From: from, To: to})
		}
	}
	return actions
}
