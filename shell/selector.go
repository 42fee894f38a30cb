package shell

import "github.com/wricardo/incognito/game/engine"

// SelectorState is the phase of two-click input
type SelectorState int

const (
	AwaitingSource SelectorState = iota
	AwaitingDestination
)

func (s SelectorState) String() string {
	if s == AwaitingDestination {
		return "awaiting_destination"
	}
	return "awaiting_source"
}

// ClickResult describes what a click did
type ClickResult struct {
	// Selected is set when the click picked (or re-picked) a source piece.
	Selected bool
	// Action is the executed action, nil when the click executed nothing.
	Action *engine.Action
	// Found reports that an interrogation found the enemy spy.
	Found bool
}

// Selector turns pairs of square clicks into actions. The first click picks
// one of the current player's pieces; the second interrogates an adjacent
// enemy on the clicked square or otherwise attempts a move there.
type Selector struct {
	state  SelectorState
	source engine.Square
}

// State returns the current phase
func (s *Selector) State() SelectorState {
	return s.state
}

// Pending returns the selected source square while a destination is awaited
func (s *Selector) Pending() (engine.Square, bool) {
	return s.source, s.state == AwaitingDestination
}

// Clear drops any pending selection
func (s *Selector) Clear() {
	s.state = AwaitingSource
	s.source = engine.Square{}
}

// Click feeds one square to the state machine
func (s *Selector) Click(eng engine.Engine, sq engine.Square) ClickResult {
	if eng.IsFinished() {
		s.Clear()
		return ClickResult{}
	}

	p := eng.GetState().Board.At(sq)
	own := p != nil && p.Color == eng.CurrentPlayer()

	if s.state == AwaitingSource {
		if !own {
			return ClickResult{}
		}
		s.state = AwaitingDestination
		s.source = sq
		return ClickResult{Selected: true}
	}

	from := s.source
	switch {
	case sq == from:
		s.Clear()
		return ClickResult{}
	case own:
		s.source = sq
		return ClickResult{Selected: true}
	}

	s.Clear()

	if eng.CanInterrogate(from, sq) {
		found := eng.Interrogate(from, sq)
		return ClickResult{Action: lastAction(eng), Found: found}
	}
	if eng.Move(from, sq) {
		return ClickResult{Action: lastAction(eng)}
	}

	return ClickResult{}
}

func lastAction(eng engine.Engine) *engine.Action {
	a := eng.GetLastAction()
	if a == nil {
		return nil
	}
	copied := *a
	return &copied
}
