package engine

import "fmt"

// Color identifies a side.
type Color int

const (
	White Color = iota
	Black
)

// Role distinguishes the hidden spy from ordinary knights.
type Role int

const (
	Knight Role = iota
	Spy
)

const (
	// BoardSize is the width and height of the board.
	BoardSize = 5

	// PiecesPerSide is the number of pieces each colour deploys in the classic layout.
	PiecesPerSide = 5
)

// String returns "white" or "black"
func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// Opponent returns the other colour
func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

// Letter returns the save-file letter for the colour: B (blanc) or N (noir).
func (c Color) Letter() byte {
	if c == White {
		return 'B'
	}
	return 'N'
}

// ColorFromLetter is the inverse of Letter.
func ColorFromLetter(b byte) (Color, bool) {
	switch b {
	case 'B':
		return White, true
	case 'N':
		return Black, true
	}
	return White, false
}

// MarshalText encodes the colour as its name
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes "white" or "black"
func (c *Color) UnmarshalText(text []byte) error {
	switch string(text) {
	case "white":
		*c = White
	case "black":
		*c = Black
	default:
		return fmt.Errorf("unknown color %q", text)
	}
	return nil
}

func (r Role) String() string {
	if r == Spy {
		return "spy"
	}
	return "knight"
}

// MarshalText encodes the role as its name
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes "knight" or "spy"
func (r *Role) UnmarshalText(text []byte) error {
	switch string(text) {
	case "knight":
		*r = Knight
	case "spy":
		*r = Spy
	default:
		return fmt.Errorf("unknown role %q", text)
	}
	return nil
}

// Piece is an immutable colour/role pair held by exactly one board cell.
type Piece struct {
	Color Color `json:"color"`
	Role  Role  `json:"role"`
}

// Square is a (row, column) pair. Row 0 is the top of the board.
// It doubles as a relative offset when tracing lines.
type Square struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// InBounds reports whether the square lies on the board
func (s Square) InBounds() bool {
	return s.Row >= 0 && s.Row < BoardSize && s.Col >= 0 && s.Col < BoardSize
}

// Add returns s offset by d
func (s Square) Add(d Square) Square {
	return Square{Row: s.Row + d.Row, Col: s.Col + d.Col}
}

// Board maps every square to an optional piece. A nil entry is an empty square.
type Board [BoardSize][BoardSize]*Piece

// At returns the piece on sq, or nil when the square is empty or off the board.
func (b *Board) At(sq Square) *Piece {
	if !sq.InBounds() {
		return nil
	}
	return b[sq.Row][sq.Col]
}

// Set places p on sq. Passing nil empties the square.
func (b *Board) Set(sq Square, p *Piece) {
	b[sq.Row][sq.Col] = p
}

// Count returns how many pieces of colour c remain.
func (b *Board) Count(c Color) int {
	n := 0
	for r := 0; r < BoardSize; r++ {
		for col := 0; col < BoardSize; col++ {
			if p := b[r][col]; p != nil && p.Color == c {
				n++
			}
		}
	}
	return n
}

// SpySquare locates the spy of colour c.
func (b *Board) SpySquare(c Color) (Square, bool) {
	for r := 0; r < BoardSize; r++ {
		for col := 0; col < BoardSize; col++ {
			if p := b[r][col]; p != nil && p.Color == c && p.Role == Spy {
				return Square{Row: r, Col: col}, true
			}
		}
	}
	return Square{}, false
}

// ActionKind tags a history entry.
type ActionKind int

const (
	ActionMove ActionKind = iota
	ActionInterrogate
)

// Letter returns the save-file letter: D (déplacement) or I (interrogation).
func (k ActionKind) Letter() byte {
	if k == ActionInterrogate {
		return 'I'
	}
	return 'D'
}

func (k ActionKind) String() string {
	if k == ActionInterrogate {
		return "interrogate"
	}
	return "move"
}

// MarshalText encodes the kind as its name
func (k ActionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes "move" or "interrogate"
func (k *ActionKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "move":
		*k = ActionMove
	case "interrogate":
		*k = ActionInterrogate
	default:
		return fmt.Errorf("unknown action kind %q", text)
	}
	return nil
}

// Action is one immutable entry of the move log
type Action struct {
	Kind ActionKind `json:"kind"`
	From Square     `json:"from"`
	To   Square     `json:"to"`
}

func (a Action) String() string {
	return fmt.Sprintf("%c %s->%s", a.Kind.Letter(), a.From, a.To)
}

// Outcome records why a game ended. The engine never names a winner; it only
// keeps the cause next to the Finished flag.
type Outcome string

const (
	OutcomeNone Outcome = ""
	// OutcomeSpyFound: an interrogation targeted the enemy spy.
	OutcomeSpyFound Outcome = "spy_found"
	// OutcomeSpyExposed: a spy interrogated a knight and was removed.
	OutcomeSpyExposed Outcome = "spy_exposed"
)

// GameState is the complete state of one game
type GameState struct {
	Board    Board    `json:"board"`
	Current  Color    `json:"current_player"`
	Log      []Action `json:"move_log"`
	Finished bool     `json:"finished"`
	Outcome  Outcome  `json:"outcome,omitempty"`
}
