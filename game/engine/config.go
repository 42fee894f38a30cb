package engine

import (
	"encoding/json"
	"fmt"
	"os"
)

// Layout characters
const (
	LayoutEmpty       = '.'
	LayoutWhiteKnight = 'w'
	LayoutWhiteSpy    = 'W'
	LayoutBlackKnight = 'b'
	LayoutBlackSpy    = 'B'
)

// ClassicLayout is the standard deployment, row 0 first.
var ClassicLayout = []string{
	"..bb.",
	"...bb",
	"w...B",
	"wW...",
	".ww..",
}

// GameConfig describes a starting deployment. The classic game is one such
// variant; others are loaded from JSON files by the config manager.
type GameConfig struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Layout         []string `json:"layout"`
	StartingPlayer Color    `json:"starting_player"`
}

// DefaultConfig returns the classic variant
func DefaultConfig() *GameConfig {
	return &GameConfig{
		Name:           "classic",
		Description:    "Standard deployment: four knights and a spy per side, white to move",
		Layout:         append([]string(nil), ClassicLayout...),
		StartingPlayer: White,
	}
}

// ValidateGameConfig checks that a variant can be played
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}

	if len(config.Layout) != BoardSize {
		return fmt.Errorf("config validation: layout must have %d rows, got %d", BoardSize, len(config.Layout))
	}

	pieces := map[Color]int{}
	spies := map[Color]int{}
	for r, row := range config.Layout {
		if len(row) != BoardSize {
			return fmt.Errorf("config validation: row %d must have %d characters, got %d", r+1, BoardSize, len(row))
		}

		for c := 0; c < BoardSize; c++ {
			piece, ok := pieceFromLayout(row[c])
			if !ok {
				return fmt.Errorf("config validation: invalid character '%c' at row %d, col %d", row[c], r+1, c+1)
			}
			if piece == nil {
				continue
			}

			sq := Square{Row: r, Col: c}
			if IsCastle(sq, piece.Color) {
				return fmt.Errorf("config validation: %s piece placed on its own castle %s", piece.Color, sq)
			}
			pieces[piece.Color]++
			if piece.Role == Spy {
				spies[piece.Color]++
			}
		}
	}

	for _, color := range []Color{White, Black} {
		if spies[color] != 1 {
			return fmt.Errorf("config validation: %s must have exactly one spy, got %d", color, spies[color])
		}
		if pieces[color] > PiecesPerSide {
			return fmt.Errorf("config validation: %s may deploy at most %d pieces, got %d", color, PiecesPerSide, pieces[color])
		}
	}

	return nil
}

// LoadGameConfig loads and validates a variant from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// InitGameStateFromConfig creates the starting state of a variant. A nil
// config yields the classic layout. The config is assumed valid.
func InitGameStateFromConfig(config *GameConfig) *GameState {
	if config == nil {
		config = DefaultConfig()
	}

	state := &GameState{
		Current: config.StartingPlayer,
		Log:     []Action{},
	}

	for r := 0; r < BoardSize && r < len(config.Layout); r++ {
		row := config.Layout[r]
		for c := 0; c < BoardSize && c < len(row); c++ {
			if piece, ok := pieceFromLayout(row[c]); ok && piece != nil {
				state.Board.Set(Square{Row: r, Col: c}, piece)
			}
		}
	}

	return state
}

// NewGameState returns the classic starting state
func NewGameState() *GameState {
	return InitGameStateFromConfig(nil)
}

func pieceFromLayout(ch byte) (*Piece, bool) {
	switch ch {
	case LayoutEmpty:
		return nil, true
	case LayoutWhiteKnight:
		return &Piece{Color: White, Role: Knight}, true
	case LayoutWhiteSpy:
		return &Piece{Color: White, Role: Spy}, true
	case LayoutBlackKnight:
		return &Piece{Color: Black, Role: Knight}, true
	case LayoutBlackSpy:
		return &Piece{Color: Black, Role: Spy}, true
	}
	return nil, false
}

// LayoutChar is the inverse of the layout parser. With reveal unset, spies
// are drawn as knights of their colour.
func LayoutChar(p *Piece, reveal bool) byte {
	switch {
	case p == nil:
		return LayoutEmpty
	case p.Color == White && p.Role == Spy && reveal:
		return LayoutWhiteSpy
	case p.Color == White:
		return LayoutWhiteKnight
	case p.Role == Spy && reveal:
		return LayoutBlackSpy
	}
	return LayoutBlackKnight
}

// Layout renders the board in the variant layout format, row 0 first.
func (b *Board) Layout(reveal bool) []string {
	rows := make([]string, BoardSize)
	for r := 0; r < BoardSize; r++ {
		row := make([]byte, BoardSize)
		for c := 0; c < BoardSize; c++ {
			row[c] = LayoutChar(b[r][c], reveal)
		}
		rows[r] = string(row)
	}
	return rows
}
