package engine

import "fmt"

// String returns the algebraic form of the square: column letter then rank,
// where row 0 is rank 5 (e.g. Square{4, 0} is "a1").
func (s Square) String() string {
	if !s.InBounds() {
		return fmt.Sprintf("(%d,%d)", s.Row, s.Col)
	}
	return fmt.Sprintf("%c%d", 'a'+s.Col, BoardSize-s.Row)
}

// ParseSquare parses the algebraic form produced by Square.String
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return Square{}, fmt.Errorf("invalid square: %q", s)
	}

	col := int(s[0]) - 'a'
	rank := int(s[1]) - '0'
	if col < 0 || col >= BoardSize || rank < 1 || rank > BoardSize {
		return Square{}, fmt.Errorf("invalid square: %q", s)
	}

	return Square{Row: BoardSize - rank, Col: col}, nil
}

// MustParseSquare is ParseSquare for literals known to be valid
func MustParseSquare(s string) Square {
	sq, err := ParseSquare(s)
	if err != nil {
		panic(err)
	}
	return sq
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// sign returns -1, 0 or 1
func sign(x int) int {
	switch {
	case x < 0:
		return -1
	case x > 0:
		return 1
	}
	return 0
}

// AllSquares lists every square in row-major order
func AllSquares() []Square {
	squares := make([]Square, 0, BoardSize*BoardSize)
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			squares = append(squares, Square{Row: r, Col: c})
		}
	}
	return squares
}
