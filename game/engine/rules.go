package engine

// Castle squares: White's in the bottom-left corner, Black's in the top-right.
var (
	WhiteCastle = Square{Row: BoardSize - 1, Col: 0}
	BlackCastle = Square{Row: 0, Col: BoardSize - 1}
)

// CastleOf returns the castle of colour c
func CastleOf(c Color) Square {
	if c == White {
		return WhiteCastle
	}
	return BlackCastle
}

// IsCastle reports whether sq is the castle of colour c. A colour's own
// pieces may never move onto it.
func IsCastle(sq Square, c Color) bool {
	return sq == CastleOf(c)
}

// AreAdjacent reports whether a and b differ by exactly one in exactly one axis.
// Diagonal neighbours are not adjacent.
func AreAdjacent(a, b Square) bool {
	dr, dc := abs(a.Row-b.Row), abs(a.Col-b.Col)
	return (dr == 1 && dc == 0) || (dr == 0 && dc == 1)
}

// IsLegalMove reports whether the current player may move the piece on from
// to the empty square to. It has no side effects.
func IsLegalMove(gs *GameState, from, to Square) bool {
	if !from.InBounds() || !to.InBounds() {
		return false
	}

	piece := gs.Board.At(from)
	if piece == nil || piece.Color != gs.Current {
		return false
	}

	if gs.Board.At(to) != nil {
		return false
	}

	if IsCastle(to, piece.Color) {
		return false
	}

	dr, dc := to.Row-from.Row, to.Col-from.Col
	if dr == 0 && dc == 0 {
		return false
	}
	if dr != 0 && dc != 0 && abs(dr) != abs(dc) {
		return false
	}

	// Every square strictly between from and to must be empty
	step := Square{Row: sign(dr), Col: sign(dc)}
	for sq := from.Add(step); sq != to; sq = sq.Add(step) {
		if gs.Board.At(sq) != nil {
			return false
		}
	}

	return true
}

// CanInterrogate reports whether interrogating target from interrogator would
// have any effect: the squares are adjacent, both occupied, and the pieces
// belong to opposing colours. It does not look at whose turn it is.
func CanInterrogate(gs *GameState, interrogator, target Square) bool {
	if !AreAdjacent(interrogator, target) {
		return false
	}
	p, t := gs.Board.At(interrogator), gs.Board.At(target)
	return p != nil && t != nil && p.Color != t.Color
}

// LegalMoves lists every destination the piece on from may legally reach.
func LegalMoves(gs *GameState, from Square) []Square {
	var moves []Square
	for _, to := range AllSquares() {
		if IsLegalMove(gs, from, to) {
			moves = append(moves, to)
		}
	}
	return moves
}

// InterrogationTargets lists the enemy pieces the piece on from could interrogate.
func InterrogationTargets(gs *GameState, from Square) []Square {
	var targets []Square
	for _, d := range []Square{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		if to := from.Add(d); CanInterrogate(gs, from, to) {
			targets = append(targets, to)
		}
	}
	return targets
}
