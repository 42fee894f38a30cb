package engine

// ApplyMove moves the piece on from to to, hands the turn to the other player
// and appends the move to the log. The caller must have checked IsLegalMove;
// nothing is re-validated here.
func (gs *GameState) ApplyMove(from, to Square) {
	gs.Board.Set(to, gs.Board.At(from))
	gs.Board.Set(from, nil)
	gs.Current = gs.Current.Opponent()
	gs.AddToLog(Action{Kind: ActionMove, From: from, To: to})
}

// Interrogate resolves an interrogation of target by interrogator and reports
// whether the enemy spy was found.
//
// Without adjacent, occupied, opposing pieces it does nothing. A spy target
// ends the game. A knight target costs the interrogator its piece, and a spy
// caught interrogating a knight also ends the game. The turn is left alone and
// nothing is logged; GameEngine.Interrogate takes care of both.
func (gs *GameState) Interrogate(interrogator, target Square) bool {
	if !CanInterrogate(gs, interrogator, target) {
		return false
	}

	if gs.Board.At(target).Role == Spy {
		gs.Finished = true
		gs.Outcome = OutcomeSpyFound
		return true
	}

	if gs.Board.At(interrogator).Role == Spy {
		gs.Finished = true
		gs.Outcome = OutcomeSpyExposed
	}
	gs.Board.Set(interrogator, nil)
	return false
}

// AddToLog appends an executed action to the move log
func (gs *GameState) AddToLog(a Action) {
	gs.Log = append(gs.Log, a)
}

// PlaceSpy makes the piece on sq the spy of its colour, demoting every other
// piece of that colour to knight first. It reports false when sq is empty.
func (gs *GameState) PlaceSpy(sq Square) bool {
	target := gs.Board.At(sq)
	if target == nil {
		return false
	}

	for _, s := range AllSquares() {
		if p := gs.Board.At(s); p != nil && p.Color == target.Color && p.Role == Spy {
			gs.Board.Set(s, &Piece{Color: p.Color, Role: Knight})
		}
	}
	gs.Board.Set(sq, &Piece{Color: target.Color, Role: Spy})
	return true
}

// Clone returns a deep copy of the state
func (gs *GameState) Clone() *GameState {
	c := &GameState{
		Current:  gs.Current,
		Finished: gs.Finished,
		Outcome:  gs.Outcome,
		Log:      append([]Action(nil), gs.Log...),
	}
	for _, sq := range AllSquares() {
		if p := gs.Board.At(sq); p != nil {
			cp := *p
			c.Board.Set(sq, &cp)
		}
	}
	return c
}
