// Package engine provides the rules of Incognito.
//
// The engine package implements:
//   - Board representation: a 5x5 grid of optional pieces
//   - Move legality: straight or diagonal lines, no jumping, no own castle
//   - Interrogation resolution and the end of the game
//   - Turn alternation and the append-only move log
//   - Variant layouts (GameConfig) and their validation
//
// Core Types:
//
// GameState holds the board, the colour to move, the move log and the
// finished flag. IsLegalMove and AreAdjacent are pure predicates over it;
// GameState.ApplyMove and GameState.Interrogate are the raw executors.
// GameEngine wraps a state and applies the turn rule consistently: every
// executed action passes the turn unless it ends the game.
//
// Usage:
//
//	eng := engine.NewGame()
//	from, to := engine.MustParseSquare("a3"), engine.MustParseSquare("b4")
//	if eng.Move(from, to) {
//		fmt.Println("now playing:", eng.CurrentPlayer())
//	}
//
//	found := eng.Interrogate(engine.MustParseSquare("b2"), engine.MustParseSquare("b3"))
//
// Game Rules:
//
// Each side has four knights and one spy; the spy looks like a knight to the
// opponent. A piece moves any distance along a row, column or diagonal
// through empty squares, never onto its own castle. A piece may instead
// interrogate an orthogonally adjacent enemy: finding the spy ends the game,
// questioning a knight costs the interrogator its piece, and a spy that
// questions a knight is exposed, which also ends the game.
package engine
