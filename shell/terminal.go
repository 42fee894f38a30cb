package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/wricardo/incognito/game/codec"
	"github.com/wricardo/incognito/game/engine"
)

const terminalHelp = `Commands:
  d <from>-><to>   move a piece, e.g. d a3->b4
  i <from>-><to>   interrogate an adjacent enemy, e.g. i d2->d3
  <square>         select a piece, then a destination (two-click input)
  <from> <to>      both clicks at once
  help             show this help
  quit             leave the game
`

// Terminal plays a game on a text console
type Terminal struct {
	eng      *engine.GameEngine
	in       *bufio.Scanner
	out      io.Writer
	savePath string
	selector Selector
}

// NewTerminal creates a terminal shell. When savePath is set the game is
// saved there after every executed action.
func NewTerminal(eng *engine.GameEngine, in io.Reader, out io.Writer, savePath string) *Terminal {
	return &Terminal{
		eng:      eng,
		in:       bufio.NewScanner(in),
		out:      out,
		savePath: savePath,
	}
}

// Run reads commands until the game ends, the input is exhausted, the
// player quits or ctx is cancelled
func (t *Terminal) Run(ctx context.Context) error {
	fmt.Fprintln(t.out, "Welcome to Incognito")
	fmt.Fprintln(t.out, "Squares are named a1 (bottom left, White's castle) to e5 (top right, Black's castle).")
	fmt.Fprint(t.out, "Type help for commands.\n\n")

	for !t.eng.IsFinished() {
		if err := ctx.Err(); err != nil {
			return err
		}

		RenderASCII(t.out, &t.eng.GetState().Board, false)
		t.prompt()

		if !t.in.Scan() {
			if err := t.in.Err(); err != nil {
				return fmt.Errorf("failed to read command: %w", err)
			}
			return nil
		}

		quit, err := t.handle(t.in.Text())
		if err != nil {
			fmt.Fprintf(t.out, "%v\n", err)
		}
		if quit {
			return nil
		}
	}

	RenderASCII(t.out, &t.eng.GetState().Board, true)
	fmt.Fprintln(t.out, finishMessage(t.eng.GetState()))
	return nil
}

func (t *Terminal) prompt() {
	player := t.eng.CurrentPlayer()
	if src, ok := t.selector.Pending(); ok {
		fmt.Fprintf(t.out, "%s [%s]> ", player, src)
		return
	}
	fmt.Fprintf(t.out, "%s> ", player)
}

var errUnknownCommand = errors.New("unknown command, type help")

// handle executes one input line and reports whether the player quit
func (t *Terminal) handle(line string) (bool, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return false, nil
	}

	switch fields[0] {
	case "quit", "q", "exit":
		return true, nil
	case "help", "h", "?":
		fmt.Fprint(t.out, terminalHelp)
		return false, nil
	case "d", "i":
		from, to, err := parseSquares(fields[1:])
		if err != nil {
			return false, err
		}
		kind := engine.ActionMove
		if fields[0] == "i" {
			kind = engine.ActionInterrogate
		}
		t.selector.Clear()
		return false, t.play(engine.Action{Kind: kind, From: from, To: to})
	}

	if len(fields) > 2 {
		return false, errUnknownCommand
	}
	for _, f := range fields {
		sq, err := engine.ParseSquare(f)
		if err != nil {
			return false, errUnknownCommand
		}
		t.click(sq)
	}
	return false, nil
}

// parseSquares accepts "a3->b4", "a3 b4" and "a3 -> b4"
func parseSquares(args []string) (engine.Square, engine.Square, error) {
	joined := strings.Join(args, " ")
	joined = strings.ReplaceAll(joined, "->", " ")
	parts := strings.Fields(joined)
	if len(parts) != 2 {
		return engine.Square{}, engine.Square{}, errors.New("expected two squares, e.g. a3->b4")
	}

	from, err := engine.ParseSquare(parts[0])
	if err != nil {
		return engine.Square{}, engine.Square{}, err
	}
	to, err := engine.ParseSquare(parts[1])
	if err != nil {
		return engine.Square{}, engine.Square{}, err
	}
	return from, to, nil
}

func (t *Terminal) play(action engine.Action) error {
	player := t.eng.CurrentPlayer()
	found, err := t.eng.Apply(action)
	if err != nil {
		return fmt.Errorf("%s is not allowed", action)
	}
	t.executed(player, action, found)
	return nil
}

func (t *Terminal) click(sq engine.Square) {
	player := t.eng.CurrentPlayer()
	res := t.selector.Click(t.eng, sq)
	switch {
	case res.Action != nil:
		t.executed(player, *res.Action, res.Found)
	case res.Selected:
		fmt.Fprintf(t.out, "Selected %s\n", sq)
	case t.selector.State() == AwaitingSource:
		fmt.Fprintf(t.out, "Nothing to do on %s\n", sq)
	}
}

// executed reports an action and autosaves
func (t *Terminal) executed(player engine.Color, action engine.Action, found bool) {
	switch {
	case action.Kind == engine.ActionMove:
		fmt.Fprintf(t.out, "%s moved %s to %s\n", player, action.From, action.To)
	case found:
		fmt.Fprintf(t.out, "%s found the spy on %s!\n", player, action.To)
	case t.eng.IsFinished():
		fmt.Fprintf(t.out, "%s questioned a knight with its spy and was exposed.\n", player)
	default:
		fmt.Fprintf(t.out, "%s is a knight. The interrogating piece on %s is poisoned.\n", action.To, action.From)
	}

	if t.savePath == "" {
		return
	}
	if err := codec.SaveGame(t.eng, t.savePath); err != nil {
		log.Printf("Warning: failed to save game to %s: %v", t.savePath, err)
	}
}

func finishMessage(state *engine.GameState) string {
	switch state.Outcome {
	case engine.OutcomeSpyFound:
		return fmt.Sprintf("Game over: the %s spy was found. %s wins.", state.Current.Opponent(), state.Current)
	case engine.OutcomeSpyExposed:
		return fmt.Sprintf("Game over: the %s spy was exposed.", state.Current)
	}
	return "Game over."
}
