// Package codec reads and writes the Incognito save format.
//
// A save is plain text with one record per line:
//
//	B b2        spy record: colour letter (B white, N black) and square
//	N e3
//	B           turn record: the colour to move
//	D a3->b4    action records in log order: D move, I interrogation
//	I c3->c4
//
// Loading never trusts the board in the file. It builds a fresh starting
// position, places the spies, and replays every action through the engine,
// so a loaded game is always one that legal play could reach.
package codec

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/wricardo/incognito/game/engine"
)

// ErrCorruptSave reports a save file that does not follow the format.
var ErrCorruptSave = errors.New("corrupt save")

const (
	spyRecordLen    = len("B a1")
	turnRecordLen   = len("B")
	actionRecordLen = len("D a1->a2")
)

// Encode writes the state in save format
func Encode(w io.Writer, state *engine.GameState) error {
	bw := bufio.NewWriter(w)

	for _, sq := range engine.AllSquares() {
		if p := state.Board.At(sq); p != nil && p.Role == engine.Spy {
			fmt.Fprintf(bw, "%c %s\n", p.Color.Letter(), sq)
		}
	}

	fmt.Fprintf(bw, "%c\n", state.Current.Letter())

	for _, a := range state.Log {
		fmt.Fprintf(bw, "%s\n", a)
	}

	return bw.Flush()
}

// Marshal returns the save text for a state
func Marshal(state *engine.GameState) []byte {
	var buf bytes.Buffer
	// writes to a bytes.Buffer cannot fail
	_ = Encode(&buf, state)
	return buf.Bytes()
}

type spyRecord struct {
	color  engine.Color
	square engine.Square
	line   int
}

// saveFile is the parsed, validated content of a save
type saveFile struct {
	spies   []spyRecord
	turn    engine.Color
	actions []engine.Action
}

func corrupt(line int, format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrCorruptSave, line, fmt.Sprintf(format, args...))
}

// parse validates every line before anything is replayed
func parse(r io.Reader) (*saveFile, error) {
	var (
		sf       saveFile
		seenTurn bool
		lineNo   int
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimRight(scanner.Bytes(), "\r")
		if len(line) == 0 {
			continue
		}

		switch {
		case len(line) == turnRecordLen:
			color, ok := engine.ColorFromLetter(line[0])
			if !ok {
				return nil, corrupt(lineNo, "unknown turn record %q", line)
			}
			if seenTurn {
				return nil, corrupt(lineNo, "duplicate turn record")
			}
			sf.turn = color
			seenTurn = true

		case len(line) == spyRecordLen && line[1] == ' ':
			color, ok := engine.ColorFromLetter(line[0])
			if !ok {
				return nil, corrupt(lineNo, "unknown spy record %q", line)
			}
			if seenTurn {
				return nil, corrupt(lineNo, "spy record after turn record")
			}
			sq, err := engine.ParseSquare(string(line[2:4]))
			if err != nil {
				return nil, corrupt(lineNo, "%v", err)
			}
			sf.spies = append(sf.spies, spyRecord{color: color, square: sq, line: lineNo})

		case len(line) == actionRecordLen && line[1] == ' ' && string(line[4:6]) == "->":
			var kind engine.ActionKind
			switch line[0] {
			case 'D':
				kind = engine.ActionMove
			case 'I':
				kind = engine.ActionInterrogate
			default:
				return nil, corrupt(lineNo, "unknown action %q", line)
			}
			if !seenTurn {
				return nil, corrupt(lineNo, "action before turn record")
			}
			from, err := engine.ParseSquare(string(line[2:4]))
			if err != nil {
				return nil, corrupt(lineNo, "%v", err)
			}
			to, err := engine.ParseSquare(string(line[6:8]))
			if err != nil {
				return nil, corrupt(lineNo, "%v", err)
			}
			sf.actions = append(sf.actions, engine.Action{Kind: kind, From: from, To: to})

		default:
			return nil, corrupt(lineNo, "unrecognised record %q", line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSave, err)
	}
	if !seenTurn {
		return nil, fmt.Errorf("%w: missing turn record", ErrCorruptSave)
	}

	return &sf, nil
}

// originOf follows the moves in the log backwards to find where the piece
// standing on sq at the end of the log started.
func originOf(sq engine.Square, actions []engine.Action) engine.Square {
	for i := len(actions) - 1; i >= 0; i-- {
		if a := actions[i]; a.Kind == engine.ActionMove && a.To == sq {
			sq = a.From
		}
	}
	return sq
}

// Decode reads a save and rebuilds the game on the given variant (nil means
// the classic layout). Illegal moves and interrogations without effect are
// skipped during replay and do not reach the log.
func Decode(r io.Reader, config *engine.GameConfig) (*engine.GameEngine, error) {
	sf, err := parse(r)
	if err != nil {
		return nil, err
	}

	if config == nil {
		config = engine.DefaultConfig()
	}
	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create game engine: %w", err)
	}

	state := eng.GetState()
	for _, spy := range sf.spies {
		origin := originOf(spy.square, sf.actions)
		p := state.Board.At(origin)
		if p == nil || p.Color != spy.color {
			return nil, corrupt(spy.line, "no %s piece starts on %s", spy.color, origin)
		}
		state.PlaceSpy(origin)
	}

	for _, action := range sf.actions {
		if _, err := eng.Apply(action); errors.Is(err, engine.ErrGameFinished) {
			break
		}
	}

	state.Current = sf.turn
	return eng, nil
}

// Unmarshal is Decode over a byte slice
func Unmarshal(data []byte, config *engine.GameConfig) (*engine.GameEngine, error) {
	return Decode(bytes.NewReader(data), config)
}

// SaveGame writes the game to path. The file is replaced in one step, so a
// failed save leaves any previous file intact.
func SaveGame(eng *engine.GameEngine, path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".incognito-*")
	if err != nil {
		return fmt.Errorf("failed to create save file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to create save file: %w", err)
	}
	if err := Encode(tmp, eng.GetState()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write save file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write save file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace save file: %w", err)
	}

	return nil
}

// LoadGame restores a classic game from path
func LoadGame(path string) (*engine.GameEngine, error) {
	return LoadGameWithConfig(path, nil)
}

// LoadGameWithConfig restores a game of the given variant from path
func LoadGameWithConfig(path string, config *engine.GameConfig) (*engine.GameEngine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open save file: %w", err)
	}
	defer f.Close()

	eng, err := Decode(f, config)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return eng, nil
}
