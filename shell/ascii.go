package shell

import (
	"fmt"
	"io"
	"strings"

	"github.com/wricardo/incognito/game/engine"
)

const separator = "  -----------\n"

// asciiChar draws white pieces as b (blanc) and black pieces as n (noir).
// Revealed spies are drawn in upper case.
func asciiChar(p *engine.Piece, reveal bool) byte {
	switch {
	case p == nil:
		return ' '
	case p.Color == engine.White && p.Role == engine.Spy && reveal:
		return 'B'
	case p.Color == engine.White:
		return 'b'
	case p.Role == engine.Spy && reveal:
		return 'N'
	}
	return 'n'
}

// RenderASCII draws the board with rank and file labels. Spies are only told
// apart from knights when reveal is set.
func RenderASCII(w io.Writer, board *engine.Board, reveal bool) error {
	var b strings.Builder
	b.WriteString("   a b c d e\n")
	b.WriteString(separator)
	for r := 0; r < engine.BoardSize; r++ {
		fmt.Fprintf(&b, "%d |", engine.BoardSize-r)
		for c := 0; c < engine.BoardSize; c++ {
			b.WriteByte(asciiChar(board[r][c], reveal))
			b.WriteByte('|')
		}
		b.WriteString("\n")
		b.WriteString(separator)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
