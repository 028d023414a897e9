package codec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/park285/Cheese-SwapChess/internal/board"
)

var ErrMalformed = errors.New("codec: malformed game string")

// Fields are the four parallel parts of a serialized game. Winner is "" while
// undecided, otherwise "w" or "b".
type Fields struct {
	Moved  string
	Data   string
	Taken  string
	Winner string
}

// Assemble interleaves moved flags with cell glyphs, then appends the
// delimiter, the captured glyphs and one winner character.
func Assemble(f Fields) string {
	moved, data := []rune(f.Moved), []rune(f.Data)
	var sb strings.Builder
	sb.Grow(len(f.Moved) + len(f.Data) + len(f.Taken) + 2)
	for i := range data {
		flag := rune(UnmovedFlag)
		if i < len(moved) {
			flag = moved[i]
		}
		sb.WriteRune(flag)
		sb.WriteRune(data[i])
	}
	sb.WriteRune(Delimiter)
	sb.WriteString(f.Taken)
	if f.Winner == "" {
		sb.WriteRune(NoWinner)
	} else {
		sb.WriteString(f.Winner)
	}
	return sb.String()
}

// Disassemble splits a string produced by Assemble for a board of cells cells.
func Disassemble(s string, cells int) (Fields, error) {
	runes := []rune(s)
	if cells <= 0 || len(runes) < cells*2+2 {
		return Fields{}, fmt.Errorf("%w: need at least %d symbols, got %d", ErrMalformed, cells*2+2, len(runes))
	}
	if runes[cells*2] != Delimiter {
		return Fields{}, fmt.Errorf("%w: missing delimiter at %d", ErrMalformed, cells*2)
	}
	moved := make([]rune, cells)
	data := make([]rune, cells)
	for i := 0; i < cells; i++ {
		moved[i] = runes[2*i]
		data[i] = runes[2*i+1]
	}
	f := Fields{
		Moved: string(moved),
		Data:  string(data),
		Taken: string(runes[cells*2+1 : len(runes)-1]),
	}
	if w := runes[len(runes)-1]; w != NoWinner {
		f.Winner = string(w)
	}
	return f, nil
}

// EncodeBoard renders the moved and data fields of b in row-major order.
func EncodeBoard(b *board.Board) (moved, data string) {
	var m, d strings.Builder
	for _, c := range b.Cells() {
		if c.Moved {
			m.WriteRune(MovedFlag)
		} else {
			m.WriteRune(UnmovedFlag)
		}
		if c.Occupied {
			d.WriteRune(Glyph(c.Piece))
		} else {
			d.WriteRune(EmptyGlyph)
		}
	}
	return m.String(), d.String()
}

// DecodeBoard rebuilds a board from its moved and data fields.
func DecodeBoard(rows, cols int, moved, data string) (*board.Board, error) {
	m, d := []rune(moved), []rune(data)
	if len(m) != rows*cols || len(d) != rows*cols {
		return nil, fmt.Errorf("%w: board fields do not cover %dx%d", ErrMalformed, rows, cols)
	}
	cells := make([]board.Cell, rows*cols)
	for i := range cells {
		switch m[i] {
		case MovedFlag:
			cells[i].Moved = true
		case UnmovedFlag:
		default:
			return nil, fmt.Errorf("%w: moved flag %q", ErrMalformed, m[i])
		}
		if d[i] == EmptyGlyph {
			continue
		}
		p, ok := ParseGlyph(d[i])
		if !ok {
			return nil, fmt.Errorf("%w: glyph %q", ErrMalformed, d[i])
		}
		cells[i].Piece, cells[i].Occupied = p, true
	}
	return board.FromCells(rows, cols, cells)
}

func EncodeTaken(list []board.Piece) string {
	var sb strings.Builder
	for _, p := range list {
		sb.WriteRune(Glyph(p))
	}
	return sb.String()
}

func DecodeTaken(s string) ([]board.Piece, error) {
	var out []board.Piece
	for _, r := range s {
		p, ok := ParseGlyph(r)
		if !ok {
			return nil, fmt.Errorf("%w: captured glyph %q", ErrMalformed, r)
		}
		out = append(out, p)
	}
	return out, nil
}

// EncodeWinner returns the winner field for an optional color.
func EncodeWinner(c board.Color, ok bool) string {
	if !ok {
		return ""
	}
	return ColorCode(c)
}

func DecodeWinner(s string) (board.Color, bool, error) {
	if s == "" {
		return 0, false, nil
	}
	c, err := ParseColor(s)
	if err != nil {
		return 0, false, err
	}
	return c, true, nil
}
