package codec

import (
	"fmt"

	"github.com/park285/Cheese-SwapChess/internal/board"
)

const (
	// EmptyGlyph marks an unoccupied cell in the data field.
	EmptyGlyph = ' '
	// NoWinner is the winner character while the game is undecided.
	NoWinner = ' '
	// Delimiter separates the cell data from the captured list.
	Delimiter = '|'

	MovedFlag   = '1'
	UnmovedFlag = '0'
)

var glyphs = map[board.Piece]rune{
	{Color: board.White, Kind: board.King}:   '♔',
	{Color: board.White, Kind: board.Queen}:  '♕',
	{Color: board.White, Kind: board.Rook}:   '♖',
	{Color: board.White, Kind: board.Bishop}: '♗',
	{Color: board.White, Kind: board.Knight}: '♘',
	{Color: board.White, Kind: board.Pawn}:   '♙',
	{Color: board.Black, Kind: board.King}:   '♚',
	{Color: board.Black, Kind: board.Queen}:  '♛',
	{Color: board.Black, Kind: board.Rook}:   '♜',
	{Color: board.Black, Kind: board.Bishop}: '♝',
	{Color: board.Black, Kind: board.Knight}: '♞',
	{Color: board.Black, Kind: board.Pawn}:   '♟',
}

var pieces = func() map[rune]board.Piece {
	m := make(map[rune]board.Piece, len(glyphs))
	for p, g := range glyphs {
		m[g] = p
	}
	return m
}()

// Glyph returns the chess symbol for p.
func Glyph(p board.Piece) rune { return glyphs[p] }

// ParseGlyph maps a chess symbol back to its piece.
func ParseGlyph(r rune) (board.Piece, bool) {
	p, ok := pieces[r]
	return p, ok
}

// ColorCode is the single-letter form used for turns and winners.
func ColorCode(c board.Color) string {
	if c == board.Black {
		return "b"
	}
	return "w"
}

func ParseColor(s string) (board.Color, error) {
	switch s {
	case "w":
		return board.White, nil
	case "b":
		return board.Black, nil
	default:
		return 0, fmt.Errorf("%w: color %q", ErrMalformed, s)
	}
}
