package ai

import (
	"testing"

	"github.com/park285/Cheese-SwapChess/internal/board"
)

func TestBestMovePrefersKing(t *testing.T) {
	b := board.New(8, 8)
	b.Place(4, 4, board.Piece{Color: board.White, Kind: board.Rook})
	b.Place(4, 0, board.Piece{Color: board.Black, Kind: board.Queen})
	b.Place(0, 4, board.Piece{Color: board.Black, Kind: board.King})
	m, ok := NewGreedy(1).BestMove(b, board.White)
	if !ok { t.Fatalf("expected a move") }
	if m.To != board.Sq(0, 4) || m.Value != 1000 { t.Fatalf("move = %+v", m) }
}

func TestBestMoveQuietPositionIsLegal(t *testing.T) {
	b := board.NewStandard()
	g := NewGreedy(42)
	for i := 0; i < 20; i++ {
		m, ok := g.BestMove(b, board.Black)
		if !ok { t.Fatalf("expected a move") }
		if !b.IsLegalMove(m.From, m.To) { t.Fatalf("illegal move %+v", m) }
		if m.Value != 0 { t.Fatalf("no captures are possible from the start: %+v", m) }
	}
	if n := len(Candidates(b, board.White)); n != 20 { t.Fatalf("white has %d opening moves, want 20", n) }
}

func TestBestMoveNoPieces(t *testing.T) {
	if _, ok := NewGreedy(1).BestMove(board.New(8, 8), board.White); ok { t.Fatalf("empty board has no move") }
}
