package render

import (
	"fmt"

	nchess "github.com/corentings/chess/v2"

	"github.com/park285/Cheese-SwapChess/internal/board"
)

var kindToNChess = map[board.Kind]nchess.PieceType{
	board.King:   nchess.King,
	board.Queen:  nchess.Queen,
	board.Rook:   nchess.Rook,
	board.Bishop: nchess.Bishop,
	board.Knight: nchess.Knight,
	board.Pawn:   nchess.Pawn,
}

// ToNChess converts an 8x8 board. Row 0 maps to rank 8 and column 0 to file A.
func ToNChess(b *board.Board) (*nchess.Board, error) {
	if b.Rows() != 8 || b.Cols() != 8 {
		return nil, fmt.Errorf("board %dx%d has no standard square mapping", b.Rows(), b.Cols())
	}
	m := make(map[nchess.Square]nchess.Piece)
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			p, ok := b.At(row, col)
			if !ok {
				continue
			}
			c := nchess.White
			if p.Color == board.Black {
				c = nchess.Black
			}
			sq := nchess.NewSquare(nchess.File(col), nchess.Rank(7-row))
			m[sq] = nchess.NewPiece(kindToNChess[p.Kind], c)
		}
	}
	return nchess.NewBoard(m), nil
}

// FEN returns the piece-placement field of the board.
func FEN(b *board.Board) (string, error) {
	nb, err := ToNChess(b)
	if err != nil {
		return "", err
	}
	return nb.String(), nil
}
