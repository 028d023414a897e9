package board

import (
	"fmt"
	"strings"
)

// MoveOutcome describes an executed move.
type MoveOutcome struct {
	From  Square
	To    Square
	Piece Piece

	Captured      bool
	CapturedPiece Piece

	Castled    bool
	Promoted   bool
	PromotedTo Kind

	// HasWinner is set when the move captured a king; Winner is the mover.
	HasWinner bool
	Winner    Color

	Title string
	Line  string
}

// ExecuteMove applies src -> dst without checking legality. An unmoved king
// landing on its own unmoved rook swaps places with it. A pawn reaching the far rank becomes the
// mover's default promotion kind. Capturing a king yields a winner.
func (b *Board) ExecuteMove(src, dst Square) MoveOutcome {
	mover, _ := b.At(src.Row, src.Col)
	target, occupied := b.At(dst.Row, dst.Col)
	out := MoveOutcome{From: src, To: dst, Piece: mover}

	switch {
	case occupied && mover.Kind == King && target.Kind == Rook && target.Color == mover.Color &&
		!b.moved(src) && !b.moved(dst):
		b.Place(dst.Row, dst.Col, mover)
		b.Place(src.Row, src.Col, target)
		out.Castled = true
	default:
		if occupied && target.Color != mover.Color {
			out.Captured = true
			out.CapturedPiece = target
			if target.Kind == King {
				out.HasWinner = true
				out.Winner = mover.Color
			}
		}
		landed := mover
		if mover.Kind == Pawn && b.isFarRank(dst.Row, mover.Color) {
			landed.Kind = DefaultPromotion(mover.Color)
			out.Promoted = true
			out.PromotedTo = landed.Kind
		}
		b.Clear(src.Row, src.Col)
		b.Place(dst.Row, dst.Col, landed)
	}

	out.Title, out.Line = b.describe(out)
	return out
}

func (b *Board) moved(s Square) bool {
	m, _ := b.HasMoved(s.Row, s.Col)
	return m
}

func (b *Board) isFarRank(row int, c Color) bool {
	if forward(c) < 0 {
		return row == 0
	}
	return row == b.rows-1
}

func (b *Board) describe(o MoveOutcome) (title, line string) {
	title = o.Piece.String()
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s → %s", o.From.Label(b.rows), o.To.Label(b.rows))
	if o.Castled {
		sb.WriteString(" (castled)")
	}
	if o.Captured {
		fmt.Fprintf(&sb, ", taking %s's %s", o.CapturedPiece.Color, o.CapturedPiece.Kind)
	}
	if o.Promoted {
		fmt.Fprintf(&sb, ", turned into %s", o.PromotedTo)
	}
	return title, sb.String()
}
