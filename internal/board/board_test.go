package board

import (
	"sort"
	"testing"
)

func sorted(in []Square) []Square {
	out := append([]Square(nil), in...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row { return out[i].Row < out[j].Row }
		return out[i].Col < out[j].Col
	})
	return out
}

func sameSquares(t *testing.T, got, want []Square) {
	t.Helper()
	g, w := sorted(got), sorted(want)
	if len(g) != len(w) { t.Fatalf("destinations: got %v want %v", g, w) }
	for i := range g {
		if g[i] != w[i] { t.Fatalf("destinations: got %v want %v", g, w) }
	}
}

func TestStandardLayout(t *testing.T) {
	b := NewStandard()
	if p, ok := b.At(0, 4); !ok || p != (Piece{Black, King}) { t.Fatalf("black king at E8: %v %v", p, ok) }
	if p, ok := b.At(7, 3); !ok || p != (Piece{White, Queen}) { t.Fatalf("white queen at D1: %v %v", p, ok) }
	if p, ok := b.At(6, 0); !ok || p != (Piece{White, Pawn}) { t.Fatalf("white pawn at A2: %v %v", p, ok) }
	for row := 2; row < 6; row++ {
		for col := 0; col < 8; col++ {
			if _, ok := b.At(row, col); ok { t.Fatalf("expected empty at %d,%d", row, col) }
		}
	}
	for _, c := range b.Cells() {
		if c.Moved { t.Fatalf("fresh board has moved flag set") }
	}
}

func TestAtOutOfRange(t *testing.T) {
	b := NewStandard()
	if _, ok := b.At(-1, 0); ok { t.Fatalf("row -1 should be absent") }
	if _, ok := b.At(0, 8); ok { t.Fatalf("col 8 should be absent") }
	if _, ok := b.HasMoved(8, 0); ok { t.Fatalf("HasMoved out of range should report !ok") }
	if b.Place(9, 9, Piece{White, Pawn}) { t.Fatalf("Place out of range should fail") }
}

func TestPlaceMarksMoved(t *testing.T) {
	b := NewStandard()
	b.Place(4, 4, Piece{White, Knight})
	if moved, _ := b.HasMoved(4, 4); !moved { t.Fatalf("Place must set moved flag") }
	b.Place(4, 4, Piece{Black, Knight})
	if moved, _ := b.HasMoved(4, 4); !moved { t.Fatalf("moved flag is sticky") }
}

func TestClearMarksMoved(t *testing.T) {
	b := NewStandard()
	b.Clear(6, 0)
	c, _ := b.Cell(6, 0)
	if c.Occupied || !c.Moved { t.Fatalf("cleared cell = %+v", c) }
	if _, ok := b.HasMoved(6, 0); ok { t.Fatalf("HasMoved on empty square should report !ok") }
}

func TestNoSameColorDestinations(t *testing.T) {
	b := NewStandard()
	b.ExecuteMove(Sq(6, 4), Sq(4, 4))
	b.ExecuteMove(Sq(1, 3), Sq(3, 3))
	for _, c := range []Color{White, Black} {
		for _, src := range b.Pieces(c) {
			moves, _ := b.Destinations(src)
			for _, d := range moves {
				if p, ok := b.At(d.Row, d.Col); ok && p.Color == c { t.Fatalf("%v at %v may land on own %v at %v", c, src, p, d) }
			}
		}
	}
}

func TestPawnOpeningMoves(t *testing.T) {
	b := NewStandard()
	moves, ok := b.Destinations(Sq(6, 4))
	if !ok { t.Fatalf("expected pawn on E2") }
	sameSquares(t, moves, []Square{{5, 4}, {4, 4}})

	moves, _ = b.Destinations(Sq(1, 3))
	sameSquares(t, moves, []Square{{2, 3}, {3, 3}})
}

func TestPawnDoubleStepOnlyWhenUnmoved(t *testing.T) {
	b := New(8, 8)
	b.Place(5, 4, Piece{White, Pawn})
	moves, _ := b.Destinations(Sq(5, 4))
	sameSquares(t, moves, []Square{{4, 4}})
}

func TestPawnBlockedAndCaptures(t *testing.T) {
	b := NewStandard()
	b.Place(5, 4, Piece{Black, Knight})
	b.Place(5, 3, Piece{Black, Pawn})
	b.Place(5, 5, Piece{White, Bishop})
	moves, _ := b.Destinations(Sq(6, 4))
	sameSquares(t, moves, []Square{{5, 3}})
}

func TestKnightFromStart(t *testing.T) {
	b := NewStandard()
	moves, _ := b.Destinations(Sq(7, 1))
	sameSquares(t, moves, []Square{{5, 0}, {5, 2}})
}

func TestRookRayStopsAtFirstPiece(t *testing.T) {
	b := New(8, 8)
	b.Place(4, 4, Piece{White, Rook})
	b.Place(4, 6, Piece{Black, Pawn})
	b.Place(2, 4, Piece{White, Pawn})
	moves, _ := b.Destinations(Sq(4, 4))
	sameSquares(t, moves, []Square{
		{3, 4},
		{5, 4}, {6, 4}, {7, 4},
		{4, 0}, {4, 1}, {4, 2}, {4, 3},
		{4, 5}, {4, 6},
	})
}

func TestKingStepsOrthogonallyOnly(t *testing.T) {
	b := New(8, 8)
	b.Place(4, 4, Piece{White, King})
	moves, _ := b.Destinations(Sq(4, 4))
	sameSquares(t, moves, []Square{{3, 4}, {5, 4}, {4, 3}, {4, 5}})
}

func TestCastlingNearestCorner(t *testing.T) {
	b := NewStandard()
	b.Clear(7, 5)
	b.Clear(7, 6)
	if !b.IsLegalMove(Sq(7, 4), Sq(7, 7)) { t.Fatalf("king should castle with the H1 rook") }

	// Clear marks cells moved; rebuild with untouched flags between king and rook.
	cells := NewStandard().Cells()
	cells[7*8+5] = Cell{}
	cells[7*8+6] = Cell{}
	cells[7*8+1] = Cell{}
	cells[7*8+2] = Cell{}
	cells[7*8+3] = Cell{}
	fresh, err := FromCells(8, 8, cells)
	if err != nil { t.Fatalf("FromCells: %v", err) }
	if fresh.IsLegalMove(Sq(7, 4), Sq(7, 0)) { t.Fatalf("far corner must not be offered") }
	if !fresh.IsLegalMove(Sq(7, 4), Sq(7, 7)) { t.Fatalf("near corner should be offered") }
}

func TestCastlingRequiresUnmovedPieces(t *testing.T) {
	cells := NewStandard().Cells()
	cells[7*8+5] = Cell{}
	cells[7*8+6] = Cell{}
	cells[7*8+7] = Cell{Piece: Piece{White, Rook}, Occupied: true, Moved: true}
	b, _ := FromCells(8, 8, cells)
	if b.IsLegalMove(Sq(7, 4), Sq(7, 7)) { t.Fatalf("moved rook cannot castle") }
}

func TestCastleSwapsKingAndRook(t *testing.T) {
	cells := NewStandard().Cells()
	cells[7*8+5] = Cell{}
	cells[7*8+6] = Cell{}
	b, _ := FromCells(8, 8, cells)
	out := b.ExecuteMove(Sq(7, 4), Sq(7, 7))
	if !out.Castled { t.Fatalf("expected castled outcome") }
	if p, _ := b.At(7, 7); p.Kind != King { t.Fatalf("king should land on H1, got %v", p) }
	if p, _ := b.At(7, 4); p.Kind != Rook { t.Fatalf("rook should land on E1, got %v", p) }
	if m, _ := b.HasMoved(7, 4); !m { t.Fatalf("E1 should be flagged moved") }
	if m, _ := b.HasMoved(7, 7); !m { t.Fatalf("H1 should be flagged moved") }
	if out.Line != "E1 → H1 (castled)" { t.Fatalf("line = %q", out.Line) }
}

func TestExecuteCaptureAndPromotion(t *testing.T) {
	b := New(8, 8)
	b.Place(1, 4, Piece{White, Pawn})
	b.Place(0, 5, Piece{Black, Rook})
	out := b.ExecuteMove(Sq(1, 4), Sq(0, 5))
	if !out.Captured || out.CapturedPiece != (Piece{Black, Rook}) { t.Fatalf("capture not reported: %+v", out) }
	if !out.Promoted || out.PromotedTo != Queen { t.Fatalf("promotion not reported: %+v", out) }
	if p, _ := b.At(0, 5); p != (Piece{White, Queen}) { t.Fatalf("expected white queen on F8, got %v", p) }
	if _, ok := b.At(1, 4); ok { t.Fatalf("source should be empty") }
	if out.Title != "White Pawn" { t.Fatalf("title = %q", out.Title) }
	if out.Line != "E7 → F8, taking Black's Rook, turned into Queen" { t.Fatalf("line = %q", out.Line) }
}

func TestKingCaptureDeclaresWinner(t *testing.T) {
	b := New(8, 8)
	b.Place(3, 3, Piece{Black, Rook})
	b.Place(6, 3, Piece{White, King})
	out := b.ExecuteMove(Sq(3, 3), Sq(6, 3))
	if !out.HasWinner || out.Winner != Black { t.Fatalf("expected black winner: %+v", out) }
}

func TestSquareLabel(t *testing.T) {
	if got := Sq(7, 0).Label(8); got != "A1" { t.Fatalf("A1 label = %q", got) }
	if got := Sq(0, 7).Label(8); got != "H8" { t.Fatalf("H8 label = %q", got) }
}

func TestStandardLayoutPieceCounts(t *testing.T) {
	b := NewStandard()
	want := map[Kind]int{Pawn: 8, Rook: 2, Knight: 2, Bishop: 2, Queen: 1, King: 1}
	for _, tc := range []struct {
		color         Color
		backRow, pawn int
	}{
		{Black, 0, 1},
		{White, 7, 6},
	} {
		counts := make(map[Kind]int)
		for _, sq := range b.Pieces(tc.color) {
			p, _ := b.At(sq.Row, sq.Col)
			counts[p.Kind]++
		}
		for k, n := range want {
			if counts[k] != n { t.Fatalf("%v %v count = %d, want %d", tc.color, k, counts[k], n) }
		}
		for col, k := range []Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook} {
			if p, ok := b.At(tc.backRow, col); !ok || p != (Piece{tc.color, k}) { t.Fatalf("%v back rank col %d = %v %v, want %v", tc.color, col, p, ok, k) }
			if p, ok := b.At(tc.pawn, col); !ok || p != (Piece{tc.color, Pawn}) { t.Fatalf("%v pawn rank col %d = %v %v", tc.color, col, p, ok) }
			if moved, ok := b.HasMoved(tc.backRow, col); !ok || moved { t.Fatalf("%v back rank col %d moved=%v ok=%v", tc.color, col, moved, ok) }
		}
	}
}

func TestSliderRaysStopAtFirstPiece(t *testing.T) {
	diagonals := []Square{
		{3, 3},
		{3, 5}, {2, 6}, {1, 7},
		{5, 3}, {6, 2}, {7, 1},
		{5, 5}, {6, 6},
	}
	for _, tc := range []struct {
		name string
		kind Kind
		want []Square
	}{
		{"bishop", Bishop, diagonals},
		{"queen", Queen, append([]Square{
			{3, 4}, {2, 4}, {1, 4},
			{5, 4}, {6, 4}, {7, 4},
			{4, 3}, {4, 2}, {4, 1}, {4, 0},
			{4, 5},
		}, diagonals...)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			b := New(8, 8)
			b.Place(4, 4, Piece{White, tc.kind})
			b.Place(2, 2, Piece{White, Pawn})
			b.Place(6, 6, Piece{Black, Pawn})
			b.Place(4, 6, Piece{White, Pawn})
			b.Place(1, 4, Piece{Black, Rook})
			got, ok := b.Destinations(Sq(4, 4))
			if !ok { t.Fatalf("no piece on source") }
			sameSquares(t, got, tc.want)
		})
	}
}

func TestPromotionOnFarRank(t *testing.T) {
	for _, tc := range []struct {
		color    Color
		src, dst Square
	}{
		{White, Sq(1, 3), Sq(0, 3)},
		{Black, Sq(6, 3), Sq(7, 3)},
	} {
		b := New(8, 8)
		b.Place(tc.src.Row, tc.src.Col, Piece{tc.color, Pawn})
		if !b.IsLegalMove(tc.src, tc.dst) { t.Fatalf("%v pawn push to far rank should be legal", tc.color) }
		out := b.ExecuteMove(tc.src, tc.dst)
		if !out.Promoted || out.PromotedTo != DefaultPromotion(tc.color) { t.Fatalf("%v outcome = %+v", tc.color, out) }
		if p, ok := b.At(tc.dst.Row, tc.dst.Col); !ok || p != (Piece{tc.color, Queen}) { t.Fatalf("%v far rank holds %v %v", tc.color, p, ok) }
		if _, ok := b.At(tc.src.Row, tc.src.Col); ok { t.Fatalf("%v source not cleared", tc.color) }
	}
}
