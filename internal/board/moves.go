package board

var (
	orthogonal  = [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	diagonal    = [][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	knightSteps = [][2]int{{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2}, {1, -2}, {1, 2}, {2, -1}, {2, 1}}
)

// forward is the pawn row direction: White starts on the high rows and moves up.
func forward(c Color) int {
	if c == White {
		return -1
	}
	return 1
}

// Destinations lists the legal destinations for the piece on src. ok is false
// when src is out of range or empty.
func (b *Board) Destinations(src Square) (dst []Square, ok bool) {
	p, ok := b.At(src.Row, src.Col)
	if !ok {
		return nil, false
	}
	switch p.Kind {
	case Pawn:
		dst = b.pawnMoves(src, p.Color)
	case Rook:
		dst = b.rays(src, p.Color, orthogonal)
	case Bishop:
		dst = b.rays(src, p.Color, diagonal)
	case Queen:
		dst = append(b.rays(src, p.Color, orthogonal), b.rays(src, p.Color, diagonal)...)
	case Knight:
		dst = b.steps(src, p.Color, knightSteps)
	case King:
		dst = append(b.steps(src, p.Color, orthogonal), b.castles(src, p.Color)...)
	}
	return dst, true
}

// IsLegalMove reports whether dst is among src's destinations.
func (b *Board) IsLegalMove(src, dst Square) bool {
	moves, ok := b.Destinations(src)
	if !ok {
		return false
	}
	for _, m := range moves {
		if m == dst {
			return true
		}
	}
	return false
}

func (b *Board) enemyOrEmpty(row, col int, c Color) bool {
	p, occupied := b.At(row, col)
	return !occupied || p.Color != c
}

// rays walks each direction until the board edge or the first occupied square,
// which is included only when it holds an enemy.
func (b *Board) rays(src Square, c Color, dirs [][2]int) []Square {
	var out []Square
	for _, d := range dirs {
		for r, col := src.Row+d[0], src.Col+d[1]; b.InBounds(r, col); r, col = r+d[0], col+d[1] {
			if p, occupied := b.At(r, col); occupied {
				if p.Color != c {
					out = append(out, Square{r, col})
				}
				break
			}
			out = append(out, Square{r, col})
		}
	}
	return out
}

func (b *Board) steps(src Square, c Color, offsets [][2]int) []Square {
	var out []Square
	for _, d := range offsets {
		r, col := src.Row+d[0], src.Col+d[1]
		if b.InBounds(r, col) && b.enemyOrEmpty(r, col, c) {
			out = append(out, Square{r, col})
		}
	}
	return out
}

func (b *Board) pawnMoves(src Square, c Color) []Square {
	var out []Square
	dir := forward(c)
	one := src.Row + dir
	if !b.InBounds(one, src.Col) {
		return nil
	}
	if _, occupied := b.At(one, src.Col); !occupied {
		out = append(out, Square{one, src.Col})
		two := one + dir
		if moved, _ := b.HasMoved(src.Row, src.Col); !moved && b.InBounds(two, src.Col) {
			if _, occupied := b.At(two, src.Col); !occupied {
				out = append(out, Square{two, src.Col})
			}
		}
	}
	for _, dc := range []int{-1, 1} {
		if p, occupied := b.At(one, src.Col+dc); occupied && p.Color != c {
			out = append(out, Square{one, src.Col + dc})
		}
	}
	return out
}

// castles returns the rook corners the unmoved king on src may swap with.
// Only the nearest corner of the king's row is considered, or both when the
// king is equidistant.
func (b *Board) castles(src Square, c Color) []Square {
	if moved, _ := b.HasMoved(src.Row, src.Col); moved {
		return nil
	}
	left, right := src.Col, b.cols-1-src.Col
	var corners []int
	switch {
	case left < right:
		corners = []int{0}
	case right < left:
		corners = []int{b.cols - 1}
	default:
		corners = []int{0, b.cols - 1}
	}
	var out []Square
	for _, corner := range corners {
		if corner == src.Col {
			continue
		}
		p, occupied := b.At(src.Row, corner)
		if !occupied || p.Kind != Rook || p.Color != c {
			continue
		}
		if moved, _ := b.HasMoved(src.Row, corner); moved {
			continue
		}
		if b.pathClear(src.Row, src.Col, corner) {
			out = append(out, Square{src.Row, corner})
		}
	}
	return out
}

func (b *Board) pathClear(row, from, to int) bool {
	lo, hi := from, to
	if lo > hi {
		lo, hi = hi, lo
	}
	for col := lo + 1; col < hi; col++ {
		if _, occupied := b.At(row, col); occupied {
			return false
		}
	}
	return true
}
