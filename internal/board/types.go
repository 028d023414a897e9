package board

import "fmt"

// Color identifies a side.
type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return fmt.Sprintf("Color(%d)", uint8(c))
	}
}

// Kind is the piece type.
type Kind uint8

const (
	Pawn Kind = iota
	Rook
	Knight
	Bishop
	Queen
	King
)

// Kinds lists every piece kind in declaration order.
var Kinds = []Kind{Pawn, Rook, Knight, Bishop, Queen, King}

func (k Kind) String() string {
	switch k {
	case Pawn:
		return "Pawn"
	case Rook:
		return "Rook"
	case Knight:
		return "Knight"
	case Bishop:
		return "Bishop"
	case Queen:
		return "Queen"
	case King:
		return "King"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Piece is a colored piece kind.
type Piece struct {
	Color Color
	Kind  Kind
}

func (p Piece) String() string { return p.Color.String() + " " + p.Kind.String() }

// Cell is one board square. Moved is sticky: it flips to true the first time a
// piece lands on or leaves the square and only Reset clears it.
type Cell struct {
	Piece    Piece
	Occupied bool
	Moved    bool
}

// Square addresses a cell by row and column. Row 0 is Black's back rank.
type Square struct {
	Row int
	Col int
}

func Sq(row, col int) Square { return Square{Row: row, Col: col} }

// Label renders the square as a column letter and a rank counted from the bottom, e.g. (7,0) -> "A1".
func (s Square) Label(rows int) string {
	return fmt.Sprintf("%c%d", rune('A'+s.Col), rows-s.Row)
}

// promotions lists the kinds a pawn may become, per color; the first entry is the default.
var promotions = map[Color][]Kind{
	White: {Queen, Rook, Bishop, Knight},
	Black: {Queen, Rook, Bishop, Knight},
}

// Promotions returns the promotion choices for a color, default first.
func Promotions(c Color) []Kind {
	return append([]Kind(nil), promotions[c]...)
}

// DefaultPromotion is the kind a pawn of color c turns into on the far rank.
func DefaultPromotion(c Color) Kind {
	if list := promotions[c]; len(list) > 0 {
		return list[0]
	}
	return Queen
}
