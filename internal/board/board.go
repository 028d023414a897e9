package board

import "errors"

const (
	DefaultRows = 8
	DefaultCols = 8
)

// ErrDimensions is returned when a cell slice does not match the board shape.
var ErrDimensions = errors.New("board: cell count does not match dimensions")

// backRank is the standard first-rank order from column 0.
var backRank = []Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// Board is a rows x cols grid of cells. It is not safe for concurrent use;
// the owning session serializes access.
type Board struct {
	rows  int
	cols  int
	cells []Cell
}

// New returns an empty board. Non-positive dimensions fall back to 8x8.
func New(rows, cols int) *Board {
	if rows <= 0 {
		rows = DefaultRows
	}
	if cols <= 0 {
		cols = DefaultCols
	}
	return &Board{rows: rows, cols: cols, cells: make([]Cell, rows*cols)}
}

// NewStandard returns an 8x8 board in the starting layout.
func NewStandard() *Board {
	b := New(DefaultRows, DefaultCols)
	b.Reset()
	return b
}

// FromCells builds a board from row-major cells.
func FromCells(rows, cols int, cells []Cell) (*Board, error) {
	if rows <= 0 || cols <= 0 || len(cells) != rows*cols {
		return nil, ErrDimensions
	}
	return &Board{rows: rows, cols: cols, cells: append([]Cell(nil), cells...)}, nil
}

func (b *Board) Rows() int { return b.rows }
func (b *Board) Cols() int { return b.cols }

// Cells returns a row-major copy of every cell.
func (b *Board) Cells() []Cell { return append([]Cell(nil), b.cells...) }

func (b *Board) Clone() *Board {
	return &Board{rows: b.rows, cols: b.cols, cells: append([]Cell(nil), b.cells...)}
}

func (b *Board) InBounds(row, col int) bool {
	return row >= 0 && row < b.rows && col >= 0 && col < b.cols
}

func (b *Board) index(row, col int) int { return row*b.cols + col }

// Cell returns the raw cell at (row, col).
func (b *Board) Cell(row, col int) (Cell, bool) {
	if !b.InBounds(row, col) {
		return Cell{}, false
	}
	return b.cells[b.index(row, col)], true
}

// At returns the occupant of (row, col). ok is false for empty or out-of-range squares.
func (b *Board) At(row, col int) (Piece, bool) {
	c, ok := b.Cell(row, col)
	if !ok || !c.Occupied {
		return Piece{}, false
	}
	return c.Piece, true
}

// HasMoved reports the moved flag of an occupied cell. ok is false when the
// square is empty or out of range.
func (b *Board) HasMoved(row, col int) (moved bool, ok bool) {
	c, ok := b.Cell(row, col)
	if !ok || !c.Occupied {
		return false, false
	}
	return c.Moved, true
}

// Place puts p on (row, col) and marks the cell moved.
func (b *Board) Place(row, col int, p Piece) bool {
	if !b.InBounds(row, col) {
		return false
	}
	b.cells[b.index(row, col)] = Cell{Piece: p, Occupied: true, Moved: true}
	return true
}

// Clear empties (row, col) and marks the cell moved.
func (b *Board) Clear(row, col int) bool {
	if !b.InBounds(row, col) {
		return false
	}
	b.cells[b.index(row, col)] = Cell{Moved: true}
	return true
}

// Reset restores the starting layout: Black on rows 0-1, White on the last two
// rows, everything else empty, every moved flag cleared.
func (b *Board) Reset() {
	for i := range b.cells {
		b.cells[i] = Cell{}
	}
	set := func(row, col int, p Piece) {
		if b.InBounds(row, col) {
			b.cells[b.index(row, col)] = Cell{Piece: p, Occupied: true}
		}
	}
	for col := 0; col < b.cols; col++ {
		if col < len(backRank) {
			set(0, col, Piece{Color: Black, Kind: backRank[col]})
			set(b.rows-1, col, Piece{Color: White, Kind: backRank[col]})
		}
		set(1, col, Piece{Color: Black, Kind: Pawn})
		set(b.rows-2, col, Piece{Color: White, Kind: Pawn})
	}
}

// Pieces returns every occupied square of color c in row-major order.
func (b *Board) Pieces(c Color) []Square {
	var out []Square
	for i, cell := range b.cells {
		if cell.Occupied && cell.Piece.Color == c {
			out = append(out, Square{Row: i / b.cols, Col: i % b.cols})
		}
	}
	return out
}
