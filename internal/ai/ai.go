package ai

import (
	"math/rand/v2"
	"sync"

	"github.com/park285/Cheese-SwapChess/internal/board"
)

var pieceValues = map[board.Kind]int{
	board.Pawn:   1,
	board.Knight: 3,
	board.Bishop: 3,
	board.Rook:   5,
	board.Queen:  9,
	board.King:   1000,
}

// Move is a candidate move with the value of what it captures.
type Move struct {
	From  board.Square
	To    board.Square
	Value int
}

// Greedy picks the legal move that captures the most valuable piece. Ties are
// broken at random. It is safe for concurrent use.
type Greedy struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewGreedy(seed uint64) *Greedy {
	return &Greedy{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Candidates lists every legal move for color in row-major order.
func Candidates(b *board.Board, color board.Color) []Move {
	var out []Move
	for _, src := range b.Pieces(color) {
		dsts, _ := b.Destinations(src)
		for _, dst := range dsts {
			m := Move{From: src, To: dst}
			if p, ok := b.At(dst.Row, dst.Col); ok && p.Color != color {
				m.Value = pieceValues[p.Kind]
			}
			out = append(out, m)
		}
	}
	return out
}

// BestMove returns false when color has no legal move.
func (g *Greedy) BestMove(b *board.Board, color board.Color) (Move, bool) {
	moves := Candidates(b, color)
	if len(moves) == 0 {
		return Move{}, false
	}
	best := moves[0].Value
	for _, m := range moves[1:] {
		best = max(best, m.Value)
	}
	var top []Move
	for _, m := range moves {
		if m.Value == best {
			top = append(top, m)
		}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return top[g.rng.IntN(len(top))], true
}
