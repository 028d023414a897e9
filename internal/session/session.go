package session

import (
	"sync"
	"time"

	"github.com/park285/Cheese-SwapChess/internal/board"
	"github.com/park285/Cheese-SwapChess/internal/codec"
	"github.com/park285/Cheese-SwapChess/pkg/chessdto"
)

// Requester identifies who is asking the session to act.
type Requester struct {
	Color     board.Color
	Wildcard  bool // may move either color
	Spectator bool
	Admin     bool // bypasses move legality
}

func Player(c board.Color) Requester { return Requester{Color: c} }
func Controller() Requester          { return Requester{Wildcard: true} }
func Spectator() Requester           { return Requester{Spectator: true} }

// Options are the per-match flags.
type Options struct {
	SingleController bool
	AgainstAI        bool
	AllowSpectators  bool
	Rows             int
	Cols             int
}

// Session is one match. Every exported method takes the session lock, so
// each operation runs to completion before the next begins.
type Session struct {
	mu sync.Mutex

	opts      Options
	board     *board.Board
	turn      board.Color
	winner    board.Color
	hasWinner bool
	captured  []board.Piece
	history   []string
	log       []codec.LogEntry

	now func() time.Time
}

// New returns a session in the starting position with White to move.
func New(opts Options) *Session {
	if opts.Rows <= 0 {
		opts.Rows = board.DefaultRows
	}
	if opts.Cols <= 0 {
		opts.Cols = board.DefaultCols
	}
	s := &Session{opts: opts, now: time.Now}
	s.board = board.New(opts.Rows, opts.Cols)
	s.board.Reset()
	return s
}

func (s *Session) Options() Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts
}

func (s *Session) SetAllowSpectators(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts.AllowSpectators = v
}

func (s *Session) Turn() board.Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turn
}

func (s *Session) Winner() (board.Color, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.winner, s.hasWinner
}

// Board returns a copy of the current board.
func (s *Session) Board() *board.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Clone()
}

func (s *Session) Captured() []board.Piece {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]board.Piece(nil), s.captured...)
}

func (s *Session) Log() []codec.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]codec.LogEntry(nil), s.log...)
}

func (s *Session) HistoryLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

// Fields returns the serializer fields for the current position.
func (s *Session) Fields() codec.Fields {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fields()
}

// Snapshot returns the assembled game string.
func (s *Session) Snapshot() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return codec.Assemble(s.fields())
}

// Payload is the broadcast form of the current position.
func (s *Session) Payload() chessdto.GamePayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.fields()
	return chessdto.GamePayload{Data: f.Data, Moved: f.Moved, Taken: f.Taken, Winner: f.Winner}
}

func (s *Session) fields() codec.Fields {
	moved, data := codec.EncodeBoard(s.board)
	return codec.Fields{
		Moved:  moved,
		Data:   data,
		Taken:  codec.EncodeTaken(s.captured),
		Winner: codec.EncodeWinner(s.winner, s.hasWinner),
	}
}

func (s *Session) appendLog(text, title string) {
	s.log = append(s.log, codec.LogEntry{Text: text, Title: title, At: s.now()})
}

// ToggleTurn passes the move to the other color.
func (s *Session) ToggleTurn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toggleTurn()
}

func (s *Session) toggleTurn() { s.turn = s.turn.Opponent() }

// Reset returns the board to the starting layout, clears the winner, the
// captured list and the undo history, and gives White the move. The log is kept.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.board.Reset()
	s.turn = board.White
	s.winner, s.hasWinner = 0, false
	s.captured = nil
	s.history = nil
	s.appendLog("The board was reset", "Reset")
}
