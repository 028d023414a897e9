package session

import (
	"fmt"

	"github.com/park285/Cheese-SwapChess/internal/board"
	"github.com/park285/Cheese-SwapChess/internal/codec"
)

// Record returns the persisted form of the session. The password field is
// left for the caller to fill.
func (s *Session) Record() codec.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := codec.Record{
		Singleplayer:    codec.Flag(s.opts.SingleController),
		Turn:            codec.ColorCode(s.turn),
		AgainstAI:       codec.Flag(s.opts.AgainstAI),
		AllowSpectators: codec.Flag(s.opts.AllowSpectators),
		Data:            codec.Assemble(s.fields()),
		History:         append([]string{}, s.history...),
		Log:             append([]codec.LogEntry{}, s.log...),
	}
	if s.opts.Rows != board.DefaultRows || s.opts.Cols != board.DefaultCols {
		rec.Rows, rec.Cols = s.opts.Rows, s.opts.Cols
	}
	return rec
}

// FromRecord rebuilds a session from its persisted form.
func FromRecord(rec codec.Record) (*Session, error) {
	opts := Options{
		SingleController: rec.Singleplayer == 1,
		AgainstAI:        rec.AgainstAI == 1,
		AllowSpectators:  rec.AllowSpectators == 1,
		Rows:             rec.Rows,
		Cols:             rec.Cols,
	}
	s := New(opts)
	f, err := codec.Disassemble(rec.Data, s.opts.Rows*s.opts.Cols)
	if err != nil {
		return nil, fmt.Errorf("session data: %w", err)
	}
	if err := s.load(f); err != nil {
		return nil, fmt.Errorf("session data: %w", err)
	}
	turn, err := codec.ParseColor(rec.Turn)
	if err != nil {
		return nil, fmt.Errorf("session turn: %w", err)
	}
	s.turn = turn
	for i, snap := range rec.History {
		if _, err := codec.Disassemble(snap, s.opts.Rows*s.opts.Cols); err != nil {
			return nil, fmt.Errorf("session history %d: %w", i, err)
		}
	}
	s.history = append([]string(nil), rec.History...)
	s.log = append([]codec.LogEntry(nil), rec.Log...)
	return s, nil
}
