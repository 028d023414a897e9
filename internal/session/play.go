package session

import (
	"errors"

	"github.com/park285/Cheese-SwapChess/internal/board"
	"github.com/park285/Cheese-SwapChess/internal/codec"
)

// ErrNoHistory is returned by Undo when there is nothing to restore.
var ErrNoHistory = errors.New("session: no snapshot to restore")

// AttemptMove validates and applies src -> dst. It does not pass the turn;
// use Play for a move that also toggles the turn.
func (s *Session) AttemptMove(req Requester, src, dst board.Square, isAI bool) (*board.MoveOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attemptMove(req, src, dst, isAI)
}

// Play applies a move and passes the turn in one step.
func (s *Session) Play(req Requester, src, dst board.Square, isAI bool) (*board.MoveOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, err := s.attemptMove(req, src, dst, isAI)
	if err != nil {
		return nil, err
	}
	s.toggleTurn()
	return out, nil
}

func (s *Session) attemptMove(req Requester, src, dst board.Square, isAI bool) (*board.MoveOutcome, error) {
	if isAI && !s.opts.AgainstAI {
		return nil, newErr(KindPermission, "AI moves are disabled for this game")
	}
	if s.hasWinner {
		return nil, newErr(KindGameOver, "The game is over, %s won", s.winner)
	}
	if req.Spectator {
		return nil, newErr(KindPermission, "Spectators cannot move pieces")
	}
	if src == dst {
		return nil, newErr(KindInput, "Source and destination are the same square")
	}
	if !s.board.InBounds(src.Row, src.Col) || !s.board.InBounds(dst.Row, dst.Col) {
		return nil, newErr(KindInput, "Position is outside the board")
	}
	rows := s.board.Rows()
	piece, ok := s.board.At(src.Row, src.Col)
	if !ok {
		return nil, newErr(KindInput, "There is no piece on %s", src.Label(rows))
	}
	if piece.Color != s.turn {
		return nil, newErr(KindPermission, "It is %s's go", s.turn)
	}
	if !req.Wildcard && req.Color != piece.Color {
		return nil, newErr(KindPermission, "You can only move %s pieces", req.Color)
	}
	if !req.Admin && !s.board.IsLegalMove(src, dst) {
		return nil, newErr(KindRule, "%s cannot move from %s to %s", piece, src.Label(rows), dst.Label(rows))
	}

	s.recordState()
	out := s.board.ExecuteMove(src, dst)
	if out.Captured {
		s.captured = append(s.captured, out.CapturedPiece)
	}
	s.appendLog(out.Line, out.Title)
	if out.HasWinner {
		s.declareWinner(out.Winner)
	}
	return &out, nil
}

// Forfeit concedes the game for color. A color-bound requester may only
// forfeit for its own color while on the move; the wildcard controller may
// forfeit for either side.
func (s *Session) Forfeit(req Requester, color board.Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forfeit(req, color)
}

// Resign forfeits for the side on the move and passes the turn.
func (s *Session) Resign(req Requester) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	color := req.Color
	if req.Wildcard {
		color = s.turn
	}
	if err := s.forfeit(req, color); err != nil {
		return err
	}
	s.toggleTurn()
	return nil
}

func (s *Session) forfeit(req Requester, color board.Color) error {
	if s.hasWinner {
		return newErr(KindGameOver, "The game is over, %s won", s.winner)
	}
	if req.Spectator {
		return newErr(KindPermission, "Spectators cannot forfeit")
	}
	if !req.Wildcard {
		if req.Color != color {
			return newErr(KindPermission, "You can only forfeit for %s", req.Color)
		}
		if color != s.turn {
			return newErr(KindPermission, "It is %s's go", s.turn)
		}
	}
	s.recordState()
	s.appendLog(color.String()+" forfeited", "Forfeit")
	s.declareWinner(color.Opponent())
	return nil
}

// declareWinner ends the game and repaints every losing piece in the winner's
// color. Kinds and positions are kept and nothing is added to captured.
func (s *Session) declareWinner(c board.Color) {
	s.winner, s.hasWinner = c, true
	s.appendLog(c.String()+" won the game!", "Winner")
	loser := c.Opponent()
	for _, sq := range s.board.Pieces(loser) {
		p, _ := s.board.At(sq.Row, sq.Col)
		s.board.Place(sq.Row, sq.Col, board.Piece{Color: c, Kind: p.Kind})
	}
}

func (s *Session) recordState() {
	s.history = append(s.history, codec.Assemble(s.fields()))
}

// restore pops the latest snapshot back into the board, captured list and winner.
func (s *Session) restore() error {
	n := len(s.history)
	if n == 0 {
		return ErrNoHistory
	}
	f, err := codec.Disassemble(s.history[n-1], s.opts.Rows*s.opts.Cols)
	if err != nil {
		return err
	}
	if err := s.load(f); err != nil {
		return err
	}
	s.history = s.history[:n-1]
	return nil
}

func (s *Session) load(f codec.Fields) error {
	b, err := codec.DecodeBoard(s.opts.Rows, s.opts.Cols, f.Moved, f.Data)
	if err != nil {
		return err
	}
	taken, err := codec.DecodeTaken(f.Taken)
	if err != nil {
		return err
	}
	winner, hasWinner, err := codec.DecodeWinner(f.Winner)
	if err != nil {
		return err
	}
	s.board, s.captured, s.winner, s.hasWinner = b, taken, winner, hasWinner
	return nil
}

// Undo restores the previous snapshot and passes the turn back. A
// color-bound player may only take back their own last move and cannot reopen
// a finished game; the wildcard controller and admins may do both.
func (s *Session) Undo(req Requester) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if req.Spectator {
		return newErr(KindPermission, "Spectators cannot undo moves")
	}
	privileged := req.Wildcard || req.Admin
	if s.hasWinner && !privileged {
		return newErr(KindGameOver, "The game is over, %s won", s.winner)
	}
	if len(s.history) == 0 {
		return newErr(KindInput, "There is nothing to undo")
	}
	if !privileged && req.Color != s.turn.Opponent() {
		return newErr(KindPermission, "You can only undo your own move")
	}
	if err := s.restore(); err != nil {
		if errors.Is(err, ErrNoHistory) {
			return newErr(KindInput, "There is nothing to undo")
		}
		return err
	}
	s.toggleTurn()
	s.appendLog("The last move was undone", "Undo")
	return nil
}
