package transport

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"github.com/park285/Cheese-SwapChess/internal/board"
	"github.com/park285/Cheese-SwapChess/internal/domain"
	"github.com/park285/Cheese-SwapChess/internal/match"
	"github.com/park285/Cheese-SwapChess/internal/render"
	"github.com/park285/Cheese-SwapChess/internal/session"
	"github.com/park285/Cheese-SwapChess/pkg/chessdto"
)

var errBadSquare = errors.New("position must be a [row, col] pair of whole numbers")

// handleSocket redeems a lobby token and attaches the socket to its match.
func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	g, err := s.lobby.Consume(r.URL.Query().Get("t"))
	if err != nil {
		s.writeDomainError(w, err, "")
		return
	}
	m, err := s.reg.Get(g.Match)
	if err != nil {
		s.writeDomainError(w, err, g.Match)
		return
	}
	seat, err := m.Attach(g.User, g.Spectator, g.Admin)
	if err != nil {
		s.writeDomainError(w, err, g.Match)
		return
	}
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: s.insecureOrigins,
		CompressionMode:    websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		m.Detach(seat)
		s.logger.Warn("ws_accept_error", zap.String("match", m.Name), zap.Error(err))
		return
	}
	defer conn.CloseNow()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c := newClient(conn, seat, cancel, s.logger)
	h := s.hubFor(m.Name)
	h.add(c)
	go c.writeLoop(ctx)
	go c.pingLoop(ctx)

	s.logger.Info("ws_attach", zap.String("match", m.Name), zap.String("user", seat.User), zap.String("role", role(seat)))
	c.send(envelope(chessdto.TypeGameInfo, info(m, seat)))
	c.send(envelope(chessdto.TypeGameData, gameData(m)))
	h.broadcast(envelope(chessdto.TypeGameStats, stats(m)))
	h.broadcast(envelope(chessdto.TypeAlert, chessdto.Alert{
		Text: s.cat.Text("match.joined", map[string]any{"User": seat.User, "Role": role(seat)}),
	}))

	s.readLoop(ctx, c, m, h)

	cancel()
	m.Detach(seat)
	if h.remove(c) {
		s.dropHub(m.Name, h)
	} else {
		h.broadcast(envelope(chessdto.TypeGameStats, stats(m)))
		h.broadcast(envelope(chessdto.TypeAlert, chessdto.Alert{Text: s.cat.Text("match.left", map[string]any{"User": seat.User})}))
	}
	s.logger.Info("ws_detach", zap.String("match", m.Name), zap.String("user", seat.User))
}

func (s *Server) hubFor(name string) *hub {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hubs[name]
	if !ok {
		h = newHub()
		s.hubs[name] = h
	}
	return h
}

func (s *Server) dropHub(name string, h *hub) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hubs[name] == h {
		delete(s.hubs, name)
	}
}

func (s *Server) readLoop(ctx context.Context, c *client, m *match.Match, h *hub) {
	for {
		typ, data, err := c.conn.Read(ctx)
		if err != nil {
			return
		}
		if typ != websocket.MessageText {
			c.send(s.rejected("request.bad_json", nil))
			continue
		}
		var env chessdto.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.send(s.rejected("request.bad_json", nil))
			continue
		}
		s.dispatch(c, m, h, env)
	}
}

func (s *Server) dispatch(c *client, m *match.Match, h *hub, env chessdto.Envelope) {
	req := c.seat.Requester
	switch env.Type {
	case chessdto.TypeMove:
		var mr chessdto.MoveRequest
		if err := json.Unmarshal(env.Data, &mr); err != nil {
			c.send(s.rejected("request.bad_json", nil))
			return
		}
		src, err1 := parseSquare(mr.Src)
		dst, err2 := parseSquare(mr.Dst)
		if err1 != nil || err2 != nil {
			c.send(s.rejected("request.bad_square", nil))
			return
		}
		out, err := m.Session.Play(req, src, dst, false)
		c.send(result(err))
		if err != nil {
			return
		}
		s.moved(m, h, out)
		if m.Session.Options().AgainstAI {
			if _, over := m.Session.Winner(); !over {
				s.playAI(m, h)
			}
		}
	case chessdto.TypeForfeit:
		err := m.Session.Resign(req)
		c.send(result(err))
		if err != nil {
			return
		}
		s.changed(m, h, lastLogAlert(m))
		s.finish(m, domain.MethodForfeit)
	case chessdto.TypeUndo:
		err := m.Undo(req)
		c.send(result(err))
		if err != nil {
			return
		}
		h.setLastMove(nil)
		s.changed(m, h, lastLogAlert(m))
	case chessdto.TypeReset:
		if !s.privileged(m, c.seat) {
			c.send(s.rejected("match.only_controller_reset", nil))
			return
		}
		m.Reset()
		c.send(result(nil))
		h.setLastMove(nil)
		s.changed(m, h, lastLogAlert(m))
	case chessdto.TypeAI:
		if !m.Session.Options().AgainstAI {
			c.send(s.rejected("match.ai_disabled", nil))
			return
		}
		if req.Spectator {
			c.send(s.rejected("match.spectator_ai", nil))
			return
		}
		if !s.playAI(m, h) {
			c.send(s.rejected("match.ai_no_move", nil))
			return
		}
		c.send(result(nil))
	case chessdto.TypeDelete:
		if !s.privileged(m, c.seat) {
			c.send(s.rejected("match.only_host_delete", nil))
			return
		}
		if err := s.deleteMatch(m.Name); err != nil {
			c.send(s.rejected("lobby.game_missing", map[string]any{"Name": m.Name}))
		}
	case chessdto.TypeReqGameData:
		c.send(envelope(chessdto.TypeGameData, gameData(m)))
	default:
		c.send(s.rejected("request.unknown_type", map[string]any{"Type": env.Type}))
	}
}

// privileged reports whether the seat may reset or delete the match.
func (s *Server) privileged(m *match.Match, seat match.Seat) bool {
	return seat.Requester.Admin || (!seat.Requester.Spectator && m.IsHost(seat.User))
}

// playAI makes the computer move for the side on turn.
func (s *Server) playAI(m *match.Match, h *hub) bool {
	mv, ok := s.ai.BestMove(m.Session.Board(), m.Session.Turn())
	if !ok {
		return false
	}
	out, err := m.Session.Play(session.Controller(), mv.From, mv.To, true)
	if err != nil {
		s.logger.Warn("ai_move_rejected", zap.String("match", m.Name), zap.Error(err))
		return false
	}
	s.moved(m, h, out)
	return true
}

func (s *Server) moved(m *match.Match, h *hub, out *board.MoveOutcome) {
	h.setLastMove(&render.Move{From: out.From, To: out.To})
	s.changed(m, h, &chessdto.Alert{Text: out.Line, Title: out.Title})
	if out.HasWinner {
		s.finish(m, domain.MethodKingCapture)
	}
}

// changed persists the match and broadcasts the new position.
func (s *Server) changed(m *match.Match, h *hub, alert *chessdto.Alert) {
	s.reg.Save(m)
	h.broadcast(envelope(chessdto.TypeGameData, gameData(m)))
	if alert != nil {
		h.broadcast(envelope(chessdto.TypeAlert, alert))
	}
}

func (s *Server) finish(m *match.Match, method string) {
	if err := s.reg.Finish(m, method); err != nil {
		s.logger.Warn("match_finish_error", zap.String("match", m.Name), zap.Error(err))
	}
}

func (s *Server) rejected(key string, data map[string]any) chessdto.Envelope {
	return envelope(chessdto.TypeMoveResult, chessdto.MoveResult{Code: session.CodeRejected, Msg: s.cat.Text(key, data)})
}

func (s *Server) view(m *match.Match) render.View {
	v := render.View{
		Board:    m.Session.Board(),
		Title:    m.Name,
		Turn:     m.Session.Turn(),
		Captured: m.Session.Captured(),
	}
	v.Winner, v.HasWinner = m.Session.Winner()
	s.mu.Lock()
	h := s.hubs[m.Name]
	s.mu.Unlock()
	if h != nil {
		v.LastMove = h.last()
	}
	return v
}

func result(err error) chessdto.Envelope {
	res := chessdto.MoveResult{Code: session.CodeOf(err)}
	if err != nil {
		res.Msg = err.Error()
	}
	return envelope(chessdto.TypeMoveResult, res)
}

func lastLogAlert(m *match.Match) *chessdto.Alert {
	log := m.Session.Log()
	if len(log) == 0 {
		return nil
	}
	e := log[len(log)-1]
	return &chessdto.Alert{Text: e.Text, Title: e.Title}
}

func gameData(m *match.Match) chessdto.GameData {
	return chessdto.GameData{GamePayload: m.Session.Payload(), Turn: strings.ToLower(m.Session.Turn().String())}
}

func info(m *match.Match, seat match.Seat) chessdto.GameInfo {
	opts := m.Session.Options()
	return chessdto.GameInfo{
		Name:            m.Name,
		Role:            role(seat),
		Host:            seat.Host,
		Admin:           seat.Requester.Admin,
		Single:          opts.SingleController,
		AI:              opts.AgainstAI,
		AllowSpectators: opts.AllowSpectators,
		Rows:            opts.Rows,
		Cols:            opts.Cols,
	}
}

func role(seat match.Seat) string {
	switch r := seat.Requester; {
	case r.Spectator:
		return "spectator"
	case r.Wildcard:
		return "controller"
	default:
		return strings.ToLower(r.Color.String())
	}
}

// parseSquare reads a [row, col] pair. Bounds are checked by the session.
func parseSquare(raw json.RawMessage) (board.Square, error) {
	var v []float64
	if err := json.Unmarshal(raw, &v); err != nil || len(v) != 2 {
		return board.Square{}, errBadSquare
	}
	for _, f := range v {
		if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
			return board.Square{}, errBadSquare
		}
	}
	return board.Sq(int(v[0]), int(v[1])), nil
}
