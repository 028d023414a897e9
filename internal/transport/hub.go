package transport

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/Cheese-SwapChess/internal/match"
	"github.com/park285/Cheese-SwapChess/internal/render"
	"github.com/park285/Cheese-SwapChess/pkg/chessdto"
)

const (
	sendBuffer   = 32
	writeTimeout = 5 * time.Second
	pingInterval = 30 * time.Second
	pingTimeout  = 3 * time.Second
)

type outbound struct {
	env   chessdto.Envelope
	close string // non-empty closes the socket after env is written
}

// client is one attached socket.
type client struct {
	conn   *websocket.Conn
	seat   match.Seat
	out    chan outbound
	cancel context.CancelFunc
	logger *zap.Logger
}

func newClient(conn *websocket.Conn, seat match.Seat, cancel context.CancelFunc, logger *zap.Logger) *client {
	return &client{conn: conn, seat: seat, out: make(chan outbound, sendBuffer), cancel: cancel, logger: logger}
}

// push queues a message; a client that cannot keep up is dropped.
func (c *client) push(o outbound) {
	select {
	case c.out <- o:
	default:
		c.logger.Warn("ws_slow_consumer", zap.String("user", c.seat.User))
		c.cancel()
	}
}

func (c *client) send(env chessdto.Envelope) { c.push(outbound{env: env}) }

func (c *client) writeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case o := <-c.out:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(wctx, c.conn, o.env)
			cancel()
			if err != nil {
				c.cancel()
				return
			}
			if o.close != "" {
				_ = c.conn.Close(websocket.StatusNormalClosure, o.close)
				c.cancel()
				return
			}
		}
	}
}

// pingLoop drops the connection after two consecutive failed pings.
func (c *client) pingLoop(ctx context.Context) {
	t := time.NewTicker(pingInterval)
	defer t.Stop()
	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			pctx, cancel := context.WithTimeout(ctx, pingTimeout)
			err := c.conn.Ping(pctx)
			cancel()
			if err == nil {
				failures = 0
				continue
			}
			failures++
			if failures >= 2 {
				c.logger.Info("ws_ping_timeout", zap.String("user", c.seat.User))
				c.cancel()
				return
			}
		}
	}
}

// hub fans messages out to every socket of one match.
type hub struct {
	mu       sync.Mutex
	clients  map[*client]struct{}
	lastMove *render.Move
}

func newHub() *hub { return &hub{clients: make(map[*client]struct{})} }

func (h *hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// remove reports whether the hub is now empty.
func (h *hub) remove(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
	return len(h.clients) == 0
}

func (h *hub) snapshot() []*client {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		out = append(out, c)
	}
	return out
}

func (h *hub) broadcast(env chessdto.Envelope) {
	for _, c := range h.snapshot() {
		c.send(env)
	}
}

// closeAll sends env as the last message of every socket, then closes them.
func (h *hub) closeAll(env chessdto.Envelope, reason string) {
	for _, c := range h.snapshot() {
		c.push(outbound{env: env, close: reason})
	}
}

func (h *hub) setLastMove(m *render.Move) {
	h.mu.Lock()
	h.lastMove = m
	h.mu.Unlock()
}

func (h *hub) last() *render.Move {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastMove
}

func envelope(typ string, v any) chessdto.Envelope {
	raw, err := json.Marshal(v)
	if err != nil {
		return chessdto.Envelope{Type: typ}
	}
	return chessdto.Envelope{Type: typ, Data: raw}
}
