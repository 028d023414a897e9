package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/park285/Cheese-SwapChess/internal/ai"
	"github.com/park285/Cheese-SwapChess/internal/lobby"
	"github.com/park285/Cheese-SwapChess/internal/match"
	"github.com/park285/Cheese-SwapChess/internal/msgcat"
	"github.com/park285/Cheese-SwapChess/internal/render"
	"github.com/park285/Cheese-SwapChess/internal/results"
	"github.com/park285/Cheese-SwapChess/internal/session"
	"github.com/park285/Cheese-SwapChess/pkg/chessdto"
)

const (
	userHeader     = "X-User-Name"
	maxBodyBytes   = 16 << 10
	renderTimeout  = 5 * time.Second
	resultsDefault = 20
)

// Deps are the collaborators of a Server. Results and Renderer are optional.
type Deps struct {
	Registry *match.Registry
	Lobby    *lobby.Lobby
	Catalog  *msgcat.Catalog
	Renderer render.Renderer
	Results  results.Repository
	AI       *ai.Greedy
	Logger   *zap.Logger

	AllowSpectatorsDefault bool
	// InsecureOrigins disables the websocket same-origin check.
	InsecureOrigins bool
}

// Server exposes the HTTP API and the game socket.
type Server struct {
	reg      *match.Registry
	lobby    *lobby.Lobby
	cat      *msgcat.Catalog
	renderer render.Renderer
	results  results.Repository
	ai       *ai.Greedy
	logger   *zap.Logger

	allowSpectators bool
	insecureOrigins bool

	mu   sync.Mutex
	hubs map[string]*hub
}

func New(d Deps) *Server {
	s := &Server{
		reg:             d.Registry,
		lobby:           d.Lobby,
		cat:             d.Catalog,
		renderer:        d.Renderer,
		results:         d.Results,
		ai:              d.AI,
		logger:          d.Logger,
		allowSpectators: d.AllowSpectatorsDefault,
		insecureOrigins: d.InsecureOrigins,
		hubs:            make(map[string]*hub),
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.cat == nil {
		s.cat = msgcat.MustDefault()
	}
	if s.ai == nil {
		s.ai = ai.NewGreedy(uint64(time.Now().UnixNano()))
	}
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	mux.HandleFunc("GET /api/games", s.handleList)
	mux.HandleFunc("POST /api/games", s.handleCreate)
	mux.HandleFunc("POST /api/games/{name}/join", s.handleJoin)
	mux.HandleFunc("DELETE /api/games/{name}", s.handleDelete)
	mux.HandleFunc("GET /api/games/{name}/board.png", s.handleBoardPNG)
	mux.HandleFunc("GET /api/games/{name}/results", s.handleMatchResults)
	mux.HandleFunc("GET /api/results", s.handleRecentResults)
	mux.HandleFunc("GET /ws", s.handleSocket)
	return mux
}

// Close disconnects every socket.
func (s *Server) Close() {
	s.mu.Lock()
	hubs := make([]*hub, 0, len(s.hubs))
	for _, h := range s.hubs {
		hubs = append(hubs, h)
	}
	s.mu.Unlock()
	for _, h := range hubs {
		h.closeAll(envelope(chessdto.TypeAlert, chessdto.Alert{Text: "The server is restarting"}), "server shutting down")
	}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	names := s.reg.Names()
	out := make([]chessdto.GameSummary, 0, len(names))
	for _, n := range names {
		m, err := s.reg.Get(n)
		if err != nil {
			continue
		}
		out = append(out, summary(m))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req chessdto.CreateGameRequest
	if !s.decode(w, r, &req) {
		return
	}
	allow := s.allowSpectators
	if req.AllowSpectators != nil {
		allow = *req.AllowSpectators
	}
	m, err := s.reg.Create(req.Name, req.Password, session.Options{
		SingleController: req.Single,
		AgainstAI:        req.AI,
		AllowSpectators:  allow,
	})
	if err != nil {
		s.writeDomainError(w, err, strings.TrimSpace(req.Name))
		return
	}
	writeJSON(w, http.StatusCreated, summary(m))
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	var req chessdto.JoinRequest
	if !s.decode(w, r, &req) {
		return
	}
	user := strings.TrimSpace(req.User)
	if user == "" {
		user = "guest-" + uuid.NewString()[:8]
	}
	g, err := s.lobby.Issue(name, req.Password, user, req.Spectator)
	if err != nil {
		s.writeDomainError(w, err, name)
		return
	}
	writeJSON(w, http.StatusOK, chessdto.JoinResponse{Token: g.Token, ExpiresMS: s.lobby.TTL().Milliseconds()})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	m, err := s.reg.Get(name)
	if err != nil {
		s.writeDomainError(w, err, name)
		return
	}
	user := strings.TrimSpace(r.Header.Get(userHeader))
	if !m.IsHost(user) && !s.lobby.IsAdmin(user) {
		writeJSON(w, http.StatusForbidden, chessdto.DomainError{Code: "forbidden", Message: s.cat.Text("match.only_host_delete", nil)})
		return
	}
	if err := s.deleteMatch(name); err != nil {
		s.writeDomainError(w, err, name)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBoardPNG(w http.ResponseWriter, r *http.Request) {
	if s.renderer == nil {
		writeJSON(w, http.StatusNotImplemented, chessdto.DomainError{Code: "render_disabled", Message: "board rendering is disabled"})
		return
	}
	name := r.PathValue("name")
	m, err := s.reg.Get(name)
	if err != nil {
		s.writeDomainError(w, err, name)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()
	png, err := s.renderer.RenderPNG(ctx, s.view(m))
	if err != nil {
		s.logger.Error("render_error", zap.String("match", name), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, chessdto.DomainError{Code: "render_failed", Message: "could not render the board", Retryable: true})
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

func (s *Server) handleMatchResults(w http.ResponseWriter, r *http.Request) {
	if s.results == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	res, err := s.results.ResultsForMatch(r.Context(), r.PathValue("name"), resultsDefault)
	if err != nil {
		s.logger.Error("results_query_error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, chessdto.DomainError{Code: "results_failed", Message: "could not load results", Retryable: true})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRecentResults(w http.ResponseWriter, r *http.Request) {
	if s.results == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	res, err := s.results.RecentResults(r.Context(), resultsDefault)
	if err != nil {
		s.logger.Error("results_query_error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, chessdto.DomainError{Code: "results_failed", Message: "could not load results", Retryable: true})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// deleteMatch removes the match and tells its sockets before closing them.
func (s *Server) deleteMatch(name string) error {
	if err := s.reg.Delete(name); err != nil {
		return err
	}
	s.mu.Lock()
	h := s.hubs[name]
	delete(s.hubs, name)
	s.mu.Unlock()
	if h != nil {
		text := s.cat.Text("match.deleted", map[string]any{"Name": name})
		h.closeAll(envelope(chessdto.TypeDeletedGame, chessdto.Alert{Text: text, Title: "Deleted"}), "game deleted")
	}
	return nil
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, chessdto.DomainError{Code: "bad_request", Message: s.cat.Text("request.bad_json", nil)})
		return false
	}
	return true
}

// lobbyError maps registry and lobby errors to a status and a catalog key.
func lobbyError(err error) (status int, code, key string, retryable bool) {
	switch {
	case errors.Is(err, match.ErrNameRequired):
		return http.StatusBadRequest, "name_required", "lobby.name_required", false
	case errors.Is(err, match.ErrExists):
		return http.StatusConflict, "game_exists", "lobby.game_exists", false
	case errors.Is(err, match.ErrNotFound):
		return http.StatusNotFound, "game_missing", "lobby.game_missing", false
	case errors.Is(err, match.ErrTooMany):
		return http.StatusServiceUnavailable, "too_many_games", "lobby.too_many_games", true
	case errors.Is(err, match.ErrFull):
		return http.StatusConflict, "game_full", "lobby.game_full", false
	case errors.Is(err, match.ErrSpectateEmpty):
		return http.StatusConflict, "spectate_empty", "lobby.spectate_empty", false
	case errors.Is(err, match.ErrSpectatorsDisabled):
		return http.StatusForbidden, "spectators_disabled", "lobby.spectators_disabled", false
	case errors.Is(err, lobby.ErrWrongPassword):
		return http.StatusForbidden, "wrong_password", "lobby.wrong_password", false
	case errors.Is(err, lobby.ErrTokenInvalid):
		return http.StatusUnauthorized, "token_invalid", "lobby.token_invalid", false
	default:
		return http.StatusInternalServerError, "internal", "", true
	}
}

func (s *Server) writeDomainError(w http.ResponseWriter, err error, name string) {
	status, code, key, retryable := lobbyError(err)
	msg := err.Error()
	if key != "" {
		msg = s.cat.Text(key, map[string]any{"Name": name})
	} else {
		s.logger.Error("request_error", zap.String("match", name), zap.Error(err))
	}
	writeJSON(w, status, chessdto.DomainError{Code: code, Message: msg, Retryable: retryable})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func summary(m *match.Match) chessdto.GameSummary {
	_, over := m.Session.Winner()
	return chessdto.GameSummary{Name: m.Name, Stats: stats(m), Over: over}
}

func stats(m *match.Match) chessdto.GameStats {
	st := m.Stats()
	return chessdto.GameStats{Players: st.Players, Max: st.Max, Spectators: st.Spectators}
}
