package lobby

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/park285/Cheese-SwapChess/internal/match"
)

var (
	ErrWrongPassword = errors.New("password is incorrect")
	ErrTokenInvalid  = errors.New("token is invalid or expired")
)

const DefaultTokenTTL = 3000 * time.Millisecond

// Grant is a one-time permission to attach to a match.
type Grant struct {
	Token     string
	Match     string
	User      string
	Spectator bool
	Admin     bool

	timer *time.Timer
}

// Lobby checks join requests and hands out short-lived tokens.
type Lobby struct {
	reg    *match.Registry
	ttl    time.Duration
	admins map[string]struct{}
	logger *zap.Logger

	mu     sync.Mutex
	grants map[string]*Grant
}

func New(reg *match.Registry, ttl time.Duration, admins []string, logger *zap.Logger) *Lobby {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Lobby{reg: reg, ttl: ttl, admins: make(map[string]struct{}), logger: logger, grants: make(map[string]*Grant)}
	for _, a := range admins {
		if a = strings.TrimSpace(a); a != "" {
			l.admins[a] = struct{}{}
		}
	}
	return l
}

func (l *Lobby) IsAdmin(user string) bool {
	_, ok := l.admins[user]
	return ok
}

// Issue validates a join request and returns a token that expires after the TTL.
// Errors come from match (ErrNotFound, ErrFull, ErrSpectateEmpty,
// ErrSpectatorsDisabled) or ErrWrongPassword.
func (l *Lobby) Issue(name, password, user string, spectator bool) (*Grant, error) {
	m, err := l.reg.Get(name)
	if err != nil {
		return nil, err
	}
	if !m.CheckPassword(password) {
		return nil, ErrWrongPassword
	}
	if err := m.Admit(spectator); err != nil {
		return nil, err
	}
	g := &Grant{
		Token:     uuid.NewString(),
		Match:     name,
		User:      user,
		Spectator: spectator,
		Admin:     l.IsAdmin(user),
	}
	l.mu.Lock()
	l.grants[g.Token] = g
	g.timer = time.AfterFunc(l.ttl, func() { l.expire(g.Token) })
	l.mu.Unlock()
	l.logger.Debug("lobby_token_issue", zap.String("match", name), zap.String("user", user), zap.Bool("spectator", spectator))
	return g, nil
}

func (l *Lobby) expire(token string) {
	l.mu.Lock()
	_, ok := l.grants[token]
	delete(l.grants, token)
	l.mu.Unlock()
	if ok {
		l.logger.Debug("lobby_token_expire", zap.String("token", token))
	}
}

// Consume redeems a token exactly once.
func (l *Lobby) Consume(token string) (*Grant, error) {
	l.mu.Lock()
	g, ok := l.grants[token]
	delete(l.grants, token)
	l.mu.Unlock()
	if !ok {
		return nil, ErrTokenInvalid
	}
	g.timer.Stop()
	return g, nil
}

// Pending is the number of unredeemed tokens.
func (l *Lobby) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.grants)
}

// Close drops every outstanding token.
func (l *Lobby) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for tok, g := range l.grants {
		g.timer.Stop()
		delete(l.grants, tok)
	}
}

// TTL is how long an issued token stays valid.
func (l *Lobby) TTL() time.Duration { return l.ttl }
