package lobby

import (
	"errors"
	"testing"
	"time"

	"github.com/park285/Cheese-SwapChess/internal/match"
	"github.com/park285/Cheese-SwapChess/internal/match/store"
	"github.com/park285/Cheese-SwapChess/internal/session"
)

func newTestLobby(t *testing.T, ttl time.Duration) (*Lobby, *match.Registry) {
	t.Helper()
	st, err := store.NewFileStore(t.TempDir())
	if err != nil { t.Fatalf("NewFileStore: %v", err) }
	reg := match.NewRegistry(st)
	t.Cleanup(func() { reg.Close() })
	l := New(reg, ttl, []string{"root"}, nil)
	t.Cleanup(l.Close)
	return l, reg
}

func TestIssueAndConsumeOnce(t *testing.T) {
	l, reg := newTestLobby(t, time.Minute)
	reg.Create("g", "pw", session.Options{})

	if _, err := l.Issue("missing", "pw", "u", false); !errors.Is(err, match.ErrNotFound) { t.Fatalf("missing match: %v", err) }
	if _, err := l.Issue("g", "bad", "u", false); !errors.Is(err, ErrWrongPassword) { t.Fatalf("bad password: %v", err) }
	if _, err := l.Issue("g", "pw", "u", true); !errors.Is(err, match.ErrSpectateEmpty) { t.Fatalf("spectate empty: %v", err) }

	g, err := l.Issue("g", "pw", "root", false)
	if err != nil { t.Fatalf("Issue: %v", err) }
	if !g.Admin || g.Match != "g" || g.Token == "" { t.Fatalf("grant = %+v", g) }
	if l.Pending() != 1 { t.Fatalf("pending = %d", l.Pending()) }

	got, err := l.Consume(g.Token)
	if err != nil || got.User != "root" { t.Fatalf("Consume: %+v %v", got, err) }
	if _, err := l.Consume(g.Token); !errors.Is(err, ErrTokenInvalid) { t.Fatalf("second consume: %v", err) }
}

func TestTokenExpires(t *testing.T) {
	l, reg := newTestLobby(t, 20*time.Millisecond)
	reg.Create("g", "", session.Options{})
	g, err := l.Issue("g", "", "u", false)
	if err != nil { t.Fatalf("Issue: %v", err) }
	deadline := time.Now().Add(2 * time.Second)
	for l.Pending() > 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if _, err := l.Consume(g.Token); !errors.Is(err, ErrTokenInvalid) { t.Fatalf("expired token accepted: %v", err) }
}
