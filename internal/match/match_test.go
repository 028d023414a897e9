package match

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/park285/Cheese-SwapChess/internal/board"
	"github.com/park285/Cheese-SwapChess/internal/domain"
	"github.com/park285/Cheese-SwapChess/internal/match/store"
	"github.com/park285/Cheese-SwapChess/internal/session"
)

type recordingArchive struct {
	mu   sync.Mutex
	got  []*domain.MatchResult
	done chan struct{}
}

func (a *recordingArchive) InsertResult(ctx context.Context, res *domain.MatchResult) (int64, error) {
	a.mu.Lock()
	a.got = append(a.got, res)
	a.mu.Unlock()
	a.done <- struct{}{}
	return int64(len(a.got)), nil
}

func newTestRegistry(t *testing.T, opts ...Option) (*Registry, store.Store) {
	t.Helper()
	st, err := store.NewFileStore(t.TempDir())
	if err != nil { t.Fatalf("NewFileStore: %v", err) }
	r := NewRegistry(st, opts...)
	return r, st
}

func TestCreateGetDelete(t *testing.T) {
	r, _ := newTestRegistry(t, WithMaxGames(2))
	defer r.Close()

	if _, err := r.Create("  ", "", session.Options{}); !errors.Is(err, ErrNameRequired) { t.Fatalf("blank name: %v", err) }
	if _, err := r.Create("one", "pw", session.Options{}); err != nil { t.Fatalf("Create: %v", err) }
	if _, err := r.Create("one", "pw", session.Options{}); !errors.Is(err, ErrExists) { t.Fatalf("duplicate: %v", err) }
	if _, err := r.Create("two", "", session.Options{}); err != nil { t.Fatalf("Create two: %v", err) }
	if _, err := r.Create("three", "", session.Options{}); !errors.Is(err, ErrTooMany) { t.Fatalf("limit: %v", err) }

	m, err := r.Get("one")
	if err != nil || !m.CheckPassword("pw") || m.CheckPassword("nope") { t.Fatalf("Get/CheckPassword: %v", err) }
	if got := r.Names(); len(got) != 2 || got[0] != "one" { t.Fatalf("Names = %v", got) }

	if err := r.Delete("one"); err != nil { t.Fatalf("Delete: %v", err) }
	if _, err := r.Get("one"); !errors.Is(err, ErrNotFound) { t.Fatalf("Get after delete: %v", err) }
	if err := r.Delete("one"); !errors.Is(err, ErrNotFound) { t.Fatalf("second delete: %v", err) }
}

func TestAttachPolicy(t *testing.T) {
	r, _ := newTestRegistry(t)
	defer r.Close()
	m, _ := r.Create("duel", "", session.Options{AllowSpectators: true})

	if _, err := m.Attach("watcher", true, false); !errors.Is(err, ErrSpectateEmpty) { t.Fatalf("spectating empty: %v", err) }
	a, err := m.Attach("alice", false, false)
	if err != nil || a.Requester.Color != board.White || !a.Host { t.Fatalf("first seat: %+v %v", a, err) }
	b, err := m.Attach("bob", false, true)
	if err != nil || b.Requester.Color != board.Black || b.Host || !b.Requester.Admin { t.Fatalf("second seat: %+v %v", b, err) }
	if _, err := m.Attach("carol", false, false); !errors.Is(err, ErrFull) { t.Fatalf("third player: %v", err) }
	if _, err := m.Attach("watcher", true, false); err != nil { t.Fatalf("spectator: %v", err) }
	if st := m.Stats(); st != (Stats{Players: 2, Max: 2, Spectators: 1}) { t.Fatalf("stats = %+v", st) }

	m.Detach(a)
	c, err := m.Attach("carol", false, false)
	if err != nil || c.Requester.Color != board.White { t.Fatalf("reseat white: %+v %v", c, err) }
	if !m.IsHost("alice") || m.IsHost("carol") { t.Fatalf("host should stay alice") }

	m.Session.SetAllowSpectators(false)
	if err := m.Admit(true); !errors.Is(err, ErrSpectatorsDisabled) { t.Fatalf("spectators disabled: %v", err) }
}

func TestSingleControllerSeat(t *testing.T) {
	r, _ := newTestRegistry(t)
	defer r.Close()
	m, _ := r.Create("solo", "", session.Options{SingleController: true})
	s, err := m.Attach("me", false, false)
	if err != nil || !s.Requester.Wildcard { t.Fatalf("solo seat: %+v %v", s, err) }
	if _, err := m.Attach("other", false, false); !errors.Is(err, ErrFull) { t.Fatalf("solo is full: %v", err) }
	if st := m.Stats(); st.Max != 1 { t.Fatalf("max = %d", st.Max) }
}

func TestPersistAndReload(t *testing.T) {
	r, st := newTestRegistry(t)
	m, _ := r.Create("saved", "secret", session.Options{SingleController: true, AllowSpectators: true})
	if _, err := m.Session.Play(session.Controller(), board.Sq(6, 4), board.Sq(4, 4), false); err != nil { t.Fatalf("Play: %v", err) }
	r.Save(m)
	r.Create("gone", "", session.Options{})
	r.Delete("gone")
	if err := r.Close(); err != nil { t.Fatalf("Close: %v", err) }

	fresh, err := store.NewFileStore(dirOf(t, st))
	if err != nil { t.Fatalf("reopen: %v", err) }
	r2 := NewRegistry(fresh)
	defer r2.Close()
	n, err := r2.LoadAll(context.Background())
	if err != nil || n != 1 { t.Fatalf("LoadAll = %d, %v", n, err) }
	m2, err := r2.Get("saved")
	if err != nil { t.Fatalf("Get: %v", err) }
	if !m2.CheckPassword("secret") || m2.Session.Turn() != board.Black || m2.Session.Snapshot() != m.Session.Snapshot() { t.Fatalf("reloaded match differs") }
}

func dirOf(t *testing.T, st store.Store) string {
	t.Helper()
	names, err := st.Names(context.Background())
	if err != nil || len(names) != 1 { t.Fatalf("stored names = %v %v", names, err) }
	fs, ok := st.(*store.FileStore)
	if !ok { t.Fatalf("expected file store") }
	return fs.Dir()
}

func TestFinishArchivesOnce(t *testing.T) {
	arch := &recordingArchive{done: make(chan struct{}, 4)}
	r, _ := newTestRegistry(t, WithArchive(arch))
	defer r.Close()
	m, _ := r.Create("end", "", session.Options{})

	if err := r.Finish(m, domain.MethodForfeit); !errors.Is(err, ErrNotFinished) { t.Fatalf("finish without winner: %v", err) }
	if err := m.Session.Resign(session.Player(board.White)); err != nil { t.Fatalf("Resign: %v", err) }
	if err := r.Finish(m, domain.MethodForfeit); err != nil { t.Fatalf("Finish: %v", err) }
	if err := r.Finish(m, domain.MethodForfeit); err != nil { t.Fatalf("second Finish: %v", err) }

	select {
	case <-arch.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("archive not called")
	}
	r.finishing.Wait()
	arch.mu.Lock()
	defer arch.mu.Unlock()
	if len(arch.got) != 1 { t.Fatalf("archived %d results", len(arch.got)) }
	if res := arch.got[0]; res.Winner != "black" || res.Method != domain.MethodForfeit || res.MatchName != "end" { t.Fatalf("result = %+v", res) }

	oldID := m.ID()
	m.Reset()
	if m.ID() == oldID { t.Fatalf("reset should start a new game id") }
}

func TestUndoReopenedGameIsArchivedAgain(t *testing.T) {
	arch := &recordingArchive{done: make(chan struct{}, 4)}
	r, _ := newTestRegistry(t, WithArchive(arch))
	defer r.Close()
	m, _ := r.Create("reopen", "", session.Options{SingleController: true})
	solo := session.Controller()

	wait := func() {
		t.Helper()
		select {
		case <-arch.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("archive not called")
		}
	}

	if err := m.Session.Resign(solo); err != nil { t.Fatalf("Resign: %v", err) }
	if err := r.Finish(m, domain.MethodForfeit); err != nil { t.Fatalf("Finish: %v", err) }
	wait()
	firstID := m.ID()

	if err := m.Undo(solo); err != nil { t.Fatalf("Undo: %v", err) }
	if m.ID() == firstID { t.Fatalf("reopened game kept its archived id") }
	if _, err := m.Session.Play(solo, board.Sq(6, 4), board.Sq(4, 4), false); err != nil { t.Fatalf("Play: %v", err) }
	if err := m.Session.Resign(solo); err != nil { t.Fatalf("Resign: %v", err) }
	if err := r.Finish(m, domain.MethodForfeit); err != nil { t.Fatalf("second Finish: %v", err) }
	wait()
	r.finishing.Wait()

	arch.mu.Lock()
	defer arch.mu.Unlock()
	if len(arch.got) != 2 { t.Fatalf("archived %d results", len(arch.got)) }
	if arch.got[0].Winner != "black" || arch.got[1].Winner != "white" { t.Fatalf("winners = %s, %s", arch.got[0].Winner, arch.got[1].Winner) }
	if arch.got[0].MatchUUID == arch.got[1].MatchUUID { t.Fatalf("both results share game id %s", arch.got[0].MatchUUID) }
}

func TestUndoWithoutFinishKeepsID(t *testing.T) {
	r, _ := newTestRegistry(t)
	defer r.Close()
	m, _ := r.Create("keep", "", session.Options{})
	id := m.ID()
	if _, err := m.Session.Play(session.Player(board.White), board.Sq(6, 4), board.Sq(4, 4), false); err != nil { t.Fatalf("Play: %v", err) }
	if err := m.Undo(session.Player(board.Black)); session.KindOf(err) != session.KindPermission { t.Fatalf("black undoing white's move: %v", err) }
	if err := m.Undo(session.Player(board.White)); err != nil { t.Fatalf("Undo: %v", err) }
	if m.ID() != id { t.Fatalf("plain undo changed the game id") }
}
