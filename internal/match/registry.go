package match

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/park285/Cheese-SwapChess/internal/board"
	"github.com/park285/Cheese-SwapChess/internal/codec"
	"github.com/park285/Cheese-SwapChess/internal/domain"
	"github.com/park285/Cheese-SwapChess/internal/match/store"
	"github.com/park285/Cheese-SwapChess/internal/session"
)

var (
	ErrNameRequired = errors.New("match name is required")
	ErrExists       = errors.New("match already exists")
	ErrNotFound     = errors.New("match does not exist")
	ErrTooMany      = errors.New("too many matches")
	ErrNotFinished  = errors.New("match has no winner")
)

const finishTimeout = 10 * time.Second

// Archive receives finished matches.
type Archive interface {
	InsertResult(ctx context.Context, res *domain.MatchResult) (int64, error)
}

// Notifier is told about finished matches.
type Notifier interface {
	MatchFinished(ctx context.Context, res *domain.MatchResult) error
}

type Option func(*Registry)

func WithArchive(a Archive) Option    { return func(r *Registry) { r.archive = a } }
func WithNotifier(n Notifier) Option  { return func(r *Registry) { r.notifier = n } }
func WithMaxGames(n int) Option       { return func(r *Registry) { r.maxGames = n } }
func WithLogger(l *zap.Logger) Option { return func(r *Registry) { r.logger = l } }

// Registry owns every live match of the process.
type Registry struct {
	mu      sync.RWMutex
	matches map[string]*Match

	store    store.Store
	persist  *persister
	archive  Archive
	notifier Notifier
	maxGames int
	logger   *zap.Logger

	finishing sync.WaitGroup
}

func NewRegistry(st store.Store, opts ...Option) *Registry {
	r := &Registry{matches: make(map[string]*Match), store: st, maxGames: 200}
	for _, o := range opts {
		o(r)
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	r.persist = newPersister(st, r.logger)
	return r
}

// Create registers a fresh match and schedules its first save.
func (r *Registry) Create(name, password string, opts session.Options) (*Match, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	r.mu.Lock()
	if _, ok := r.matches[name]; ok {
		r.mu.Unlock()
		return nil, ErrExists
	}
	if r.maxGames > 0 && len(r.matches) >= r.maxGames {
		r.mu.Unlock()
		return nil, ErrTooMany
	}
	m := newMatch(name, password, session.New(opts))
	r.matches[name] = m
	r.mu.Unlock()

	r.persist.save(m)
	r.logger.Info("match_create",
		zap.String("name", name),
		zap.Bool("single_controller", opts.SingleController),
		zap.Bool("against_ai", opts.AgainstAI),
		zap.Bool("allow_spectators", opts.AllowSpectators),
	)
	return m, nil
}

func (r *Registry) Get(name string) (*Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.matches[name]
	if !ok {
		return nil, ErrNotFound
	}
	return m, nil
}

// Delete drops the match from memory and from the store.
func (r *Registry) Delete(name string) error {
	r.mu.Lock()
	_, ok := r.matches[name]
	delete(r.matches, name)
	r.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	r.persist.remove(name)
	r.logger.Info("match_delete", zap.String("name", name))
	return nil
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.matches))
	for n := range r.matches {
		names = append(names, n)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.matches)
}

// Save schedules an asynchronous write of the match.
func (r *Registry) Save(m *Match) { r.persist.save(m) }

// LoadAll restores every stored match. Records that fail to decode are
// logged and skipped.
func (r *Registry) LoadAll(ctx context.Context) (int, error) {
	names, err := r.store.Names(ctx)
	if err != nil {
		return 0, fmt.Errorf("list stored matches: %w", err)
	}
	loaded := 0
	for _, name := range names {
		rec, err := r.store.Load(ctx, name)
		if err != nil {
			r.logger.Warn("match_load_error", zap.String("name", name), zap.Error(err))
			continue
		}
		m, err := fromRecord(name, rec)
		if err != nil {
			r.logger.Warn("match_decode_error", zap.String("name", name), zap.Error(err))
			continue
		}
		r.mu.Lock()
		r.matches[name] = m
		r.mu.Unlock()
		loaded++
	}
	r.logger.Info("match_load_all", zap.Int("loaded", loaded), zap.Int("stored", len(names)))
	return loaded, nil
}

func fromRecord(name string, rec codec.Record) (*Match, error) {
	pw, err := codec.DecodePassword(rec.Password)
	if err != nil {
		return nil, err
	}
	s, err := session.FromRecord(rec)
	if err != nil {
		return nil, err
	}
	m := newMatch(name, pw, s)
	if _, ok := s.Winner(); ok {
		m.archived = true
	}
	return m, nil
}

// Finish archives and announces the match's current winner in the background.
// It is a no-op for a match without a winner or one already archived.
func (r *Registry) Finish(m *Match, method string) error {
	winner, ok := m.Session.Winner()
	if !ok {
		return ErrNotFinished
	}
	id, startedAt, claimed := m.claimArchive()
	if !claimed {
		return nil
	}
	res := buildResult(m, id, winner, method, startedAt, time.Now())
	r.logger.Info("match_finish",
		zap.String("name", m.Name),
		zap.String("winner", res.Winner),
		zap.String("method", method),
		zap.Int("plies", res.Plies),
	)
	r.finishing.Add(1)
	go func() {
		defer r.finishing.Done()
		ctx, cancel := context.WithTimeout(context.Background(), finishTimeout)
		defer cancel()
		r.publish(ctx, res)
	}()
	return nil
}

func (r *Registry) publish(ctx context.Context, res *domain.MatchResult) {
	if r.archive != nil {
		if _, err := r.archive.InsertResult(ctx, res); err != nil {
			r.logger.Error("match_archive_error", zap.String("name", res.MatchName), zap.Error(err))
		}
	}
	if r.notifier != nil {
		if err := r.notifier.MatchFinished(ctx, res); err != nil {
			r.logger.Warn("match_notify_error", zap.String("name", res.MatchName), zap.Error(err))
		}
	}
}

func buildResult(m *Match, id string, winner board.Color, method string, started, ended time.Time) *domain.MatchResult {
	res := &domain.MatchResult{
		MatchUUID: id,
		MatchName: m.Name,
		Winner:    strings.ToLower(winner.String()),
		Method:    method,
		Plies:     m.Session.HistoryLen(),
		StartedAt: started,
		EndedAt:   ended,
		Duration:  ended.Sub(started),
	}
	for _, p := range m.Session.Captured() {
		res.Captured = append(res.Captured, strings.ToLower(p.String()))
	}
	for _, e := range m.Session.Log() {
		res.Log = append(res.Log, e.Text)
	}
	return res
}

// Close waits for pending archive jobs and flushes pending writes.
func (r *Registry) Close() error {
	r.finishing.Wait()
	r.persist.close()
	return r.store.Close()
}
