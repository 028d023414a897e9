package results

import (
	"context"
	"sort"
	"sync"

	"github.com/park285/Cheese-SwapChess/internal/domain"
)

// memory keeps results in process when no database is configured.
type memory struct {
	mu     sync.RWMutex
	nextID int64
	byUUID map[string]*domain.MatchResult
	list   []*domain.MatchResult
}

func NewMemory() Repository {
	return &memory{byUUID: make(map[string]*domain.MatchResult)}
}

func (m *memory) Close() error { return nil }

func (m *memory) InsertResult(ctx context.Context, res *domain.MatchResult) (int64, error) {
	if res == nil {
		return 0, ErrDuplicateResult
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byUUID[res.MatchUUID]; exists {
		return 0, ErrDuplicateResult
	}
	m.nextID++
	cp := cloneResult(res)
	cp.ID = m.nextID
	m.byUUID[cp.MatchUUID] = cp
	m.list = append(m.list, cp)
	return cp.ID, nil
}

func (m *memory) RecentResults(ctx context.Context, limit int) ([]*domain.MatchResult, error) {
	return m.filter(func(*domain.MatchResult) bool { return true }, limit), nil
}

func (m *memory) ResultsForMatch(ctx context.Context, name string, limit int) ([]*domain.MatchResult, error) {
	return m.filter(func(r *domain.MatchResult) bool { return r.MatchName == name }, limit), nil
}

func (m *memory) filter(keep func(*domain.MatchResult) bool, limit int) []*domain.MatchResult {
	if limit <= 0 {
		limit = 10
	}
	m.mu.RLock()
	items := make([]*domain.MatchResult, 0, len(m.list))
	for _, r := range m.list {
		if keep(r) {
			items = append(items, cloneResult(r))
		}
	}
	m.mu.RUnlock()
	sort.Slice(items, func(i, j int) bool {
		if !items[i].EndedAt.Equal(items[j].EndedAt) {
			return items[i].EndedAt.After(items[j].EndedAt)
		}
		return items[i].ID > items[j].ID
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

func cloneResult(r *domain.MatchResult) *domain.MatchResult {
	cp := *r
	cp.Captured = append([]string(nil), r.Captured...)
	cp.Log = append([]string(nil), r.Log...)
	return &cp
}
