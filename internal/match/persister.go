package match

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/park285/Cheese-SwapChess/internal/match/store"
)

const saveTimeout = 5 * time.Second

// persister writes matches to the store from one goroutine. Writes for the
// same name coalesce: only the latest state is saved. A nil entry deletes.
type persister struct {
	store  store.Store
	logger *zap.Logger

	mu    sync.Mutex
	dirty map[string]*Match

	kick chan struct{}
	quit chan struct{}
	done chan struct{}
}

func newPersister(st store.Store, logger *zap.Logger) *persister {
	p := &persister{
		store:  st,
		logger: logger,
		dirty:  make(map[string]*Match),
		kick:   make(chan struct{}, 1),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *persister) save(m *Match)      { p.mark(m.Name, m) }
func (p *persister) remove(name string) { p.mark(name, nil) }

func (p *persister) mark(name string, m *Match) {
	p.mu.Lock()
	p.dirty[name] = m
	p.mu.Unlock()
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

func (p *persister) run() {
	defer close(p.done)
	for {
		select {
		case <-p.kick:
			p.flush()
		case <-p.quit:
			p.flush()
			return
		}
	}
}

func (p *persister) flush() {
	p.mu.Lock()
	batch := p.dirty
	p.dirty = make(map[string]*Match)
	p.mu.Unlock()

	for name, m := range batch {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		var err error
		if m == nil {
			err = p.store.Delete(ctx, name)
		} else {
			err = p.store.Save(ctx, name, m.Record())
		}
		cancel()
		if err != nil {
			p.logger.Error("match_persist_error", zap.String("name", name), zap.Bool("delete", m == nil), zap.Error(err))
			continue
		}
		p.logger.Debug("match_persist", zap.String("name", name), zap.Bool("delete", m == nil))
	}
}

// close flushes pending writes and stops the worker.
func (p *persister) close() {
	close(p.quit)
	<-p.done
}
