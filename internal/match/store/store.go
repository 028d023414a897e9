package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/park285/Cheese-SwapChess/internal/codec"
)

var ErrNotFound = errors.New("match record not found")

// Store persists match records by name.
type Store interface {
	Save(ctx context.Context, name string, rec codec.Record) error
	Load(ctx context.Context, name string) (codec.Record, error)
	Delete(ctx context.Context, name string) error
	Names(ctx context.Context) ([]string, error)
	Close() error
}

// Open returns the backend named by kind ("file" or "redis").
func Open(ctx context.Context, kind, dataDir, redisURL string) (Store, error) {
	var (
		s   Store
		err error
	)
	switch kind {
	case "file":
		s, err = NewFileStore(dataDir)
	case "redis":
		s, err = NewRedisStore(ctx, redisURL)
	default:
		return nil, fmt.Errorf("unknown store backend %q", kind)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
