package results

import (
	"context"
	"errors"

	"github.com/park285/Cheese-SwapChess/internal/domain"
)

var ErrDuplicateResult = errors.New("match result already archived")

// Repository archives finished matches.
type Repository interface {
	InsertResult(ctx context.Context, res *domain.MatchResult) (int64, error)
	RecentResults(ctx context.Context, limit int) ([]*domain.MatchResult, error)
	ResultsForMatch(ctx context.Context, name string, limit int) ([]*domain.MatchResult, error)
	Close() error
}
