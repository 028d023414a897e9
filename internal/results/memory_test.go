package results

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/park285/Cheese-SwapChess/internal/domain"
)

func TestMemoryInsertAndQuery(t *testing.T) {
	repo := NewMemory()
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	for i, name := range []string{"alpha", "beta", "alpha"} {
		_, err := repo.InsertResult(ctx, &domain.MatchResult{
			MatchUUID: name + string(rune('0'+i)), MatchName: name, Winner: "white",
			Method: domain.MethodKingCapture, EndedAt: base.Add(time.Duration(i) * time.Minute),
			Captured: []string{"pawn"},
		})
		if err != nil { t.Fatalf("InsertResult %d: %v", i, err) }
	}

	recent, err := repo.RecentResults(ctx, 2)
	if err != nil { t.Fatalf("RecentResults: %v", err) }
	if len(recent) != 2 || recent[0].MatchUUID != "alpha2" { t.Fatalf("recent order: %+v", recent) }

	alpha, _ := repo.ResultsForMatch(ctx, "alpha", 0)
	if len(alpha) != 2 { t.Fatalf("alpha results = %d", len(alpha)) }

	alpha[0].Captured[0] = "mutated"
	again, _ := repo.ResultsForMatch(ctx, "alpha", 1)
	if again[0].Captured[0] != "pawn" { t.Fatalf("repository leaked internal slice") }
}

func TestMemoryDuplicate(t *testing.T) {
	repo := NewMemory()
	ctx := context.Background()
	res := &domain.MatchResult{MatchUUID: "u1", MatchName: "x"}
	if _, err := repo.InsertResult(ctx, res); err != nil { t.Fatalf("first insert: %v", err) }
	if _, err := repo.InsertResult(ctx, res); !errors.Is(err, ErrDuplicateResult) { t.Fatalf("expected duplicate, got %v", err) }
}
