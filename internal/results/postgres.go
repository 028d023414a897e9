package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/park285/Cheese-SwapChess/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS match_results (
	id          BIGSERIAL PRIMARY KEY,
	match_uuid  TEXT NOT NULL UNIQUE,
	match_name  TEXT NOT NULL,
	winner      TEXT NOT NULL,
	method      TEXT NOT NULL,
	plies       INTEGER NOT NULL DEFAULT 0,
	captured    JSONB NOT NULL DEFAULT '[]'::jsonb,
	log         JSONB NOT NULL DEFAULT '[]'::jsonb,
	started_at  TIMESTAMPTZ NOT NULL,
	ended_at    TIMESTAMPTZ NOT NULL,
	duration_ms BIGINT NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS match_results_name_idx ON match_results (match_name, ended_at DESC);`

const selectColumns = `
	id, match_uuid, match_name, winner, method, plies, captured, log, started_at, ended_at, duration_ms`

type postgres struct {
	db *sql.DB
}

// NewPostgres opens the database, checks connectivity and ensures the schema exists.
func NewPostgres(databaseURL string) (Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure match_results schema: %w", err)
	}
	return &postgres{db: db}, nil
}

func (r *postgres) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *postgres) InsertResult(ctx context.Context, res *domain.MatchResult) (int64, error) {
	if res == nil {
		return 0, fmt.Errorf("nil match result payload")
	}
	captured, err := json.Marshal(nonNil(res.Captured))
	if err != nil {
		return 0, fmt.Errorf("marshal captured: %w", err)
	}
	logLines, err := json.Marshal(nonNil(res.Log))
	if err != nil {
		return 0, fmt.Errorf("marshal log: %w", err)
	}

	const query = `
		INSERT INTO match_results (
			match_uuid, match_name, winner, method, plies, captured, log, started_at, ended_at, duration_ms
		)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7::jsonb, $8, $9, $10)
		ON CONFLICT (match_uuid) DO NOTHING
		RETURNING id`

	var id sql.NullInt64
	err = r.db.QueryRowContext(ctx, query,
		res.MatchUUID,
		res.MatchName,
		res.Winner,
		res.Method,
		res.Plies,
		captured,
		logLines,
		res.StartedAt,
		res.EndedAt,
		res.Duration.Milliseconds(),
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !id.Valid) {
		return 0, ErrDuplicateResult
	}
	if err != nil {
		return 0, fmt.Errorf("insert match result: %w", err)
	}
	return id.Int64, nil
}

func (r *postgres) RecentResults(ctx context.Context, limit int) ([]*domain.MatchResult, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `SELECT` + selectColumns + `
		FROM match_results
		ORDER BY ended_at DESC
		LIMIT $1`
	return r.query(ctx, query, limit)
}

func (r *postgres) ResultsForMatch(ctx context.Context, name string, limit int) ([]*domain.MatchResult, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `SELECT` + selectColumns + `
		FROM match_results
		WHERE match_name = $1
		ORDER BY ended_at DESC
		LIMIT $2`
	return r.query(ctx, query, name, limit)
}

func (r *postgres) query(ctx context.Context, query string, args ...any) ([]*domain.MatchResult, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select match results: %w", err)
	}
	defer rows.Close()

	var out []*domain.MatchResult
	for rows.Next() {
		var (
			res          domain.MatchResult
			capturedJSON []byte
			logJSON      []byte
			durationMS   sql.NullInt64
		)
		if err := rows.Scan(
			&res.ID,
			&res.MatchUUID,
			&res.MatchName,
			&res.Winner,
			&res.Method,
			&res.Plies,
			&capturedJSON,
			&logJSON,
			&res.StartedAt,
			&res.EndedAt,
			&durationMS,
		); err != nil {
			return nil, fmt.Errorf("scan match result: %w", err)
		}
		if durationMS.Valid {
			res.Duration = time.Duration(durationMS.Int64) * time.Millisecond
		}
		if err := json.Unmarshal(capturedJSON, &res.Captured); err != nil {
			return nil, fmt.Errorf("unmarshal captured: %w", err)
		}
		if err := json.Unmarshal(logJSON, &res.Log); err != nil {
			return nil, fmt.Errorf("unmarshal log: %w", err)
		}
		out = append(out, &res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate match results: %w", err)
	}
	return out, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
