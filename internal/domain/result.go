package domain

import "time"

const (
	MethodKingCapture = "king_capture"
	MethodForfeit     = "forfeit"
)

// MatchResult is the archived outcome of a finished match.
type MatchResult struct {
	ID        int64
	MatchUUID string
	MatchName string
	Winner    string // "white" or "black"
	Method    string
	Plies     int
	Captured  []string
	Log       []string
	StartedAt time.Time
	EndedAt   time.Time
	Duration  time.Duration
}
