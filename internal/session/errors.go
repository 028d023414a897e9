package session

import (
	"errors"
	"fmt"
)

// Kind classifies a rejected request.
type Kind int

const (
	KindInput Kind = iota + 1
	KindPermission
	KindRule
	KindGameOver
)

// Wire codes reported to clients.
const (
	CodeOK          = 0
	CodeRejected    = 1
	CodeIllegalMove = 2
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindPermission:
		return "permission"
	case KindRule:
		return "rule"
	case KindGameOver:
		return "game_over"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Code maps the kind onto the client-facing result code. Only rule violations
// are reported as illegal moves.
func (k Kind) Code() int {
	if k == KindRule {
		return CodeIllegalMove
	}
	return CodeRejected
}

// Error is a request rejected by the session. The session is left unchanged.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func newErr(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

// CodeOf returns the wire code for err: CodeOK for nil, CodeRejected for
// errors that are not session errors.
func CodeOf(err error) int {
	if err == nil {
		return CodeOK
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Kind.Code()
	}
	return CodeRejected
}

// KindOf returns the kind of a session error, or 0.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}
