package match

import (
	"crypto/subtle"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/park285/Cheese-SwapChess/internal/board"
	"github.com/park285/Cheese-SwapChess/internal/codec"
	"github.com/park285/Cheese-SwapChess/internal/session"
)

var (
	ErrFull               = errors.New("match is full")
	ErrSpectateEmpty      = errors.New("cannot spectate an empty match")
	ErrSpectatorsDisabled = errors.New("spectators are disabled")
)

// Seat is one attached connection.
type Seat struct {
	User      string
	Requester session.Requester
	Host      bool
}

// Stats is the occupancy broadcast to clients.
type Stats struct {
	Players    int `json:"ppl"`
	Max        int `json:"max"`
	Spectators int `json:"spec"`
}

// Match is a named session plus its occupancy.
type Match struct {
	Name    string
	Session *session.Session

	password string

	mu         sync.Mutex
	id         string
	startedAt  time.Time
	colors     map[board.Color]bool
	players    int
	spectators int
	host       string
	archived   bool
}

func newMatch(name, password string, s *session.Session) *Match {
	return &Match{
		Name:      name,
		Session:   s,
		password:  password,
		id:        uuid.NewString(),
		startedAt: time.Now(),
		colors:    make(map[board.Color]bool),
	}
}

// ID identifies the current game of the match; it changes on Reset.
func (m *Match) ID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.id
}

func (m *Match) CheckPassword(pw string) bool {
	return subtle.ConstantTimeCompare([]byte(m.password), []byte(pw)) == 1
}

func (m *Match) maxPlayers() int {
	if m.Session.Options().SingleController {
		return 1
	}
	return 2
}

// Admit reports whether a new player or spectator could join right now.
func (m *Match) Admit(spectator bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.admit(spectator)
}

func (m *Match) admit(spectator bool) error {
	if spectator {
		if m.players == 0 {
			return ErrSpectateEmpty
		}
		if !m.Session.Options().AllowSpectators {
			return ErrSpectatorsDisabled
		}
		return nil
	}
	if m.players >= m.maxPlayers() {
		return ErrFull
	}
	return nil
}

// Attach seats a connection. Players get the wildcard controller in a
// single-controller match, otherwise the first free color, White first.
// The first player to attach becomes the host.
func (m *Match) Attach(user string, spectator, admin bool) (Seat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.admit(spectator); err != nil {
		return Seat{}, err
	}
	seat := Seat{User: user}
	switch {
	case spectator:
		seat.Requester = session.Spectator()
		m.spectators++
	case m.Session.Options().SingleController:
		seat.Requester = session.Controller()
		m.players++
	default:
		c := board.White
		if m.colors[board.White] {
			c = board.Black
		}
		m.colors[c] = true
		seat.Requester = session.Player(c)
		m.players++
	}
	seat.Requester.Admin = admin
	if !spectator && m.host == "" {
		m.host = user
	}
	seat.Host = !spectator && m.host == user
	return seat, nil
}

// Detach frees a seat taken by Attach.
func (m *Match) Detach(seat Seat) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if seat.Requester.Spectator {
		if m.spectators > 0 {
			m.spectators--
		}
		return
	}
	if m.players > 0 {
		m.players--
	}
	if !seat.Requester.Wildcard {
		delete(m.colors, seat.Requester.Color)
	}
}

func (m *Match) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{Players: m.players, Max: m.maxPlayers(), Spectators: m.spectators}
}

func (m *Match) IsHost(user string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.host != "" && m.host == user
}

// Reset starts a new game in the same match.
func (m *Match) Reset() {
	m.Session.Reset()
	m.mu.Lock()
	m.id = uuid.NewString()
	m.startedAt = time.Now()
	m.archived = false
	m.mu.Unlock()
}

// Undo takes back the last move. When that reopens a finished game the game
// gets a new id so its next result is archived as well.
func (m *Match) Undo(req session.Requester) error {
	_, wasOver := m.Session.Winner()
	if err := m.Session.Undo(req); err != nil {
		return err
	}
	if _, over := m.Session.Winner(); wasOver && !over {
		m.mu.Lock()
		if m.archived {
			m.id = uuid.NewString()
			m.archived = false
		}
		m.mu.Unlock()
	}
	return nil
}

// Record is the persisted form including the encoded password.
func (m *Match) Record() codec.Record {
	rec := m.Session.Record()
	rec.Password = codec.EncodePassword(m.password)
	return rec
}

// claimArchive marks the current game archived; it returns false if it already was.
func (m *Match) claimArchive() (id string, startedAt time.Time, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.archived {
		return "", time.Time{}, false
	}
	m.archived = true
	return m.id, m.startedAt, true
}
