package codec

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// LogEntry is one human-readable log line. It travels as [text, title, unixMillis].
type LogEntry struct {
	Text  string
	Title string
	At    time.Time
}

func (e LogEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{e.Text, e.Title, e.At.UnixMilli()})
}

func (e *LogEntry) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) != 3 {
		return fmt.Errorf("%w: log entry has %d fields", ErrMalformed, len(raw))
	}
	var ms int64
	if err := json.Unmarshal(raw[0], &e.Text); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[1], &e.Title); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[2], &ms); err != nil {
		return err
	}
	e.At = time.UnixMilli(ms)
	return nil
}

// Record is the persisted form of a named match. Flags are stored as 0/1.
type Record struct {
	Singleplayer    int        `json:"s"`
	Password        string     `json:"p"`
	Turn            string     `json:"go"`
	AgainstAI       int        `json:"ai"`
	AllowSpectators int        `json:"as"`
	Rows            int        `json:"r,omitempty"`
	Cols            int        `json:"c,omitempty"`
	Data            string     `json:"d"`
	History         []string   `json:"h"`
	Log             []LogEntry `json:"l"`
}

func Flag(v bool) int {
	if v {
		return 1
	}
	return 0
}

// EncodePassword returns the stored form of a plaintext password.
func EncodePassword(plain string) string {
	return base64.StdEncoding.EncodeToString([]byte(plain))
}

func DecodePassword(stored string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return "", fmt.Errorf("%w: password: %v", ErrMalformed, err)
	}
	return string(b), nil
}

func MarshalRecord(r Record) ([]byte, error) { return json.Marshal(r) }

func UnmarshalRecord(b []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(b, &r); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return r, nil
}
