package msgcat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEmbeddedRender(t *testing.T) {
	c, err := New("")
	if err != nil { t.Fatalf("New: %v", err) }
	got, err := c.Render("lobby.game_missing", map[string]any{"Name": "park"})
	if err != nil { t.Fatalf("Render: %v", err) }
	if got != "Game 'park' does not exist." { t.Fatalf("got %q", got) }
	if _, err := c.Render("lobby.game_missing", map[string]any{}); err == nil { t.Fatalf("missing data key should fail") }
	if got := c.Text("nope.nothing", nil); got != "nope.nothing" { t.Fatalf("Text fallback = %q", got) }
}

func TestOverrideDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("lobby:\n  wrong_password: \"Nope\"\n"), 0o644); err != nil { t.Fatalf("write: %v", err) }
	c, err := New(dir)
	if err != nil { t.Fatalf("New: %v", err) }
	if got := c.Text("lobby.wrong_password", nil); got != "Nope" { t.Fatalf("override not applied: %q", got) }

	if err := os.WriteFile(filepath.Join(dir, "b.yml"), []byte("lobby:\n  wrong_password: \"Again\"\n"), 0o644); err != nil { t.Fatalf("write: %v", err) }
	if _, err := New(dir); err == nil || !strings.Contains(err.Error(), "duplicate") { t.Fatalf("expected duplicate key error, got %v", err) }
}

func TestNonStringLeafRejected(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("lobby:\n  limit: 3\n"), 0o644); err != nil { t.Fatalf("write: %v", err) }
	if _, err := New(dir); err == nil { t.Fatalf("expected error for numeric leaf") }
}
