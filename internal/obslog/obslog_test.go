package obslog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("LOG_FORMAT", "yaml")
	t.Setenv("LOG_TO_FILE", "")
	opts := FromEnv()
	if opts.Level != zapcore.WarnLevel { t.Fatalf("level = %v", opts.Level) }
	if opts.Format != FormatLegacy { t.Fatalf("unknown format should fall back to legacy, got %q", opts.Format) }
	if opts.File != "" { t.Fatalf("file output should be off by default") }
}

func TestNewWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "server.log")
	l, err := New(Options{Level: zapcore.InfoLevel, File: path, Format: FormatJSON})
	if err != nil { t.Fatalf("New: %v", err) }
	l.Info("game_created", zap.String("name", "lobby"))
	_ = l.Sync()
	raw, err := os.ReadFile(path)
	if err != nil { t.Fatalf("read log: %v", err) }
	if !strings.Contains(string(raw), `"msg":"game_created"`) || !strings.Contains(string(raw), `"name":"lobby"`) { t.Fatalf("log line: %s", raw) }
}

func TestSetNil(t *testing.T) {
	Set(nil)
	if L() == nil { t.Fatalf("L() must never be nil") }
	Named("match").Info("noop")
}
