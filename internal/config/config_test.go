package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"LISTEN_ADDR", "STORE_BACKEND", "DATA_DIR", "REDIS_URL", "TOKEN_TTL_MS", "MAX_GAMES", "ADMIN_USERS", "ALLOW_SPECTATORS_DEFAULT"} {
		t.Setenv(k, "")
	}
	cfg, err := Load()
	if err != nil { t.Fatalf("Load: %v", err) }
	if cfg.ListenAddr != ":3030" || cfg.StoreBackend != StoreFile || cfg.DataDir != "data/games" { t.Fatalf("defaults: %+v", cfg) }
	if cfg.TokenTTL != 3*time.Second || cfg.MaxGames != 200 || !cfg.AllowSpectatorsDefault { t.Fatalf("defaults: %+v", cfg) }
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "Redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/2")
	t.Setenv("TOKEN_TTL_MS", "1500")
	t.Setenv("MAX_GAMES", "-4")
	t.Setenv("ADMIN_USERS", " alice, ,bob ")
	t.Setenv("ALLOW_SPECTATORS_DEFAULT", "false")
	cfg, err := Load()
	if err != nil { t.Fatalf("Load: %v", err) }
	if cfg.StoreBackend != StoreRedis || cfg.TokenTTL != 1500*time.Millisecond { t.Fatalf("overrides: %+v", cfg) }
	if cfg.MaxGames != 200 { t.Fatalf("invalid MAX_GAMES should keep default, got %d", cfg.MaxGames) }
	if len(cfg.AdminUsers) != 2 || cfg.AdminUsers[1] != "bob" { t.Fatalf("admins = %v", cfg.AdminUsers) }
	if cfg.AllowSpectatorsDefault { t.Fatalf("spectators default should be off") }
}

func TestLoadRedisRequiresURL(t *testing.T) {
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("REDIS_URL", "")
	if _, err := Load(); err == nil { t.Fatalf("expected error without REDIS_URL") }
	t.Setenv("STORE_BACKEND", "s3")
	if _, err := Load(); err == nil { t.Fatalf("expected error for unknown backend") }
}
