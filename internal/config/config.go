package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreFile  = "file"
	StoreRedis = "redis"
)

type AppConfig struct {
	ListenAddr string

	StoreBackend string
	DataDir      string
	RedisURL     string
	DatabaseURL  string

	NotifyURL     string
	NotifyTimeout time.Duration

	TokenTTL               time.Duration
	MaxGames               int
	AdminUsers             []string
	AllowSpectatorsDefault bool

	MessagesDir string
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		ListenAddr:             ":3030",
		StoreBackend:           StoreFile,
		DataDir:                "data/games",
		NotifyTimeout:          5 * time.Second,
		TokenTTL:               3000 * time.Millisecond,
		MaxGames:               200,
		AllowSpectatorsDefault: true,
	}

	if v := strings.TrimSpace(os.Getenv("LISTEN_ADDR")); v != "" {
		cfg.ListenAddr = v
	}
	if v := strings.ToLower(strings.TrimSpace(os.Getenv("STORE_BACKEND"))); v != "" {
		cfg.StoreBackend = v
	}
	if v := strings.TrimSpace(os.Getenv("DATA_DIR")); v != "" {
		cfg.DataDir = v
	}
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.NotifyURL = strings.TrimSpace(os.Getenv("NOTIFY_URL"))
	cfg.MessagesDir = strings.TrimSpace(os.Getenv("MESSAGES_DIR"))

	if v := strings.TrimSpace(os.Getenv("NOTIFY_TIMEOUT_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.NotifyTimeout = time.Duration(n) * time.Millisecond
		}
	}
	if v := strings.TrimSpace(os.Getenv("TOKEN_TTL_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TokenTTL = time.Duration(n) * time.Millisecond
		}
	}
	if v := strings.TrimSpace(os.Getenv("MAX_GAMES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxGames = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("ALLOW_SPECTATORS_DEFAULT")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.AllowSpectatorsDefault = b
		}
	}
	cfg.AdminUsers = splitList(os.Getenv("ADMIN_USERS"))

	switch cfg.StoreBackend {
	case StoreFile:
		if cfg.DataDir == "" {
			return nil, errors.New("DATA_DIR is required")
		}
	case StoreRedis:
		if cfg.RedisURL == "" {
			return nil, errors.New("REDIS_URL is required when STORE_BACKEND=redis")
		}
	default:
		return nil, errors.New("STORE_BACKEND must be file or redis")
	}

	return cfg, nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
