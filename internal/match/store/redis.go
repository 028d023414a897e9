package store

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/park285/Cheese-SwapChess/internal/codec"
)

const (
	keyPrefix = "chess:game:"
	indexKey  = "chess:games"
)

// RedisStore keeps each match as a JSON string plus a set of known names.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL required for redis store")
	}
	opts, err := ParseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{rdb: rdb}, nil
}

func gameKey(name string) string { return keyPrefix + name }

func (s *RedisStore) Save(ctx context.Context, name string, rec codec.Record) error {
	raw, err := codec.MarshalRecord(rec)
	if err != nil {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, gameKey(name), raw, 0)
		p.SAdd(ctx, indexKey, name)
		return nil
	})
	return err
}

func (s *RedisStore) Load(ctx context.Context, name string) (codec.Record, error) {
	raw, err := s.rdb.Get(ctx, gameKey(name)).Bytes()
	if err == redis.Nil {
		return codec.Record{}, ErrNotFound
	}
	if err != nil {
		return codec.Record{}, err
	}
	return codec.UnmarshalRecord(raw)
}

func (s *RedisStore) Delete(ctx context.Context, name string) error {
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, gameKey(name))
		p.SRem(ctx, indexKey, name)
		return nil
	})
	return err
}

func (s *RedisStore) Names(ctx context.Context) ([]string, error) {
	names, err := s.rdb.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

func (s *RedisStore) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}

// ParseRedisURL accepts redis:// and rediss:// URLs with an optional /db path.
func ParseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redis db %q", p)
		}
		db = n
	}
	pass, _ := u.User.Password()
	opts := &redis.Options{Addr: u.Host, Username: u.User.Username(), Password: pass, DB: db}
	if u.Scheme == "rediss" {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12, ServerName: u.Hostname()}
	}
	return opts, nil
}
