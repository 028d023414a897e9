package store

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/park285/Cheese-SwapChess/internal/codec"
)

const fileExt = ".json"

// FileStore keeps one JSON file per match. File names are the base64url form
// of the match name so any name is a safe path component.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("data dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, base64.RawURLEncoding.EncodeToString([]byte(name))+fileExt)
}

// Save writes through a temp file and rename so readers never see a partial record.
func (s *FileStore) Save(ctx context.Context, name string, rec codec.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := codec.MarshalRecord(rec)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, ".match-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}

func (s *FileStore) Load(ctx context.Context, name string) (codec.Record, error) {
	if err := ctx.Err(); err != nil {
		return codec.Record{}, err
	}
	raw, err := os.ReadFile(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return codec.Record{}, ErrNotFound
	}
	if err != nil {
		return codec.Record{}, err
	}
	return codec.UnmarshalRecord(raw)
}

func (s *FileStore) Delete(ctx context.Context, name string) error {
	err := os.Remove(s.path(name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Names lists every stored match, sorted. Files that do not decode to a name are skipped.
func (s *FileStore) Names(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read data dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		b, err := base64.RawURLEncoding.DecodeString(strings.TrimSuffix(e.Name(), fileExt))
		if err != nil {
			continue
		}
		names = append(names, string(b))
	}
	sort.Strings(names)
	return names, nil
}

func (s *FileStore) Close() error { return nil }

// Dir is the directory holding the match files.
func (s *FileStore) Dir() string { return s.dir }
