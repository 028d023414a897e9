package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	appcfg "github.com/park285/Cheese-SwapChess/internal/config"
	"github.com/park285/Cheese-SwapChess/internal/match/store"
	"github.com/park285/Cheese-SwapChess/internal/render"
	"github.com/park285/Cheese-SwapChess/internal/session"
)

// gamecheck decodes every stored match and prints its position.
// With GAMECHECK_PNG_DIR set it also writes one board image per match.
func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	pngDir := os.Getenv("GAMECHECK_PNG_DIR")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	st, err := store.Open(ctx, cfg.StoreBackend, cfg.DataDir, cfg.RedisURL)
	if err != nil {
		log.Fatalf("store error: %v", err)
	}
	defer st.Close()

	names, err := st.Names(ctx)
	if err != nil {
		log.Fatalf("list error: %v", err)
	}
	var renderer render.Renderer
	if pngDir != "" {
		if err := os.MkdirAll(pngDir, 0o755); err != nil {
			log.Fatalf("png dir error: %v", err)
		}
		renderer = render.NewPNGRenderer()
	}

	bad := 0
	for _, name := range names {
		rec, err := st.Load(ctx, name)
		if err != nil {
			log.Printf("%s: load error: %v", name, err)
			bad++
			continue
		}
		s, err := session.FromRecord(rec)
		if err != nil {
			log.Printf("%s: decode error: %v", name, err)
			bad++
			continue
		}
		b := s.Board()
		fen, err := render.FEN(b)
		if err != nil {
			fen = "(" + err.Error() + ")"
		}
		status := s.Turn().String() + " to move"
		if w, ok := s.Winner(); ok {
			status = w.String() + " won"
		}
		fmt.Printf("%-24s %-16s undo=%-3d %s\n", name, status, s.HistoryLen(), fen)

		if renderer == nil {
			continue
		}
		v := render.View{Board: b, Title: name, Turn: s.Turn(), Captured: s.Captured()}
		v.Winner, v.HasWinner = s.Winner()
		png, err := renderer.RenderPNG(ctx, v)
		if err != nil {
			log.Printf("%s: render error: %v", name, err)
			continue
		}
		file := filepath.Join(pngDir, sanitize(name)+".png")
		if err := os.WriteFile(file, png, 0o644); err != nil {
			log.Printf("%s: write error: %v", name, err)
		}
	}
	log.Printf("checked %d matches, %d unreadable", len(names), bad)
	if bad > 0 {
		os.Exit(1)
	}
}

func sanitize(name string) string {
	out := []rune(name)
	for i, r := range out {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			out[i] = '_'
		}
	}
	return string(out)
}
