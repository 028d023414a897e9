package render

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"github.com/park285/Cheese-SwapChess/internal/board"
)

func TestRenderPNGStandardBoard(t *testing.T) {
	r := NewPNGRenderer()
	b := board.NewStandard()
	out := b.ExecuteMove(board.Sq(6, 4), board.Sq(4, 4))
	raw, err := r.RenderPNG(context.Background(), View{
		Board:    b,
		Title:    "friday night",
		Turn:     board.Black,
		Captured: []board.Piece{{Color: board.Black, Kind: board.Pawn}},
		LastMove: &Move{From: out.From, To: out.To},
	})
	if err != nil { t.Fatalf("RenderPNG: %v", err) }
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil { t.Fatalf("decode: %v", err) }
	wantW := 8*64 + 2*sideMargin
	wantH := 8*64 + topMargin + bottomMargin
	if img.Bounds().Dx() != wantW || img.Bounds().Dy() != wantH { t.Fatalf("size = %v", img.Bounds()) }

	// empty D4 keeps its dark square colour
	c := img.At(sideMargin+3*64+32, topMargin+4*64+32)
	r32, g32, b32, _ := c.RGBA()
	if uint8(r32>>8) != darkSquare.R || uint8(g32>>8) != darkSquare.G || uint8(b32>>8) != darkSquare.B { t.Fatalf("D4 colour = %v", c) }
}

func TestRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewPNGRenderer().RenderPNG(ctx, View{Board: board.NewStandard()}); err == nil { t.Fatalf("expected context error") }
	if _, err := NewPNGRenderer().RenderPNG(context.Background(), View{}); err == nil { t.Fatalf("expected nil board error") }
}

func TestEveryPieceRasterizes(t *testing.T) {
	for _, c := range []board.Color{board.White, board.Black} {
		for _, k := range board.Kinds {
			img, err := renderPieceImage(board.Piece{Color: c, Kind: k}, 32)
			if err != nil { t.Fatalf("%v %v: %v", c, k, err) }
			_, _, _, a := img.At(16, 26).RGBA()
			if a == 0 { t.Fatalf("%v %v: base of piece is transparent", c, k) }
		}
	}
}

func TestFEN(t *testing.T) {
	got, err := FEN(board.NewStandard())
	if err != nil { t.Fatalf("FEN: %v", err) }
	if got != "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR" { t.Fatalf("FEN = %q", got) }
	if _, err := FEN(board.New(6, 6)); err == nil { t.Fatalf("expected error for 6x6 board") }
}
