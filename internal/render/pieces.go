package render

import (
	"bytes"
	"embed"
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/park285/Cheese-SwapChess/internal/board"
)

//go:embed assets/pieces/*.svg
var pieceFiles embed.FS

type pieceCacheKey struct {
	piece board.Piece
	size  int
}

var (
	pieceCache   = map[pieceCacheKey]image.Image{}
	pieceCacheMu sync.RWMutex
)

func renderPieceImage(piece board.Piece, size int) (image.Image, error) {
	key := pieceCacheKey{piece: piece, size: size}
	pieceCacheMu.RLock()
	img, ok := pieceCache[key]
	pieceCacheMu.RUnlock()
	if ok {
		return img, nil
	}

	name := pieceAssetName(piece.Kind)
	data, err := pieceFiles.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read piece asset %s: %w", name, err)
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(colorizeSVG(data, piece.Color)))
	if err != nil {
		return nil, fmt.Errorf("parse piece svg %s: %w", name, err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	rgba := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, rgba, rgba.Bounds())
	icon.Draw(rasterx.NewDasher(size, size, scanner), 1.0)

	pieceCacheMu.Lock()
	pieceCache[key] = rgba
	pieceCacheMu.Unlock()
	return rgba, nil
}

func pieceAssetName(k board.Kind) string {
	return "assets/pieces/" + strings.ToLower(k.String()) + ".svg"
}
