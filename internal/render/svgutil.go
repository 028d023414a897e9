package render

import (
	"bytes"

	"github.com/park285/Cheese-SwapChess/internal/board"
)

var (
	whiteFill   = []byte("#f8f4ea")
	whiteStroke = []byte("#2b2b2b")
	blackFill   = []byte("#2b2b2b")
	blackStroke = []byte("#f0ece2")
)

// colorizeSVG fills the FILL/STROKE placeholders of a piece template for c.
func colorizeSVG(svg []byte, c board.Color) []byte {
	fill, stroke := whiteFill, whiteStroke
	if c == board.Black {
		fill, stroke = blackFill, blackStroke
	}
	out := bytes.ReplaceAll(svg, []byte(`"FILL"`), append(append([]byte(`"`), fill...), '"'))
	return bytes.ReplaceAll(out, []byte(`"STROKE"`), append(append([]byte(`"`), stroke...), '"'))
}
