package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/park285/Cheese-SwapChess/internal/board"
)

// Move marks the last move on the rendered board.
type Move struct {
	From board.Square
	To   board.Square
}

// View is everything drawn in one board image.
type View struct {
	Board     *board.Board
	Title     string
	Turn      board.Color
	HasWinner bool
	Winner    board.Color
	Captured  []board.Piece
	LastMove  *Move
}

type Renderer interface {
	RenderPNG(ctx context.Context, v View) ([]byte, error)
}

type pngRenderer struct {
	squareSize int
	face       font.Face
}

func NewPNGRenderer() Renderer {
	return &pngRenderer{squareSize: 64, face: basicfont.Face7x13}
}

const (
	sideMargin    = 32
	topMargin     = 92
	bottomMargin  = 72
	panelHeight   = 30
	panelGap      = 12
	panelRadius   = 10
	panelPadX     = 18
	capturedSize  = 24
	shadowOffsetY = 4
)

var (
	lightSquare         = color.RGBA{233, 207, 163, 255}
	darkSquare          = color.RGBA{187, 136, 96, 255}
	backgroundColor     = color.RGBA{20, 22, 33, 255}
	whiteMoveFill       = color.NRGBA{R: 255, G: 228, B: 120, A: 140}
	blackMoveArrow      = color.NRGBA{R: 148, G: 207, B: 255, A: 170}
	hudPanelColor       = color.NRGBA{R: 28, G: 31, B: 46, A: 250}
	hudTurnPanelColor   = color.NRGBA{R: 32, G: 35, B: 52, A: 245}
	hudWinnerPanelColor = color.NRGBA{R: 120, G: 84, B: 20, A: 245}
	hudShadowColor      = color.NRGBA{0, 0, 0, 50}
	hudTextPrimary      = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
	hudTextSecondary    = color.NRGBA{R: 204, G: 210, B: 236, A: 255}
	coordinateTextColor = color.NRGBA{R: 8, G: 214, B: 120, A: 255}
)

func (r *pngRenderer) RenderPNG(ctx context.Context, v View) ([]byte, error) {
	if v.Board == nil {
		return nil, fmt.Errorf("board is nil")
	}
	sq := r.squareSize
	rows, cols := v.Board.Rows(), v.Board.Cols()
	origin := image.Point{X: sideMargin, Y: topMargin}
	boardRect := image.Rect(origin.X, origin.Y, origin.X+cols*sq, origin.Y+rows*sq)

	img := image.NewRGBA(image.Rect(0, 0, boardRect.Max.X+sideMargin, boardRect.Max.Y+bottomMargin))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, imagedraw.Src)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.drawHUD(img, v, boardRect)
	drawSquares(img, rows, cols, sq, origin)
	drawLastMove(img, v.Board, v.LastMove, sq, origin)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			p, ok := v.Board.At(row, col)
			if !ok {
				continue
			}
			pieceImg, err := renderPieceImage(p, sq)
			if err != nil {
				return nil, err
			}
			rect := squareRect(board.Sq(row, col), sq, origin)
			imagedraw.Draw(img, rect, pieceImg, image.Point{}, imagedraw.Over)
		}
	}
	r.drawCoordinates(img, rows, cols, sq, origin)
	if err := r.drawCaptured(img, v.Captured, boardRect); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *pngRenderer) drawHUD(img *image.RGBA, v View, boardRect image.Rectangle) {
	drawer := &font.Drawer{Dst: img, Face: r.face}

	title := strings.TrimSpace(v.Title)
	if title == "" {
		title = "Chess"
	}
	status := v.Turn.String() + " to move"
	statusColor := hudTurnPanelColor
	if v.HasWinner {
		status = v.Winner.String() + " won"
		statusColor = hudWinnerPanelColor
	}

	statusBottom := boardRect.Min.Y - panelGap
	statusTop := statusBottom - panelHeight
	titleRect := image.Rect(boardRect.Min.X, statusTop-panelGap-panelHeight, boardRect.Max.X, statusTop-panelGap)

	statusWidth := drawer.MeasureString(status).Round() + panelPadX*2
	statusLeft := boardRect.Min.X + (boardRect.Dx()-statusWidth)/2
	statusRect := image.Rect(statusLeft, statusTop, statusLeft+statusWidth, statusBottom)

	drawRoundedPanel(img, titleRect.Add(image.Pt(0, shadowOffsetY)), panelRadius, hudShadowColor)
	drawRoundedPanel(img, statusRect.Add(image.Pt(0, shadowOffsetY)), panelRadius, hudShadowColor)
	drawRoundedPanel(img, titleRect, panelRadius, hudPanelColor)
	drawRoundedPanel(img, statusRect, panelRadius, statusColor)

	title = truncateWithEllipsis(r.face, title, titleRect.Dx()-panelPadX*2)
	drawCenteredString(drawer, titleRect, title, hudTextPrimary)
	drawCenteredString(drawer, statusRect, status, hudTextSecondary)
}

// drawCaptured lays the captured pieces out in one strip under the board.
func (r *pngRenderer) drawCaptured(img *image.RGBA, captured []board.Piece, boardRect image.Rectangle) error {
	if len(captured) == 0 {
		return nil
	}
	y := boardRect.Max.Y + bottomMargin - capturedSize - 8
	x := boardRect.Min.X
	for _, p := range captured {
		if x+capturedSize > boardRect.Max.X {
			break
		}
		pieceImg, err := renderPieceImage(p, capturedSize)
		if err != nil {
			return err
		}
		imagedraw.Draw(img, image.Rect(x, y, x+capturedSize, y+capturedSize), pieceImg, image.Point{}, imagedraw.Over)
		x += capturedSize + 2
	}
	return nil
}

func (r *pngRenderer) drawCoordinates(img *image.RGBA, rows, cols, sq int, origin image.Point) {
	drawer := &font.Drawer{Dst: img, Face: r.face, Src: image.NewUniform(coordinateTextColor)}
	ascent := r.face.Metrics().Ascent.Ceil()
	for row := 0; row < rows; row++ {
		label := fmt.Sprintf("%d", rows-row)
		drawCenteredText(drawer, label, origin.X-sideMargin/2, origin.Y+row*sq+sq/2+ascent/2)
	}
	for col := 0; col < cols; col++ {
		label := string(rune('A' + col))
		drawCenteredText(drawer, label, origin.X+col*sq+sq/2, origin.Y+rows*sq+ascent+4)
	}
}

func drawSquares(dst imagedraw.Image, rows, cols, sq int, origin image.Point) {
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			clr := lightSquare
			if (row+col)%2 == 1 {
				clr = darkSquare
			}
			imagedraw.Draw(dst, squareRect(board.Sq(row, col), sq, origin), image.NewUniform(clr), image.Point{}, imagedraw.Src)
		}
	}
}

// drawLastMove tints both squares of a White move and draws an arrow for a Black one.
func drawLastMove(img *image.RGBA, b *board.Board, m *Move, sq int, origin image.Point) {
	if m == nil {
		return
	}
	p, ok := b.At(m.To.Row, m.To.Col)
	if ok && p.Color == board.Black {
		drawArrow(img, m.From, m.To, sq, origin, blackMoveArrow)
		return
	}
	imagedraw.Draw(img, squareRect(m.From, sq, origin), image.NewUniform(whiteMoveFill), image.Point{}, imagedraw.Over)
	imagedraw.Draw(img, squareRect(m.To, sq, origin), image.NewUniform(whiteMoveFill), image.Point{}, imagedraw.Over)
}

func squareRect(s board.Square, sq int, origin image.Point) image.Rectangle {
	x := origin.X + s.Col*sq
	y := origin.Y + s.Row*sq
	return image.Rect(x, y, x+sq, y+sq)
}
