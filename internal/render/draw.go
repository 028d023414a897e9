package render

import (
	"image"
	"image/color"
	imagedraw "image/draw"
	"math"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/park285/Cheese-SwapChess/internal/board"
)

type pointF struct {
	X float64
	Y float64
}

func drawArrow(img *image.RGBA, from, to board.Square, sq int, origin image.Point, clr color.Color) {
	if from == to {
		return
	}
	a, b := squareRect(from, sq, origin), squareRect(to, sq, origin)
	start := pointF{float64(a.Min.X + sq/2), float64(a.Min.Y + sq/2)}
	end := pointF{float64(b.Min.X + sq/2), float64(b.Min.Y + sq/2)}

	dx, dy := end.X-start.X, end.Y-start.Y
	length := math.Hypot(dx, dy)
	dirX, dirY := dx/length, dy/length
	perpX, perpY := -dirY, dirX

	shaft := length - float64(sq)*0.45
	if shaft < float64(sq)*0.35 {
		shaft = length * 0.6
	}
	half := float64(sq) * 0.12
	head := float64(sq) * 0.22
	base := pointF{start.X + dirX*shaft, start.Y + dirY*shaft}

	offset := func(p pointF, w float64) pointF { return pointF{p.X + perpX*w, p.Y + perpY*w} }
	fillTriangleF(img, offset(start, -half), offset(start, half), offset(base, half), clr)
	fillTriangleF(img, offset(start, -half), offset(base, half), offset(base, -half), clr)
	fillTriangleF(img, end, offset(base, -head), offset(base, head), clr)
}

func fillTriangleF(img *image.RGBA, a, b, c pointF, clr color.Color) {
	minX := int(math.Floor(math.Min(a.X, math.Min(b.X, c.X))))
	maxX := int(math.Ceil(math.Max(a.X, math.Max(b.X, c.X))))
	minY := int(math.Floor(math.Min(a.Y, math.Min(b.Y, c.Y))))
	maxY := int(math.Ceil(math.Max(a.Y, math.Max(b.Y, c.Y))))
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if inTriangle(float64(x)+0.5, float64(y)+0.5, a, b, c) {
				blendPixel(img, x, y, clr)
			}
		}
	}
}

func inTriangle(x, y float64, a, b, c pointF) bool {
	denom := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
	if denom == 0 {
		return false
	}
	alpha := ((b.Y-c.Y)*(x-c.X) + (c.X-b.X)*(y-c.Y)) / denom
	beta := ((c.Y-a.Y)*(x-c.X) + (a.X-c.X)*(y-c.Y)) / denom
	return alpha >= 0 && beta >= 0 && 1-alpha-beta >= 0
}

func drawRoundedPanel(img *image.RGBA, rect image.Rectangle, radius int, clr color.Color) {
	if rect.Empty() {
		return
	}
	radius = max(0, min(radius, rect.Dx()/2, rect.Dy()/2))
	fill := image.NewUniform(clr)
	if radius == 0 {
		imagedraw.Draw(img, rect, fill, image.Point{}, imagedraw.Over)
		return
	}
	imagedraw.Draw(img, image.Rect(rect.Min.X+radius, rect.Min.Y, rect.Max.X-radius, rect.Max.Y), fill, image.Point{}, imagedraw.Over)
	imagedraw.Draw(img, image.Rect(rect.Min.X, rect.Min.Y+radius, rect.Min.X+radius, rect.Max.Y-radius), fill, image.Point{}, imagedraw.Over)
	imagedraw.Draw(img, image.Rect(rect.Max.X-radius, rect.Min.Y+radius, rect.Max.X, rect.Max.Y-radius), fill, image.Point{}, imagedraw.Over)
	for _, c := range []image.Point{
		{rect.Min.X + radius, rect.Min.Y + radius},
		{rect.Max.X - radius - 1, rect.Min.Y + radius},
		{rect.Min.X + radius, rect.Max.Y - radius - 1},
		{rect.Max.X - radius - 1, rect.Max.Y - radius - 1},
	} {
		drawQuarterDisc(img, c, radius, clr, rect)
	}
}

// drawQuarterDisc blends the part of a disc that lies in a panel corner.
func drawQuarterDisc(img *image.RGBA, center image.Point, radius int, clr color.Color, clip image.Rectangle) {
	r2 := radius * radius
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			px, py := center.X+x, center.Y+y
			if x*x+y*y > r2 || !(image.Point{X: px, Y: py}).In(clip) {
				continue
			}
			inCore := (px >= clip.Min.X+radius && px < clip.Max.X-radius) || (py >= clip.Min.Y+radius && py < clip.Max.Y-radius)
			if !inCore {
				blendPixel(img, px, py, clr)
			}
		}
	}
}

// blendPixel composites clr over the pixel at (x, y) with source-over alpha.
func blendPixel(img *image.RGBA, x, y int, clr color.Color) {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return
	}
	sr, sg, sb, sa := clr.RGBA()
	if sa == 0 {
		return
	}
	dst := img.RGBAAt(x, y)
	inv := 1 - float64(sa)/0xffff
	mix := func(s uint32, d uint8) uint8 {
		return toUint8(float64(s)/0xffff*255 + float64(d)*inv)
	}
	img.SetRGBA(x, y, color.RGBA{
		R: mix(sr, dst.R),
		G: mix(sg, dst.G),
		B: mix(sb, dst.B),
		A: mix(sa, dst.A),
	})
}

func toUint8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

func truncateWithEllipsis(face font.Face, text string, maxWidth int) string {
	trimmed := strings.TrimSpace(text)
	drawer := font.Drawer{Face: face}
	if trimmed == "" || maxWidth <= 0 || drawer.MeasureString(trimmed).Round() <= maxWidth {
		return trimmed
	}
	const ellipsis = "..."
	runes := []rune(trimmed)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		if candidate := string(runes) + ellipsis; drawer.MeasureString(candidate).Round() <= maxWidth {
			return candidate
		}
	}
	return ellipsis
}

func drawCenteredString(drawer *font.Drawer, rect image.Rectangle, text string, clr color.Color) {
	if text = strings.TrimSpace(text); text == "" {
		return
	}
	metrics := drawer.Face.Metrics()
	x := max(rect.Min.X, rect.Min.X+(rect.Dx()-drawer.MeasureString(text).Round())/2)
	baseline := rect.Min.Y + (rect.Dy()+metrics.Ascent.Ceil()-metrics.Descent.Ceil())/2
	drawer.Src = image.NewUniform(clr)
	drawer.Dot = fixed.P(x, baseline)
	drawer.DrawString(text)
}

func drawCenteredText(drawer *font.Drawer, text string, centerX, baseline int) {
	if text == "" {
		return
	}
	drawer.Dot = fixed.P(centerX-drawer.MeasureString(text).Round()/2, baseline)
	drawer.DrawString(text)
}
