package capture

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/clawd-xsl/android-remote/internal/model"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Annotation is a labelled box drawn over a screenshot.
type Annotation struct {
	Label  string
	Bounds model.Rect
}

var (
	boxColor     = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	textColor    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	outlineColor = color.RGBA{R: 0, G: 0, B: 0, A: 255}
)

// Annotate returns a copy of img with every annotation's box outlined and
// its label centered inside. Screen pixels map 1:1 to image pixels.
func Annotate(img image.Image, annotations []Annotation) *image.RGBA {
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, img, b.Min, draw.Src)

	for _, a := range annotations {
		r := a.Bounds
		drawRectangle(rgba, r.Left, r.Top, r.Right, r.Bottom, boxColor)
		if a.Label != "" {
			cx, cy := r.Center()
			drawTextWithOutline(rgba, a.Label, int(cx), int(cy))
		}
	}
	return rgba
}

// drawRectangle outlines [x1,x2) x [y1,y2), clamped to the image.
func drawRectangle(img *image.RGBA, x1, y1, x2, y2 int, c color.Color) {
	bounds := img.Bounds()
	x1, y1 = max(x1, bounds.Min.X), max(y1, bounds.Min.Y)
	x2, y2 = min(x2, bounds.Max.X), min(y2, bounds.Max.Y)
	if x2 <= x1 || y2 <= y1 {
		return
	}
	for x := x1; x < x2; x++ {
		img.Set(x, y1, c)
		img.Set(x, y2-1, c)
	}
	for y := y1; y < y2; y++ {
		img.Set(x1, y, c)
		img.Set(x2-1, y, c)
	}
}

// drawTextWithOutline centers text on (x, y) using basicfont.Face7x13,
// with a one-pixel dark outline for contrast.
func drawTextWithOutline(img *image.RGBA, text string, x, y int) {
	const glyphWidth, glyphHeight = 7, 13
	offsetX := x - len(text)*glyphWidth/2
	offsetY := y + glyphHeight/2

	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			drawString(img, text, offsetX+dx, offsetY+dy, outlineColor)
		}
	}
	drawString(img, text, offsetX, offsetY, textColor)
}

func drawString(img *image.RGBA, text string, x, y int, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}
