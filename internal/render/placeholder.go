package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Placeholder canvas geometry. Fixed so a group's placeholder depends only on
// its two measure numbers.
const (
	placeholderWidth  = 400
	placeholderHeight = 200
	staffTop          = 80
	staffLineGap      = 12
	staffLeft         = 30
	staffRight        = placeholderWidth - 30
)

var staffInk = color.RGBA{R: 40, G: 40, B: 40, A: 255}

// PlaceholderPNG synthesizes a deterministic preview image for one measure
// group: staff lines, measure separators, a small set of illustrative note
// heads, and a label carrying the group's measure numbers. It carries no
// information from the real score.
func PlaceholderPNG(start, end int) ([]byte, error) {
	if end < start {
		start, end = end, start
	}

	img := image.NewRGBA(image.Rect(0, 0, placeholderWidth, placeholderHeight))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	// Five staff lines.
	for line := 0; line < 5; line++ {
		y := staffTop + line*staffLineGap
		horizontalLine(img, staffLeft, staffRight, y)
	}

	// Barlines: leading, trailing, and one separator per interior boundary.
	staffBottom := staffTop + 4*staffLineGap
	measures := end - start + 1
	for i := 0; i <= measures; i++ {
		x := staffLeft + i*(staffRight-staffLeft)/measures
		verticalLine(img, x, staffTop, staffBottom)
	}

	// Illustrative note heads, evenly spaced inside each measure.
	for m := 0; m < measures; m++ {
		left := staffLeft + m*(staffRight-staffLeft)/measures
		width := (staffRight - staffLeft) / measures
		for n := 0; n < 4; n++ {
			x := left + (n+1)*width/5
			y := staffTop + ((n*2)%5)*staffLineGap
			noteHead(img, x, y)
		}
	}

	label := fmt.Sprintf("Measures %d-%d", start, end)
	if start == end {
		label = fmt.Sprintf("Measure %d", start)
	}
	drawLabel(img, label, staffLeft, 40)
	drawLabel(img, "preview unavailable", staffLeft, placeholderHeight-24)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode placeholder png: %w", err)
	}
	return buf.Bytes(), nil
}

func horizontalLine(img *image.RGBA, x0, x1, y int) {
	for x := x0; x <= x1; x++ {
		img.Set(x, y, staffInk)
	}
}

func verticalLine(img *image.RGBA, x, y0, y1 int) {
	for y := y0; y <= y1; y++ {
		img.Set(x, y, staffInk)
	}
}

// noteHead fills a small oval centered on (cx, cy).
func noteHead(img *image.RGBA, cx, cy int) {
	const rx, ry = 4, 3
	for dy := -ry; dy <= ry; dy++ {
		for dx := -rx; dx <= rx; dx++ {
			if dx*dx*ry*ry+dy*dy*rx*rx <= rx*rx*ry*ry {
				img.Set(cx+dx, cy+dy, staffInk)
			}
		}
	}
}

func drawLabel(img *image.RGBA, text string, x, y int) {
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(staffInk),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	drawer.DrawString(text)
}
