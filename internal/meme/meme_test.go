package meme

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"testing"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/perbu/memegen/internal/layout"
)

func goRegular(t *testing.T) *truetype.Font {
	t.Helper()
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func blackImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.Black, image.Point{}, draw.Src)
	return img
}

// countColor counts pixels in r that have exactly color c.
func countColor(img *image.RGBA, r image.Rectangle, c color.RGBA) int {
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if img.RGBAAt(x, y) == c {
				n++
			}
		}
	}
	return n
}

func TestMeasure(t *testing.T) {
	measure := Measure(NewFace(goRegular(t), 24, DefaultDPI))
	a, ab := measure("a"), measure("ab")
	if a.Width <= 0 || a.Height <= 0 {
		t.Fatalf("measure(a) = %v", a)
	}
	if ab.Width <= a.Width {
		t.Errorf("measure(ab) = %v is not wider than measure(a) = %v", ab, a)
	}
	if g := measure("g"); g.Height != a.Height {
		t.Errorf("heights differ: %d and %d", g.Height, a.Height)
	}
}

func TestComposeTopAndBottom(t *testing.T) {
	src := blackImage(300, 200)
	white := color.RGBA{0xff, 0xff, 0xff, 0xff}
	out, err := Compose(src, Options{
		Top:    Caption{Text: "TOP", Align: layout.Center},
		Bottom: Caption{Text: "BOTTOM", Align: layout.Center},
		Font:   goRegular(t),
		Size:   24,
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.Bounds() != src.Bounds() {
		t.Fatalf("bounds = %v, want %v", out.Bounds(), src.Bounds())
	}
	if n := countColor(out, image.Rect(0, 0, 300, 50), white); n == 0 {
		t.Error("no fill pixels near the top")
	}
	if n := countColor(out, image.Rect(0, 150, 300, 200), white); n == 0 {
		t.Error("no fill pixels near the bottom")
	}
	if n := countColor(out, image.Rect(0, 70, 300, 130), white); n != 0 {
		t.Errorf("%d fill pixels in the empty middle band", n)
	}
	if countColor(src, src.Bounds(), white) != 0 {
		t.Error("Compose modified its source image")
	}
}

func TestComposeOutline(t *testing.T) {
	red := color.RGBA{0xff, 0, 0, 0xff}
	out, err := Compose(blackImage(300, 200), Options{
		Middle:       Caption{Text: "MIDDLE TEXT THAT WRAPS ONTO LINES", Align: layout.Left},
		Font:         goRegular(t),
		Size:         30,
		Fill:         color.White,
		Outline:      red,
		OutlineWidth: 3,
	})
	if err != nil {
		t.Fatal(err)
	}
	if n := countColor(out, out.Bounds(), red); n == 0 {
		t.Error("no outline pixels")
	}
}

func TestComposeOffsetSource(t *testing.T) {
	src := image.NewRGBA(image.Rect(50, 50, 250, 150))
	out, err := Compose(src, Options{Top: Caption{Text: "hi"}, Font: goRegular(t)})
	if err != nil {
		t.Fatal(err)
	}
	if out.Bounds() != image.Rect(0, 0, 200, 100) {
		t.Errorf("bounds = %v", out.Bounds())
	}
}

func TestComposeErrors(t *testing.T) {
	if _, err := Compose(blackImage(10, 10), Options{}); !errors.Is(err, ErrNoFont) {
		t.Errorf("error = %v, want %v", err, ErrNoFont)
	}
	if _, err := Compose(blackImage(10, 10), Options{Font: goRegular(t), Size: -1}); !errors.Is(err, layout.ErrInvalidArgument) {
		t.Errorf("error = %v, want %v", err, layout.ErrInvalidArgument)
	}
	_, err := Compose(blackImage(40, 400), Options{
		Top:  Caption{Text: strings.Repeat("w", layout.MaxLines+20)},
		Font: goRegular(t),
		Size: 40,
	})
	if !errors.Is(err, layout.ErrTooManyLines) {
		t.Errorf("error = %v, want %v", err, layout.ErrTooManyLines)
	}
	_, err = Compose(blackImage(400, 400), Options{
		Bottom: Caption{Text: strings.Repeat("a", MaxCaptionRunes+1)},
		Font:   goRegular(t),
	})
	if !errors.Is(err, ErrCaptionTooLong) {
		t.Errorf("error = %v, want %v", err, ErrCaptionTooLong)
	}
}

func TestCheckCaption(t *testing.T) {
	// runes, not bytes, are counted
	if err := CheckCaption(strings.Repeat("é", MaxCaptionRunes)); err != nil {
		t.Errorf("CheckCaption(%d runes): %v", MaxCaptionRunes, err)
	}
	if err := CheckCaption(strings.Repeat("é", MaxCaptionRunes+1)); !errors.Is(err, ErrCaptionTooLong) {
		t.Errorf("error = %v, want %v", err, ErrCaptionTooLong)
	}
}

func TestComposeBlankCaptions(t *testing.T) {
	src := blackImage(60, 40)
	out, err := Compose(src, Options{Top: Caption{Text: "   "}, Font: goRegular(t)})
	if err != nil {
		t.Fatal(err)
	}
	if countColor(out, out.Bounds(), color.RGBA{0, 0, 0, 0xff}) != 60*40 {
		t.Error("blank caption drew pixels")
	}
}
