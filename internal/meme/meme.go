// Package meme draws wrapped captions on a template image.
package meme

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"unicode/utf8"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"

	"github.com/perbu/memegen/internal/layout"
)

const (
	DefaultDPI          = 72.0 // Screen DPI
	DefaultSize         = 48.0 // Font size in points
	DefaultOutlineWidth = 2    // Outline width in pixels

	// MaxCaptionRunes bounds the length of a single caption.
	MaxCaptionRunes = 500

	// captionOffset is the margin of top and bottom captions from their edge.
	captionOffset = 10
)

var (
	// ErrNoFont is returned by Compose when Options.Font is nil.
	ErrNoFont         = errors.New("no font")
	// ErrCaptionTooLong is returned for captions over MaxCaptionRunes.
	ErrCaptionTooLong = errors.New("caption too long")
)

// CheckCaption reports ErrCaptionTooLong when text has more than
// MaxCaptionRunes runes.
func CheckCaption(text string) error {
	if n := utf8.RuneCountInString(text); n > MaxCaptionRunes {
		return fmt.Errorf("%w: %d characters, at most %d", ErrCaptionTooLong, n, MaxCaptionRunes)
	}
	return nil
}

// Caption is the text for one anchor and how its lines are aligned.
type Caption struct {
	Text  string
	Align layout.Align
}

// Options controls Compose.
type Options struct {
	Top, Middle, Bottom Caption

	Font *truetype.Font
	Size float64 // points; DefaultSize when zero
	DPI  float64 // DefaultDPI when zero

	Fill         color.Color // image.White when nil
	Outline      color.Color // no outline when nil
	OutlineWidth int         // DefaultOutlineWidth when zero
}

// NewFace returns the face used both to measure and to draw captions.
func NewFace(f *truetype.Font, size, dpi float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     dpi,
		Hinting: font.HintingFull,
	})
}

// Measure adapts a font face to the layout engine. Widths are the advance
// of the whole string; the height is the face's ascent plus descent, which
// is the same for every string.
func Measure(face font.Face) layout.MeasureFunc {
	m := face.Metrics()
	height := (m.Ascent + m.Descent).Ceil()
	return func(s string) layout.Size {
		// font.MeasureString returns width in 26.6 fixed-point units
		return layout.Size{Width: font.MeasureString(face, s).Ceil(), Height: height}
	}
}

// Compose copies src onto a new RGBA canvas and draws the top, middle and
// bottom captions on it.
func Compose(src image.Image, opts Options) (*image.RGBA, error) {
	if opts.Font == nil {
		return nil, ErrNoFont
	}
	if opts.Size == 0 {
		opts.Size = DefaultSize
	}
	if opts.Size < 0 {
		return nil, fmt.Errorf("font size %v: %w", opts.Size, layout.ErrInvalidArgument)
	}
	if opts.DPI == 0 {
		opts.DPI = DefaultDPI
	}
	if opts.Fill == nil {
		opts.Fill = image.White
	}
	if opts.OutlineWidth == 0 {
		opts.OutlineWidth = DefaultOutlineWidth
	}
	for _, cp := range []Caption{opts.Top, opts.Middle, opts.Bottom} {
		if err := CheckCaption(cp.Text); err != nil {
			return nil, err
		}
	}

	// Draw on an RGBA image anchored at the origin, whatever the source
	// bounds, so layout coordinates are canvas coordinates.
	sb := src.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, sb.Dx(), sb.Dy()))
	draw.Draw(canvas, canvas.Bounds(), src, sb.Min, draw.Src)

	face := NewFace(opts.Font, opts.Size, opts.DPI)
	measure := Measure(face)
	area := layout.Area{Width: sb.Dx(), Height: sb.Dy()}

	c := freetype.NewContext()
	c.SetDPI(opts.DPI)
	c.SetFont(opts.Font)
	c.SetFontSize(opts.Size)
	c.SetClip(canvas.Bounds())
	c.SetDst(canvas)
	c.SetHinting(font.HintingFull)
	ascent := face.Metrics().Ascent.Ceil()

	captions := []struct {
		anchor  layout.Anchor
		caption Caption
		offset  int
	}{
		{layout.Top, opts.Top, captionOffset},
		{layout.Middle, opts.Middle, 0},
		{layout.Bottom, opts.Bottom, captionOffset},
	}
	for _, cp := range captions {
		text := strings.TrimSpace(cp.caption.Text)
		if text == "" {
			continue
		}
		lines, pos, err := layout.Layout(area, measure, text, cp.anchor, cp.caption.Align, cp.offset)
		if err != nil {
			return nil, fmt.Errorf("laying out %s caption: %w", cp.anchor, err)
		}
		for i, line := range lines {
			// layout positions are top-left corners; freetype draws at the baseline
			if err := drawLine(c, line, pos[i].X, pos[i].Y+ascent, opts); err != nil {
				return nil, fmt.Errorf("drawing %s caption line %q: %w", cp.anchor, line, err)
			}
		}
	}
	return canvas, nil
}

// drawLine stamps the outline around the baseline point first, if one is
// configured, and then the fill on top.
func drawLine(c *freetype.Context, line string, x, y int, opts Options) error {
	if opts.Outline != nil {
		n := opts.OutlineWidth
		offsets := []image.Point{
			{-n, -n}, {0, -n}, {n, -n},
			{-n, 0} /* {0, 0} is the fill */, {n, 0},
			{-n, n}, {0, n}, {n, n},
		}
		c.SetSrc(image.NewUniform(opts.Outline))
		for _, o := range offsets {
			if _, err := c.DrawString(line, freetype.Pt(x+o.X, y+o.Y)); err != nil {
				return fmt.Errorf("drawing outline part at offset %v: %w", o, err)
			}
		}
	}
	c.SetSrc(image.NewUniform(opts.Fill))
	if _, err := c.DrawString(line, freetype.Pt(x, y)); err != nil {
		return fmt.Errorf("drawing fill: %w", err)
	}
	return nil
}
