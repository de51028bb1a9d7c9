// Package layout breaks caption text into lines that fit an image and
// computes the pixel position of every line.
//
// The engine never touches pixels. It consumes text measurements from a
// caller-supplied MeasureFunc and produces line strings plus coordinates,
// always in top-to-bottom reading order.
package layout

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// edgeMargin is the horizontal distance kept from the left or right
	// edge for left- and right-aligned text.
	edgeMargin = 10
	// wrapMargin is the total horizontal margin subtracted from the area
	// width when deciding whether a line fits.
	wrapMargin = 20

	// MaxLines caps the number of lines a single caption may wrap into.
	MaxLines = 256
)

var (
	// ErrInvalidArgument reports a non-positive area or a measurement
	// oracle returning a non-positive size for non-empty text.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrDegenerateMeasurement reports a measurement oracle that gives
	// inconsistent widths for the same string.
	ErrDegenerateMeasurement = errors.New("degenerate measurement")
	// ErrTooManyLines reports text that wraps into more than MaxLines lines.
	ErrTooManyLines = errors.New("too many lines")
)

// Area is the usable rendering surface in pixels.
type Area struct {
	Width, Height int
}

// Size is the rendered extent of a string in pixels.
type Size struct {
	Width, Height int
}

// Point is a pixel coordinate of the top-left corner of a line.
type Point struct {
	X, Y int
}

// MeasureFunc reports the rendered size of text under a fixed font and
// size. It must be deterministic for the duration of a layout call.
type MeasureFunc func(text string) Size

// Anchor is the vertical placement of a caption block.
type Anchor int

const (
	Top Anchor = iota
	Middle
	Bottom
)

func (a Anchor) String() string {
	switch a {
	case Top:
		return "top"
	case Middle:
		return "middle"
	case Bottom:
		return "bottom"
	}
	return fmt.Sprintf("Anchor(%d)", int(a))
}

// ParseAnchor converts a form value ("top", "middle", "bottom") to an Anchor.
func ParseAnchor(s string) (Anchor, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "top":
		return Top, nil
	case "middle":
		return Middle, nil
	case "bottom":
		return Bottom, nil
	}
	return 0, fmt.Errorf("%w: unknown anchor %q", ErrInvalidArgument, s)
}

// Align is the horizontal placement of a line.
type Align int

const (
	Left Align = iota
	Center
	Right
)

func (a Align) String() string {
	switch a {
	case Left:
		return "left"
	case Center:
		return "middle"
	case Right:
		return "right"
	}
	return fmt.Sprintf("Align(%d)", int(a))
}

// ParseAlign converts a form value ("left", "middle", "right") to an Align.
func ParseAlign(s string) (Align, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return Left, nil
	case "middle", "center":
		return Center, nil
	case "right":
		return Right, nil
	}
	return 0, fmt.Errorf("%w: unknown alignment %q", ErrInvalidArgument, s)
}

// Position computes where a line of the given size is drawn.
//
// For Top the offset is the top margin, for Bottom it is the bottom margin,
// and for Middle it is added to the vertically centered position. The
// result is not clamped to the area.
func Position(area Area, text Size, anchor Anchor, align Align, offset int) Point {
	var p Point
	switch align {
	case Left:
		p.X = edgeMargin
	case Center:
		p.X = area.Width/2 - text.Width/2
	default:
		p.X = area.Width - text.Width - edgeMargin
	}
	switch anchor {
	case Top:
		p.Y = offset
	case Middle:
		p.Y = area.Height/2 - text.Height/2 + offset
	default:
		p.Y = area.Height - text.Height - offset
	}
	return p
}

// Layout wraps text and, for middle-anchored captions, balances the
// resulting block around the vertical center.
func Layout(area Area, measure MeasureFunc, text string, anchor Anchor, align Align, offset int) ([]string, []Point, error) {
	lines, pos, err := Wrap(area, measure, text, anchor, align, offset)
	if err != nil {
		return nil, nil, err
	}
	if anchor == Middle {
		lines, pos = Balance(lines, pos)
	}
	return lines, pos, nil
}

// Balance shifts a middle-anchored block up so that its visual center is
// the single-line center Wrap assumed for every line.
//
// The pitch is taken from the first two positions. Half-pixel shifts are
// truncated toward zero. The inputs are not modified.
func Balance(lines []string, positions []Point) ([]string, []Point) {
	outLines := append([]string(nil), lines...)
	outPos := append([]Point(nil), positions...)
	n := len(outPos)
	if n <= 1 {
		return outLines, outPos
	}
	distance := outPos[1].Y - outPos[0].Y
	// The shift is distance*(n-1)/2; keep it doubled to stay in integers.
	shift2 := distance * (n - 1)
	for i := range outPos {
		outPos[i].Y = (2*outPos[i].Y - shift2) / 2
	}
	return outLines, outPos
}
