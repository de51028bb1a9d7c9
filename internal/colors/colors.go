// Package colors resolves the caption fill and outline colors offered by
// the caption form.
package colors

import (
	"errors"
	"fmt"
	"image/color"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// ErrUnknownColor is returned by Parse for values it cannot interpret.
var ErrUnknownColor = errors.New("unknown color")

// Names returns the sorted SVG 1.1 color keywords.
func Names() []string {
	return slices.Clone(colornames.Names)
}

// Parse interprets s as a color keyword, #rgb or #rrggbb.
func Parse(s string) (color.RGBA, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if c, ok := colornames.Map[v]; ok {
		return c, nil
	}
	if hex, ok := strings.CutPrefix(v, "#"); ok {
		switch len(hex) {
		case 3:
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
			fallthrough
		case 6:
			n, err := strconv.ParseUint(hex, 16, 32)
			if err != nil {
				break
			}
			return color.RGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 0xff}, nil
		}
	}
	return color.RGBA{}, fmt.Errorf("%w: %q", ErrUnknownColor, s)
}
