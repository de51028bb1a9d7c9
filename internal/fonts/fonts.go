// Package fonts lists and loads the TrueType fonts captions can be drawn with.
package fonts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
)

// DefaultName is the built-in font that is available without a font directory.
const DefaultName = "goregular"

// DefaultExt is the font file extension used when Directory.Ext is empty.
const DefaultExt = ".ttf"

// ErrInvalidName is returned for font names that could escape the directory.
var ErrInvalidName = errors.New("invalid font name")

// Directory is a directory of font files sharing one extension.
type Directory struct {
	Dir string
	Ext string
}

func (d Directory) ext() string {
	if d.Ext == "" {
		return DefaultExt
	}
	return d.Ext
}

// Names returns the font names in the directory, without extension and
// sorted. DefaultName is always included.
func (d Directory) Names() ([]string, error) {
	names := []string{DefaultName}
	if d.Dir != "" {
		matches, err := filepath.Glob(filepath.Join(d.Dir, "*"+d.ext()))
		if err != nil {
			return nil, fmt.Errorf("listing fonts in '%s': %w", d.Dir, err)
		}
		for _, m := range matches {
			if fi, err := os.Stat(m); err != nil || !fi.Mode().IsRegular() {
				continue
			}
			names = append(names, strings.TrimSuffix(filepath.Base(m), d.ext()))
		}
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}

// Load parses the named font. DefaultName always resolves to the built-in
// Go Regular face.
func (d Directory) Load(name string) (*truetype.Font, error) {
	if name == "" || name == "." || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if name == DefaultName {
		return Default()
	}
	if d.Dir == "" {
		return nil, fmt.Errorf("font %q: %w", name, os.ErrNotExist)
	}
	path := filepath.Join(d.Dir, name+d.ext())
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading font '%s': %w", path, err)
	}
	f, err := freetype.ParseFont(data)
	if err != nil {
		return nil, fmt.Errorf("parsing font '%s': %w", path, err)
	}
	return f, nil
}

// Default returns the built-in font.
func Default() (*truetype.Font, error) {
	f, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing built-in font: %w", err)
	}
	return f, nil
}
