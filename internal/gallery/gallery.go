// Package gallery enumerates and decodes the template images captions are
// drawn on.
package gallery

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	// Register decoders for every template format we accept.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

var (
	// ErrInvalidName is returned for file names that are not a plain
	// "name.ext" inside the gallery directory.
	ErrInvalidName = errors.New("invalid template name")
	// ErrNotFound is returned when a template does not exist.
	ErrNotFound = errors.New("template not found")
)

var validName = regexp.MustCompile(`^\w+\.\w+$`)

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// Entry is one template image.
type Entry struct {
	File  string
	Title string
}

// Gallery is a directory of template images.
type Gallery struct {
	dir string
}

// New returns a gallery backed by dir.
func New(dir string) *Gallery {
	return &Gallery{dir: dir}
}

// Title turns a file name into a display title: "business_cat.jpg"
// becomes "Business Cat".
func Title(file string) string {
	name, _, _ := strings.Cut(file, ".")
	name = strings.ReplaceAll(name, "_", " ")
	return cases.Title(language.Und).String(name)
}

// List returns every template image, sorted by file name.
func (g *Gallery) List() ([]Entry, error) {
	des, err := os.ReadDir(g.dir)
	if err != nil {
		return nil, fmt.Errorf("listing templates in '%s': %w", g.dir, err)
	}
	var entries []Entry
	for _, de := range des {
		name := de.Name()
		if !de.Type().IsRegular() || !validName.MatchString(name) {
			continue
		}
		if !imageExts[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		entries = append(entries, Entry{File: name, Title: Title(name)})
	}
	return entries, nil
}

func (g *Gallery) open(file string) (*os.File, error) {
	if !validName.MatchString(file) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, file)
	}
	f, err := os.Open(filepath.Join(g.dir, file))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, file)
	} else if err != nil {
		return nil, fmt.Errorf("opening template '%s': %w", file, err)
	}
	return f, nil
}

// Open decodes the named template and reports its format ("png", "jpeg", ...).
func (g *Gallery) Open(file string) (image.Image, string, error) {
	f, err := g.open(file)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("decoding template '%s': %w", file, err)
	}
	return img, format, nil
}

// Config reports the dimensions and format of the named template without
// decoding its pixels.
func (g *Gallery) Config(file string) (image.Config, string, error) {
	f, err := g.open(file)
	if err != nil {
		return image.Config{}, "", err
	}
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return image.Config{}, "", fmt.Errorf("decoding template '%s': %w", file, err)
	}
	return cfg, format, nil
}
