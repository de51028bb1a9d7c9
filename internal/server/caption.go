package server

import (
	"fmt"
	"image/color"
	"net/http"

	"github.com/perbu/memegen/internal/colors"
	"github.com/perbu/memegen/internal/gallery"
	"github.com/perbu/memegen/internal/imaging"
	"github.com/perbu/memegen/internal/layout"
	"github.com/perbu/memegen/internal/meme"
)

const (
	defaultFontSize = int(meme.DefaultSize)
	defaultColor    = "white"
)

// captionField names the form inputs of one caption.
type captionField struct {
	Label      string
	Field      string
	AlignField string
}

var captionFields = []captionField{
	{"Top", "top", "talign"},
	{"Middle", "middle", "malign"},
	{"Bottom", "bottom", "balign"},
}

type captionPage struct {
	Name         string
	Image        string
	Width        int
	Height       int
	Colors       []string
	Fonts        []string
	DefaultFont  string
	Captions     []captionField
	MaxCaption   int
	MaxSize      int
	MaxDimension int
}

func (s *Server) handleCaptionForm(w http.ResponseWriter, r *http.Request) {
	file := r.PathValue("file")
	cfg, _, err := s.gallery.Config(file)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	names, err := s.fonts.Names()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, "caption.html", captionPage{
		Name:         gallery.Title(file),
		Image:        file,
		Width:        cfg.Width,
		Height:       cfg.Height,
		Colors:       colors.Names(),
		Fonts:        names,
		DefaultFont:  s.defaultFont,
		Captions:     captionFields,
		MaxCaption:   meme.MaxCaptionRunes,
		MaxSize:      MaxFontSize,
		MaxDimension: MaxDimension,
	})
}

// captionRequest is a validated caption form submission.
type captionRequest struct {
	captions      [3]meme.Caption // top, middle, bottom
	font          string
	size          int
	fill          color.Color
	outline       color.Color
	width, height int // zero keeps the template size
}

func (s *Server) parseCaptionForm(r *http.Request) (captionRequest, error) {
	req := captionRequest{font: s.defaultFont, size: defaultFontSize}
	if err := r.ParseForm(); err != nil {
		return req, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	for i, f := range captionFields {
		text := r.PostFormValue(f.Field)
		if err := meme.CheckCaption(text); err != nil {
			return req, fmt.Errorf("%w: %s: %v", errBadRequest, f.Field, err)
		}
		align := layout.Left
		if v := r.PostFormValue(f.AlignField); v != "" {
			a, err := layout.ParseAlign(v)
			if err != nil {
				return req, fmt.Errorf("%s: %w", f.AlignField, err)
			}
			align = a
		}
		req.captions[i] = meme.Caption{Text: text, Align: align}
	}
	if v := r.PostFormValue("font"); v != "" {
		req.font = v
	}
	if v := r.PostFormValue("size"); v != "" {
		size, err := parseBounded("size", v, 1, MaxFontSize)
		if err != nil {
			return req, err
		}
		req.size = size
	}

	fill := defaultColor
	if v := r.PostFormValue("color"); v != "" {
		fill = v
	}
	c, err := colors.Parse(fill)
	if err != nil {
		return req, fmt.Errorf("color: %w", err)
	}
	req.fill = c
	if v := r.PostFormValue("outline"); v != "" {
		c, err := colors.Parse(v)
		if err != nil {
			return req, fmt.Errorf("outline: %w", err)
		}
		req.outline = c
	}

	// Resize only when both dimensions are given.
	wv, hv := r.PostFormValue("width"), r.PostFormValue("height")
	if wv != "" && hv != "" {
		if req.width, err = parseDimension("width", wv); err != nil {
			return req, err
		}
		if req.height, err = parseDimension("height", hv); err != nil {
			return req, err
		}
	}
	return req, nil
}

func (s *Server) handleCaption(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	req, err := s.parseCaptionForm(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	img, format, err := s.gallery.Open(r.PathValue("file"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	fnt, err := s.fonts.Load(req.font)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if req.width > 0 {
		img = imaging.Resize(img, req.width, req.height)
	}
	out, err := meme.Compose(img, meme.Options{
		Top:     req.captions[0],
		Middle:  req.captions[1],
		Bottom:  req.captions[2],
		Font:    fnt,
		Size:    float64(req.size),
		Fill:    req.fill,
		Outline: req.outline,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeImage(w, r, out, format)
}
