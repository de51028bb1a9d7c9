// Package server serves the caption web form and the generated images.
package server

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"image"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/perbu/memegen/internal/colors"
	"github.com/perbu/memegen/internal/fonts"
	"github.com/perbu/memegen/internal/gallery"
	"github.com/perbu/memegen/internal/imaging"
	"github.com/perbu/memegen/internal/layout"
	"github.com/perbu/memegen/internal/meme"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	// MaxDimension bounds the width and height a template can be resized to.
	MaxDimension = 4096
	// MaxFontSize bounds the caption font size in points.
	MaxFontSize = 500

	maxFormBytes = 1 << 20
)

// errBadRequest marks malformed form or path values.
var errBadRequest = errors.New("bad request")

// Config describes where the server finds templates and fonts.
type Config struct {
	Templates   string
	Fonts       fonts.Directory
	DefaultFont string
}

// Server is the memegen HTTP handler.
type Server struct {
	gallery     *gallery.Gallery
	fonts       fonts.Directory
	defaultFont string
	logger      *slog.Logger
	pages       *template.Template
	mux         *http.ServeMux
}

// New checks the configuration and builds the route table.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pages, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing page templates: %w", err)
	}
	if cfg.DefaultFont == "" {
		cfg.DefaultFont = fonts.DefaultName
	}
	if _, err := cfg.Fonts.Load(cfg.DefaultFont); err != nil {
		return nil, fmt.Errorf("loading default font: %w", err)
	}
	s := &Server{
		gallery:     gallery.New(cfg.Templates),
		fonts:       cfg.Fonts,
		defaultFont: cfg.DefaultFont,
		logger:      logger,
		pages:       pages,
		mux:         http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /caption/{file}/{$}", s.handleCaptionForm)
	s.mux.HandleFunc("POST /caption/{file}/{$}", s.handleCaption)
	s.mux.HandleFunc("GET /thumbnail/{file}/{$}", s.handleThumbnail)
	s.mux.HandleFunc("GET /scaled/{file}/{width}/{height}/{$}", s.handleScaled)
	return s, nil
}

// ServeHTTP logs every request after it has been served.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)
	s.logger.Info("request",
		"method", r.Method,
		"path", r.URL.Path,
		"status", rec.status,
		"duration", time.Since(start))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// statusFor maps an error to the HTTP status reported to the client.
func statusFor(err error) int {
	switch {
	case errors.Is(err, gallery.ErrNotFound),
		errors.Is(err, gallery.ErrInvalidName),
		errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, fonts.ErrInvalidName),
		errors.Is(err, colors.ErrUnknownColor),
		errors.Is(err, layout.ErrInvalidArgument),
		errors.Is(err, layout.ErrTooManyLines),
		errors.Is(err, meme.ErrCaptionTooLong):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		http.Error(w, "internal error", status)
		return
	}
	s.logger.Debug("request rejected", "path", r.URL.Path, "status", status, "error", err)
	http.Error(w, err.Error(), status)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, page string, data any) {
	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, page, data); err != nil {
		s.fail(w, r, fmt.Errorf("rendering %s: %w", page, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) writeImage(w http.ResponseWriter, r *http.Request, img image.Image, format string) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", imaging.ContentType(format))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	images, err := s.gallery.List()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, "index.html", struct{ Images []gallery.Entry }{images})
}

func (s *Server) handleThumbnail(w http.ResponseWriter, r *http.Request) {
	s.thumbnail(w, r, imaging.DefaultThumbnail, imaging.DefaultThumbnail)
}

func (s *Server) handleScaled(w http.ResponseWriter, r *http.Request) {
	width, err := parseDimension("width", r.PathValue("width"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	height, err := parseDimension("height", r.PathValue("height"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.thumbnail(w, r, width, height)
}

func (s *Server) thumbnail(w http.ResponseWriter, r *http.Request, maxW, maxH int) {
	img, format, err := s.gallery.Open(r.PathValue("file"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeImage(w, r, imaging.Thumbnail(img, maxW, maxH), format)
}

func parseDimension(name, v string) (int, error) {
	return parseBounded(name, v, 1, MaxDimension)
}

func parseBounded(name, v string, lo, hi int) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", errBadRequest, name, v)
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("%w: %s %d is outside %d..%d", errBadRequest, name, n, lo, hi)
	}
	return n, nil
}
