package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/perbu/memegen/internal/colors"
	"github.com/perbu/memegen/internal/fonts"
	"github.com/perbu/memegen/internal/imaging"
	"github.com/perbu/memegen/internal/layout"
	"github.com/perbu/memegen/internal/meme"
	"github.com/perbu/memegen/internal/server"

	// Template decoders for the render command.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const shutdownTimeout = 5 * time.Second

func usage() {
	fmt.Fprintf(os.Stderr, "Usage:\n")
	fmt.Fprintf(os.Stderr, "  %s serve [flags]\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "      Serve the caption web form.\n")
	fmt.Fprintf(os.Stderr, "  %s render [flags] \"<text>\" [output.png]\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "      Draw <text> as the top caption of -template.\n")
	fmt.Fprintf(os.Stderr, "      [output.png]: Optional output PNG filename. If omitted, writes PNG to stdout.\n")
	fmt.Fprintf(os.Stderr, "Run '%s <command> -h' for the flags of a command.\n", os.Args[0])
}

// main dispatches to a subcommand and manages the exit status.
func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "serve":
		err = serve(os.Args[2:])
	case "render":
		err = render(os.Args[2:])
	case "-h", "-help", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n", os.Args[1])
		usage()
		os.Exit(1)
	}
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log level %q: %w", s, err)
	}
	return l, nil
}

// serve runs the web form until SIGINT or SIGTERM.
func serve(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", ":8080", "listen address")
	templates := fs.String("templates", "templates", "directory of template images")
	fontDir := fs.String("fonts", "", "directory of TrueType fonts (built-in font only when empty)")
	fontExt := fs.String("font-ext", fonts.DefaultExt, "font file extension")
	defaultFont := fs.String("default-font", fonts.DefaultName, "font preselected in the form")
	logLevel := fs.String("log-level", "info", "log level: debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return err
	}
	level, err := parseLevel(*logLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	srv, err := server.New(server.Config{
		Templates:   *templates,
		Fonts:       fonts.Directory{Dir: *fontDir, Ext: *fontExt},
		DefaultFont: *defaultFont,
	}, logger)
	if err != nil {
		return fmt.Errorf("setting up server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hs := &http.Server{
		Addr:              *addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", *addr, "templates", *templates)
		errCh <- hs.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := hs.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// renderConfig holds the parsed render flags.
type renderConfig struct {
	template string
	top      string
	middle   string
	bottom   string
	align    layout.Align
	fonts    fonts.Directory
	font     string
	size     float64
	fill     color.Color
	outline  color.Color
	upper    bool
	output   string
}

func parseRender(args []string) (renderConfig, error) {
	var cfg renderConfig
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.StringVar(&cfg.template, "template", "", "template image to caption (required)")
	fs.StringVar(&cfg.middle, "middle", "", "middle caption")
	fs.StringVar(&cfg.bottom, "bottom", "", "bottom caption")
	align := fs.String("align", "middle", "horizontal alignment: left, middle or right")
	fontDir := fs.String("fonts", "", "directory of TrueType fonts")
	fs.StringVar(&cfg.font, "font", fonts.DefaultName, "font name")
	fs.Float64Var(&cfg.size, "size", meme.DefaultSize, "font size in points")
	fill := fs.String("color", "white", "fill color")
	outline := fs.String("outline", "black", "outline color, empty for none")
	fs.BoolVar(&cfg.upper, "upper", true, "upper-case all captions")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if fs.NArg() < 1 || fs.Arg(0) == "" {
		return cfg, errors.New("missing caption text")
	}
	cfg.top = fs.Arg(0)
	if fs.NArg() > 1 {
		cfg.output = fs.Arg(1)
		// Simple check and warning for non-PNG extension
		if !strings.HasSuffix(strings.ToLower(cfg.output), ".png") {
			fmt.Fprintf(os.Stderr, "Warning: Output filename '%s' does not end with .png. Appending .png\n", cfg.output)
			cfg.output += ".png"
		}
	}
	if cfg.template == "" {
		return cfg, errors.New("missing -template")
	}
	for _, text := range []string{cfg.top, cfg.middle, cfg.bottom} {
		if err := meme.CheckCaption(text); err != nil {
			return cfg, err
		}
	}

	var err error
	if cfg.align, err = layout.ParseAlign(*align); err != nil {
		return cfg, err
	}
	cfg.fonts = fonts.Directory{Dir: *fontDir}
	if cfg.fill, err = colors.Parse(*fill); err != nil {
		return cfg, err
	}
	if *outline != "" {
		if cfg.outline, err = colors.Parse(*outline); err != nil {
			return cfg, err
		}
	}
	if cfg.upper {
		cfg.top = strings.ToUpper(cfg.top)
		cfg.middle = strings.ToUpper(cfg.middle)
		cfg.bottom = strings.ToUpper(cfg.bottom)
	}
	return cfg, nil
}

// render captions a single image from the command line.
func render(args []string) error {
	cfg, err := parseRender(args)
	if err != nil {
		return err
	}
	if err := run(cfg); err != nil {
		return err
	}
	// If writing to a file and successful, print a confirmation message
	if cfg.output != "" {
		fmt.Printf("Successfully generated meme to %s\n", cfg.output)
	}
	return nil
}

// run loads the template and font, composes the captions, and writes the
// PNG to the configured destination.
func run(cfg renderConfig) error {
	// --- 1. Load Template Image ---
	f, err := os.Open(cfg.template)
	if err != nil {
		return fmt.Errorf("opening template '%s': %w", cfg.template, err)
	}
	defer f.Close()
	baseImg, _, err := image.Decode(f) // Output is always PNG, the format is not used
	if err != nil {
		return fmt.Errorf("decoding template image: %w", err)
	}

	// --- 2. Load Font ---
	ttFont, err := cfg.fonts.Load(cfg.font)
	if err != nil {
		return fmt.Errorf("loading font: %w", err)
	}

	// --- 3. Compose ---
	out, err := meme.Compose(baseImg, meme.Options{
		Top:     meme.Caption{Text: cfg.top, Align: cfg.align},
		Middle:  meme.Caption{Text: cfg.middle, Align: cfg.align},
		Bottom:  meme.Caption{Text: cfg.bottom, Align: cfg.align},
		Font:    ttFont,
		Size:    cfg.size,
		Fill:    cfg.fill,
		Outline: cfg.outline,
	})
	if err != nil {
		return fmt.Errorf("composing meme: %w", err)
	}

	// --- 4. Encode and Output PNG ---
	var destWriter io.Writer = os.Stdout // Default to standard output
	if cfg.output != "" {
		outFile, err := os.Create(cfg.output)
		if err != nil {
			return fmt.Errorf("creating output file '%s': %w", cfg.output, err)
		}
		defer outFile.Close()
		destWriter = outFile
	}
	if err := imaging.Encode(destWriter, out, "png"); err != nil {
		return fmt.Errorf("encoding or writing PNG: %w", err)
	}
	return nil
}
