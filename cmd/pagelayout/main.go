// Command pagelayout reconstructs the layout of document pages and writes
// the result as JSON records, an HTML view and optional debug plots.
//
// Usage:
//
//	pagelayout -in report.pdf -out report.json
//	pagelayout -in report.pdf -pages 1-3,7 -implicit -html report.html
//	pagelayout -in pages.page -plot ./plots -png ./png
//
// Settings not given on the command line are read from PAGELAYOUT_*
// environment variables, seeded from a .env file in the working directory.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/tsawler/pagelayout"
	"github.com/tsawler/pagelayout/export"
	"github.com/tsawler/pagelayout/internal/config"
	"github.com/tsawler/pagelayout/internal/logging"
	"github.com/tsawler/pagelayout/layout"
	"github.com/tsawler/pagelayout/plot"
	"github.com/tsawler/pagelayout/tables"
)

func main() {
	var (
		inPath    = flag.String("in", "", "Input document (.pdf, .page or .json)")
		outPath   = flag.String("out", "", "JSON output file (default: stdout)")
		htmlPath  = flag.String("html", "", "Write an HTML view to this file")
		plotDir   = flag.String("plot", "", "Directory for per-page debug plots (PDF)")
		pngDir    = flag.String("png", "", "Directory for per-page PNG renderings")
		pngScale  = flag.Float64("scale", plot.DefaultScale, "Pixels per point for PNG output")
		pageSpec  = flag.String("pages", "", "Pages to parse, e.g. 1-3,7 (default: all)")
		workers   = flag.Int("workers", 0, "Pages parsed concurrently (default: PAGELAYOUT_WORKERS or CPU count)")
		implicit  = flag.Bool("implicit", false, "Detect borderless tables from text alignment")
		tolerance = flag.Float64("tolerance", 0, "Geometric tolerance in points")
		debug     = flag.Bool("debug", false, "Enable debug logging")
		envFile   = flag.String("env", ".env", "Environment file to load")
	)
	flag.Parse()

	logger := logging.NewLogger("pagelayout")

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "usage: pagelayout -in <document> [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		logger.Error("loading configuration", "error", err)
		os.Exit(1)
	}

	// explicit flags win over the environment
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "workers":
			cfg.Workers = *workers
		case "tolerance":
			cfg.Tolerance = *tolerance
		case "debug":
			cfg.Debug = *debug
		case "plot":
			cfg.PlotDir = *plotDir
		}
	})
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger.SetDebug(cfg.Debug)

	pages, err := parsePageSpec(*pageSpec)
	if err != nil {
		logger.Error("invalid -pages", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := runOptions{
		input:    *inPath,
		output:   *outPath,
		html:     *htmlPath,
		pngDir:   *pngDir,
		pngScale: *pngScale,
		pages:    pages,
		implicit: *implicit,
	}
	if err := run(ctx, cfg, opts, logger); err != nil {
		logger.Error("extraction failed", "error", err)
		os.Exit(1)
	}
}

type runOptions struct {
	input    string
	output   string
	html     string
	pngDir   string
	pngScale float64
	pages    []int
	implicit bool
}

func run(ctx context.Context, cfg *config.Config, opts runOptions, logger *logging.Logger) error {
	start := time.Now()

	tableCfg := tables.DefaultConfig()
	tableCfg.MaxBorderWidth = cfg.MaxBorderWidth
	tableCfg.AlignmentTolerance = cfg.Tolerance

	ext := pagelayout.Open(opts.input).
		Workers(cfg.Workers).
		Tolerance(cfg.Tolerance).
		NormalMargin(cfg.NormalMargin).
		TableConfig(tableCfg).
		Logger(logger.With("layout"))
	if len(opts.pages) > 0 {
		ext = ext.Pages(opts.pages...)
	}
	if opts.implicit {
		ext = ext.Implicit()
	}

	var plots *plotFiles
	if cfg.PlotDir != "" {
		if err := os.MkdirAll(cfg.PlotDir, 0o755); err != nil {
			return fmt.Errorf("creating plot directory: %w", err)
		}
		plots = &plotFiles{dir: cfg.PlotDir}
		ext = ext.PlotWith(plots.create)
	}

	layouts, err := ext.Layouts(ctx)
	if plots != nil {
		if cerr := plots.close(); cerr != nil {
			logger.Warn("closing plots", "error", cerr)
		}
	}
	for _, pe := range pagelayout.PageErrors(err) {
		logger.Warn("page skipped", "page", pe.Page, "job", pe.JobID, "error", pe.Err)
	}
	if err != nil && len(pagelayout.PageErrors(err)) == 0 {
		return err
	}
	if len(layouts) == 0 && err != nil {
		return fmt.Errorf("no page could be parsed: %w", err)
	}

	recs := make([]*layout.Record, len(layouts))
	for i, l := range layouts {
		recs[i] = l.Store()
	}

	if err := writeTo(opts.output, func(w io.Writer) error {
		return pagelayout.WriteRecords(w, recs)
	}); err != nil {
		return err
	}

	if opts.html != "" {
		if err := writeTo(opts.html, func(w io.Writer) error {
			return export.WriteHTML(w, recs...)
		}); err != nil {
			return err
		}
	}

	if opts.pngDir != "" {
		if err := writePNGs(opts.pngDir, layouts, opts.pngScale); err != nil {
			return err
		}
	}

	logger.Info("done", "pages", len(layouts), "failed", len(pagelayout.PageErrors(err)),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

// writeTo calls write with the named file, or stdout when path is empty
func writeTo(path string, write func(io.Writer) error) error {
	if path == "" {
		return write(os.Stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func writePNGs(dir string, layouts []*layout.Layout, scale float64) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating png directory: %w", err)
	}
	for _, l := range layouts {
		path := filepath.Join(dir, fmt.Sprintf("page-%d.png", l.Number))
		if err := writeTo(path, func(w io.Writer) error {
			return plot.RenderPNG(w, l, scale)
		}); err != nil {
			return err
		}
	}
	return nil
}

// plotFiles hands out one PDF plotter per page and closes them all at the
// end. The factory is called from parallel workers.
type plotFiles struct {
	dir string

	mu       sync.Mutex
	plotters []*plot.PDFPlotter
	files    []*os.File
}

func (p *plotFiles) create(page int) (layout.Plotter, error) {
	f, err := os.Create(filepath.Join(p.dir, fmt.Sprintf("page-%d.pdf", page)))
	if err != nil {
		return nil, err
	}

	plotter := plot.NewPDFPlotter(f)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.plotters = append(p.plotters, plotter)
	p.files = append(p.files, f)
	return plotter, nil
}

func (p *plotFiles) close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for i, plotter := range p.plotters {
		if err := plotter.Close(); err != nil {
			errs = append(errs, err)
		}
		if err := p.files[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	p.plotters, p.files = nil, nil
	return errors.Join(errs...)
}
