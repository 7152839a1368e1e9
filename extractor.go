package pagelayout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/tsawler/pagelayout/export"
	"github.com/tsawler/pagelayout/layout"
	"github.com/tsawler/pagelayout/model"
	"github.com/tsawler/pagelayout/source"
	"github.com/tsawler/pagelayout/tables"
)

// Extractor provides a fluent interface for parsing page layouts from PDF,
// page-file and JSON inputs. Each configuration method returns a new
// Extractor instance, making it safe for concurrent use and allowing method
// chaining.
type Extractor struct {
	// Source: a file, or pages decoded elsewhere
	filename string
	pages    []*model.Page

	// Configuration
	options ExtractOptions

	// Accumulated error (fail-fast)
	err error
}

// clone creates a shallow copy of the Extractor with a deep copy of options.
// This ensures immutability - each chain method returns a new instance.
func (e *Extractor) clone() *Extractor {
	return &Extractor{
		filename: e.filename,
		pages:    e.pages,
		options:  e.options.clone(),
		err:      e.err,
	}
}

// fail records the first configuration error
func (e *Extractor) fail(format string, args ...interface{}) *Extractor {
	if e.err == nil {
		e.err = fmt.Errorf("%w: %s", ErrInvalidOption, fmt.Sprintf(format, args...))
	}
	return e
}

// ============================================================================
// Configuration Methods (return new Extractor instance)
// ============================================================================

// Pages specifies which pages to parse (1-indexed).
// Multiple calls are cumulative.
//
// Example:
//
//	recs, err := pagelayout.Open("doc.pdf").Pages(1, 3, 5).Records(ctx)
func (e *Extractor) Pages(pages ...int) *Extractor {
	newExt := e.clone()
	for _, p := range pages {
		if p < 1 {
			return newExt.fail("page numbers start at 1, got %d", p)
		}
	}
	newExt.options.pages = append(newExt.options.pages, pages...)
	return newExt
}

// PageRange specifies a range of pages to parse (1-indexed, inclusive).
//
// Example:
//
//	recs, err := pagelayout.Open("doc.pdf").PageRange(5, 10).Records(ctx)
func (e *Extractor) PageRange(start, end int) *Extractor {
	if start < 1 || end < start {
		return e.clone().fail("invalid page range %d-%d", start, end)
	}
	newExt := e.clone()
	for i := start; i <= end; i++ {
		newExt.options.pages = append(newExt.options.pages, i)
	}
	return newExt
}

// Workers sets how many pages are parsed concurrently.
//
// Example:
//
//	recs, err := pagelayout.Open("doc.pdf").Workers(4).Records(ctx)
func (e *Extractor) Workers(n int) *Extractor {
	newExt := e.clone()
	if n < 1 {
		return newExt.fail("workers must be at least 1, got %d", n)
	}
	newExt.options.workers = n
	return newExt
}

// Implicit enables detection of borderless tables from text alignment.
//
// Example:
//
//	recs, err := pagelayout.Open("doc.pdf").Implicit().Records(ctx)
func (e *Extractor) Implicit() *Extractor {
	newExt := e.clone()
	newExt.options.implicit = true
	return newExt
}

// Tolerance sets the geometric slack used for grouping, ordering and margin
// inference, in points.
func (e *Extractor) Tolerance(tol float64) *Extractor {
	newExt := e.clone()
	if tol < 0 {
		return newExt.fail("tolerance must not be negative, got %g", tol)
	}
	newExt.options.config.Tolerance = tol
	return newExt
}

// NormalMargin sets the margin of empty pages and the cap for every
// inferred margin side, in points.
func (e *Extractor) NormalMargin(m float64) *Extractor {
	newExt := e.clone()
	if m <= 0 {
		return newExt.fail("normal margin must be positive, got %g", m)
	}
	newExt.options.config.NormalMargin = m
	return newExt
}

// TableConfig replaces the table recognition settings.
func (e *Extractor) TableConfig(config tables.Config) *Extractor {
	newExt := e.clone()
	if err := config.Validate(); err != nil {
		return newExt.fail("%v", err)
	}
	newExt.options.config.Tables = config
	return newExt
}

// TextFormat sets the collaborator deriving text styling from rects.
func (e *Extractor) TextFormat(p layout.TextFormatParser) *Extractor {
	newExt := e.clone()
	newExt.options.textFormat = p
	return newExt
}

// PlotWith sets a factory creating one plotter per page.
//
// Example:
//
//	recs, err := pagelayout.Open("doc.pdf").
//	    PlotWith(func(page int) (layout.Plotter, error) { ... }).
//	    Records(ctx)
func (e *Extractor) PlotWith(f PlotterFactory) *Extractor {
	newExt := e.clone()
	newExt.options.plotters = f
	return newExt
}

// Logger sets the logger receiving pipeline diagnostics.
func (e *Extractor) Logger(l layout.Logger) *Extractor {
	newExt := e.clone()
	newExt.options.logger = l
	return newExt
}

// ============================================================================
// Terminal Methods
// ============================================================================

// PageCount returns the number of pages the extractor would parse.
func (e *Extractor) PageCount() (int, error) {
	pages, err := e.loadPages()
	if err != nil {
		return 0, err
	}
	return len(pages), nil
}

// Layouts decodes and parses the selected pages. On page failures the
// successful layouts are still returned, in page order, alongside the
// joined *PageError values.
//
// Example:
//
//	layouts, err := pagelayout.Open("doc.pdf").Layouts(ctx)
func (e *Extractor) Layouts(ctx context.Context) ([]*layout.Layout, error) {
	pages, err := e.loadPages()
	if err != nil {
		return nil, err
	}

	opts, err := e.parseOptions()
	if err != nil {
		return nil, err
	}

	all, err := ParsePages(ctx, pages, opts)
	layouts := make([]*layout.Layout, 0, len(all))
	for _, l := range all {
		if l != nil {
			layouts = append(layouts, l)
		}
	}
	return layouts, err
}

// Records parses the selected pages and stores each as a Record.
//
// Example:
//
//	recs, err := pagelayout.Open("doc.pdf").Pages(1).Records(ctx)
//	if err != nil {
//	    // handle error
//	}
//	recs[0].WriteFile("page-1.json")
func (e *Extractor) Records(ctx context.Context) ([]*layout.Record, error) {
	layouts, err := e.Layouts(ctx)
	recs := make([]*layout.Record, 0, len(layouts))
	for _, l := range layouts {
		recs = append(recs, l.Store())
	}
	return recs, err
}

// JSON writes the records of the selected pages as a JSON array.
func (e *Extractor) JSON(ctx context.Context, w io.Writer) error {
	recs, err := e.Records(ctx)
	if err != nil {
		return err
	}
	return WriteRecords(w, recs)
}

// HTML writes an HTML view of the selected pages.
func (e *Extractor) HTML(ctx context.Context, w io.Writer) error {
	recs, err := e.Records(ctx)
	if err != nil {
		return err
	}
	return export.WriteHTML(w, recs...)
}

// WriteRecords encodes records as an indented JSON array
func WriteRecords(w io.Writer, recs []*layout.Record) error {
	if recs == nil {
		recs = []*layout.Record{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "    ")
	if err := encoder.Encode(recs); err != nil {
		return fmt.Errorf("encoding records: %w", err)
	}
	return nil
}

// ============================================================================
// Internal Helpers
// ============================================================================

// loadPages decodes the file or filters the in-memory pages.
func (e *Extractor) loadPages() ([]*model.Page, error) {
	if e.err != nil {
		return nil, e.err
	}

	if e.pages != nil {
		return filterPages(e.pages, e.options.pages)
	}
	if e.filename == "" {
		return nil, ErrNoSource
	}

	pages, err := source.Read(e.filename, e.options.pages...)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", e.filename, err)
	}
	return pages, nil
}

// parseOptions assembles per-page options from the extractor settings.
func (e *Extractor) parseOptions() (ParseOptions, error) {
	cfg := e.options.config
	if err := cfg.Validate(); err != nil {
		return ParseOptions{}, fmt.Errorf("%w: %v", ErrInvalidOption, err)
	}

	lopts := layout.DefaultOptions()
	lopts.Config = cfg
	lopts.TextFormat = e.options.textFormat

	if e.options.implicit {
		detector := tables.NewAlignmentDetector()
		if err := detector.Configure(cfg.Tables); err != nil {
			return ParseOptions{}, fmt.Errorf("%w: %v", ErrInvalidOption, err)
		}
		lopts.ImplicitTables = detector
	}

	return ParseOptions{
		Workers:  e.options.workers,
		Layout:   lopts,
		Plotters: e.options.plotters,
		Logger:   e.options.logger,
	}, nil
}

// filterPages keeps the listed page numbers, in the listed order.
func filterPages(all []*model.Page, numbers []int) ([]*model.Page, error) {
	if len(numbers) == 0 {
		return all, nil
	}

	byNumber := make(map[int]*model.Page, len(all))
	for _, p := range all {
		byNumber[p.Number] = p
	}

	selected := make([]*model.Page, 0, len(numbers))
	for _, n := range numbers {
		p, ok := byNumber[n]
		if !ok {
			return nil, fmt.Errorf("%w: %d", source.ErrPageOutOfRange, n)
		}
		selected = append(selected, p)
	}
	return selected, nil
}
