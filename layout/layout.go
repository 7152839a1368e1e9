package layout

import (
	"errors"
	"fmt"

	"github.com/tsawler/pagelayout/model"
	"github.com/tsawler/pagelayout/tables"
)

// Stage identifies a point in the parse pipeline handed to a Plotter
type Stage string

const (
	StageLayout        Stage = "layout"         // after preprocessing
	StageTable         Stage = "table"          // after explicit tables
	StageImplicitTable Stage = "implicit_table" // after implicit tables
	StageSpacing       Stage = "spacing"        // after vertical spacing
)

// ImplicitTableParser detects tables that have no drawn borders. Returned
// tables are nested into the page by the layout; their cells are filled
// with the page blocks they enclose.
type ImplicitTableParser interface {
	ParseImplicitTables(blocks *model.Blocks, rects *model.Rects) ([]*model.TableBlock, error)
}

// TextFormatParser derives text styling (highlight, underline) from rects.
// It must not change block geometry.
type TextFormatParser interface {
	ParseTextFormat(blocks *model.Blocks, rects *model.Rects) error
}

// Plotter renders the layout at a pipeline stage for inspection
type Plotter interface {
	Plot(stage Stage, l *Layout) error
}

// Logger receives diagnostics from the pipeline
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Config holds the geometric settings of a layout
type Config struct {
	// Margin used for empty pages and cap for every inferred side (points)
	NormalMargin float64

	// Tolerance for grouping, ordering and margin inference (points)
	Tolerance float64

	// Table recognition settings
	Tables tables.Config
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		NormalMargin: model.NormalMargin,
		Tolerance:    model.DefaultTolerance,
		Tables:       tables.DefaultConfig(),
	}
}

// Validate reports invalid settings
func (c Config) Validate() error {
	if c.NormalMargin <= 0 {
		return fmt.Errorf("normal margin must be positive, got %g", c.NormalMargin)
	}
	if c.Tolerance < 0 {
		return fmt.Errorf("tolerance must not be negative, got %g", c.Tolerance)
	}
	return c.Tables.Validate()
}

// Options configures a Layout. Collaborators left nil are skipped.
type Options struct {
	Config         Config
	ImplicitTables ImplicitTableParser
	TextFormat     TextFormatParser
	Plotter        Plotter
	Logger         Logger
}

// DefaultOptions returns options with the default config and no collaborators
func DefaultOptions() Options {
	return Options{Config: DefaultConfig()}
}

// Layout is the page model: dimensions, blocks and rect shapes, plus the
// inferred margin and table structure once parsed. A Layout is not safe for
// concurrent use.
type Layout struct {
	Number int
	Width  float64
	Height float64
	Blocks *model.Blocks
	Rects  *model.Rects

	opts   Options
	margin *Margin
}

// New creates a layout for the page with default options
func New(page *model.Page) *Layout {
	return NewWithOptions(page, DefaultOptions())
}

// NewWithOptions creates a layout for the page. The page's block and rect
// slices are copied; the blocks and rects themselves are shared.
func NewWithOptions(page *model.Page, opts Options) *Layout {
	return &Layout{
		Number: page.Number,
		Width:  page.Width,
		Height: page.Height,
		Blocks: model.NewBlocks(page.Blocks...),
		Rects:  model.NewRects(page.Rects...),
		opts:   opts,
	}
}

// Config returns the layout configuration
func (l *Layout) Config() Config {
	return l.opts.Config
}

// Parse runs the pipeline: preprocessing, margin, explicit tables, implicit
// tables, text format and vertical spacing. Explicit tables found by an
// earlier parse, or restored from a record, are dissolved first so parsing
// again yields the same structure. Plotter failures do not stop the
// pipeline; they are returned together once it completes. Broken internal
// invariants panic.
func (l *Layout) Parse() error {
	cfg := l.opts.Config
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("layout config: %w", err)
	}

	var plotErrs []error
	plot := func(stage Stage) {
		if l.opts.Plotter == nil {
			return
		}
		if err := l.opts.Plotter.Plot(stage, l); err != nil {
			plotErrs = append(plotErrs, fmt.Errorf("plot %s: %w", stage, err))
		}
	}

	// 1. preprocessing; explicit tables are rebuilt from the rects below
	dissolved := dissolveExplicitTables(l.Blocks)
	dropped := l.Blocks.Preprocess(cfg.Tolerance)
	rejected := l.Rects.Preprocess()
	l.debug("preprocessed", "dissolved_tables", dissolved, "dropped_blocks", dropped, "rejected_rects", rejected)
	plot(StageLayout)

	// 2. margin
	l.InvalidateMargin()
	m := l.Margin()
	l.debug("margin", "left", m.Left, "right", m.Right, "top", m.Top, "bottom", m.Bottom)

	// 3. explicit tables
	if err := l.parseExplicitTables(); err != nil {
		return err
	}
	plot(StageTable)

	// 4. implicit tables
	if l.opts.ImplicitTables != nil {
		if err := l.parseImplicitTables(); err != nil {
			return err
		}
	}
	plot(StageImplicitTable)

	// 5. text format
	if l.opts.TextFormat != nil {
		if err := l.opts.TextFormat.ParseTextFormat(l.Blocks, l.Rects); err != nil {
			return fmt.Errorf("text format: %w", err)
		}
	}

	// 6. vertical spacing
	l.parseVerticalSpacing()
	plot(StageSpacing)

	return errors.Join(plotErrs...)
}

// parseExplicitTables recognizes tables from rect groups and nests page
// blocks into them.
func (l *Layout) parseExplicitTables() error {
	cfg := l.opts.Config

	detector := tables.NewStructureDetector()
	if err := detector.Configure(cfg.Tables); err != nil {
		return fmt.Errorf("explicit tables: %w", err)
	}

	groups := l.Rects.Group(cfg.Tolerance)
	found := detector.DetectAll(groups)
	for _, table := range found {
		l.Blocks.Append(table)
	}

	moved := tables.AssignContent(l.Blocks, cfg.Tolerance)
	l.Blocks.SortInReadingOrder(cfg.Tolerance)

	l.debug("explicit tables", "groups", len(groups), "tables", len(found), "nested_blocks", moved)
	return nil
}

// parseImplicitTables asks the collaborator for borderless tables and keeps
// those that do not collide with an explicit table.
func (l *Layout) parseImplicitTables() error {
	cfg := l.opts.Config

	found, err := l.opts.ImplicitTables.ParseImplicitTables(l.Blocks, l.Rects)
	if err != nil {
		return fmt.Errorf("implicit tables: %w", err)
	}

	explicit := l.Blocks.Tables()
	kept := 0
	for _, table := range found {
		if table == nil {
			continue
		}
		if collides(table, explicit) {
			l.warn("implicit table overlaps explicit table, discarded", "bbox", table.BBox.Tuple())
			continue
		}
		table.Explicit = false
		l.Blocks.Append(table)
		kept++
	}

	if kept > 0 {
		tables.AssignContent(l.Blocks, cfg.Tolerance)
		l.Blocks.SortInReadingOrder(cfg.Tolerance)
	}

	l.debug("implicit tables", "found", len(found), "kept", kept)
	return nil
}

// dissolveExplicitTables removes every explicit table from the block tree,
// at any depth, and returns its cell content to page level. Implicit tables
// stay where they are. It returns the number of tables removed.
func dissolveExplicitTables(blocks *model.Blocks) int {
	var lifted []model.Block
	n := dissolveInto(blocks, &lifted)
	blocks.Append(lifted...)
	return n
}

func dissolveInto(blocks *model.Blocks, lifted *[]model.Block) int {
	n := 0
	for _, table := range blocks.Tables() {
		if table == nil {
			continue
		}
		for _, child := range table.Children() {
			n += dissolveInto(child, lifted)
		}
		if !table.Explicit {
			continue
		}
		blocks.Remove(table)
		for _, child := range table.Children() {
			*lifted = append(*lifted, child.All()...)
		}
		n++
	}
	return n
}

func collides(table *model.TableBlock, others []*model.TableBlock) bool {
	for _, other := range others {
		if table.BBox.Intersects(other.BBox) {
			return true
		}
	}
	return false
}

func (l *Layout) debug(msg string, keysAndValues ...interface{}) {
	if l.opts.Logger != nil {
		l.opts.Logger.Debug(msg, append([]interface{}{"page", l.Number}, keysAndValues...)...)
	}
}

func (l *Layout) warn(msg string, keysAndValues ...interface{}) {
	if l.opts.Logger != nil {
		l.opts.Logger.Warn(msg, append([]interface{}{"page", l.Number}, keysAndValues...)...)
	}
}
