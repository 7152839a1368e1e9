package layout

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/tsawler/pagelayout/model"
)

// makeTextBlock creates a one-line text block covering the given box
func makeTextBlock(text string, x0, y0, x1, y1 float64) *model.TextBlock {
	box := model.NewBBox(x0, y0, x1, y1)
	return model.NewTextBlock(model.Line{
		BBox:  box,
		Spans: []model.Span{{Text: text, Font: "Helvetica", Size: 10, BBox: box}},
	})
}

// makeGridRects returns border rects for a grid with every separator drawn
func makeGridRects(rowLines, colLines []float64) []*model.Rect {
	var rects []*model.Rect
	x0, x1 := colLines[0], colLines[len(colLines)-1]
	y0, y1 := rowLines[0], rowLines[len(rowLines)-1]
	for _, y := range rowLines {
		rects = append(rects, model.NewRect(model.NewBBox(x0, y-0.5, x1, y+0.5), model.Color{}))
	}
	for _, x := range colLines {
		rects = append(rects, model.NewRect(model.NewBBox(x-0.5, y0, x+0.5, y1), model.Color{}))
	}
	return rects
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

type stageRecorder struct {
	stages []Stage
	err    error
}

func (p *stageRecorder) Plot(stage Stage, l *Layout) error {
	p.stages = append(p.stages, stage)
	return p.err
}

type stubImplicit struct {
	tables []*model.TableBlock
	err    error
}

func (s *stubImplicit) ParseImplicitTables(*model.Blocks, *model.Rects) ([]*model.TableBlock, error) {
	return s.tables, s.err
}

type stubTextFormat struct {
	calls int
	err   error
}

func (s *stubTextFormat) ParseTextFormat(*model.Blocks, *model.Rects) error {
	s.calls++
	return s.err
}

type warnRecorder struct {
	warns []string
}

func (w *warnRecorder) Debug(string, ...interface{}) {}

func (w *warnRecorder) Warn(msg string, _ ...interface{}) {
	w.warns = append(w.warns, msg)
}

func TestComputeMargin(t *testing.T) {
	tests := []struct {
		name   string
		blocks []model.Block
		want   Margin
	}{
		{
			name: "empty page",
			want: Margin{72, 72, 72, 72},
		},
		{
			name: "two blocks on 600x800",
			blocks: []model.Block{
				makeTextBlock("a", 50, 60, 550, 100),
				makeTextBlock("b", 50, 120, 550, 760),
			},
			want: Margin{Left: 50, Right: 48, Top: 60, Bottom: 20},
		},
		{
			name:   "capped at normal",
			blocks: []model.Block{makeTextBlock("a", 100, 100, 300, 300)},
			want:   Margin{Left: 72, Right: 72, Top: 72, Bottom: 72},
		},
		{
			name:   "right follows left",
			blocks: []model.Block{makeTextBlock("a", 20, 100, 300, 790)},
			want:   Margin{Left: 20, Right: 20, Top: 72, Bottom: 5},
		},
		{
			name:   "content past the edges",
			blocks: []model.Block{makeTextBlock("a", -10, -5, 620, 820)},
			want:   Margin{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeMargin(tt.blocks, 600, 800, model.NormalMargin, model.DefaultTolerance)
			if !approx(got.Left, tt.want.Left) || !approx(got.Right, tt.want.Right) ||
				!approx(got.Top, tt.want.Top) || !approx(got.Bottom, tt.want.Bottom) {
				t.Errorf("ComputeMargin() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestComputeMargin_Bounds(t *testing.T) {
	// every side stays within [0, normal] whatever the block placement
	for x := -100.0; x <= 700; x += 37 {
		for y := -100.0; y <= 900; y += 41 {
			blocks := []model.Block{makeTextBlock("a", x, y, x+50, y+20)}
			m := ComputeMargin(blocks, 600, 800, 72, 1)
			for _, v := range m.Tuple() {
				if v < 0 || v > 72 {
					t.Fatalf("block at (%g,%g): margin %+v out of bounds", x, y, m)
				}
			}
			if m.Right > m.Left {
				t.Fatalf("block at (%g,%g): right %g exceeds left %g", x, y, m.Right, m.Left)
			}
		}
	}
}

func TestMarginTuple(t *testing.T) {
	m := Margin{Left: 1, Right: 2, Top: 3, Bottom: 4}
	if m.Tuple() != [4]float64{1, 2, 3, 4} {
		t.Errorf("Tuple() = %v", m.Tuple())
	}
	if MarginFromTuple(m.Tuple()) != m {
		t.Error("MarginFromTuple(Tuple()) did not round trip")
	}
}

func TestLayout_MarginCached(t *testing.T) {
	page := model.NewPage(600, 800)
	page.AddBlock(makeTextBlock("a", 50, 60, 550, 100))
	l := New(page)

	first := l.Margin()
	l.Blocks.Append(makeTextBlock("b", 10, 10, 20, 20))
	if l.Margin() != first {
		t.Error("margin recomputed without invalidation")
	}

	l.InvalidateMargin()
	if l.Margin().Left != 10 {
		t.Errorf("after invalidation left = %g, want 10", l.Margin().Left)
	}
}

func TestLayout_SpacingScenario(t *testing.T) {
	page := model.NewPage(600, 800)
	second := makeTextBlock("b", 50, 120, 550, 760)
	first := makeTextBlock("a", 50, 60, 550, 100)
	page.AddBlock(second)
	page.AddBlock(first)

	l := New(page)
	if err := l.Parse(); err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	if l.Blocks.At(0) != model.Block(first) {
		t.Fatal("blocks not in reading order")
	}

	m := l.Margin()
	if m != (Margin{Left: 50, Right: 48, Top: 60, Bottom: 20}) {
		t.Errorf("Margin() = %+v", m)
	}

	if sp := first.VerticalSpacing(); sp.Before != 0 {
		t.Errorf("first Before = %g, want 0", sp.Before)
	}
	sp := second.VerticalSpacing()
	if sp.Before != 20 {
		t.Errorf("second Before = %g, want 20", sp.Before)
	}
	if sp.After != 20 {
		t.Errorf("last After = %g, want 20", sp.After)
	}
}

func TestLayout_ParseExplicitTable(t *testing.T) {
	page := model.NewPage(600, 800)
	inCell := makeTextBlock("cell", 60, 110, 140, 130)
	below := makeTextBlock("below", 50, 300, 550, 320)
	page.AddBlock(below)
	page.AddBlock(inCell)
	for _, r := range makeGridRects([]float64{100, 150, 200}, []float64{50, 150, 250}) {
		page.AddRect(r)
	}
	lone := model.NewRect(model.NewBBox(400, 500, 401, 600), model.Color{})
	page.AddRect(lone)

	l := New(page)
	if err := l.Parse(); err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	if l.Blocks.Len() != 2 {
		t.Fatalf("page blocks = %d, want table and text", l.Blocks.Len())
	}
	table, ok := l.Blocks.At(0).(*model.TableBlock)
	if !ok {
		t.Fatalf("first block is %T, want table", l.Blocks.At(0))
	}
	if l.Blocks.At(1) != model.Block(below) {
		t.Error("second block should be the text below the table")
	}
	if table.Cell(0, 0).Text() != "cell" {
		t.Errorf("cell (0,0) text = %q", table.Cell(0, 0).Text())
	}

	for _, r := range l.Rects.All()[:6] {
		if r.Type != model.RectTypeBorder {
			t.Errorf("grid rect type = %v, want Border", r.Type)
		}
	}
	if lone.Type != model.RectTypeUnclassified {
		t.Errorf("lone rect type = %v, want Unclassified", lone.Type)
	}

	// margin from text blocks only: top 110 capped to 72
	if tb := table.VerticalSpacing().Before; !approx(tb, 28) {
		t.Errorf("table Before = %g, want 28", tb)
	}
	if sp := below.VerticalSpacing(); !approx(sp.Before, 100) || !approx(sp.After, 408) {
		t.Errorf("below spacing = %+v, want Before 100 After 408", sp)
	}

	// cell scope starts half a border below the cell top
	if sp := inCell.VerticalSpacing(); !approx(sp.Before, 9.5) || !approx(sp.After, 19.5) {
		t.Errorf("cell text spacing = %+v, want Before 9.5 After 19.5", sp)
	}
}

func TestLayout_PlotterStages(t *testing.T) {
	page := model.NewPage(600, 800)
	page.AddBlock(makeTextBlock("a", 50, 60, 550, 100))

	plotter := &stageRecorder{}
	opts := DefaultOptions()
	opts.Plotter = plotter

	if err := NewWithOptions(page, opts).Parse(); err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	want := []Stage{StageLayout, StageTable, StageImplicitTable, StageSpacing}
	if len(plotter.stages) != len(want) {
		t.Fatalf("stages = %v, want %v", plotter.stages, want)
	}
	for i := range want {
		if plotter.stages[i] != want[i] {
			t.Errorf("stage %d = %s, want %s", i, plotter.stages[i], want[i])
		}
	}
}

func TestLayout_PlotterErrorDoesNotStopParse(t *testing.T) {
	page := model.NewPage(600, 800)
	block := makeTextBlock("a", 50, 100, 550, 140)
	page.AddBlock(block)

	boom := errors.New("disk full")
	opts := DefaultOptions()
	opts.Plotter = &stageRecorder{err: boom}

	err := NewWithOptions(page, opts).Parse()
	if !errors.Is(err, boom) {
		t.Fatalf("Parse() error = %v, want wrapped plot error", err)
	}
	if block.VerticalSpacing().Before != 28 {
		t.Errorf("spacing not applied: %+v", block.VerticalSpacing())
	}
}

func TestLayout_ImplicitTables(t *testing.T) {
	page := model.NewPage(600, 800)
	for _, r := range makeGridRects([]float64{100, 150, 200}, []float64{50, 150, 250}) {
		page.AddRect(r)
	}
	inImplicit := makeTextBlock("x", 60, 410, 140, 430)
	page.AddBlock(inImplicit)

	overlapping := model.NewTableBlock(1, 1)
	overlapping.BBox = model.NewBBox(40, 90, 300, 210)
	overlapping.Cells[0][0] = model.NewCell(overlapping.BBox)

	free := model.NewTableBlock(1, 2)
	free.BBox = model.NewBBox(50, 400, 450, 450)
	free.Explicit = true
	free.Cells[0][0] = model.NewCell(model.NewBBox(50, 400, 250, 450))
	free.Cells[0][1] = model.NewCell(model.NewBBox(250, 400, 450, 450))

	logger := &warnRecorder{}
	opts := DefaultOptions()
	opts.ImplicitTables = &stubImplicit{tables: []*model.TableBlock{overlapping, free}}
	opts.Logger = logger

	l := NewWithOptions(page, opts)
	if err := l.Parse(); err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	got := l.Blocks.Tables()
	if len(got) != 2 {
		t.Fatalf("tables = %d, want explicit + one implicit", len(got))
	}
	if got[1] != free {
		t.Fatal("non-overlapping implicit table should be kept")
	}
	if free.Explicit {
		t.Error("implicit table must not be marked explicit")
	}
	if free.Cell(0, 0).Text() != "x" {
		t.Errorf("implicit cell text = %q", free.Cell(0, 0).Text())
	}
	if len(logger.warns) != 1 || !strings.Contains(logger.warns[0], "discarded") {
		t.Errorf("warnings = %v", logger.warns)
	}
}

func TestLayout_CollaboratorErrors(t *testing.T) {
	boom := errors.New("boom")

	t.Run("implicit", func(t *testing.T) {
		opts := DefaultOptions()
		opts.ImplicitTables = &stubImplicit{err: boom}
		err := NewWithOptions(model.NewPage(600, 800), opts).Parse()
		if !errors.Is(err, boom) || !strings.Contains(err.Error(), "implicit tables") {
			t.Errorf("Parse() error = %v", err)
		}
	})

	t.Run("text format", func(t *testing.T) {
		tf := &stubTextFormat{err: boom}
		opts := DefaultOptions()
		opts.TextFormat = tf
		err := NewWithOptions(model.NewPage(600, 800), opts).Parse()
		if !errors.Is(err, boom) || !strings.Contains(err.Error(), "text format") {
			t.Errorf("Parse() error = %v", err)
		}
		if tf.calls != 1 {
			t.Errorf("text format calls = %d, want 1", tf.calls)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Config.NormalMargin = 0
		if err := NewWithOptions(model.NewPage(600, 800), opts).Parse(); err == nil {
			t.Error("expected config error")
		}
	})
}

func TestLayout_DropsInvalidBlocks(t *testing.T) {
	page := model.NewPage(600, 800)
	page.AddBlock(makeTextBlock("ok", 50, 100, 200, 120))
	page.AddBlock(makeTextBlock("flat", 50, 200, 200, 200))
	page.AddBlock(makeTextBlock("inverted", 200, 300, 50, 320))

	l := New(page)
	if err := l.Parse(); err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if l.Blocks.Len() != 1 {
		t.Errorf("blocks = %d, want 1", l.Blocks.Len())
	}
}

func TestLayout_DropsNilBlocks(t *testing.T) {
	page := model.NewPage(600, 800)
	page.AddBlock(makeTextBlock("ok", 50, 100, 200, 120))
	page.AddBlock((*model.TextBlock)(nil))
	page.AddBlock((*model.TableBlock)(nil))
	page.AddRect(nil)

	l := New(page)
	if err := l.Parse(); err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if l.Blocks.Len() != 1 {
		t.Errorf("blocks = %d, want 1", l.Blocks.Len())
	}
	if l.Rects.Len() != 0 {
		t.Errorf("rects = %d, want 0", l.Rects.Len())
	}
}

func TestLayout_ParseDissolvesNestedExplicitTables(t *testing.T) {
	inner := model.NewTableBlock(1, 1)
	inner.Explicit = true
	inner.BBox = model.NewBBox(60, 110, 140, 140)
	cell := model.NewCell(inner.BBox)
	cell.Blocks.Append(makeTextBlock("deep", 70, 115, 130, 130))
	inner.Cells[0][0] = cell

	outer := model.NewTableBlock(1, 1)
	outer.BBox = model.NewBBox(50, 100, 300, 200)
	outerCell := model.NewCell(outer.BBox)
	outerCell.Blocks.Append(inner)
	outer.Cells[0][0] = outerCell

	blocks := model.NewBlocks(outer)
	if n := dissolveExplicitTables(blocks); n != 1 {
		t.Fatalf("dissolved %d tables, want 1", n)
	}
	if blocks.Len() != 2 || len(blocks.Tables()) != 1 {
		t.Fatalf("blocks = %d, tables = %d; want the implicit table and the lifted text", blocks.Len(), len(blocks.Tables()))
	}
	if outerCell.Blocks.Len() != 0 {
		t.Errorf("implicit cell still holds %d blocks", outerCell.Blocks.Len())
	}
	if text, ok := blocks.At(1).(*model.TextBlock); !ok || text.Text() != "deep" {
		t.Errorf("lifted block = %v", blocks.At(1))
	}
}
