package source

import (
	"testing"

	"github.com/tsawler/pagelayout/model"
)

// glyph creates a glyph whose box starts at (x, top) with height = size
func glyph(text string, x, top, w, size float64) Glyph {
	return Glyph{
		Text: text,
		Font: "Helvetica",
		Size: size,
		BBox: model.NewBBox(x, top, x+w, top+size),
	}
}

func TestBlockBuilder_Empty(t *testing.T) {
	b := NewBlockBuilder()

	if blocks := b.Build(nil); blocks != nil {
		t.Errorf("expected nil for no glyphs, got %d blocks", len(blocks))
	}

	invalid := []Glyph{
		{Text: "", BBox: model.NewBBox(0, 0, 10, 10)},
		{Text: "x", BBox: model.NewBBox(10, 10, 10, 20)},
	}
	if blocks := b.Build(invalid); blocks != nil {
		t.Errorf("expected nil for invalid glyphs, got %d blocks", len(blocks))
	}
}

func TestBlockBuilder_WordSpacing(t *testing.T) {
	tests := []struct {
		name   string
		glyphs []Glyph
		want   string
	}{
		{
			name:   "adjacent glyphs",
			glyphs: []Glyph{glyph("H", 50, 100, 6, 10), glyph("i", 56, 100, 3, 10)},
			want:   "Hi",
		},
		{
			name:   "gap inserts space",
			glyphs: []Glyph{glyph("Hello", 50, 100, 30, 10), glyph("World", 85, 100, 30, 10)},
			want:   "Hello World",
		},
		{
			name:   "existing space kept single",
			glyphs: []Glyph{glyph("Hello ", 50, 100, 30, 10), glyph("World", 85, 100, 30, 10)},
			want:   "Hello World",
		},
		{
			name:   "stream order does not matter",
			glyphs: []Glyph{glyph("World", 85, 100, 30, 10), glyph("Hello", 50, 100, 30, 10)},
			want:   "Hello World",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks := NewBlockBuilder().Build(tt.glyphs)
			if len(blocks) != 1 || len(blocks[0].Lines) != 1 {
				t.Fatalf("expected 1 block with 1 line, got %+v", blocks)
			}
			if got := blocks[0].Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBlockBuilder_FontChangeSplitsSpans(t *testing.T) {
	bold := glyph("Total:", 50, 100, 30, 10)
	bold.Font = "Helvetica-Bold"

	blocks := NewBlockBuilder().Build([]Glyph{bold, glyph("42", 85, 100, 10, 10)})
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}

	spans := blocks[0].Lines[0].Spans
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Font != "Helvetica-Bold" || spans[0].Text != "Total:" {
		t.Errorf("span 0 = %+v", spans[0])
	}
	if spans[1].Text != " 42" {
		t.Errorf("span 1 text = %q, want %q", spans[1].Text, " 42")
	}
	if got := blocks[0].Lines[0].BBox; got != model.NewBBox(50, 100, 95, 110) {
		t.Errorf("line box = %+v", got)
	}
}

func TestBlockBuilder_Blocks(t *testing.T) {
	glyphs := []Glyph{
		glyph("First line", 50, 100, 100, 10),
		glyph("Second line", 50, 112, 100, 10),
		glyph("Far below", 50, 200, 100, 10),
		glyph("Side note", 400, 212, 80, 10),
	}

	blocks := NewBlockBuilder().Build(glyphs)
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(blocks))
	}

	if len(blocks[0].Lines) != 2 {
		t.Errorf("block 0 lines = %d, want 2", len(blocks[0].Lines))
	}
	if got := blocks[0].BBox; got != model.NewBBox(50, 100, 150, 122) {
		t.Errorf("block 0 box = %+v", got)
	}
	if got := blocks[1].Text(); got != "Far below" {
		t.Errorf("block 1 text = %q", got)
	}
}

func TestBlockBuilder_LineTolerance(t *testing.T) {
	// a 2pt baseline jitter stays on one line
	glyphs := []Glyph{glyph("a", 50, 100, 10, 10), glyph("b", 55, 102, 10, 10)}

	blocks := NewBlockBuilder().Build(glyphs)
	if len(blocks) != 1 || len(blocks[0].Lines) != 1 {
		t.Fatalf("expected jittered glyphs on one line, got %+v", blocks)
	}

	strict := NewBlockBuilderWithConfig(BuilderConfig{
		LineHeightTolerance:    0.1,
		WordGapRatio:           0.25,
		HorizontalGapThreshold: 3.0,
		VerticalGapThreshold:   1.5,
	})
	blocks = strict.Build(glyphs)
	if len(blocks) != 1 || len(blocks[0].Lines) != 2 {
		t.Fatalf("expected strict tolerance to split lines, got %+v", blocks)
	}
}

func TestHorizontalGap(t *testing.T) {
	a := model.NewBBox(0, 0, 10, 10)
	tests := []struct {
		b    model.BBox
		want float64
	}{
		{model.NewBBox(5, 0, 20, 10), 0},
		{model.NewBBox(15, 0, 20, 10), 5},
		{model.NewBBox(-20, 0, -5, 10), 5},
	}
	for _, tt := range tests {
		if got := horizontalGap(a, tt.b); got != tt.want {
			t.Errorf("horizontalGap(%v) = %g, want %g", tt.b, got, tt.want)
		}
	}
}
