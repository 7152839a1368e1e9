package source

import (
	"errors"
	"strings"
	"testing"

	"github.com/tsawler/pagelayout/model"
)

const twoPages = `
// invoice, first page
page 600 x 800 {
	block {
		line 50 60 250 72 "Invoice" font "Helvetica-Bold" size 12
		line 50 74 250 84 "ACME " "Corp"
	}
	block 50 100 300 130 {
		line 60 110 200 120 "Boxed"
	}
	rect 50 200 550 201 #000000
	rect 50 200 51 300
}

page 612 x 792 {
	rect 10.5 20.25 30 40 #F0f0C8
}
`

func TestParsePageString(t *testing.T) {
	pages, err := ParsePageString(twoPages)
	if err != nil {
		t.Fatalf("ParsePageString() failed: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}

	first := pages[0]
	if first.Number != 1 || first.Width != 600 || first.Height != 800 {
		t.Errorf("page 1 = %d %gx%g", first.Number, first.Width, first.Height)
	}
	if len(first.Blocks) != 2 || len(first.Rects) != 2 {
		t.Fatalf("page 1 has %d blocks and %d rects", len(first.Blocks), len(first.Rects))
	}

	heading := first.Blocks[0].(*model.TextBlock)
	if got := heading.Text(); got != "Invoice\nACME Corp" {
		t.Errorf("block text = %q", got)
	}
	if got := heading.BBox; got != model.NewBBox(50, 60, 250, 84) {
		t.Errorf("block box = %+v, want union of lines", got)
	}
	span := heading.Lines[0].Spans[0]
	if span.Font != "Helvetica-Bold" || span.Size != 12 {
		t.Errorf("span = %+v", span)
	}

	// two strings split the line box evenly, size defaults to line height
	spans := heading.Lines[1].Spans
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[1].BBox != model.NewBBox(150, 74, 250, 84) || spans[1].Size != 10 {
		t.Errorf("span 1 = %+v", spans[1])
	}

	boxed := first.Blocks[1].(*model.TextBlock)
	if boxed.BBox != model.NewBBox(50, 100, 300, 130) {
		t.Errorf("explicit block box = %+v", boxed.BBox)
	}

	if first.Rects[1].Color != (model.Color{}) {
		t.Errorf("rect without color = %+v", first.Rects[1].Color)
	}

	second := pages[1]
	if second.Number != 2 || len(second.Rects) != 1 {
		t.Fatalf("page 2 = %+v", second)
	}
	r := second.Rects[0]
	if r.BBox != model.NewBBox(10.5, 20.25, 30, 40) {
		t.Errorf("rect box = %+v", r.BBox)
	}
	if r.Color != (model.Color{R: 240, G: 240, B: 200}) {
		t.Errorf("rect color = %+v", r.Color)
	}
}

func TestParsePageString_Empty(t *testing.T) {
	pages, err := ParsePageString("// nothing here\n")
	if err != nil {
		t.Fatalf("ParsePageString() failed: %v", err)
	}
	if len(pages) != 0 {
		t.Errorf("expected no pages, got %d", len(pages))
	}
}

func TestParsePageString_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing size", "page { }"},
		{"unclosed page", "page 100 x 100 { rect 0 0 1 1"},
		{"short rect", "page 100 x 100 { rect 0 0 1 }"},
		{"unknown item", "page 100 x 100 { circle 1 2 3 }"},
		{"line without text", "page 100 x 100 { block { line 0 0 10 10 } }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParsePageString(tt.input); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}

func TestParsePageString_InvalidSize(t *testing.T) {
	_, err := ParsePageString("page 0 x 100 { }")
	if !errors.Is(err, ErrInvalidPage) {
		t.Errorf("expected ErrInvalidPage, got %v", err)
	}
}

func TestParsePageFile(t *testing.T) {
	pages, err := ParsePageFile(strings.NewReader("page 100 x 200 { }"))
	if err != nil {
		t.Fatalf("ParsePageFile() failed: %v", err)
	}
	if len(pages) != 1 || pages[0].Height != 200 {
		t.Errorf("pages = %+v", pages)
	}
}
