package export

import (
	"bytes"
	"strings"
	"testing"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/tsawler/pagelayout/layout"
)

func sampleRecord() *layout.Record {
	span := func(text, font string) layout.SpanRecord {
		return layout.SpanRecord{Text: text, Font: font, Size: 10, BBox: [4]float64{0, 0, 10, 10}}
	}
	textBlock := func(before float64, spans ...layout.SpanRecord) layout.BlockRecord {
		return layout.BlockRecord{
			Type:   layout.RecordText,
			Before: before,
			Lines:  []layout.LineRecord{{SpaceBefore: 0, Spans: spans}},
		}
	}

	return &layout.Record{
		Number: 2,
		Width:  600,
		Height: 800,
		Margin: [4]float64{50, 40, 30, 20},
		Blocks: []layout.BlockRecord{
			textBlock(10, span("Heading", "Helvetica-Bold"), span(" & <notes>", "Helvetica-Oblique")),
			{
				Type:     layout.RecordTable,
				Before:   12.346,
				Explicit: true,
				Cells: [][]*layout.CellRecord{
					{
						{
							BBox:    [4]float64{50, 100, 150, 200},
							Borders: [4]float64{1.5, 1, 1, 1},
							RowSpan: 2,
							ColSpan: 1,
							Blocks:  []layout.BlockRecord{textBlock(2, span("merged", ""))},
						},
						{
							BBox:     [4]float64{150, 100, 250, 150},
							Borders:  [4]float64{1, 1, 1, 1},
							RowSpan:  1,
							ColSpan:  1,
							Shadings: []int{0},
						},
					},
					{
						nil,
						{
							BBox:    [4]float64{150, 150, 250, 200},
							Borders: [4]float64{1, 1, 1, 0},
							RowSpan: 1,
							ColSpan: 1,
						},
					},
				},
			},
		},
		Rects: []layout.RectRecord{{BBox: [4]float64{150, 100, 250, 150}, Color: "#f0f0c8", Type: "Shading"}},
	}
}

// findAll returns every element with the atom in document order
func findAll(n *html.Node, a atom.Atom) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == a {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func render(t *testing.T, recs ...*layout.Record) (string, *html.Node) {
	t.Helper()
	var buf bytes.Buffer
	if err := WriteHTML(&buf, recs...); err != nil {
		t.Fatalf("WriteHTML() failed: %v", err)
	}
	out := buf.String()
	doc, err := html.Parse(strings.NewReader(out))
	if err != nil {
		t.Fatalf("output does not parse: %v", err)
	}
	return out, doc
}

func TestWriteHTML_Page(t *testing.T) {
	out, doc := render(t, sampleRecord())

	if !strings.HasPrefix(out, "<!DOCTYPE html>") {
		t.Errorf("missing doctype: %q", out[:20])
	}

	sections := findAll(doc, atom.Section)
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	if got := getAttr(sections[0], "data-page"); got != "2" {
		t.Errorf("data-page = %q", got)
	}
	if got := getAttr(sections[0], "style"); got != "width:600pt;min-height:800pt;padding:30pt 40pt 20pt 50pt" {
		t.Errorf("page style = %q", got)
	}
}

func TestWriteHTML_Text(t *testing.T) {
	out, doc := render(t, sampleRecord())

	if !strings.Contains(out, "&amp; &lt;notes&gt;") {
		t.Error("span text should be escaped")
	}

	spans := findAll(doc, atom.Span)
	if len(spans) != 3 {
		t.Fatalf("expected 3 spans, got %d", len(spans))
	}
	if got := getAttr(spans[0], "style"); got != "font-size:10pt;font-weight:bold" {
		t.Errorf("bold span style = %q", got)
	}
	if got := getAttr(spans[1], "style"); got != "font-size:10pt;font-style:italic" {
		t.Errorf("oblique span style = %q", got)
	}
	if got := getAttr(spans[2], "data-font"); got != "" {
		t.Errorf("span without font has data-font %q", got)
	}
}

func TestWriteHTML_Table(t *testing.T) {
	_, doc := render(t, sampleRecord())

	tables := findAll(doc, atom.Table)
	if len(tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(tables))
	}
	if got := getAttr(tables[0], "class"); got != "explicit" {
		t.Errorf("table class = %q", got)
	}
	if got := getAttr(tables[0], "style"); got != "margin-top:12.35pt" {
		t.Errorf("table style = %q", got)
	}

	rows := findAll(tables[0], atom.Tr)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if n := len(findAll(rows[1], atom.Td)); n != 1 {
		t.Errorf("second row should skip the covered slot, got %d cells", n)
	}

	cells := findAll(tables[0], atom.Td)
	merged := cells[0]
	if getAttr(merged, "rowspan") != "2" || getAttr(merged, "colspan") != "" {
		t.Errorf("merged cell attrs = %+v", merged.Attr)
	}
	if style := getAttr(merged, "style"); !strings.Contains(style, "border-top:1.5pt solid #000") {
		t.Errorf("merged cell style = %q", style)
	}
	if len(findAll(merged, atom.P)) != 1 {
		t.Error("merged cell should contain its text block")
	}

	if style := getAttr(cells[1], "style"); !strings.Contains(style, "background:#f0f0c8") {
		t.Errorf("shaded cell style = %q", style)
	}
	if style := getAttr(cells[2], "style"); strings.Contains(style, "border-left") {
		t.Errorf("zero-width border should be omitted: %q", style)
	}
}

func TestWriteHTML_MultiplePages(t *testing.T) {
	first, second := sampleRecord(), sampleRecord()
	second.Number = 3

	_, doc := render(t, first, nil, second)
	sections := findAll(doc, atom.Section)
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
	if getAttr(sections[1], "data-page") != "3" {
		t.Errorf("second section page = %q", getAttr(sections[1], "data-page"))
	}
}

func TestPt(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0pt"},
		{72, "72pt"},
		{1.004, "1pt"},
		{12.346, "12.35pt"},
	}
	for _, tt := range tests {
		if got := pt(tt.in); got != tt.want {
			t.Errorf("pt(%g) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
