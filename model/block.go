package model

import "strings"

// BlockType represents the variant of a page block
type BlockType int

const (
	BlockTypeUnknown BlockType = iota
	BlockTypeText
	BlockTypeTable
)

func (bt BlockType) String() string {
	switch bt {
	case BlockTypeText:
		return "Text"
	case BlockTypeTable:
		return "Table"
	default:
		return "Unknown"
	}
}

// Spacing holds the vertical spacing assigned to a block
type Spacing struct {
	Before float64 // gap to the previous sibling or to the scope top
	After  float64 // gap to the scope bottom; only set on the last sibling
	Line   float64 // mean gap between consecutive lines
}

// Block is the interface for all page blocks. The set of variants is closed:
// *TextBlock and *TableBlock.
type Block interface {
	Type() BlockType
	BoundingBox() BBox
	VerticalSpacing() Spacing

	// Children returns the nested block collections owned by this block,
	// one per non-empty table cell. Text blocks have none.
	Children() []*Blocks

	setSpacing(before, after float64)
}

// Span is a run of text sharing one font
type Span struct {
	Text string
	Font string
	Size float64
	BBox BBox
}

// Line is a row of spans
type Line struct {
	BBox        BBox
	Spans       []Span
	SpaceBefore float64
}

// Text returns the concatenated span text
func (l Line) Text() string {
	var sb strings.Builder
	for _, s := range l.Spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// TextBlock is a paragraph-like block of lines
type TextBlock struct {
	BBox    BBox
	Lines   []Line
	Spacing Spacing
}

// NewTextBlock creates a text block whose box is the union of its lines.
// Without lines the box is left empty.
func NewTextBlock(lines ...Line) *TextBlock {
	tb := &TextBlock{Lines: lines}
	for i, l := range lines {
		if i == 0 {
			tb.BBox = l.BBox
		} else {
			tb.BBox = tb.BBox.Union(l.BBox)
		}
	}
	return tb
}

func (t *TextBlock) Type() BlockType          { return BlockTypeText }
func (t *TextBlock) BoundingBox() BBox        { return t.BBox }
func (t *TextBlock) VerticalSpacing() Spacing { return t.Spacing }
func (t *TextBlock) Children() []*Blocks      { return nil }

// Text returns the block text with one line per row
func (t *TextBlock) Text() string {
	lines := make([]string, len(t.Lines))
	for i, l := range t.Lines {
		lines[i] = l.Text()
	}
	return strings.Join(lines, "\n")
}

// setSpacing stores the external spacing and derives line spacing from the
// line boxes using the same previous-bottom to next-top rule.
func (t *TextBlock) setSpacing(before, after float64) {
	t.Spacing.Before = before
	t.Spacing.After = after
	t.Spacing.Line = 0

	if len(t.Lines) == 0 {
		return
	}

	t.Lines[0].SpaceBefore = gap(t.BBox.Y0, t.Lines[0].BBox.Y0)
	if len(t.Lines) == 1 {
		return
	}

	total := 0.0
	for i := 1; i < len(t.Lines); i++ {
		g := gap(t.Lines[i-1].BBox.Y1, t.Lines[i].BBox.Y0)
		t.Lines[i].SpaceBefore = g
		total += g
	}
	t.Spacing.Line = total / float64(len(t.Lines)-1)
}

// gap returns the non-negative distance from an upper edge to a lower one
func gap(upper, lower float64) float64 {
	if d := lower - upper; d > 0 {
		return d
	}
	return 0
}
