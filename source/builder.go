package source

import (
	"math"
	"sort"
	"strings"

	"github.com/tsawler/pagelayout/model"
)

// Glyph is one positioned piece of text in page space (origin top-left)
type Glyph struct {
	Text string
	Font string
	Size float64
	BBox model.BBox
}

// BuilderConfig holds configuration for block building
type BuilderConfig struct {
	// LineHeightTolerance is the baseline distance tolerance for grouping glyphs
	// into lines, as a fraction of glyph height (default: 0.5)
	LineHeightTolerance float64

	// WordGapRatio is the horizontal gap, as a fraction of font size, above
	// which a space is inserted between glyphs (default: 0.25)
	WordGapRatio float64

	// HorizontalGapThreshold is the minimum horizontal gap between lines that
	// starts a new block, as a fraction of font size (default: 3.0)
	HorizontalGapThreshold float64

	// VerticalGapThreshold is the minimum vertical gap to start a new block
	// as a fraction of average line height (default: 1.5)
	VerticalGapThreshold float64
}

// DefaultBuilderConfig returns sensible default configuration
func DefaultBuilderConfig() BuilderConfig {
	return BuilderConfig{
		LineHeightTolerance:    0.5,
		WordGapRatio:           0.25,
		HorizontalGapThreshold: 3.0,
		VerticalGapThreshold:   1.5,
	}
}

// BlockBuilder assembles glyphs into spans, lines and text blocks
type BlockBuilder struct {
	config BuilderConfig
}

// NewBlockBuilder creates a builder with default configuration
func NewBlockBuilder() *BlockBuilder {
	return &BlockBuilder{config: DefaultBuilderConfig()}
}

// NewBlockBuilderWithConfig creates a builder with custom configuration
func NewBlockBuilderWithConfig(config BuilderConfig) *BlockBuilder {
	return &BlockBuilder{config: config}
}

// Build groups glyphs into text blocks in reading order
func (b *BlockBuilder) Build(glyphs []Glyph) []*model.TextBlock {
	var visible []Glyph
	for _, g := range glyphs {
		if g.Text != "" && g.BBox.IsValid() {
			visible = append(visible, g)
		}
	}
	if len(visible) == 0 {
		return nil
	}

	// Step 1: Group glyphs into lines
	groups := b.groupIntoLines(visible)

	// Step 2: Merge each line's glyphs into spans
	lines := make([]model.Line, 0, len(groups))
	for _, g := range groups {
		lines = append(lines, b.buildLine(g))
	}

	// Step 3: Group lines into blocks based on vertical gaps
	return b.groupLinesIntoBlocks(lines)
}

// groupIntoLines groups glyphs into horizontal lines based on baseline position
func (b *BlockBuilder) groupIntoLines(glyphs []Glyph) [][]Glyph {
	sorted := make([]Glyph, len(glyphs))
	copy(sorted, glyphs)

	// top to bottom; same-line glyphs keep stream order until sorted by X below
	sort.SliceStable(sorted, func(i, j int) bool {
		yDiff := sorted[i].BBox.Y1 - sorted[j].BBox.Y1
		tolerance := (sorted[i].BBox.Height() + sorted[j].BBox.Height()) / 2 * b.config.LineHeightTolerance
		if math.Abs(yDiff) > tolerance {
			return yDiff < 0
		}
		return false
	})

	var lines [][]Glyph
	var current []Glyph

	for _, g := range sorted {
		if len(current) == 0 {
			current = append(current, g)
			continue
		}

		last := current[len(current)-1]
		tolerance := (g.BBox.Height() + last.BBox.Height()) / 2 * b.config.LineHeightTolerance
		if math.Abs(g.BBox.Y1-averageBaseline(current)) <= tolerance {
			current = append(current, g)
		} else {
			lines = append(lines, current)
			current = []Glyph{g}
		}
	}
	if len(current) > 0 {
		lines = append(lines, current)
	}

	for i := range lines {
		line := lines[i]
		sort.SliceStable(line, func(a, c int) bool {
			return line[a].BBox.X0 < line[c].BBox.X0
		})
	}

	return lines
}

// buildLine merges adjacent glyphs sharing a font into spans, inserting a
// space where the horizontal gap exceeds the word gap
func (b *BlockBuilder) buildLine(glyphs []Glyph) model.Line {
	var spans []model.Span
	var text strings.Builder

	flush := func(s *model.Span) {
		s.Text = text.String()
		spans = append(spans, *s)
		text.Reset()
	}

	span := model.Span{Font: glyphs[0].Font, Size: glyphs[0].Size, BBox: glyphs[0].BBox}
	text.WriteString(glyphs[0].Text)

	for _, g := range glyphs[1:] {
		gap := g.BBox.X0 - span.BBox.X1
		wordBreak := gap > b.config.WordGapRatio*math.Max(g.Size, span.Size)

		if g.Font != span.Font || g.Size != span.Size {
			flush(&span)
			span = model.Span{Font: g.Font, Size: g.Size, BBox: g.BBox}
			if wordBreak {
				text.WriteString(" ")
			}
			text.WriteString(g.Text)
			continue
		}

		if wordBreak && !strings.HasSuffix(text.String(), " ") && !strings.HasPrefix(g.Text, " ") {
			text.WriteString(" ")
		}
		text.WriteString(g.Text)
		span.BBox = span.BBox.Union(g.BBox)
	}
	flush(&span)

	line := model.Line{Spans: spans, BBox: spans[0].BBox}
	for _, s := range spans[1:] {
		line.BBox = line.BBox.Union(s.BBox)
	}
	return line
}

// groupLinesIntoBlocks groups lines into blocks based on vertical gaps
func (b *BlockBuilder) groupLinesIntoBlocks(lines []model.Line) []*model.TextBlock {
	if len(lines) == 0 {
		return nil
	}

	var blocks []*model.TextBlock
	current := []model.Line{lines[0]}

	for i := 1; i < len(lines); i++ {
		prev, curr := lines[i-1], lines[i]

		// Distance between bottom of prev and top of curr
		gap := curr.BBox.Y0 - prev.BBox.Y1
		avgHeight := (prev.BBox.Height() + curr.BBox.Height()) / 2
		threshold := avgHeight * b.config.VerticalGapThreshold

		// Lines must overlap horizontally to be in same block
		hasHorizontalOverlap := prev.BBox.X1 > curr.BBox.X0 && curr.BBox.X1 > prev.BBox.X0

		// Large horizontal gap suggests different alignment
		largeHorizontalGap := horizontalGap(prev.BBox, curr.BBox) > lineFontSize(prev)*b.config.HorizontalGapThreshold

		if gap > threshold || !hasHorizontalOverlap || largeHorizontalGap {
			blocks = append(blocks, model.NewTextBlock(current...))
			current = []model.Line{curr}
		} else {
			current = append(current, curr)
		}
	}
	blocks = append(blocks, model.NewTextBlock(current...))

	return blocks
}

// averageBaseline returns the mean baseline (bottom edge) of the glyphs
func averageBaseline(glyphs []Glyph) float64 {
	total := 0.0
	for _, g := range glyphs {
		total += g.BBox.Y1
	}
	return total / float64(len(glyphs))
}

// horizontalGap returns 0 if the boxes overlap horizontally, otherwise the gap distance
func horizontalGap(a, b model.BBox) float64 {
	if a.X1 > b.X0 && b.X1 > a.X0 {
		return 0
	}
	if b.X0 > a.X1 {
		return b.X0 - a.X1
	}
	return a.X0 - b.X1
}

// lineFontSize returns the average span font size of a line
func lineFontSize(line model.Line) float64 {
	if len(line.Spans) == 0 {
		return 12.0
	}
	total := 0.0
	for _, s := range line.Spans {
		total += s.Size
	}
	return total / float64(len(line.Spans))
}
