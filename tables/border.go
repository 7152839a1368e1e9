package tables

import (
	"math"

	"github.com/tsawler/pagelayout/model"
)

// border is a rect acting as a horizontal or vertical table separator
type border struct {
	rect       *model.Rect
	horizontal bool

	// Centre line position: Y for horizontal borders, X for vertical ones
	pos float64

	// Extent along the line: X range for horizontal, Y range for vertical
	start, end float64

	width float64

	// Index of the grid line this border was merged into
	line int
}

// classifyBorders splits a group into border rects and the remainder.
// Border rects are tagged RectTypeBorder. A rect is a border when it is thin
// (at most MaxBorderWidth) and line-like (at least twice as long as thick).
// Thick borders keep their true width.
func (d *StructureDetector) classifyBorders(group model.RectGroup) ([]border, []*model.Rect) {
	var borders []border
	var others []*model.Rect

	for _, rect := range group {
		thickness := rect.Thickness()
		if thickness > d.config.MaxBorderWidth || rect.Length() < 2*math.Max(thickness, d.config.MinBorderWidth) {
			others = append(others, rect)
			continue
		}

		box := rect.BBox
		b := border{
			rect:  rect,
			width: math.Max(thickness, d.config.MinBorderWidth),
		}
		if box.Width() >= box.Height() {
			b.horizontal = true
			b.pos = (box.Y0 + box.Y1) / 2
			b.start, b.end = box.X0, box.X1
		} else {
			b.pos = (box.X0 + box.X1) / 2
			b.start, b.end = box.Y0, box.Y1
		}

		rect.Type = model.RectTypeBorder
		borders = append(borders, b)
	}

	return borders, others
}

// covers reports whether the border spans the midpoint of [from, to]
func (b border) covers(from, to, tolerance float64) bool {
	mid := (from + to) / 2
	return b.start-tolerance <= mid && b.end+tolerance >= mid
}
