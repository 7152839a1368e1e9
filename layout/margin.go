package layout

import (
	"math"

	"github.com/tsawler/pagelayout/model"
)

// Margin holds the page margins in points
type Margin struct {
	Left   float64
	Right  float64
	Top    float64
	Bottom float64
}

// Tuple returns the margin as [left, right, top, bottom]
func (m Margin) Tuple() [4]float64 {
	return [4]float64{m.Left, m.Right, m.Top, m.Bottom}
}

// MarginFromTuple is the inverse of Margin.Tuple
func MarginFromTuple(t [4]float64) Margin {
	return Margin{Left: t[0], Right: t[1], Top: t[2], Bottom: t[3]}
}

// ComputeMargin infers page margins from the block boxes:
//
//   - left is the smallest x0
//   - right is the free space after the largest x1, less twice the
//     tolerance, and never more than left
//   - top is the smallest y0
//   - bottom is half the free space below the largest y1
//
// Every side is clamped to [0, normal]. A page without blocks gets normal
// on all sides.
func ComputeMargin(blocks []model.Block, width, height, normal, tol float64) Margin {
	if len(blocks) == 0 {
		return Margin{Left: normal, Right: normal, Top: normal, Bottom: normal}
	}

	x0, y0 := math.Inf(1), math.Inf(1)
	x1, y1 := math.Inf(-1), math.Inf(-1)
	for _, b := range blocks {
		box := b.BoundingBox()
		x0 = math.Min(x0, box.X0)
		y0 = math.Min(y0, box.Y0)
		x1 = math.Max(x1, box.X1)
		y1 = math.Max(y1, box.Y1)
	}

	left := x0
	right := math.Max(0, math.Min(width-x1-2*tol, left))
	top := y0
	bottom := math.Max(0, height-y1) * 0.5

	clamp := func(v float64) float64 {
		return math.Max(0, math.Min(normal, v))
	}

	return Margin{
		Left:   clamp(left),
		Right:  clamp(right),
		Top:    clamp(top),
		Bottom: clamp(bottom),
	}
}

// Margin returns the page margin, computing it from the current page-level
// blocks on first use. The value stays cached until InvalidateMargin.
func (l *Layout) Margin() Margin {
	if l.margin == nil {
		cfg := l.opts.Config
		m := ComputeMargin(l.Blocks.All(), l.Width, l.Height, cfg.NormalMargin, cfg.Tolerance)
		l.margin = &m
	}
	return *l.margin
}

// InvalidateMargin drops the cached margin so the next Margin call
// recomputes it
func (l *Layout) InvalidateMargin() {
	l.margin = nil
}
