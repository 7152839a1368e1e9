package plot

import (
	"image/color"

	"github.com/tsawler/pagelayout/layout"
	"github.com/tsawler/pagelayout/model"
)

// Palette colors, shared by the PDF and PNG renderers
var (
	colorPage     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	colorMargin   = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	colorText     = color.RGBA{R: 30, G: 90, B: 200, A: 255}
	colorTable    = color.RGBA{R: 220, G: 40, B: 40, A: 255}
	colorCell     = color.RGBA{R: 40, G: 160, B: 60, A: 255}
	colorBorder   = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	colorLoose    = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	colorRejected = color.RGBA{R: 255, G: 140, B: 0, A: 255}
)

// Strokes in page units
const (
	outlineWidth = 0.5
	cellWidth    = 0.3
)

// shape is one primitive of a plotted page
type shape struct {
	box    model.BBox
	fill   color.Color // nil: outline only
	stroke color.Color
	width  float64
}

// hairlineWidth is the stroke used for zero-thickness borders
const hairlineWidth = 0.25

// pageShapes flattens a layout into drawing primitives for a stage, back to
// front: rects, margin box, then blocks. The stage selects what is drawn:
//
//   - table: explicit tables with borders and shadings, without content
//   - implicit_table: implicit table outlines and cells, without content
//   - other stages: every rect and block
//
// It returns nil when the stage has nothing to draw.
func pageShapes(l *layout.Layout, stage layout.Stage) []shape {
	switch stage {
	case layout.StageTable, layout.StageImplicitTable:
		explicit := stage == layout.StageTable
		var selected []*model.TableBlock
		for _, table := range l.Blocks.Tables() {
			if table.Explicit == explicit {
				selected = append(selected, table)
			}
		}
		if len(selected) == 0 {
			return nil
		}
		shapes := []shape{marginShape(l)}
		for _, table := range selected {
			shapes = appendTable(shapes, table, explicit, false)
		}
		return shapes
	}

	if l.Blocks.Len() == 0 && l.Rects.Len() == 0 {
		return nil
	}

	var shapes []shape
	for _, r := range l.Rects.All() {
		shapes = append(shapes, rectShape(r))
	}
	shapes = append(shapes, marginShape(l))
	return appendBlocks(shapes, l.Blocks)
}

func rectShape(r *model.Rect) shape {
	switch r.Type {
	case model.RectTypeBorder:
		if r.Thickness() == 0 {
			return shape{box: r.BBox, stroke: colorBorder, width: hairlineWidth}
		}
		return shape{box: r.BBox, fill: colorBorder}
	case model.RectTypeShading:
		return shape{box: r.BBox, fill: rectColor(r)}
	case model.RectTypeRejected:
		return shape{box: r.BBox, stroke: colorRejected, width: outlineWidth}
	default:
		return shape{box: r.BBox, stroke: colorLoose, width: outlineWidth}
	}
}

func marginShape(l *layout.Layout) shape {
	m := l.Margin()
	return shape{
		box:    model.NewBBox(m.Left, m.Top, l.Width-m.Right, l.Height-m.Bottom),
		stroke: colorMargin,
		width:  outlineWidth,
	}
}

func appendBlocks(shapes []shape, blocks *model.Blocks) []shape {
	for _, b := range blocks.All() {
		switch v := b.(type) {
		case *model.TextBlock:
			shapes = append(shapes, shape{box: v.BBox, stroke: colorText, width: outlineWidth})
		case *model.TableBlock:
			shapes = appendTable(shapes, v, false, true)
		}
	}
	return shapes
}

// appendTable draws a table outline and its cells. Styled tables also get
// cell shadings and borders at their recorded widths.
func appendTable(shapes []shape, table *model.TableBlock, styled, content bool) []shape {
	shapes = append(shapes, shape{box: table.BBox, stroke: colorTable, width: outlineWidth})
	for _, row := range table.Cells {
		for _, cell := range row {
			if cell == nil {
				continue
			}
			if styled {
				for _, r := range cell.Shadings {
					shapes = append(shapes, shape{box: r.BBox, fill: rectColor(r)})
				}
				shapes = appendBorders(shapes, cell)
			}
			shapes = append(shapes, shape{box: cell.ContentBox(), stroke: colorCell, width: cellWidth})
			if content {
				shapes = appendBlocks(shapes, cell.Blocks)
			}
		}
	}
	return shapes
}

// appendBorders draws each bordered cell edge as a bar centred on the edge
func appendBorders(shapes []shape, cell *model.Cell) []shape {
	b, box := cell.Borders, cell.BBox
	edges := []struct {
		width float64
		bar   func(h float64) model.BBox
	}{
		{b.Top, func(h float64) model.BBox { return model.NewBBox(box.X0, box.Y0-h, box.X1, box.Y0+h) }},
		{b.Bottom, func(h float64) model.BBox { return model.NewBBox(box.X0, box.Y1-h, box.X1, box.Y1+h) }},
		{b.Left, func(h float64) model.BBox { return model.NewBBox(box.X0-h, box.Y0, box.X0+h, box.Y1) }},
		{b.Right, func(h float64) model.BBox { return model.NewBBox(box.X1-h, box.Y0, box.X1+h, box.Y1) }},
	}
	for _, e := range edges {
		if e.width > 0 {
			shapes = append(shapes, shape{box: e.bar(e.width / 2), fill: colorBorder})
		}
	}
	return shapes
}

// rectColor returns the fill of a shading, lightening pure black so that
// uncolored input stays visible against borders
func rectColor(r *model.Rect) color.Color {
	if r.Color == (model.Color{}) {
		return colorLoose
	}
	return color.RGBA{R: r.Color.R, G: r.Color.G, B: r.Color.B, A: 255}
}
