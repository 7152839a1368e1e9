package model

import (
	"fmt"
	"strings"
)

// TableBlock represents a table with cells organized in rows and columns.
// A nil entry in Cells is a slot covered by a spanning cell above or to the
// left of it; the spanning cell owns the content.
type TableBlock struct {
	BBox     BBox
	Cells    [][]*Cell
	Explicit bool // recognized from drawn borders rather than text alignment
	Spacing  Spacing
}

// NewTableBlock creates a table with every slot empty
func NewTableBlock(rows, cols int) *TableBlock {
	table := &TableBlock{
		Cells: make([][]*Cell, rows),
	}
	for i := 0; i < rows; i++ {
		table.Cells[i] = make([]*Cell, cols)
	}
	return table
}

func (t *TableBlock) Type() BlockType          { return BlockTypeTable }
func (t *TableBlock) BoundingBox() BBox        { return t.BBox }
func (t *TableBlock) VerticalSpacing() Spacing { return t.Spacing }

func (t *TableBlock) setSpacing(before, after float64) {
	t.Spacing.Before = before
	t.Spacing.After = after
}

// Children returns the block collections of all non-empty cells in row-major order
func (t *TableBlock) Children() []*Blocks {
	var children []*Blocks
	for _, row := range t.Cells {
		for _, cell := range row {
			if cell != nil && cell.Blocks != nil {
				children = append(children, cell.Blocks)
			}
		}
	}
	return children
}

// RowCount returns the number of rows
func (t *TableBlock) RowCount() int {
	return len(t.Cells)
}

// ColCount returns the number of columns in the first row
func (t *TableBlock) ColCount() int {
	if len(t.Cells) == 0 {
		return 0
	}
	return len(t.Cells[0])
}

// Cell returns the cell at the given row and column (0-indexed). It returns
// nil for placeholders and out of range positions.
func (t *TableBlock) Cell(row, col int) *Cell {
	if row < 0 || row >= len(t.Cells) {
		return nil
	}
	if col < 0 || col >= len(t.Cells[row]) {
		return nil
	}
	return t.Cells[row][col]
}

// SetCell sets the cell at the given position
func (t *TableBlock) SetCell(row, col int, cell *Cell) error {
	if row < 0 || row >= len(t.Cells) {
		return fmt.Errorf("row index %d out of bounds", row)
	}
	if col < 0 || col >= len(t.Cells[row]) {
		return fmt.Errorf("col index %d out of bounds", col)
	}
	t.Cells[row][col] = cell
	return nil
}

// CellAt returns the cell whose box contains p, or nil
func (t *TableBlock) CellAt(p Point) *Cell {
	for _, row := range t.Cells {
		for _, cell := range row {
			if cell != nil && cell.BBox.ContainsPoint(p) {
				return cell
			}
		}
	}
	return nil
}

// GetText returns cell text as tab separated rows
func (t *TableBlock) GetText() string {
	var sb strings.Builder
	for _, row := range t.Cells {
		for j, cell := range row {
			if cell != nil {
				sb.WriteString(cell.Text())
			}
			if j < len(row)-1 {
				sb.WriteString("\t")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Borders holds border widths per edge; zero means no border on that edge
type Borders struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// Cell represents a table cell
type Cell struct {
	BBox     BBox
	Borders  Borders
	RowSpan  int
	ColSpan  int
	Blocks   *Blocks
	Shadings []*Rect
}

// NewCell creates a single-slot cell with an empty block collection
func NewCell(bbox BBox) *Cell {
	return &Cell{
		BBox:    bbox,
		RowSpan: 1,
		ColSpan: 1,
		Blocks:  NewBlocks(),
	}
}

// ContentBox returns the cell box inset by half of each border width
func (c *Cell) ContentBox() BBox {
	return BBox{
		X0: c.BBox.X0 + c.Borders.Left/2,
		Y0: c.BBox.Y0 + c.Borders.Top/2,
		X1: c.BBox.X1 - c.Borders.Right/2,
		Y1: c.BBox.Y1 - c.Borders.Bottom/2,
	}
}

// Text returns the text of the cell's text blocks
func (c *Cell) Text() string {
	if c.Blocks == nil {
		return ""
	}
	var parts []string
	for _, b := range c.Blocks.All() {
		if tb, ok := b.(*TextBlock); ok {
			parts = append(parts, tb.Text())
		}
	}
	return strings.Join(parts, "\n")
}

// TableGrid represents the detected grid structure. Rows holds the Y
// coordinates of row boundaries top to bottom, Cols the X coordinates of
// column boundaries left to right.
type TableGrid struct {
	Rows []float64
	Cols []float64
}

// NewTableGrid creates a new empty grid
func NewTableGrid() *TableGrid {
	return &TableGrid{
		Rows: make([]float64, 0),
		Cols: make([]float64, 0),
	}
}

// RowCount returns the number of rows
func (g *TableGrid) RowCount() int {
	if len(g.Rows) <= 1 {
		return 0
	}
	return len(g.Rows) - 1
}

// ColCount returns the number of columns
func (g *TableGrid) ColCount() int {
	if len(g.Cols) <= 1 {
		return 0
	}
	return len(g.Cols) - 1
}

// GetCellBBox returns the bounding box spanning rowSpan x colSpan slots
// from (row, col). It panics when the span leaves the grid: callers derive
// spans from the grid itself, so an out-of-range span is a defect.
func (g *TableGrid) GetCellBBox(row, col, rowSpan, colSpan int) BBox {
	if row < 0 || col < 0 || rowSpan < 1 || colSpan < 1 ||
		row+rowSpan > g.RowCount() || col+colSpan > g.ColCount() {
		panic(fmt.Sprintf("model: cell span (%d,%d)+(%d,%d) outside %dx%d grid",
			row, col, rowSpan, colSpan, g.RowCount(), g.ColCount()))
	}
	return BBox{
		X0: g.Cols[col],
		Y0: g.Rows[row],
		X1: g.Cols[col+colSpan],
		Y1: g.Rows[row+rowSpan],
	}
}

// BBox returns the outer box of the grid
func (g *TableGrid) BBox() BBox {
	if g.RowCount() == 0 || g.ColCount() == 0 {
		return BBox{}
	}
	return BBox{
		X0: g.Cols[0],
		Y0: g.Rows[0],
		X1: g.Cols[len(g.Cols)-1],
		Y1: g.Rows[len(g.Rows)-1],
	}
}
