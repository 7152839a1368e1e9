package tables

import (
	"math"
	"sort"

	"github.com/tsawler/pagelayout/model"
)

// StructureDetector recognizes explicit tables from groups of rectangle
// shapes: thin rects are read as borders, the separators they form define a
// grid, and borderless grid edges merge neighbouring slots into one cell.
type StructureDetector struct {
	config Config
}

// NewStructureDetector creates a detector with default settings
func NewStructureDetector() *StructureDetector {
	return &StructureDetector{
		config: DefaultConfig(),
	}
}

// Name returns the detector's identifier ("borders")
func (d *StructureDetector) Name() string {
	return "borders"
}

// Configure sets the detector configuration
func (d *StructureDetector) Configure(config Config) error {
	if err := config.Validate(); err != nil {
		return err
	}
	d.config = config
	return nil
}

// Config returns the active configuration
func (d *StructureDetector) Config() Config {
	return d.config
}

// DetectAll runs Detect on every group and returns the recognized tables
func (d *StructureDetector) DetectAll(groups []model.RectGroup) []*model.TableBlock {
	var found []*model.TableBlock
	for _, group := range groups {
		if table := d.Detect(group); table != nil {
			found = append(found, table)
		}
	}
	return found
}

// Detect tries to read one rect group as a table. It returns nil when the
// group is not a table, in which case every rect in the group is reset to
// RectTypeUnclassified so other heuristics may use it. Groups are assumed
// to be disjoint.
func (d *StructureDetector) Detect(group model.RectGroup) *model.TableBlock {
	// a single rect is never a table
	if len(group) < 2 {
		group.SetType(model.RectTypeUnclassified)
		return nil
	}

	borders, others := d.classifyBorders(group)
	if len(borders) == 0 {
		group.SetType(model.RectTypeUnclassified)
		return nil
	}

	grid := d.buildGrid(borders)
	if grid.RowCount() < d.config.MinRows || grid.ColCount() < d.config.MinCols {
		group.SetType(model.RectTypeUnclassified)
		return nil
	}

	table := d.buildCells(grid, borders)
	table.Explicit = true
	d.attachShadings(table, others)

	return table
}

// buildGrid derives row and column boundaries from border centre lines and
// records the grid line each border belongs to.
func (d *StructureDetector) buildGrid(borders []border) *model.TableGrid {
	var yValues, xValues []float64
	for _, b := range borders {
		if b.horizontal {
			yValues = append(yValues, b.pos)
		} else {
			xValues = append(xValues, b.pos)
		}
	}

	sort.Float64s(yValues)
	sort.Float64s(xValues)

	grid := model.NewTableGrid()
	grid.Rows = clusterValues(yValues, d.config.AlignmentTolerance)
	grid.Cols = clusterValues(xValues, d.config.AlignmentTolerance)

	for i := range borders {
		if borders[i].horizontal {
			borders[i].line = nearest(grid.Rows, borders[i].pos)
		} else {
			borders[i].line = nearest(grid.Cols, borders[i].pos)
		}
	}

	return grid
}

// buildCells creates one cell per grid slot and merges slots that are not
// separated by a border. Covered slots stay nil.
func (d *StructureDetector) buildCells(grid *model.TableGrid, borders []border) *model.TableBlock {
	rows, cols := grid.RowCount(), grid.ColCount()
	table := model.NewTableBlock(rows, cols)
	table.BBox = grid.BBox()

	// width of the horizontal border on row line i across column c
	hWidth := func(i, c int) float64 {
		return d.edgeWidth(borders, true, i, grid.Cols[c], grid.Cols[c+1])
	}
	// width of the vertical border on column line j across row r
	vWidth := func(j, r int) float64 {
		return d.edgeWidth(borders, false, j, grid.Rows[r], grid.Rows[r+1])
	}

	covered := make([][]bool, rows)
	for i := range covered {
		covered[i] = make([]bool, cols)
	}

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if covered[i][j] {
				continue
			}

			colSpan := 1
			for j+colSpan < cols && !covered[i][j+colSpan] && vWidth(j+colSpan, i) == 0 {
				colSpan++
			}

			rowSpan := 1
			for i+rowSpan < rows && d.canExtendDown(i+rowSpan, j, colSpan, covered, hWidth, vWidth) {
				rowSpan++
			}

			cell := model.NewCell(grid.GetCellBBox(i, j, rowSpan, colSpan))
			cell.RowSpan = rowSpan
			cell.ColSpan = colSpan
			for c := j; c < j+colSpan; c++ {
				cell.Borders.Top = math.Max(cell.Borders.Top, hWidth(i, c))
				cell.Borders.Bottom = math.Max(cell.Borders.Bottom, hWidth(i+rowSpan, c))
			}
			for r := i; r < i+rowSpan; r++ {
				cell.Borders.Left = math.Max(cell.Borders.Left, vWidth(j, r))
				cell.Borders.Right = math.Max(cell.Borders.Right, vWidth(j+colSpan, r))
			}

			for r := i; r < i+rowSpan; r++ {
				for c := j; c < j+colSpan; c++ {
					covered[r][c] = true
				}
			}
			table.Cells[i][j] = cell
		}
	}

	return table
}

// canExtendDown reports whether a cell spanning columns [col, col+colSpan)
// can absorb the given row: no border on the shared row line, no interior
// vertical border inside the new row and no slot already taken.
func (d *StructureDetector) canExtendDown(row, col, colSpan int, covered [][]bool, hWidth, vWidth func(int, int) float64) bool {
	for c := col; c < col+colSpan; c++ {
		if covered[row][c] || hWidth(row, c) > 0 {
			return false
		}
	}
	for j := col + 1; j < col+colSpan; j++ {
		if vWidth(j, row) > 0 {
			return false
		}
	}
	return true
}

// edgeWidth returns the widest border lying on the given grid line and
// covering the segment [from, to], or 0 when the segment has no border.
func (d *StructureDetector) edgeWidth(borders []border, horizontal bool, line int, from, to float64) float64 {
	width := 0.0
	for _, b := range borders {
		if b.horizontal != horizontal || b.line != line {
			continue
		}
		if b.covers(from, to, d.config.AlignmentTolerance) {
			width = math.Max(width, b.width)
		}
	}
	return width
}

// attachShadings hands non-border rects inside the table to the cell that
// contains their centre. Rects outside every cell revert to unclassified.
func (d *StructureDetector) attachShadings(table *model.TableBlock, others []*model.Rect) {
	area := table.BBox.Expand(d.config.AlignmentTolerance)
	for _, rect := range others {
		rect.Type = model.RectTypeUnclassified
		if !area.Contains(rect.BBox) {
			continue
		}
		if cell := table.CellAt(rect.BBox.Center()); cell != nil {
			rect.Type = model.RectTypeShading
			cell.Shadings = append(cell.Shadings, rect)
		}
	}
}

// clusterValues clusters sorted values within the given tolerance, averaging
// values that fall within the tolerance of the cluster center.
func clusterValues(values []float64, tolerance float64) []float64 {
	if len(values) == 0 {
		return nil
	}

	clustered := []float64{values[0]}
	counts := []int{1}

	for i := 1; i < len(values); i++ {
		last := len(clustered) - 1
		if values[i]-clustered[last] > tolerance {
			clustered = append(clustered, values[i])
			counts = append(counts, 1)
		} else {
			// running mean of the cluster members
			counts[last]++
			clustered[last] += (values[i] - clustered[last]) / float64(counts[last])
		}
	}

	return clustered
}

// nearest returns the index of the value closest to v
func nearest(values []float64, v float64) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if math.Abs(values[i]-v) < math.Abs(values[best]-v) {
			best = i
		}
	}
	return best
}
