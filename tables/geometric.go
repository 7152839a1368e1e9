package tables

import (
	"math"
	"sort"

	"github.com/tsawler/pagelayout/model"
)

// AlignmentDetector finds implicit tables: text blocks laid out on a
// regular grid without drawn borders. It analyzes the spatial relationships
// between page-level text blocks and scores each candidate grid on
// regularity, alignment, nearby unclassified rects and cell occupancy.
//
// Tables it returns have empty cells; the caller nests the blocks with
// [AssignContent].
type AlignmentDetector struct {
	config Config
}

// NewAlignmentDetector creates a new alignment detector with default configuration.
func NewAlignmentDetector() *AlignmentDetector {
	return &AlignmentDetector{
		config: DefaultConfig(),
	}
}

// Name returns the detector's identifier ("alignment").
func (d *AlignmentDetector) Name() string {
	return "alignment"
}

// Configure sets the detector configuration.
func (d *AlignmentDetector) Configure(config Config) error {
	if err := config.Validate(); err != nil {
		return err
	}
	d.config = config
	return nil
}

// ParseImplicitTables detects alignment-based tables among the page-level
// text blocks. Unclassified rects near grid lines raise the confidence of a
// candidate. Neither blocks nor rects are modified.
func (d *AlignmentDetector) ParseImplicitTables(blocks *model.Blocks, rects *model.Rects) ([]*model.TableBlock, error) {
	texts := blocks.TextBlocks()
	if len(texts) == 0 {
		return nil, nil
	}

	var guides []*model.Rect
	for _, r := range rects.All() {
		if r.Type == model.RectTypeUnclassified {
			guides = append(guides, r)
		}
	}

	var found []*model.TableBlock
	for _, cluster := range d.clusterBlocks(texts) {
		if table := d.detectTableInCluster(cluster, guides); table != nil {
			found = append(found, table)
		}
	}

	return found, nil
}

// clusterBlocks groups text blocks that are vertically close. A gap larger
// than MaxClusterGap starts a new cluster.
func (d *AlignmentDetector) clusterBlocks(texts []*model.TextBlock) [][]*model.TextBlock {
	if len(texts) == 0 {
		return nil
	}

	sorted := make([]*model.TextBlock, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].BBox.Y0 < sorted[j].BBox.Y0
	})

	var clusters [][]*model.TextBlock
	current := []*model.TextBlock{sorted[0]}
	bottom := sorted[0].BBox.Y1

	for _, tb := range sorted[1:] {
		if tb.BBox.Y0-bottom > d.config.MaxClusterGap {
			clusters = append(clusters, current)
			current = []*model.TextBlock{tb}
			bottom = tb.BBox.Y1
			continue
		}
		current = append(current, tb)
		bottom = math.Max(bottom, tb.BBox.Y1)
	}
	clusters = append(clusters, current)

	return clusters
}

// detectTableInCluster builds a grid from one cluster and returns an empty
// table shaped like it, or nil when the cluster does not look tabular.
func (d *AlignmentDetector) detectTableInCluster(cluster []*model.TextBlock, guides []*model.Rect) *model.TableBlock {
	if len(cluster) < d.config.MinRows*d.config.MinCols {
		return nil
	}

	grid := d.buildGrid(cluster)
	if grid.RowCount() < d.config.MinRows || grid.ColCount() < d.config.MinCols {
		return nil
	}

	occupied := d.occupiedCells(cluster, grid)
	if !d.rowsFilled(occupied, grid) {
		return nil
	}

	if d.calculateConfidence(grid, cluster, guides, occupied) < d.config.MinConfidence {
		return nil
	}

	table := model.NewTableBlock(grid.RowCount(), grid.ColCount())
	for i := 0; i < grid.RowCount(); i++ {
		for j := 0; j < grid.ColCount(); j++ {
			table.Cells[i][j] = model.NewCell(grid.GetCellBBox(i, j, 1, 1))
		}
	}
	table.BBox = grid.BBox()

	return table
}

// buildGrid uses clustered top edges as row boundaries and clustered left
// edges as column boundaries, closed by the lowest bottom and the rightmost
// right edge of the cluster.
func (d *AlignmentDetector) buildGrid(cluster []*model.TextBlock) *model.TableGrid {
	yValues := make([]float64, 0, len(cluster))
	xValues := make([]float64, 0, len(cluster))
	maxY, maxX := math.Inf(-1), math.Inf(-1)
	for _, tb := range cluster {
		yValues = append(yValues, tb.BBox.Y0)
		xValues = append(xValues, tb.BBox.X0)
		maxY = math.Max(maxY, tb.BBox.Y1)
		maxX = math.Max(maxX, tb.BBox.X1)
	}

	sort.Float64s(yValues)
	sort.Float64s(xValues)

	grid := model.NewTableGrid()
	grid.Rows = append(clusterValues(yValues, d.snap()), maxY)
	grid.Cols = append(clusterValues(xValues, d.snap()), maxX)
	return grid
}

// snap is the distance within which an edge counts as lying on a grid line
func (d *AlignmentDetector) snap() float64 {
	return d.config.AlignmentTolerance * 2
}

// occupiedCells counts the blocks whose centre falls in each grid slot
func (d *AlignmentDetector) occupiedCells(cluster []*model.TextBlock, grid *model.TableGrid) [][]int {
	occupied := make([][]int, grid.RowCount())
	for i := range occupied {
		occupied[i] = make([]int, grid.ColCount())
	}
	for _, tb := range cluster {
		row, col := findCell(tb.BBox.Center(), grid)
		if row >= 0 && col >= 0 {
			occupied[row][col]++
		}
	}
	return occupied
}

// rowsFilled reports whether at least 80% of the rows have two or more
// occupied slots. Stacked paragraphs with a stray side note fail this.
func (d *AlignmentDetector) rowsFilled(occupied [][]int, grid *model.TableGrid) bool {
	filled := 0
	for _, row := range occupied {
		n := 0
		for _, count := range row {
			if count > 0 {
				n++
			}
		}
		if n >= 2 {
			filled++
		}
	}
	return float64(filled) >= 0.8*float64(grid.RowCount())
}

// calculateConfidence computes a confidence score (0.0-1.0) for the detected table.
// The score combines grid regularity (30%), alignment quality (30%), guide
// rects on grid lines (20%), and cell occupancy (20%).
func (d *AlignmentDetector) calculateConfidence(grid *model.TableGrid, cluster []*model.TextBlock, guides []*model.Rect, occupied [][]int) float64 {
	score := calculateGridRegularity(grid) * 0.3
	score += d.calculateAlignmentQuality(cluster, grid) * 0.3
	score += d.calculateLineScore(grid, guides) * 0.2
	score += calculateCellOccupancy(occupied) * 0.2
	return score
}

// calculateGridRegularity measures how regular the grid is by computing the
// coefficient of variation of row heights and column widths. Lower variance
// results in a higher score.
func calculateGridRegularity(grid *model.TableGrid) float64 {
	if grid.RowCount() < 2 || grid.ColCount() < 2 {
		return 0
	}

	rowHeights := make([]float64, grid.RowCount())
	for i := range rowHeights {
		rowHeights[i] = grid.Rows[i+1] - grid.Rows[i]
	}

	colWidths := make([]float64, grid.ColCount())
	for i := range colWidths {
		colWidths[i] = grid.Cols[i+1] - grid.Cols[i]
	}

	rowScore := math.Max(0, 1-coefficientOfVariation(rowHeights))
	colScore := math.Max(0, 1-coefficientOfVariation(colWidths))

	return (rowScore + colScore) / 2
}

// calculateAlignmentQuality measures the fraction of blocks with at least
// two edges on grid lines.
func (d *AlignmentDetector) calculateAlignmentQuality(cluster []*model.TextBlock, grid *model.TableGrid) float64 {
	if len(cluster) == 0 {
		return 0
	}

	aligned := 0
	for _, tb := range cluster {
		edges := 0
		for _, near := range []bool{
			d.isNearGridLine(tb.BBox.X0, grid.Cols),
			d.isNearGridLine(tb.BBox.X1, grid.Cols),
			d.isNearGridLine(tb.BBox.Y0, grid.Rows),
			d.isNearGridLine(tb.BBox.Y1, grid.Rows),
		} {
			if near {
				edges++
			}
		}
		if edges >= 2 {
			aligned++
		}
	}

	return float64(aligned) / float64(len(cluster))
}

// isNearGridLine reports whether value lies within snap of any grid line
func (d *AlignmentDetector) isNearGridLine(value float64, lines []float64) bool {
	for _, line := range lines {
		if math.Abs(value-line) <= d.snap() {
			return true
		}
	}
	return false
}

// calculateLineScore measures the fraction of grid lines that have a
// thin guide rect drawn along them.
func (d *AlignmentDetector) calculateLineScore(grid *model.TableGrid, guides []*model.Rect) float64 {
	total := len(grid.Rows) + len(grid.Cols)
	if total == 0 || len(guides) == 0 {
		return 0
	}

	hits := 0
	for _, y := range grid.Rows {
		for _, g := range guides {
			box := g.BBox
			if box.Width() >= box.Height() && math.Abs(box.Center().Y-y) <= d.snap() {
				hits++
				break
			}
		}
	}
	for _, x := range grid.Cols {
		for _, g := range guides {
			box := g.BBox
			if box.Height() > box.Width() && math.Abs(box.Center().X-x) <= d.snap() {
				hits++
				break
			}
		}
	}

	return float64(hits) / float64(total)
}

// calculateCellOccupancy measures the fraction of grid cells that contain at
// least one block.
func calculateCellOccupancy(occupied [][]int) float64 {
	total, filled := 0, 0
	for _, row := range occupied {
		for _, count := range row {
			total++
			if count > 0 {
				filled++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(filled) / float64(total)
}

// findCell returns the row and column indices of the cell containing the given
// point, or -1 for both if the point is outside the grid.
func findCell(p model.Point, grid *model.TableGrid) (row, col int) {
	row, col = -1, -1

	for i := 0; i < grid.RowCount(); i++ {
		if p.Y >= grid.Rows[i] && p.Y <= grid.Rows[i+1] {
			row = i
			break
		}
	}
	for i := 0; i < grid.ColCount(); i++ {
		if p.X >= grid.Cols[i] && p.X <= grid.Cols[i+1] {
			col = i
			break
		}
	}

	if row < 0 || col < 0 {
		return -1, -1
	}
	return row, col
}

// coefficientOfVariation returns stddev/mean, or 0 for an empty or zero-mean slice
func coefficientOfVariation(values []float64) float64 {
	m := mean(values)
	if m == 0 {
		return 0
	}
	return math.Sqrt(variance(values)) / m
}

// mean computes the arithmetic mean of a slice of float64 values.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// variance computes the population variance of a slice of float64 values.
func variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		diff := v - m
		sum += diff * diff
	}
	return sum / float64(len(values))
}
