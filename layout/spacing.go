package layout

import (
	"fmt"

	"github.com/tsawler/pagelayout/model"
)

// parseVerticalSpacing sets spacing for page-level blocks within the
// margins, then for the content of every table cell within the cell's
// inner edges, nested tables included.
func (l *Layout) parseVerticalSpacing() {
	m := l.Margin()
	ApplyVerticalSpacing(l.Blocks, m.Top, l.Height-m.Bottom)
}

// ApplyVerticalSpacing sets spacing for blocks within [top, bottom] and
// recurses into every cell of every table among them. A cell's scope runs
// from its top plus half the top border to its bottom minus half the bottom
// border. It panics if a cell is reached twice, which means the cell
// ownership tree is not a tree.
func ApplyVerticalSpacing(blocks *model.Blocks, top, bottom float64) {
	blocks.SetVerticalSpacing(top, bottom)

	visited := make(map[*model.Cell]bool)
	for _, table := range blocks.Tables() {
		applyTableSpacing(table, visited)
	}
}

func applyTableSpacing(table *model.TableBlock, visited map[*model.Cell]bool) {
	for i, row := range table.Cells {
		for j, cell := range row {
			if cell == nil {
				continue
			}
			if visited[cell] {
				panic(fmt.Sprintf("layout: cell (%d,%d) reached twice during spacing", i, j))
			}
			visited[cell] = true

			top := cell.BBox.Y0 + cell.Borders.Top/2
			bottom := cell.BBox.Y1 - cell.Borders.Bottom/2
			cell.Blocks.SetVerticalSpacing(top, bottom)

			for _, nested := range cell.Blocks.Tables() {
				applyTableSpacing(nested, visited)
			}
		}
	}
}
