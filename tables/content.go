package tables

import (
	"sort"

	"github.com/tsawler/pagelayout/model"
)

// AssignContent moves page-level blocks into the table cells that enclose
// them. A text block belongs to a table when its centre falls inside the
// table box; a table belongs to another table when it is fully contained.
// When tables nest, the smallest enclosing table wins. Each moved block
// goes to the cell holding its centre and is removed from blocks.
//
// It returns the number of blocks moved.
func AssignContent(blocks *model.Blocks, tolerance float64) int {
	tableList := blocks.Tables()
	if len(tableList) == 0 {
		return 0
	}

	// smallest first so nested tables claim content before their parents
	sort.SliceStable(tableList, func(i, j int) bool {
		return tableList[i].BBox.Area() < tableList[j].BBox.Area()
	})

	touched := make(map[*model.Cell]bool)
	moved := 0

	// copy: blocks is modified while iterating
	items := append([]model.Block(nil), blocks.All()...)
	for _, item := range items {
		owner := enclosingTable(item, tableList, tolerance)
		if owner == nil {
			continue
		}
		cell := owner.CellAt(item.BoundingBox().Center())
		if cell == nil {
			continue
		}
		if blocks.Remove(item) {
			cell.Blocks.Append(item)
			touched[cell] = true
			moved++
		}
	}

	for cell := range touched {
		cell.Blocks.SortInReadingOrder(tolerance)
	}

	return moved
}

// enclosingTable returns the smallest table that should own item, or nil.
// tableList must be sorted by area ascending.
func enclosingTable(item model.Block, tableList []*model.TableBlock, tolerance float64) *model.TableBlock {
	box := item.BoundingBox()
	for _, table := range tableList {
		if model.Block(table) == item {
			continue
		}
		switch item.(type) {
		case *model.TableBlock:
			if table.BBox.Expand(tolerance).Contains(box) && table.BBox.Area() > box.Area() {
				return table
			}
		default:
			if table.BBox.ContainsPoint(box.Center()) {
				return table
			}
		}
	}
	return nil
}
