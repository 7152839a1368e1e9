package model

import (
	"math"
	"sort"
)

// Blocks is an ordered collection of page blocks. A layout owns one at page
// level and every table cell owns one for its content.
type Blocks struct {
	items []Block
}

// NewBlocks creates a collection holding the given blocks in order
func NewBlocks(items ...Block) *Blocks {
	b := &Blocks{items: make([]Block, 0, len(items))}
	b.items = append(b.items, items...)
	return b
}

// Len returns the number of blocks
func (b *Blocks) Len() int {
	if b == nil {
		return 0
	}
	return len(b.items)
}

// At returns the block at index i, or nil when out of range
func (b *Blocks) At(i int) Block {
	if b == nil || i < 0 || i >= len(b.items) {
		return nil
	}
	return b.items[i]
}

// All returns the blocks in order. The slice must not be modified.
func (b *Blocks) All() []Block {
	if b == nil {
		return nil
	}
	return b.items
}

// Append adds blocks at the end
func (b *Blocks) Append(items ...Block) {
	b.items = append(b.items, items...)
}

// Remove deletes the given block and reports whether it was present
func (b *Blocks) Remove(block Block) bool {
	for i, item := range b.items {
		if item == block {
			b.items = append(b.items[:i], b.items[i+1:]...)
			return true
		}
	}
	return false
}

// Tables returns the table blocks in order
func (b *Blocks) Tables() []*TableBlock {
	var tables []*TableBlock
	for _, item := range b.All() {
		if t, ok := item.(*TableBlock); ok {
			tables = append(tables, t)
		}
	}
	return tables
}

// TextBlocks returns the text blocks in order
func (b *Blocks) TextBlocks() []*TextBlock {
	var texts []*TextBlock
	for _, item := range b.All() {
		if t, ok := item.(*TextBlock); ok {
			texts = append(texts, t)
		}
	}
	return texts
}

// BBox returns the union of all block boxes
func (b *Blocks) BBox() BBox {
	var box BBox
	for i, item := range b.All() {
		if i == 0 {
			box = item.BoundingBox()
		} else {
			box = box.Union(item.BoundingBox())
		}
	}
	return box
}

// Preprocess drops nil blocks and blocks with zero, negative or inverted
// area, and sorts the rest in reading order. It returns the number of
// dropped blocks.
func (b *Blocks) Preprocess(tolerance float64) int {
	valid := b.items[:0]
	dropped := 0
	for _, item := range b.items {
		if isNilBlock(item) || !item.BoundingBox().IsValid() {
			dropped++
			continue
		}
		valid = append(valid, item)
	}
	for i := len(valid); i < len(b.items); i++ {
		b.items[i] = nil
	}
	b.items = valid

	b.SortInReadingOrder(tolerance)
	return dropped
}

// SortInReadingOrder sorts blocks top-to-bottom, then left-to-right for
// blocks whose tops are within tolerance of each other.
func (b *Blocks) SortInReadingOrder(tolerance float64) {
	if len(b.items) <= 1 {
		return
	}

	sort.SliceStable(b.items, func(i, j int) bool {
		bi, bj := b.items[i].BoundingBox(), b.items[j].BoundingBox()
		yDiff := bi.Y0 - bj.Y0
		if math.Abs(yDiff) > tolerance {
			return yDiff < 0
		}
		return bi.X0 < bj.X0
	})
}

// SetVerticalSpacing assigns spacing to every block of this scope. top and
// bottom are the scope bounds. Negative gaps (overlapping blocks) count as zero.
func (b *Blocks) SetVerticalSpacing(top, bottom float64) {
	prevBottom := top
	for i, item := range b.All() {
		box := item.BoundingBox()
		after := 0.0
		if i == len(b.items)-1 {
			after = gap(box.Y1, bottom)
		}
		item.setSpacing(gap(prevBottom, box.Y0), after)
		prevBottom = box.Y1
	}
}

// isNilBlock reports a nil interface or a typed nil pointer
func isNilBlock(item Block) bool {
	switch v := item.(type) {
	case nil:
		return true
	case *TextBlock:
		return v == nil
	case *TableBlock:
		return v == nil
	}
	return false
}
