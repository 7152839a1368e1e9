package model

// Page is the raw geometric bundle handed over by a decoder: page size plus
// the blocks and rectangles found on it, in decoder order.
type Page struct {
	Number int     // 1-indexed page number
	Width  float64 // Page width in points
	Height float64 // Page height in points
	Blocks []Block
	Rects  []*Rect
}

// NewPage creates a new page with given dimensions
func NewPage(width, height float64) *Page {
	return &Page{
		Width:  width,
		Height: height,
		Blocks: make([]Block, 0),
		Rects:  make([]*Rect, 0),
	}
}

// AddBlock adds a block to the page
func (p *Page) AddBlock(b Block) {
	p.Blocks = append(p.Blocks, b)
}

// AddRect adds a rect to the page
func (p *Page) AddRect(r *Rect) {
	p.Rects = append(p.Rects, r)
}

// GetBlocksInRegion returns blocks intersecting a bounding box
func (p *Page) GetBlocksInRegion(bbox BBox) []Block {
	var blocks []Block
	for _, b := range p.Blocks {
		if bbox.Intersects(b.BoundingBox()) {
			blocks = append(blocks, b)
		}
	}
	return blocks
}
