package model

import "fmt"

// RectType is the classification tag of a rectangle shape
type RectType int

const (
	RectTypeUnclassified RectType = iota
	RectTypeBorder
	RectTypeShading
	RectTypeRejected // malformed geometry; never grouped
)

func (rt RectType) String() string {
	switch rt {
	case RectTypeBorder:
		return "Border"
	case RectTypeShading:
		return "Shading"
	case RectTypeRejected:
		return "Rejected"
	default:
		return "Unclassified"
	}
}

// ParseRectType is the inverse of RectType.String
func ParseRectType(s string) (RectType, error) {
	switch s {
	case "Unclassified", "":
		return RectTypeUnclassified, nil
	case "Border":
		return RectTypeBorder, nil
	case "Shading":
		return RectTypeShading, nil
	case "Rejected":
		return RectTypeRejected, nil
	}
	return RectTypeUnclassified, fmt.Errorf("unknown rect type %q", s)
}

// Color represents an RGB color
type Color struct {
	R, G, B uint8
}

// Hex returns the color as #rrggbb
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseColor parses a #rrggbb color
func ParseColor(s string) (Color, error) {
	var c Color
	if len(s) != 7 || s[0] != '#' {
		return c, fmt.Errorf("invalid color %q", s)
	}
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return c, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return c, nil
}

// Rect is a filled or stroked rectangle shape. Its box is fixed once
// created; only the classification tag changes.
type Rect struct {
	BBox  BBox
	Color Color
	Type  RectType
}

// NewRect creates an unclassified rect
func NewRect(bbox BBox, color Color) *Rect {
	return &Rect{BBox: bbox, Color: color}
}

// Thickness returns the smaller side of the rect
func (r *Rect) Thickness() float64 {
	w, h := r.BBox.Width(), r.BBox.Height()
	if w < h {
		return w
	}
	return h
}

// Length returns the larger side of the rect
func (r *Rect) Length() float64 {
	w, h := r.BBox.Width(), r.BBox.Height()
	if w > h {
		return w
	}
	return h
}

// RectGroup is a connected cluster of rects
type RectGroup []*Rect

// BBox returns the union of the group's boxes
func (g RectGroup) BBox() BBox {
	var box BBox
	for i, r := range g {
		if i == 0 {
			box = r.BBox
		} else {
			box = box.Union(r.BBox)
		}
	}
	return box
}

// SetType tags every rect in the group
func (g RectGroup) SetType(t RectType) {
	for _, r := range g {
		r.Type = t
	}
}

// Rects is the rectangle collection of a page
type Rects struct {
	items []*Rect
}

// NewRects creates a collection holding the given rects in order
func NewRects(items ...*Rect) *Rects {
	r := &Rects{items: make([]*Rect, 0, len(items))}
	r.items = append(r.items, items...)
	return r
}

// Len returns the number of rects
func (r *Rects) Len() int {
	if r == nil {
		return 0
	}
	return len(r.items)
}

// All returns the rects in input order. The slice must not be modified.
func (r *Rects) All() []*Rect {
	if r == nil {
		return nil
	}
	return r.items
}

// Append adds rects at the end
func (r *Rects) Append(items ...*Rect) {
	r.items = append(r.items, items...)
}

// Preprocess clears earlier classification, then tags rects with inverted
// coordinates, or with no extent in either direction, as Rejected. It
// returns the number of rejected rects. Zero-thickness rects with length
// are kept: they are hairline borders. Nil rects are removed.
func (r *Rects) Preprocess() int {
	rejected := 0
	kept := r.items[:0]
	for _, rect := range r.items {
		if rect != nil {
			kept = append(kept, rect)
		}
	}
	for i := len(kept); i < len(r.items); i++ {
		r.items[i] = nil
	}
	r.items = kept

	for _, rect := range r.items {
		rect.Type = RectTypeUnclassified
		box := rect.BBox
		if box.IsInverted() || (box.Width() == 0 && box.Height() == 0) {
			rect.Type = RectTypeRejected
			rejected++
		}
	}
	return rejected
}

// Group partitions the non-rejected rects into connected groups. Two rects
// are connected when one, expanded by tolerance, intersects the other.
// Groups are ordered by their first member; members keep input order.
func (r *Rects) Group(tolerance float64) []RectGroup {
	var candidates []*Rect
	for _, rect := range r.All() {
		if rect.Type != RectTypeRejected {
			candidates = append(candidates, rect)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	parent := make([]int, len(candidates))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[rb] = ra
		}
	}

	for i := 0; i < len(candidates); i++ {
		expanded := candidates[i].BBox.Expand(tolerance)
		for j := i + 1; j < len(candidates); j++ {
			if expanded.Intersects(candidates[j].BBox) {
				union(i, j)
			}
		}
	}

	index := make(map[int]int)
	var groups []RectGroup
	for i, rect := range candidates {
		root := find(i)
		gi, ok := index[root]
		if !ok {
			gi = len(groups)
			index[root] = gi
			groups = append(groups, nil)
		}
		groups[gi] = append(groups[gi], rect)
	}

	assertPartition(candidates, groups)
	return groups
}

// assertPartition panics when a rect is missing from, or repeated across,
// the groups. Table recognition relies on disjoint groups.
func assertPartition(rects []*Rect, groups []RectGroup) {
	seen := make(map[*Rect]bool, len(rects))
	for _, g := range groups {
		for _, rect := range g {
			if seen[rect] {
				panic("model: rect assigned to more than one group")
			}
			seen[rect] = true
		}
	}
	if len(seen) != len(rects) {
		panic(fmt.Sprintf("model: grouping covered %d of %d rects", len(seen), len(rects)))
	}
}
