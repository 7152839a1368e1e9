package model

import "math"

// Point represents a 2D point
type Point struct {
	X, Y float64
}

// Distance calculates the Euclidean distance to another point
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// BBox represents a bounding box in page space. The origin is the top-left
// corner of the page and Y grows downward, so Y0 is the top edge.
type BBox struct {
	X0 float64 // Left
	Y0 float64 // Top
	X1 float64 // Right
	Y1 float64 // Bottom
}

// NewBBox creates a bounding box from corner coordinates as given.
// Inverted coordinates are kept so that preprocessing can reject them.
func NewBBox(x0, y0, x1, y1 float64) BBox {
	return BBox{X0: x0, Y0: y0, X1: x1, Y1: y1}
}

// NewBBoxFromPoints creates a normalized bounding box from two corners
func NewBBoxFromPoints(p1, p2 Point) BBox {
	return BBox{
		X0: math.Min(p1.X, p2.X),
		Y0: math.Min(p1.Y, p2.Y),
		X1: math.Max(p1.X, p2.X),
		Y1: math.Max(p1.Y, p2.Y),
	}
}

// Width returns the horizontal extent
func (b BBox) Width() float64 {
	return b.X1 - b.X0
}

// Height returns the vertical extent
func (b BBox) Height() float64 {
	return b.Y1 - b.Y0
}

// Center returns the center point
func (b BBox) Center() Point {
	return Point{
		X: (b.X0 + b.X1) / 2,
		Y: (b.Y0 + b.Y1) / 2,
	}
}

// Area returns the area of the bounding box. Inverted boxes have zero area.
func (b BBox) Area() float64 {
	if b.IsInverted() {
		return 0
	}
	return b.Width() * b.Height()
}

// IsValid returns true if the bounding box has positive dimensions
func (b BBox) IsValid() bool {
	return b.X1 > b.X0 && b.Y1 > b.Y0
}

// IsInverted returns true if either axis runs backwards
func (b BBox) IsInverted() bool {
	return b.X1 < b.X0 || b.Y1 < b.Y0
}

// ContainsPoint checks if a point is inside the bounding box
func (b BBox) ContainsPoint(p Point) bool {
	return p.X >= b.X0 && p.X <= b.X1 &&
		p.Y >= b.Y0 && p.Y <= b.Y1
}

// Contains reports whether other lies completely inside b
func (b BBox) Contains(other BBox) bool {
	return other.X0 >= b.X0 && other.X1 <= b.X1 &&
		other.Y0 >= b.Y0 && other.Y1 <= b.Y1
}

// Intersects checks if two bounding boxes intersect. Touching edges count.
func (b BBox) Intersects(other BBox) bool {
	return !(b.X1 < other.X0 ||
		b.X0 > other.X1 ||
		b.Y1 < other.Y0 ||
		b.Y0 > other.Y1)
}

// Intersection returns the intersection of two bounding boxes
func (b BBox) Intersection(other BBox) BBox {
	if !b.Intersects(other) {
		return BBox{}
	}

	return BBox{
		X0: math.Max(b.X0, other.X0),
		Y0: math.Max(b.Y0, other.Y0),
		X1: math.Min(b.X1, other.X1),
		Y1: math.Min(b.Y1, other.Y1),
	}
}

// Union returns the union of two bounding boxes
func (b BBox) Union(other BBox) BBox {
	return BBox{
		X0: math.Min(b.X0, other.X0),
		Y0: math.Min(b.Y0, other.Y0),
		X1: math.Max(b.X1, other.X1),
		Y1: math.Max(b.Y1, other.Y1),
	}
}

// Expand expands the bounding box by a margin on all sides
func (b BBox) Expand(margin float64) BBox {
	return BBox{
		X0: b.X0 - margin,
		Y0: b.Y0 - margin,
		X1: b.X1 + margin,
		Y1: b.Y1 + margin,
	}
}

// OverlapRatio calculates the overlap ratio with another box
// Returns value between 0 and 1
func (b BBox) OverlapRatio(other BBox) float64 {
	if !b.Intersects(other) {
		return 0
	}

	minArea := math.Min(b.Area(), other.Area())
	if minArea == 0 {
		return 0
	}

	return b.Intersection(other).Area() / minArea
}

// Equal reports whether all four edges match within tol
func (b BBox) Equal(other BBox, tol float64) bool {
	return math.Abs(b.X0-other.X0) <= tol &&
		math.Abs(b.Y0-other.Y0) <= tol &&
		math.Abs(b.X1-other.X1) <= tol &&
		math.Abs(b.Y1-other.Y1) <= tol
}

// AlignedHorizontally reports whether both boxes share top and bottom edges
// within tol, i.e. they sit on the same row.
func (b BBox) AlignedHorizontally(other BBox, tol float64) bool {
	return math.Abs(b.Y0-other.Y0) <= tol && math.Abs(b.Y1-other.Y1) <= tol
}

// AlignedVertically reports whether both boxes share left and right edges
// within tol, i.e. they sit in the same column.
func (b BBox) AlignedVertically(other BBox, tol float64) bool {
	return math.Abs(b.X0-other.X0) <= tol && math.Abs(b.X1-other.X1) <= tol
}

// Tuple returns the box as [x0, y0, x1, y1]
func (b BBox) Tuple() [4]float64 {
	return [4]float64{b.X0, b.Y0, b.X1, b.Y1}
}

// BBoxFromTuple is the inverse of Tuple
func BBoxFromTuple(t [4]float64) BBox {
	return BBox{X0: t[0], Y0: t[1], X1: t[2], Y1: t[3]}
}
