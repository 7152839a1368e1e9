// Package model provides the in-memory page model used by layout inference.
//
// # Geometry
//
// [BBox] is an axis-aligned box in page space with the origin at the
// top-left corner and Y growing downward:
//
//	box := model.NewBBox(50, 60, 550, 100)
//	box.Intersects(other)
//	box.Equal(other, model.DefaultTolerance)
//
// # Blocks
//
// All page content implements the [Block] interface. The variants are:
//
//   - [TextBlock] - lines of text spans
//   - [TableBlock] - a grid of [Cell] values, each owning a nested [Blocks]
//
// [Blocks] is the ordered collection owned by a page or a cell. It drops
// invalid blocks during preprocessing and assigns vertical spacing:
//
//	blocks.Preprocess(model.DefaultTolerance)
//	blocks.SetVerticalSpacing(top, bottom)
//
// # Rectangles
//
// [Rect] shapes carry a classification tag ([RectType]) set by table
// recognition. [Rects.Group] partitions them into connected [RectGroup]s:
//
//	groups := rects.Group(model.DefaultTolerance)
//
// # Input
//
// [Page] is the raw bundle a decoder produces: width, height, blocks and
// rects in decoder order.
package model
