// Package tables recognizes table structures on a page.
//
// Two detectors are provided:
//
//   - [StructureDetector] - reads explicit tables from groups of rectangle
//     shapes (drawn borders and cell shading)
//   - [AlignmentDetector] - finds implicit tables from text blocks aligned
//     on a grid without drawn borders
//
// # Explicit Tables
//
// The [StructureDetector] works on one [model.RectGroup] at a time:
//
//  1. Groups of a single rect are rejected
//  2. Thin, line-like rects are classified as borders
//  3. Border centre lines are clustered into row and column boundaries
//  4. One cell is built per grid slot; slots with no border between them
//     merge into a spanning cell and the covered slots stay nil
//  5. Remaining rects inside the table become cell shading
//
// A rejected group has all its rects reset to [model.RectTypeUnclassified]:
//
//	detector := tables.NewStructureDetector()
//	for _, group := range rects.Group(model.DefaultTolerance) {
//		if table := detector.Detect(group); table != nil {
//			blocks.Append(table)
//		}
//	}
//	tables.AssignContent(blocks, model.DefaultTolerance)
//
// [AssignContent] moves page-level blocks into the cells of the smallest
// enclosing table, so tables nest to any depth.
//
// # Configuration
//
// Detector behavior is controlled by [Config]:
//
//	config := tables.DefaultConfig()
//	config.MaxBorderWidth = 4
//	if err := detector.Configure(config); err != nil {
//		return err
//	}
//
// # Confidence Scoring
//
// [AlignmentDetector] confidence (0-1) is based on:
//
//   - Grid regularity (30%)
//   - Alignment quality (30%)
//   - Guide rects on grid lines (20%)
//   - Cell occupancy (20%)
package tables
