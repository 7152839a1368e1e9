// Package layout reconstructs the structure of a page from its flat
// geometry: text blocks and rectangle shapes.
//
// # Parsing
//
// A [Layout] is built from a decoded [model.Page] and parsed in place:
//
//	l := layout.New(page)
//	if err := l.Parse(); err != nil {
//		return err
//	}
//	m := l.Margin()
//
// [Layout.Parse] runs these passes in order:
//
//  1. Preprocessing: invalid blocks are dropped, the rest sorted in
//     reading order; malformed rects are tagged rejected
//  2. Margin inference ([ComputeMargin]), cached on the layout
//  3. Explicit tables recognized from rect groups, with page blocks
//     nested into their cells
//  4. Implicit tables from an optional [ImplicitTableParser]
//  5. Text format from an optional [TextFormatParser]
//  6. Vertical spacing for the page and, recursively, every table cell
//
// # Collaborators
//
// [Options] wires optional collaborators. A [Plotter] receives the layout
// after passes 1, 3, 4 and 6 tagged with a [Stage]:
//
//	opts := layout.DefaultOptions()
//	opts.ImplicitTables = tables.NewAlignmentDetector()
//	opts.Plotter = plotter
//	l := layout.NewWithOptions(page, opts)
//
// # Records
//
// [Layout.Store] normalizes a parsed layout into a [Record] that serializes
// to JSON and restores into an equivalent layout:
//
//	rec := l.Store()
//	rec.WriteFile("page-1.json")
//	restored, err := layout.Restore(rec)
package layout
