// Package plot renders parsed layouts for visual inspection.
//
// [PDFPlotter] implements [layout.Plotter] and appends one PDF page per
// pipeline stage, so the effect of each pass can be compared side by side:
//
//	f, _ := os.Create("plot.pdf")
//	plotter := plot.NewPDFPlotter(f)
//	opts := layout.DefaultOptions()
//	opts.Plotter = plotter
//	layout.NewWithOptions(page, opts).Parse()
//	plotter.Close()
//
// [RenderPNG] rasterizes a single layout. Border rects are drawn solid,
// shadings in their own color, text blocks in blue, tables in red and cell
// content boxes in green. The inferred margin is outlined in grey.
package plot
