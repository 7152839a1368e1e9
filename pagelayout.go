// Package pagelayout provides a fluent API for reconstructing the layout of
// document pages: margins, tables and vertical spacing.
//
// Basic usage:
//
//	recs, err := pagelayout.Open("document.pdf").Records(ctx)
//	if err != nil {
//	    // handle error
//	}
//	for _, rec := range recs {
//	    rec.WriteFile(fmt.Sprintf("page-%d.json", rec.Number))
//	}
//
// With options:
//
//	layouts, err := pagelayout.Open("report.pdf").
//	    Pages(1, 2, 3).
//	    Workers(4).
//	    Implicit().
//	    Layouts(ctx)
//
// Pages are parsed concurrently. A failing page does not stop the others;
// its error is reported as a *PageError joined into the returned error.
//
// For advanced use cases, the layout, tables and source packages are also
// available.
package pagelayout

import (
	"github.com/tsawler/pagelayout/model"
)

// Open returns an Extractor for a PDF (.pdf), page file (.page) or JSON
// page bundle (.json). The file is read by the terminal operation.
//
// Example:
//
//	recs, err := pagelayout.Open("document.pdf").Records(ctx)
func Open(filename string) *Extractor {
	return &Extractor{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromPages creates an Extractor over pages that were already decoded.
// Parsing updates the pages' blocks and rects in place.
//
// Example:
//
//	pages, err := source.ReadPDF("document.pdf")
//	if err != nil {
//	    // handle error
//	}
//	recs, err := pagelayout.FromPages(pages...).Records(ctx)
func FromPages(pages ...*model.Page) *Extractor {
	if pages == nil {
		pages = []*model.Page{}
	}
	return &Extractor{
		pages:   pages,
		options: defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	count := pagelayout.Must(pagelayout.Open("document.pdf").PageCount())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
