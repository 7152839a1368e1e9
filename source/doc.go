// Package source decodes input files into [model.Page] bundles for layout
// parsing.
//
// Three formats are supported, chosen by [Read] from the file extension:
//
//   - .pdf: text and "re" rectangles from the content stream ([ReadPDF]).
//     Glyphs are assembled into spans, lines and blocks by [BlockBuilder]
//     and coordinates are flipped to a top-left origin.
//   - .page: a small textual description used for fixtures ([ParsePageFile]).
//   - .json: the raw page bundle as JSON ([DecodeJSON]).
//
// Example:
//
//	pages, err := source.Read("report.pdf", 1, 2)
//	if err != nil {
//		return err
//	}
//	for _, p := range pages {
//		l := layout.New(p)
//		...
//	}
package source
