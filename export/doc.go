// Package export renders stored layout records in human-readable forms.
//
// [WriteHTML] produces a single HTML document with one section per page.
// Text blocks become paragraphs separated by their vertical spacing and
// tables keep their row and column spans, border widths and shading:
//
//	recs := []*layout.Record{l.Store()}
//	f, _ := os.Create("layout.html")
//	defer f.Close()
//	export.WriteHTML(f, recs...)
package export
