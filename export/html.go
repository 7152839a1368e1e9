package export

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/tsawler/pagelayout/layout"
)

const stylesheet = `
body { background: #eee; font-family: sans-serif; }
section.page { background: #fff; margin: 12pt auto; box-sizing: border-box; }
section.page > h2 { font-size: 9pt; color: #888; margin: 0; }
div.text > p { margin: 0; }
table { border-collapse: collapse; width: 100%; }
table.implicit td { outline: 1px dashed #c8c8c8; }
td { vertical-align: top; padding: 0; }
`

// WriteHTML renders records as an HTML document, one section per page.
// Vertical spacing becomes top margins; table cells keep their spans,
// border widths and first shading color.
func WriteHTML(w io.Writer, recs ...*layout.Record) error {
	if err := html.Render(w, Document(recs...)); err != nil {
		return fmt.Errorf("rendering HTML: %w", err)
	}
	return nil
}

// Document builds the HTML node tree for the records
func Document(recs ...*layout.Record) *html.Node {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := element(atom.Html)
	doc.AppendChild(root)

	head := element(atom.Head)
	head.AppendChild(element(atom.Meta, attr("charset", "utf-8")))
	title := element(atom.Title)
	title.AppendChild(text("pagelayout"))
	head.AppendChild(title)
	style := element(atom.Style)
	style.AppendChild(text(stylesheet))
	head.AppendChild(style)
	root.AppendChild(head)

	body := element(atom.Body)
	for _, rec := range recs {
		if rec != nil {
			body.AppendChild(pageNode(rec))
		}
	}
	root.AppendChild(body)

	return doc
}

func pageNode(rec *layout.Record) *html.Node {
	left, right, top, bottom := rec.Margin[0], rec.Margin[1], rec.Margin[2], rec.Margin[3]
	section := element(atom.Section,
		attr("class", "page"),
		attr("data-page", strconv.Itoa(rec.Number)),
		attr("style", fmt.Sprintf("width:%s;min-height:%s;padding:%s %s %s %s",
			pt(rec.Width), pt(rec.Height), pt(top), pt(right), pt(bottom), pt(left))),
	)

	heading := element(atom.H2)
	heading.AppendChild(text(fmt.Sprintf("Page %d", rec.Number)))
	section.AppendChild(heading)

	appendBlocks(section, rec.Blocks, rec)
	return section
}

func appendBlocks(parent *html.Node, blocks []layout.BlockRecord, rec *layout.Record) {
	for i := range blocks {
		b := &blocks[i]
		switch b.Type {
		case layout.RecordText:
			parent.AppendChild(textNode(b))
		case layout.RecordTable:
			parent.AppendChild(tableNode(b, rec))
		}
	}
}

func textNode(b *layout.BlockRecord) *html.Node {
	div := element(atom.Div, attr("class", "text"), attr("style", "margin-top:"+pt(b.Before)))
	for _, line := range b.Lines {
		p := element(atom.P, attr("style", "margin-top:"+pt(line.SpaceBefore)))
		for _, s := range line.Spans {
			styles := []string{}
			if s.Size > 0 {
				styles = append(styles, "font-size:"+pt(s.Size))
			}
			lower := strings.ToLower(s.Font)
			if strings.Contains(lower, "bold") {
				styles = append(styles, "font-weight:bold")
			}
			if strings.Contains(lower, "italic") || strings.Contains(lower, "oblique") {
				styles = append(styles, "font-style:italic")
			}

			span := element(atom.Span)
			if len(styles) > 0 {
				span.Attr = append(span.Attr, attr("style", strings.Join(styles, ";")))
			}
			if s.Font != "" {
				span.Attr = append(span.Attr, attr("data-font", s.Font))
			}
			span.AppendChild(text(s.Text))
			p.AppendChild(span)
		}
		div.AppendChild(p)
	}
	return div
}

func tableNode(b *layout.BlockRecord, rec *layout.Record) *html.Node {
	class := "implicit"
	if b.Explicit {
		class = "explicit"
	}
	table := element(atom.Table,
		attr("class", class),
		attr("style", "margin-top:"+pt(b.Before)),
	)

	tbody := element(atom.Tbody)
	for _, row := range b.Cells {
		tr := element(atom.Tr)
		for _, cell := range row {
			// covered slots are emitted by the spanning cell
			if cell == nil {
				continue
			}
			tr.AppendChild(cellNode(cell, rec))
		}
		tbody.AppendChild(tr)
	}
	table.AppendChild(tbody)
	return table
}

func cellNode(c *layout.CellRecord, rec *layout.Record) *html.Node {
	td := element(atom.Td)
	if c.RowSpan > 1 {
		td.Attr = append(td.Attr, attr("rowspan", strconv.Itoa(c.RowSpan)))
	}
	if c.ColSpan > 1 {
		td.Attr = append(td.Attr, attr("colspan", strconv.Itoa(c.ColSpan)))
	}

	sides := [4]string{"top", "right", "bottom", "left"}
	styles := []string{
		"width:" + pt(c.BBox[2]-c.BBox[0]),
		"height:" + pt(c.BBox[3]-c.BBox[1]),
	}
	for i, w := range c.Borders {
		if w > 0 {
			styles = append(styles, fmt.Sprintf("border-%s:%s solid #000", sides[i], pt(w)))
		}
	}
	for _, idx := range c.Shadings {
		if idx >= 0 && idx < len(rec.Rects) {
			styles = append(styles, "background:"+rec.Rects[idx].Color)
			break
		}
	}
	td.Attr = append(td.Attr, attr("style", strings.Join(styles, ";")))

	appendBlocks(td, c.Blocks, rec)
	return td
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

// pt formats a length in points, rounded to two decimals
func pt(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64) + "pt"
}
