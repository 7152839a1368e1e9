package source

import (
	"fmt"
	"math"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/pagelayout/model"
)

const (
	// ascent and descent of a glyph as a fraction of its font size
	ascentRatio  = 0.8
	descentRatio = 0.2

	// US Letter, used when a page carries no usable MediaBox
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0
)

// ReadPDF decodes the given pages (1-indexed) of a PDF file. With no page
// numbers every page is decoded.
func ReadPDF(path string, pages ...int) ([]*model.Page, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	return decodePDF(r, pages)
}

func decodePDF(r *pdf.Reader, pages []int) ([]*model.Page, error) {
	total := r.NumPage()
	if len(pages) == 0 {
		pages = make([]int, total)
		for i := range pages {
			pages[i] = i + 1
		}
	}

	builder := NewBlockBuilder()
	result := make([]*model.Page, 0, len(pages))
	for _, num := range pages {
		if num < 1 || num > total {
			return nil, fmt.Errorf("%w: %d (document has %d)", ErrPageOutOfRange, num, total)
		}

		p := r.Page(num)
		if p.V.IsNull() {
			return nil, fmt.Errorf("%w: %d", ErrPageOutOfRange, num)
		}

		page, err := decodePage(p, builder)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", num, err)
		}
		page.Number = num
		result = append(result, page)
	}

	return result, nil
}

// decodePage converts a PDF page into page-space geometry. The content
// stream parser panics on malformed operators, which is reported as an error.
func decodePage(p pdf.Page, builder *BlockBuilder) (page *model.Page, err error) {
	var content pdf.Content
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %v", ErrMalformedContent, r)
			}
		}()
		content = p.Content()
	}()
	if err != nil {
		return nil, err
	}

	box := mediaBox(p)
	page = model.NewPage(box.Width(), box.Height())

	glyphs := make([]Glyph, 0, len(content.Text))
	for _, t := range content.Text {
		if t.S == "" {
			continue
		}
		x := t.X - box.X0
		baseline := box.Y1 - t.Y
		glyphs = append(glyphs, Glyph{
			Text: norm.NFC.String(t.S),
			Font: t.Font,
			Size: t.FontSize,
			BBox: model.NewBBox(x, baseline-ascentRatio*t.FontSize, x+t.W, baseline+descentRatio*t.FontSize),
		})
	}
	for _, block := range builder.Build(glyphs) {
		page.AddBlock(block)
	}

	for _, r := range content.Rect {
		// "re" operands carry signed width and height
		bbox := model.NewBBoxFromPoints(
			model.Point{X: r.Min.X - box.X0, Y: box.Y1 - r.Min.Y},
			model.Point{X: r.Max.X - box.X0, Y: box.Y1 - r.Max.Y},
		)
		page.AddRect(model.NewRect(bbox, model.Color{}))
	}

	return page, nil
}

// mediaBox returns the page's MediaBox in PDF user space with Y1 as the top
// edge, looking it up through the page tree when the page inherits it.
func mediaBox(p pdf.Page) model.BBox {
	for v := p.V; !v.IsNull(); v = v.Key("Parent") {
		mb := v.Key("MediaBox")
		if mb.IsNull() || mb.Len() != 4 {
			continue
		}
		x0, y0 := mb.Index(0).Float64(), mb.Index(1).Float64()
		x1, y1 := mb.Index(2).Float64(), mb.Index(3).Float64()
		box := model.NewBBox(math.Min(x0, x1), math.Min(y0, y1), math.Max(x0, x1), math.Max(y0, y1))
		if box.IsValid() {
			return box
		}
	}
	return model.NewBBox(0, 0, defaultPageWidth, defaultPageHeight)
}
