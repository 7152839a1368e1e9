package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/tsawler/pagelayout/model"
)

// PageJSON is the raw JSON form of a decoded page. Boxes are
// [x0, y0, x1, y1] tuples in page space.
type PageJSON struct {
	Number int         `json:"page,omitempty"`
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
	Blocks []BlockJSON `json:"blocks"`
	Rects  []RectJSON  `json:"rects"`
}

// BlockJSON is a text block
type BlockJSON struct {
	BBox  *[4]float64 `json:"bbox,omitempty"`
	Lines []LineJSON  `json:"lines"`
}

// LineJSON is one line of a text block
type LineJSON struct {
	BBox  [4]float64 `json:"bbox"`
	Spans []SpanJSON `json:"spans"`
}

// SpanJSON is a run of text in one font
type SpanJSON struct {
	Text string     `json:"text"`
	Font string     `json:"font,omitempty"`
	Size float64    `json:"size,omitempty"`
	BBox [4]float64 `json:"bbox"`
}

// RectJSON is a rectangle shape with an optional #rrggbb color
type RectJSON struct {
	BBox  [4]float64 `json:"bbox"`
	Color string     `json:"color,omitempty"`
}

// DecodeJSON reads either a single page object or an array of pages.
// Pages without a number are numbered by position.
func DecodeJSON(r io.Reader) ([]*model.Page, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading JSON: %w", err)
	}

	var raw []PageJSON
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("decoding pages: %w", err)
		}
	} else {
		var single PageJSON
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return nil, fmt.Errorf("decoding page: %w", err)
		}
		raw = []PageJSON{single}
	}

	pages := make([]*model.Page, 0, len(raw))
	for i, p := range raw {
		page, err := p.toPage()
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		if page.Number == 0 {
			page.Number = i + 1
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// ReadJSON decodes a JSON page file from disk, keeping only the given page
// numbers when any are passed.
func ReadJSON(path string, pages ...int) ([]*model.Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening JSON file: %w", err)
	}
	defer f.Close()

	all, err := DecodeJSON(f)
	if err != nil {
		return nil, err
	}
	return selectPages(all, pages)
}

// EncodeJSON writes pages in the form DecodeJSON reads
func EncodeJSON(w io.Writer, pages []*model.Page) error {
	out := make([]PageJSON, 0, len(pages))
	for _, p := range pages {
		out = append(out, pageToJSON(p))
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(out); err != nil {
		return fmt.Errorf("encoding pages: %w", err)
	}
	return nil
}

func (p PageJSON) toPage() (*model.Page, error) {
	if p.Width <= 0 || p.Height <= 0 {
		return nil, fmt.Errorf("%w: size %gx%g", ErrInvalidPage, p.Width, p.Height)
	}

	page := model.NewPage(p.Width, p.Height)
	page.Number = p.Number

	for _, b := range p.Blocks {
		lines := make([]model.Line, 0, len(b.Lines))
		for _, l := range b.Lines {
			line := model.Line{BBox: model.BBoxFromTuple(l.BBox)}
			for _, s := range l.Spans {
				line.Spans = append(line.Spans, model.Span{
					Text: s.Text,
					Font: s.Font,
					Size: s.Size,
					BBox: model.BBoxFromTuple(s.BBox),
				})
			}
			lines = append(lines, line)
		}
		block := model.NewTextBlock(lines...)
		if b.BBox != nil {
			block.BBox = model.BBoxFromTuple(*b.BBox)
		}
		page.AddBlock(block)
	}

	for _, r := range p.Rects {
		var color model.Color
		if r.Color != "" {
			c, err := model.ParseColor(r.Color)
			if err != nil {
				return nil, err
			}
			color = c
		}
		page.AddRect(model.NewRect(model.BBoxFromTuple(r.BBox), color))
	}

	return page, nil
}

func pageToJSON(p *model.Page) PageJSON {
	out := PageJSON{
		Number: p.Number,
		Width:  p.Width,
		Height: p.Height,
		Blocks: make([]BlockJSON, 0),
		Rects:  make([]RectJSON, 0, len(p.Rects)),
	}

	for _, b := range p.Blocks {
		tb, ok := b.(*model.TextBlock)
		if !ok {
			continue
		}
		box := tb.BBox.Tuple()
		block := BlockJSON{BBox: &box, Lines: make([]LineJSON, 0, len(tb.Lines))}
		for _, l := range tb.Lines {
			line := LineJSON{BBox: l.BBox.Tuple(), Spans: make([]SpanJSON, 0, len(l.Spans))}
			for _, s := range l.Spans {
				line.Spans = append(line.Spans, SpanJSON{Text: s.Text, Font: s.Font, Size: s.Size, BBox: s.BBox.Tuple()})
			}
			block.Lines = append(block.Lines, line)
		}
		out.Blocks = append(out.Blocks, block)
	}

	for _, r := range p.Rects {
		out.Rects = append(out.Rects, RectJSON{BBox: r.BBox.Tuple(), Color: r.Color.Hex()})
	}
	return out
}
