package layout

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/tsawler/pagelayout/model"
)

// Block type names used in records
const (
	RecordText  = "text"
	RecordTable = "table"
)

// Record is the normalized, serializable form of a parsed layout
type Record struct {
	Number int           `json:"page,omitempty"`
	Width  float64       `json:"width"`
	Height float64       `json:"height"`
	Margin [4]float64    `json:"margin"` // left, right, top, bottom
	Blocks []BlockRecord `json:"blocks"`
	Rects  []RectRecord  `json:"rects"`
}

// BlockRecord stores a text block or a table block
type BlockRecord struct {
	Type   string     `json:"type"`
	BBox   [4]float64 `json:"bbox"`
	Before float64    `json:"before"`
	After  float64    `json:"after"`

	// text blocks
	LineSpace float64      `json:"line_space,omitempty"`
	Lines     []LineRecord `json:"lines,omitempty"`

	// table blocks; a nil cell is a slot covered by a spanning cell
	Explicit bool            `json:"explicit,omitempty"`
	Cells    [][]*CellRecord `json:"cells,omitempty"`
}

// LineRecord stores one text line
type LineRecord struct {
	BBox        [4]float64   `json:"bbox"`
	SpaceBefore float64      `json:"space_before"`
	Spans       []SpanRecord `json:"spans"`
}

// SpanRecord stores one text span
type SpanRecord struct {
	Text string     `json:"text"`
	Font string     `json:"font,omitempty"`
	Size float64    `json:"size,omitempty"`
	BBox [4]float64 `json:"bbox"`
}

// CellRecord stores one table cell
type CellRecord struct {
	BBox    [4]float64    `json:"bbox"`
	Borders [4]float64    `json:"border_width"` // top, right, bottom, left
	RowSpan int           `json:"row_span"`
	ColSpan int           `json:"col_span"`
	Blocks  []BlockRecord `json:"blocks"`

	// indexes into Record.Rects
	Shadings []int `json:"shadings,omitempty"`
}

// RectRecord stores a rect shape and its final classification
type RectRecord struct {
	BBox  [4]float64 `json:"bbox"`
	Color string     `json:"color"`
	Type  string     `json:"type"`
}

// Store normalizes the layout into a Record. The margin is computed if it
// has not been yet.
func (l *Layout) Store() *Record {
	rects := l.Rects.All()
	index := make(map[*model.Rect]int, len(rects))
	rec := &Record{
		Number: l.Number,
		Width:  l.Width,
		Height: l.Height,
		Margin: l.Margin().Tuple(),
		Rects:  make([]RectRecord, 0, len(rects)),
	}

	for i, r := range rects {
		index[r] = i
		rec.Rects = append(rec.Rects, RectRecord{
			BBox:  r.BBox.Tuple(),
			Color: r.Color.Hex(),
			Type:  r.Type.String(),
		})
	}

	rec.Blocks = storeBlocks(l.Blocks, index)
	return rec
}

func storeBlocks(blocks *model.Blocks, index map[*model.Rect]int) []BlockRecord {
	out := make([]BlockRecord, 0, blocks.Len())
	for _, b := range blocks.All() {
		sp := b.VerticalSpacing()
		br := BlockRecord{
			BBox:   b.BoundingBox().Tuple(),
			Before: sp.Before,
			After:  sp.After,
		}

		switch v := b.(type) {
		case *model.TextBlock:
			br.Type = RecordText
			br.LineSpace = sp.Line
			for _, line := range v.Lines {
				lr := LineRecord{BBox: line.BBox.Tuple(), SpaceBefore: line.SpaceBefore}
				for _, s := range line.Spans {
					lr.Spans = append(lr.Spans, SpanRecord{
						Text: s.Text,
						Font: s.Font,
						Size: s.Size,
						BBox: s.BBox.Tuple(),
					})
				}
				br.Lines = append(br.Lines, lr)
			}

		case *model.TableBlock:
			br.Type = RecordTable
			br.Explicit = v.Explicit
			br.Cells = make([][]*CellRecord, len(v.Cells))
			for i, row := range v.Cells {
				br.Cells[i] = make([]*CellRecord, len(row))
				for j, cell := range row {
					if cell == nil {
						continue
					}
					cr := &CellRecord{
						BBox:    cell.BBox.Tuple(),
						Borders: [4]float64{cell.Borders.Top, cell.Borders.Right, cell.Borders.Bottom, cell.Borders.Left},
						RowSpan: cell.RowSpan,
						ColSpan: cell.ColSpan,
						Blocks:  storeBlocks(cell.Blocks, index),
					}
					for _, s := range cell.Shadings {
						if k, ok := index[s]; ok {
							cr.Shadings = append(cr.Shadings, k)
						}
					}
					br.Cells[i][j] = cr
				}
			}
		}

		out = append(out, br)
	}
	return out
}

// Serialize writes the record as indented JSON
func (r *Record) Serialize(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "    ")
	if err := encoder.Encode(r); err != nil {
		return fmt.Errorf("encoding layout record: %w", err)
	}
	return nil
}

// WriteFile serializes the record to the named file
func (r *Record) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := r.Serialize(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadRecord reads a record written by Serialize
func LoadRecord(r io.Reader) (*Record, error) {
	var rec Record
	if err := json.NewDecoder(r).Decode(&rec); err != nil {
		return nil, fmt.Errorf("decoding layout record: %w", err)
	}
	return &rec, nil
}

// Restore rebuilds a parsed layout from a record. The margin is taken from
// the record rather than recomputed.
func Restore(rec *Record) (*Layout, error) {
	page := model.NewPage(rec.Width, rec.Height)
	page.Number = rec.Number

	rects := make([]*model.Rect, len(rec.Rects))
	for i, rr := range rec.Rects {
		color, err := model.ParseColor(rr.Color)
		if err != nil {
			return nil, fmt.Errorf("rect %d: %w", i, err)
		}
		typ, err := model.ParseRectType(rr.Type)
		if err != nil {
			return nil, fmt.Errorf("rect %d: %w", i, err)
		}
		rects[i] = &model.Rect{BBox: model.BBoxFromTuple(rr.BBox), Color: color, Type: typ}
		page.AddRect(rects[i])
	}

	blocks, err := restoreBlocks(rec.Blocks, rects)
	if err != nil {
		return nil, err
	}
	for _, b := range blocks {
		page.AddBlock(b)
	}

	l := New(page)
	m := MarginFromTuple(rec.Margin)
	l.margin = &m
	return l, nil
}

func restoreBlocks(records []BlockRecord, rects []*model.Rect) ([]model.Block, error) {
	blocks := make([]model.Block, 0, len(records))
	for i, br := range records {
		spacing := model.Spacing{Before: br.Before, After: br.After, Line: br.LineSpace}

		switch br.Type {
		case RecordText:
			tb := &model.TextBlock{BBox: model.BBoxFromTuple(br.BBox), Spacing: spacing}
			for _, lr := range br.Lines {
				line := model.Line{BBox: model.BBoxFromTuple(lr.BBox), SpaceBefore: lr.SpaceBefore}
				for _, s := range lr.Spans {
					line.Spans = append(line.Spans, model.Span{
						Text: s.Text,
						Font: s.Font,
						Size: s.Size,
						BBox: model.BBoxFromTuple(s.BBox),
					})
				}
				tb.Lines = append(tb.Lines, line)
			}
			blocks = append(blocks, tb)

		case RecordTable:
			table := &model.TableBlock{
				BBox:     model.BBoxFromTuple(br.BBox),
				Explicit: br.Explicit,
				Spacing:  spacing,
				Cells:    make([][]*model.Cell, len(br.Cells)),
			}
			for r, row := range br.Cells {
				table.Cells[r] = make([]*model.Cell, len(row))
				for c, cr := range row {
					if cr == nil {
						continue
					}
					cell, err := restoreCell(cr, rects)
					if err != nil {
						return nil, fmt.Errorf("block %d cell (%d,%d): %w", i, r, c, err)
					}
					table.Cells[r][c] = cell
				}
			}
			blocks = append(blocks, table)

		default:
			return nil, fmt.Errorf("block %d: unknown type %q", i, br.Type)
		}
	}
	return blocks, nil
}

func restoreCell(cr *CellRecord, rects []*model.Rect) (*model.Cell, error) {
	nested, err := restoreBlocks(cr.Blocks, rects)
	if err != nil {
		return nil, err
	}

	cell := model.NewCell(model.BBoxFromTuple(cr.BBox))
	cell.Borders = model.Borders{Top: cr.Borders[0], Right: cr.Borders[1], Bottom: cr.Borders[2], Left: cr.Borders[3]}
	cell.RowSpan = cr.RowSpan
	cell.ColSpan = cr.ColSpan
	cell.Blocks.Append(nested...)

	for _, k := range cr.Shadings {
		if k < 0 || k >= len(rects) {
			return nil, fmt.Errorf("shading index %d out of range", k)
		}
		cell.Shadings = append(cell.Shadings, rects[k])
	}
	return cell, nil
}
