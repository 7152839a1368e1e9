package source

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/tsawler/pagelayout/model"
)

var (
	pageLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
		{Name: "Comment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#[0-9A-Fa-f]{6}`},
		{Name: "Number", Pattern: `-?(?:\d+\.\d+|\d+|\.\d+)`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
		{Name: "Punct", Pattern: `[{}]`},
	})

	pageParser = participle.MustBuild[pageFile](
		participle.Lexer(pageLexer),
		participle.Elide("Whitespace", "Comment"),
		participle.Unquote("String"),
	)
)

// pageFile is the root of a textual page description:
//
//	page 600 x 800 {
//		block {
//			line 50 60 200 72 "Quarterly report" font "Helvetica-Bold" size 12
//		}
//		rect 50 100 550 101 #000000
//	}
type pageFile struct {
	Pages []*pageDecl `parser:"@@*"`
}

type pageDecl struct {
	Pos    lexer.Position `parser:""`
	Width  float64        `parser:"'page' @Number"`
	Height float64        `parser:"'x' @Number"`
	Items  []*pageItem    `parser:"'{' @@* '}'"`
}

type pageItem struct {
	Block *blockDecl `parser:"  @@"`
	Rect  *rectDecl  `parser:"| @@"`
}

type blockDecl struct {
	Pos   lexer.Position `parser:""`
	Box   *boxDecl       `parser:"'block' @@?"`
	Lines []*lineDecl    `parser:"'{' @@* '}'"`
}

type lineDecl struct {
	Pos  lexer.Position `parser:""`
	Box  boxDecl        `parser:"'line' @@"`
	Text []string       `parser:"@String+"`
	Font string         `parser:"( 'font' @String )?"`
	Size float64        `parser:"( 'size' @Number )?"`
}

type rectDecl struct {
	Pos   lexer.Position `parser:""`
	Box   boxDecl        `parser:"'rect' @@"`
	Color string         `parser:"@Color?"`
}

type boxDecl struct {
	X0 float64 `parser:"@Number"`
	Y0 float64 `parser:"@Number"`
	X1 float64 `parser:"@Number"`
	Y1 float64 `parser:"@Number"`
}

func (b boxDecl) bbox() model.BBox {
	return model.NewBBox(b.X0, b.Y0, b.X1, b.Y1)
}

// ParsePageFile parses textual page descriptions. Pages are numbered in
// the order they appear, starting at 1.
func ParsePageFile(r io.Reader) ([]*model.Page, error) {
	file, err := pageParser.Parse("", r)
	if err != nil {
		return nil, fmt.Errorf("parsing page file: %w", err)
	}
	return file.pages()
}

// ParsePageString parses textual page descriptions from a string
func ParsePageString(input string) ([]*model.Page, error) {
	file, err := pageParser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("parsing page file: %w", err)
	}
	return file.pages()
}

// ReadPageFile parses a page file from disk, keeping only the given page
// numbers when any are passed.
func ReadPageFile(path string, pages ...int) ([]*model.Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening page file: %w", err)
	}
	defer f.Close()

	all, err := ParsePageFile(f)
	if err != nil {
		return nil, err
	}
	return selectPages(all, pages)
}

func (f *pageFile) pages() ([]*model.Page, error) {
	result := make([]*model.Page, 0, len(f.Pages))
	for i, decl := range f.Pages {
		page, err := decl.page()
		if err != nil {
			return nil, err
		}
		page.Number = i + 1
		result = append(result, page)
	}
	return result, nil
}

func (d *pageDecl) page() (*model.Page, error) {
	if d.Width <= 0 || d.Height <= 0 {
		return nil, fmt.Errorf("%w: %s: size %gx%g", ErrInvalidPage, d.Pos, d.Width, d.Height)
	}

	page := model.NewPage(d.Width, d.Height)
	for _, item := range d.Items {
		switch {
		case item.Block != nil:
			page.AddBlock(item.Block.textBlock())
		case item.Rect != nil:
			rect, err := item.Rect.rect()
			if err != nil {
				return nil, err
			}
			page.AddRect(rect)
		}
	}
	return page, nil
}

// textBlock builds the block; without an explicit box it spans its lines
func (d *blockDecl) textBlock() *model.TextBlock {
	lines := make([]model.Line, 0, len(d.Lines))
	for _, l := range d.Lines {
		lines = append(lines, l.line())
	}

	block := model.NewTextBlock(lines...)
	if d.Box != nil {
		block.BBox = d.Box.bbox()
	}
	return block
}

// line maps each quoted string to a span, splitting the line box evenly
func (d *lineDecl) line() model.Line {
	box := d.Box.bbox()
	size := d.Size
	if size == 0 {
		size = box.Height()
	}

	step := box.Width() / float64(len(d.Text))
	spans := make([]model.Span, len(d.Text))
	for i, text := range d.Text {
		spans[i] = model.Span{
			Text: text,
			Font: d.Font,
			Size: size,
			BBox: model.NewBBox(box.X0+float64(i)*step, box.Y0, box.X0+float64(i+1)*step, box.Y1),
		}
	}
	return model.Line{BBox: box, Spans: spans}
}

func (d *rectDecl) rect() (*model.Rect, error) {
	var color model.Color
	if d.Color != "" {
		c, err := model.ParseColor(d.Color)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.Pos, err)
		}
		color = c
	}
	return model.NewRect(d.Box.bbox(), color), nil
}
