package plot

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/tsawler/pagelayout/layout"
)

// ErrClosed is returned when plotting into a closed plotter
var ErrClosed = errors.New("plotter is closed")

// MMPerPoint converts page units to canvas millimetres
const MMPerPoint = 25.4 / 72.0

// PDFPlotter draws every plotted stage as one page of a PDF document.
// Stages with nothing to draw add no page. It is safe for concurrent use;
// pages are written in call order.
type PDFPlotter struct {
	mu     sync.Mutex
	w      io.Writer
	writer *pdf.PDF
	stages []string
	closed bool
}

var _ layout.Plotter = (*PDFPlotter)(nil)

// NewPDFPlotter creates a plotter writing to w. Close must be called to
// finish the document.
func NewPDFPlotter(w io.Writer) *PDFPlotter {
	return &PDFPlotter{w: w}
}

// Plot renders the layout as a new page
func (p *PDFPlotter) Plot(stage layout.Stage, l *layout.Layout) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	if l.Width <= 0 || l.Height <= 0 {
		return fmt.Errorf("cannot plot page of size %gx%g", l.Width, l.Height)
	}

	shapes := pageShapes(l, stage)
	if shapes == nil {
		return nil
	}

	width, height := l.Width*MMPerPoint, l.Height*MMPerPoint
	if p.writer == nil {
		p.writer = pdf.New(p.w, width, height, nil)
		p.writer.SetInfo("pagelayout", "", "", "", "pagelayout")
	} else {
		p.writer.NewPage(width, height)
	}

	c := canvas.New(width, height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV)

	ctx.SetFillColor(colorPage)
	ctx.SetStrokeColor(color.RGBA{})
	ctx.DrawPath(0, 0, canvas.Rectangle(width, height))

	for _, s := range shapes {
		drawShape(ctx, s)
	}

	c.RenderTo(p.writer)
	p.stages = append(p.stages, fmt.Sprintf("page %d: %s", l.Number, stage))
	return nil
}

// Stages lists the plotted pages in order
func (p *PDFPlotter) Stages() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]string, len(p.stages))
	copy(out, p.stages)
	return out
}

// Close finishes the document. A plotter that never plotted writes nothing.
func (p *PDFPlotter) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	if p.writer == nil {
		return nil
	}
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("writing plot PDF: %w", err)
	}
	return nil
}

func drawShape(ctx *canvas.Context, s shape) {
	w, h := s.box.Width()*MMPerPoint, s.box.Height()*MMPerPoint
	if w < 0 || h < 0 || (w == 0 && h == 0) {
		return
	}

	// zero-thickness boxes are hairlines
	if w == 0 || h == 0 {
		if s.stroke == nil {
			return
		}
		ctx.SetFillColor(color.RGBA{})
		ctx.SetStrokeColor(s.stroke)
		ctx.SetStrokeWidth(s.width * MMPerPoint)
		line := &canvas.Path{}
		line.MoveTo(0, 0)
		line.LineTo(w, h)
		ctx.DrawPath(s.box.X0*MMPerPoint, s.box.Y0*MMPerPoint, line)
		return
	}

	if s.fill != nil {
		ctx.SetFillColor(s.fill)
	} else {
		ctx.SetFillColor(color.RGBA{})
	}
	if s.stroke != nil {
		ctx.SetStrokeColor(s.stroke)
		ctx.SetStrokeWidth(s.width * MMPerPoint)
	} else {
		ctx.SetStrokeColor(color.RGBA{})
	}

	ctx.DrawPath(s.box.X0*MMPerPoint, s.box.Y0*MMPerPoint, canvas.Rectangle(w, h))
}
