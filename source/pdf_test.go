package source

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tsawler/pagelayout/model"
)

// buildPDF assembles a single-page PDF around a content stream. The
// MediaBox sits on the page tree node so pages inherit it.
func buildPDF(content string) []byte {
	widths := strings.TrimSpace(strings.Repeat("500 ", 95))
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 /MediaBox [0 0 612 792] >>",
		"<< /Type /Page /Parent 2 0 R /Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 126 /Widths [" + widths + "] >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buf.Bytes()
}

func writePDF(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.pdf")
	if err := os.WriteFile(path, buildPDF(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadPDF(t *testing.T) {
	path := writePDF(t, "BT /F1 12 Tf 50 700 Td (Hi) Tj ET\n50 600 100 1 re f\n200 600 100 -20 re f")

	pages, err := ReadPDF(path)
	if err != nil {
		t.Fatalf("ReadPDF() failed: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}

	page := pages[0]
	if page.Number != 1 || page.Width != 612 || page.Height != 792 {
		t.Errorf("page = %d %gx%g, want 1 612x792", page.Number, page.Width, page.Height)
	}

	if len(page.Blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(page.Blocks))
	}
	tb := page.Blocks[0].(*model.TextBlock)
	if tb.Text() != "Hi" {
		t.Errorf("text = %q, want %q", tb.Text(), "Hi")
	}
	if span := tb.Lines[0].Spans[0]; span.Font != "Helvetica" || span.Size != 12 {
		t.Errorf("span = %+v", span)
	}
	// baseline at 792-700 with the box running from ascent to descent
	if !tb.BBox.Equal(model.NewBBox(50, 82.4, 62, 94.4), 1e-9) {
		t.Errorf("text box = %+v", tb.BBox)
	}

	if len(page.Rects) != 2 {
		t.Fatalf("expected 2 rects, got %d", len(page.Rects))
	}
	if got := page.Rects[0].BBox; got != model.NewBBox(50, 191, 150, 192) {
		t.Errorf("rect 0 = %+v", got)
	}
	if got := page.Rects[1].BBox; got != model.NewBBox(200, 192, 300, 212) {
		t.Errorf("negative height rect = %+v", got)
	}
}

func TestReadPDF_PageRange(t *testing.T) {
	path := writePDF(t, "50 600 100 1 re f")

	if _, err := ReadPDF(path, 2); !errors.Is(err, ErrPageOutOfRange) {
		t.Errorf("expected ErrPageOutOfRange, got %v", err)
	}

	pages, err := ReadPDF(path, 1)
	if err != nil || len(pages) != 1 {
		t.Fatalf("ReadPDF(1) = %d pages, %v", len(pages), err)
	}
}

func TestReadPDF_MalformedContent(t *testing.T) {
	path := writePDF(t, "1 2 re f")

	_, err := ReadPDF(path)
	if !errors.Is(err, ErrMalformedContent) {
		t.Errorf("expected ErrMalformedContent, got %v", err)
	}
}

func TestReadPDF_NotPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	if err := os.WriteFile(path, []byte("just some text"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadPDF(path); err == nil {
		t.Error("expected error for a non-PDF file")
	}
}
