package source

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"report.pdf", FormatPDF},
		{"REPORT.PDF", FormatPDF},
		{"fixtures/table.page", FormatPageFile},
		{"dump.json", FormatJSON},
		{"notes.txt", FormatUnknown},
		{"noext", FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := DetectFormat(tt.path); got != tt.want {
				t.Errorf("DetectFormat(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestFormat_String(t *testing.T) {
	if FormatPageFile.String() != "page" || FormatUnknown.String() != "unknown" {
		t.Error("unexpected format names")
	}
}

func TestRead_Unsupported(t *testing.T) {
	if _, err := Read("slides.pptx"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestRead_PageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.page")
	if err := os.WriteFile(path, []byte(twoPages), 0o644); err != nil {
		t.Fatal(err)
	}

	all, err := Read(path)
	if err != nil {
		t.Fatalf("Read() failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(all))
	}

	selected, err := Read(path, 2)
	if err != nil {
		t.Fatalf("Read(2) failed: %v", err)
	}
	if len(selected) != 1 || selected[0].Number != 2 {
		t.Errorf("selected = %+v", selected)
	}

	if _, err := Read(path, 3); !errors.Is(err, ErrPageOutOfRange) {
		t.Errorf("expected ErrPageOutOfRange, got %v", err)
	}
}

func TestRead_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	if err := os.WriteFile(path, []byte(`{"width": 100, "height": 50}`), 0o644); err != nil {
		t.Fatal(err)
	}

	pages, err := Read(path)
	if err != nil {
		t.Fatalf("Read() failed: %v", err)
	}
	if len(pages) != 1 || pages[0].Width != 100 {
		t.Errorf("pages = %+v", pages)
	}
}

func TestRead_MissingFile(t *testing.T) {
	for _, name := range []string{"missing.pdf", "missing.page", "missing.json"} {
		if _, err := Read(filepath.Join(t.TempDir(), name)); err == nil {
			t.Errorf("expected error for %s", name)
		}
	}
}
