package source

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tsawler/pagelayout/model"
)

var (
	// ErrUnsupportedFormat is returned for files with an unknown extension
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrPageOutOfRange is returned when a requested page does not exist
	ErrPageOutOfRange = errors.New("page out of range")

	// ErrInvalidPage is returned for pages with a non-positive size
	ErrInvalidPage = errors.New("invalid page")

	// ErrMalformedContent is returned when a PDF content stream cannot be read
	ErrMalformedContent = errors.New("malformed content stream")
)

// Format identifies an input format
type Format int

const (
	FormatUnknown Format = iota
	FormatPDF
	FormatPageFile
	FormatJSON
)

// String returns the format name
func (f Format) String() string {
	switch f {
	case FormatPDF:
		return "pdf"
	case FormatPageFile:
		return "page"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// DetectFormat determines the input format from the file extension
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return FormatPDF
	case ".page":
		return FormatPageFile
	case ".json":
		return FormatJSON
	default:
		return FormatUnknown
	}
}

// Read decodes the given pages of a file, choosing the decoder by extension.
// With no page numbers every page is returned.
func Read(path string, pages ...int) ([]*model.Page, error) {
	switch DetectFormat(path) {
	case FormatPDF:
		return ReadPDF(path, pages...)
	case FormatPageFile:
		return ReadPageFile(path, pages...)
	case FormatJSON:
		return ReadJSON(path, pages...)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// selectPages keeps the pages whose numbers are listed, in the listed order
func selectPages(all []*model.Page, numbers []int) ([]*model.Page, error) {
	if len(numbers) == 0 {
		return all, nil
	}

	byNumber := make(map[int]*model.Page, len(all))
	for _, p := range all {
		byNumber[p.Number] = p
	}

	selected := make([]*model.Page, 0, len(numbers))
	for _, n := range numbers {
		p, ok := byNumber[n]
		if !ok {
			return nil, fmt.Errorf("%w: %d (document has %d)", ErrPageOutOfRange, n, len(all))
		}
		selected = append(selected, p)
	}
	return selected, nil
}
