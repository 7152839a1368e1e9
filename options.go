package pagelayout

import (
	"runtime"

	"github.com/tsawler/pagelayout/layout"
)

// ExtractOptions holds configuration for layout extraction.
type ExtractOptions struct {
	// Page selection (1-indexed in API, stored as-is)
	pages []int

	// Processing options
	workers  int
	implicit bool
	config   layout.Config

	// Collaborators
	textFormat layout.TextFormatParser
	plotters   PlotterFactory
	logger     layout.Logger
}

// defaultOptions returns the default extraction options.
func defaultOptions() ExtractOptions {
	return ExtractOptions{
		pages:    nil, // nil means all pages
		workers:  runtime.NumCPU(),
		implicit: false,
		config:   layout.DefaultConfig(),
	}
}

// clone creates a deep copy of ExtractOptions.
func (o ExtractOptions) clone() ExtractOptions {
	newOpts := o

	// Deep copy pages slice
	if o.pages != nil {
		newOpts.pages = make([]int, len(o.pages))
		copy(newOpts.pages, o.pages)
	}

	return newOpts
}
