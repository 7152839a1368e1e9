package tables

import (
	"errors"
	"fmt"

	"github.com/tsawler/pagelayout/model"
)

// ErrInvalidConfig is returned when a Config fails validation
var ErrInvalidConfig = errors.New("invalid table detector config")

// Config holds detector configuration
type Config struct {
	// Minimum rows for a valid table
	MinRows int

	// Minimum columns for a valid table
	MinCols int

	// Tolerance for merging separator positions and edge comparisons (points)
	AlignmentTolerance float64

	// Rects thinner than this are border candidates (points)
	MaxBorderWidth float64

	// Width recorded for hairline borders drawn with zero thickness (points)
	MinBorderWidth float64

	// Minimum confidence threshold (0-1) for alignment-based tables
	MinConfidence float64

	// Maximum vertical gap between blocks of one alignment-based table (points)
	MaxClusterGap float64
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		MinRows:            2,
		MinCols:            2,
		AlignmentTolerance: model.DefaultTolerance,
		MaxBorderWidth:     6.0,
		MinBorderWidth:     0.5,
		MinConfidence:      0.6,
		MaxClusterGap:      20.0,
	}
}

// Validate reports the first invalid field, wrapped in ErrInvalidConfig
func (c Config) Validate() error {
	switch {
	case c.MinRows < 2:
		return fmt.Errorf("%w: MinRows %d, need at least 2", ErrInvalidConfig, c.MinRows)
	case c.MinCols < 2:
		return fmt.Errorf("%w: MinCols %d, need at least 2", ErrInvalidConfig, c.MinCols)
	case c.AlignmentTolerance < 0:
		return fmt.Errorf("%w: negative AlignmentTolerance", ErrInvalidConfig)
	case c.MaxBorderWidth <= 0:
		return fmt.Errorf("%w: MaxBorderWidth must be positive", ErrInvalidConfig)
	case c.MinBorderWidth <= 0 || c.MinBorderWidth > c.MaxBorderWidth:
		return fmt.Errorf("%w: MinBorderWidth must be in (0, MaxBorderWidth]", ErrInvalidConfig)
	case c.MinConfidence < 0 || c.MinConfidence > 1:
		return fmt.Errorf("%w: MinConfidence %.2f outside [0,1]", ErrInvalidConfig, c.MinConfidence)
	case c.MaxClusterGap < 0:
		return fmt.Errorf("%w: negative MaxClusterGap", ErrInvalidConfig)
	}
	return nil
}
