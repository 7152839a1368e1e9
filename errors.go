package pagelayout

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSource is returned when an extractor has neither a file nor pages
	ErrNoSource = errors.New("no filename or pages specified")

	// ErrInvalidOption is returned for out-of-range extractor settings
	ErrInvalidOption = errors.New("invalid option")

	// ErrPagePanic wraps a panic raised while parsing one page
	ErrPagePanic = errors.New("page parsing panicked")
)

// PageError reports the failure of a single page. Other pages of the same
// run are unaffected.
type PageError struct {
	Page  int    // 1-indexed page number
	JobID string // correlates with the job's log lines
	Err   error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page %d (job %s): %v", e.Page, e.JobID, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}

// PageErrors returns every PageError joined into err
func PageErrors(err error) []*PageError {
	if err == nil {
		return nil
	}

	var out []*PageError
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			out = append(out, PageErrors(e)...)
		}
		return out
	}

	var pe *PageError
	if errors.As(err, &pe) {
		out = append(out, pe)
	}
	return out
}
