package pagelayout

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tsawler/pagelayout/layout"
	"github.com/tsawler/pagelayout/model"
)

// PlotterFactory returns the plotter for one page. A nil plotter skips
// plotting for that page.
type PlotterFactory func(page int) (layout.Plotter, error)

// ParseOptions configures ParsePages
type ParseOptions struct {
	// Workers is the number of pages parsed concurrently (default: NumCPU)
	Workers int

	// Layout is applied to every page. Its Plotter is replaced by the
	// factory's plotter when Plotters is set.
	Layout layout.Options

	// Plotters creates a plotter per page
	Plotters PlotterFactory

	// Logger receives job progress; it is also handed to layouts that have
	// no logger of their own
	Logger layout.Logger
}

// DefaultParseOptions returns options with one worker per CPU and the
// default layout options
func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		Workers: runtime.NumCPU(),
		Layout:  layout.DefaultOptions(),
	}
}

// ParsePages parses every page on a pool of workers. The returned slice has
// one entry per input page in input order; entries for failed pages are nil
// and their errors are joined into the returned error as *PageError values.
// The context is checked before each page starts.
func ParsePages(ctx context.Context, pages []*model.Page, opts ParseOptions) ([]*layout.Layout, error) {
	if len(pages) == 0 {
		return nil, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(pages) {
		workers = len(pages)
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		sem     = make(chan struct{}, workers)
		errs    []error
		results = make([]*layout.Layout, len(pages))
		start   = time.Now()
	)

	for i, page := range pages {
		wg.Add(1)
		go func(i int, page *model.Page) {
			defer wg.Done()

			jobID := uuid.New().String()
			fail := func(err error) {
				logWarn(opts.Logger, "page failed", "page", page.Number, "job", jobID, "error", err)
				mu.Lock()
				errs = append(errs, &PageError{Page: page.Number, JobID: jobID, Err: err})
				mu.Unlock()
			}

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				fail(ctx.Err())
				return
			}
			if err := ctx.Err(); err != nil {
				fail(err)
				return
			}

			l, err := parsePage(page, jobID, opts)
			if err != nil {
				fail(err)
				return
			}
			results[i] = l
		}(i, page)
	}
	wg.Wait()

	logDebug(opts.Logger, "pages parsed", "total", len(pages), "failed", len(errs),
		"workers", workers, "elapsed", time.Since(start).Round(time.Millisecond))

	// failures are reported in page order
	sortPageErrors(errs)
	return results, errors.Join(errs...)
}

// parsePage parses one page. A panic is reported as an error so that it
// stays confined to its page.
func parsePage(page *model.Page, jobID string, opts ParseOptions) (l *layout.Layout, err error) {
	defer func() {
		if r := recover(); r != nil {
			l, err = nil, fmt.Errorf("%w: %v", ErrPagePanic, r)
		}
	}()

	started := time.Now()
	lopts := opts.Layout
	if lopts.Config == (layout.Config{}) {
		lopts.Config = layout.DefaultConfig()
	}

	if opts.Plotters != nil {
		plotter, err := opts.Plotters(page.Number)
		if err != nil {
			return nil, fmt.Errorf("creating plotter: %w", err)
		}
		lopts.Plotter = plotter
	}

	logger := lopts.Logger
	if logger == nil {
		logger = opts.Logger
	}
	if logger != nil {
		lopts.Logger = jobLogger{logger: logger, jobID: jobID}
	}

	l = layout.NewWithOptions(page, lopts)
	err = l.Parse()

	logDebug(opts.Logger, "page parsed", "page", page.Number, "job", jobID,
		"blocks", l.Blocks.Len(), "tables", len(l.Blocks.Tables()),
		"elapsed", time.Since(started).Round(time.Microsecond))

	if err != nil {
		return nil, err
	}
	return l, nil
}

func sortPageErrors(errs []error) {
	pageOf := func(err error) int {
		var pe *PageError
		if errors.As(err, &pe) {
			return pe.Page
		}
		return 0
	}
	sort.SliceStable(errs, func(i, j int) bool {
		return pageOf(errs[i]) < pageOf(errs[j])
	})
}

// jobLogger tags every entry with the job id
type jobLogger struct {
	logger layout.Logger
	jobID  string
}

func (j jobLogger) Debug(msg string, keysAndValues ...interface{}) {
	j.logger.Debug(msg, append([]interface{}{"job", j.jobID}, keysAndValues...)...)
}

func (j jobLogger) Warn(msg string, keysAndValues ...interface{}) {
	j.logger.Warn(msg, append([]interface{}{"job", j.jobID}, keysAndValues...)...)
}

func logDebug(l layout.Logger, msg string, keysAndValues ...interface{}) {
	if l != nil {
		l.Debug(msg, keysAndValues...)
	}
}

func logWarn(l layout.Logger, msg string, keysAndValues ...interface{}) {
	if l != nil {
		l.Warn(msg, keysAndValues...)
	}
}
