package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pfrederiksen/motogp-ics/internal/event"
	"github.com/pfrederiksen/motogp-ics/internal/logger"
	"github.com/pfrederiksen/motogp-ics/internal/notifier"
	"golang.org/x/sync/errgroup"
)

// Policy decides what happens when an entry fails to build.
type Policy int

const (
	// PolicyAbort stops at the first failure and returns no records.
	PolicyAbort Policy = iota
	// PolicyBestEffort skips failed entries and reports them.
	PolicyBestEffort
)

// Builder builds a record from a calendar entry. A nil record with a nil
// error means the entry was skipped.
type Builder interface {
	Build(ctx context.Context, e event.Entry) (*event.Record, error)
}

// EntryError wraps the failure of a single entry.
type EntryError struct {
	Index int
	Title string
	Err   error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("entry %d (%s): %v", e.Index, e.Title, e.Err)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}

// Result is the outcome of one entry.
type Result struct {
	Entry   event.Entry
	Record  *event.Record
	Skipped bool
	Err     error
}

// Report holds one Result per entry, in calendar order.
type Report struct {
	Results []Result
}

// Records returns the accepted records in calendar order.
func (r *Report) Records() []*event.Record {
	records := make([]*event.Record, 0, len(r.Results))
	for _, res := range r.Results {
		if res.Record != nil {
			records = append(records, res.Record)
		}
	}
	return records
}

// Failures returns the entry errors in calendar order.
func (r *Report) Failures() []*EntryError {
	var failures []*EntryError
	for i, res := range r.Results {
		if res.Err != nil {
			failures = append(failures, &EntryError{Index: i, Title: res.Entry.Title, Err: res.Err})
		}
	}
	return failures
}

// Skipped returns the number of test sessions left out.
func (r *Report) Skipped() int {
	n := 0
	for _, res := range r.Results {
		if res.Skipped {
			n++
		}
	}
	return n
}

// Err joins all failures, or returns nil if every entry succeeded.
func (r *Report) Err() error {
	var errs []error
	for _, f := range r.Failures() {
		errs = append(errs, f)
	}
	return errors.Join(errs...)
}

// Options configure an Assembler.
type Options struct {
	// Reminder is attached to every accepted record.
	Reminder event.Reminder
	// Workers bounds concurrent builds. Values below 1 mean 1.
	Workers int
	Policy  Policy
}

// Assembler runs a Builder over every calendar entry.
type Assembler struct {
	builder  Builder
	notifier notifier.Notifier
	opts     Options
}

// NewAssembler creates an Assembler. n receives every accepted record as
// soon as it is built; it may be nil.
func NewAssembler(b Builder, n notifier.Notifier, opts Options) *Assembler {
	if n == nil {
		n = notifier.Discard
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Assembler{builder: b, notifier: n, opts: opts}
}

// Assemble builds every entry and returns the per-entry report. Under
// PolicyAbort the first failure cancels outstanding work and is returned
// as an *EntryError with a nil report.
func (a *Assembler) Assemble(ctx context.Context, entries []event.Entry) (*Report, error) {
	results := make([]Result, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Workers)

	for i, e := range entries {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			// A slot may free up only after another entry has failed.
			if gctx.Err() != nil {
				return nil
			}
			results[i] = a.build(gctx, e)
			if err := results[i].Err; err != nil && a.opts.Policy == PolicyAbort {
				return &EntryError{Index: i, Title: e.Title, Err: err}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &Report{Results: results}, nil
}

func (a *Assembler) build(ctx context.Context, e event.Entry) Result {
	rec, err := a.builder.Build(ctx, e)
	switch {
	case err != nil:
		logger.IncrCounter("events.failed")
		logger.Warn("Event failed", logger.Fields{"title": e.Title, "url": e.URL, "error": err.Error()})
		return Result{Entry: e, Err: err}
	case rec == nil:
		logger.IncrCounter("events.skipped")
		logger.Debug("Skipped test session", logger.Fields{"title": e.Title})
		return Result{Entry: e, Skipped: true}
	}

	rec.Reminders = []event.Reminder{a.opts.Reminder}
	logger.IncrCounter("events.built")
	logger.Debug("Event built", logger.Fields{
		"name":  rec.Name,
		"begin": rec.Begin.Format(time.RFC3339),
		"end":   rec.End().Format(time.RFC3339),
	})

	if err := a.notifier.Notify(rec); err != nil {
		logger.Warn("Progress notification failed", logger.Fields{"name": rec.Name, "error": err.Error()})
	}

	return Result{Entry: e, Record: rec}
}
