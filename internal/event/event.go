package event

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pfrederiksen/motogp-ics/internal/country"
	"github.com/pfrederiksen/motogp-ics/internal/schedule"
)

const (
	// NamePrefix starts every event name.
	NamePrefix = "MotoGP"
	// TestSuffix marks entries for private test sessions.
	TestSuffix = "Test"
	// ScheduleAnchor is appended to detail URLs so links open on the table.
	ScheduleAnchor = "#schedule"
)

// Entry is one event block scraped from the calendar listing.
type Entry struct {
	Title   string `json:"title"`
	Venue   string `json:"venue"`
	Country string `json:"country"`
	URL     string `json:"url"`
}

// IsTest reports whether the entry is a test session.
func (e Entry) IsTest() bool {
	return strings.HasSuffix(e.Title, TestSuffix)
}

// ID returns the identifier of the record built from e.
func (e Entry) ID() string {
	return RecordID(e.URL, e.Title)
}

// Reminder is an audio alarm that fires Before the event starts.
type Reminder struct {
	Before time.Duration `json:"before"`
}

// Record is a fully resolved calendar event.
type Record struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Location    string        `json:"location"`
	URL         string        `json:"url"`
	Begin       time.Time     `json:"begin"`
	Duration    time.Duration `json:"duration"`
	Description string        `json:"description"`
	Reminders   []Reminder    `json:"reminders,omitempty"`
}

// End returns Begin plus Duration.
func (r *Record) End() time.Time {
	return r.Begin.Add(r.Duration)
}

// Options control how records are built.
type Options struct {
	// Sessions is the tier prefix; it filters rows and suffixes the name.
	Sessions string
	// Buffer is added to every duration.
	Buffer time.Duration
	// FullDuration uses total elapsed time instead of the sub-day remainder.
	FullDuration bool
}

// ScheduleSource fetches the raw schedule rows of a detail page.
type ScheduleSource interface {
	FetchSchedule(ctx context.Context, url string) ([]schedule.Row, error)
}

// Builder builds records from entries.
type Builder struct {
	source ScheduleSource
	opts   Options
}

// NewBuilder creates a Builder reading schedules from source.
func NewBuilder(source ScheduleSource, opts Options) *Builder {
	return &Builder{source: source, opts: opts}
}

// Build resolves a single entry. Test sessions return a nil Record and a
// nil error. Any lookup, fetch or schedule failure is returned as is.
func (b *Builder) Build(ctx context.Context, e Entry) (*Record, error) {
	if e.IsTest() {
		return nil, nil
	}

	flag, err := country.Lookup(e.Country)
	if err != nil {
		return nil, err
	}

	rows, err := b.source.FetchSchedule(ctx, e.URL)
	if err != nil {
		return nil, err
	}

	w, err := schedule.Resolve(schedule.Filter(rows, b.opts.Sessions))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", e.Title, err)
	}

	return NewRecord(e, flag, w, b.opts), nil
}

// NewRecord assembles a Record from an entry and its resolved window.
func NewRecord(e Entry, flag string, w schedule.Window, opts Options) *Record {
	return &Record{
		ID:          e.ID(),
		Name:        Name(flag, e.Title, opts.Sessions),
		Location:    e.Venue,
		URL:         e.URL + ScheduleAnchor,
		Begin:       w.Begin,
		Duration:    schedule.Duration(w, opts.Buffer, opts.FullDuration),
		Description: w.Description,
	}
}

// Name composes the display name of an event.
func Name(flag, title, sessions string) string {
	return fmt.Sprintf("%s %s %s (%s)", NamePrefix, flag, title, sessions)
}

// RecordID derives a stable identifier from a detail URL and an event
// title. Both are part of the name, so two entries sharing a detail page
// still get distinct UIDs.
func RecordID(url, title string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(url+"\n"+title)).String()
}
