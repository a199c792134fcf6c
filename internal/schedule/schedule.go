package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// TimeLayout is the format of the data-ini-time attribute on schedule rows.
const TimeLayout = "2006-01-02T15:04:05-0700"

// DefaultBuffer is added to every computed event duration.
const DefaultBuffer = 2 * time.Hour

const secondsPerDay = 24 * 60 * 60

// ErrIncomplete is returned when fewer than two rows match the tier, which
// leaves the window without an end.
var ErrIncomplete = errors.New("incomplete schedule")

// Row is one row of a detail page's schedule table.
type Row struct {
	Tier     string `json:"tier"`
	Category string `json:"category"`
	Start    string `json:"start"`
}

// Window is the time span covered by the matching rows of a schedule.
type Window struct {
	Begin       time.Time
	End         time.Time
	Description string
}

// Filter returns the rows whose tier label starts with tier, in their
// original order. An empty result is not an error.
func Filter(rows []Row, tier string) []Row {
	matched := make([]Row, 0, len(rows))
	for _, row := range rows {
		if strings.HasPrefix(row.Tier, tier) {
			matched = append(matched, row)
		}
	}
	return matched
}

// Resolve takes already filtered rows and returns their window. The first
// row sets Begin; every later row overwrites End, so End is the last row.
func Resolve(rows []Row) (Window, error) {
	if len(rows) < 2 {
		return Window{}, fmt.Errorf("%w: %d matching rows, need at least 2", ErrIncomplete, len(rows))
	}

	var (
		w     Window
		lines = make([]string, 0, len(rows))
	)
	for i, row := range rows {
		ts, err := time.Parse(TimeLayout, row.Start)
		if err != nil {
			return Window{}, fmt.Errorf("parsing start time of %q: %w", row.Category, err)
		}
		if i == 0 {
			w.Begin = ts
		} else {
			w.End = ts
		}
		lines = append(lines, fmt.Sprintf("%s %s %s", row.Start, row.Category, row.Tier))
	}
	w.Description = strings.Join(lines, "\n")

	return w, nil
}

// Duration returns the event length for a window: the elapsed time plus
// buffer. Unless full is set only the sub-day remainder of the elapsed
// time is kept, so a window spanning 2d4h15m contributes 4h15m.
func Duration(w Window, buffer time.Duration, full bool) time.Duration {
	elapsed := int64(w.End.Sub(w.Begin) / time.Second)
	if !full {
		elapsed %= secondsPerDay
		if elapsed < 0 {
			elapsed += secondsPerDay
		}
	}
	return time.Duration(elapsed)*time.Second + buffer
}
