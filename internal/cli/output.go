package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pfrederiksen/motogp-ics/internal/event"
)

// OutputFormat specifies the summary format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

func parseFormat(s string) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	if format != FormatText && format != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", s)
	}
	return format, nil
}

// Failure describes an entry skipped in best-effort mode.
type Failure struct {
	Title string `json:"title"`
	Error string `json:"error"`
}

// RunResult summarizes one generate run.
type RunResult struct {
	GeneratedAt  time.Time       `json:"generated_at"`
	Output       string          `json:"output"`
	Sessions     string          `json:"sessions"`
	Entries      int             `json:"entries"`
	Events       []*event.Record `json:"events"`
	Skipped      int             `json:"skipped"`
	Failures     []Failure       `json:"failures,omitempty"`
	TrackChanges bool            `json:"-"`
	Changes      []*event.Change `json:"changes,omitempty"`
}

// WriteSummary writes the result in the specified format
func WriteSummary(w io.Writer, result *RunResult, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeJSON(w io.Writer, result *RunResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func writeText(w io.Writer, result *RunResult) error {
	fmt.Fprintf(w, "Wrote %d events to %s", len(result.Events), result.Output)
	if result.Skipped > 0 {
		fmt.Fprintf(w, " (%d test sessions skipped)", result.Skipped)
	}
	fmt.Fprintln(w)

	if len(result.Failures) > 0 {
		fmt.Fprintf(w, "\n%d events failed:\n", len(result.Failures))
		for _, f := range result.Failures {
			fmt.Fprintf(w, "  %s: %s\n", f.Title, f.Error)
		}
	}

	if result.TrackChanges {
		if len(result.Changes) == 0 {
			fmt.Fprintln(w, "No changes since last run.")
			return nil
		}
		fmt.Fprintf(w, "\nChanges since last run (%d):\n", len(result.Changes))
		for _, c := range result.Changes {
			fmt.Fprintf(w, "  %s\n", c)
		}
	}

	return nil
}
