package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pfrederiksen/motogp-ics/internal/calendar"
	"github.com/pfrederiksen/motogp-ics/internal/config"
	"github.com/pfrederiksen/motogp-ics/internal/event"
	"github.com/pfrederiksen/motogp-ics/internal/logger"
	"github.com/pfrederiksen/motogp-ics/internal/notifier"
	"github.com/pfrederiksen/motogp-ics/internal/scraper"
	"github.com/pfrederiksen/motogp-ics/internal/storage"
	"github.com/spf13/cobra"
)

func newGenerateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Scrape the calendar once and write the .ics file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts)
		},
	}
}

func runGenerate(cmd *cobra.Command, opts *options) error {
	format, err := parseFormat(opts.format)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, opts, os.LookupEnv)
	if err != nil {
		return err
	}

	progress := cmd.OutOrStdout()
	if opts.quiet || format == FormatJSON {
		progress = io.Discard
	}

	result, err := generate(cmd.Context(), cfg, progress)
	if err != nil {
		return err
	}

	if err := WriteSummary(cmd.OutOrStdout(), result, format); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}

	if len(result.Failures) > 0 {
		return fmt.Errorf("%w: %d of %d", ErrPartial, len(result.Failures), result.Entries)
	}
	return nil
}

// generate performs one full run: scrape, assemble, write the calendar
// and, if configured, diff against and replace the snapshot. Progress
// blocks for accepted events go to progress.
func generate(ctx context.Context, cfg *config.Config, progress io.Writer) (*RunResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	started := time.Now()
	metrics := logger.DefaultMetrics()
	metrics.Reset()

	sc := scraper.New(cfg)

	logger.Info("Fetching calendar", logger.Fields{"url": cfg.CalendarURL, "sessions": cfg.Sessions})
	entries, err := sc.FetchEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching calendar: %w", err)
	}

	builder := event.NewBuilder(sc, event.Options{
		Sessions:     cfg.Sessions,
		Buffer:       cfg.Buffer(),
		FullDuration: cfg.FullDuration,
	})

	policy := calendar.PolicyAbort
	if cfg.BestEffort {
		policy = calendar.PolicyBestEffort
	}

	asm := calendar.NewAssembler(builder, notifier.NewConsoleNotifier(progress), calendar.Options{
		Reminder: event.Reminder{Before: cfg.Reminder()},
		Workers:  cfg.Workers,
		Policy:   policy,
	})

	report, err := asm.Assemble(ctx, entries)
	if err != nil {
		return nil, err
	}
	records := report.Records()

	var buf bytes.Buffer
	if err := calendar.Write(&buf, records); err != nil {
		return nil, fmt.Errorf("encoding calendar: %w", err)
	}
	if err := storage.WriteFile(cfg.Output, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("writing calendar: %w", err)
	}

	result := &RunResult{
		GeneratedAt: started.UTC(),
		Output:      cfg.Output,
		Sessions:    cfg.Sessions,
		Entries:     len(entries),
		Events:      records,
		Skipped:     report.Skipped(),
	}
	for _, f := range report.Failures() {
		result.Failures = append(result.Failures, Failure{Title: f.Title, Error: f.Err.Error()})
	}

	if cfg.DataDir != "" {
		changes, err := updateSnapshot(cfg.DataDir, records, failedEntries(report))
		if err != nil {
			return nil, err
		}
		result.Changes = changes
		result.TrackChanges = true
	}

	logger.Info("Calendar written", logger.Fields{
		"output":   cfg.Output,
		"events":   len(records),
		"skipped":  result.Skipped,
		"failed":   len(result.Failures),
		"duration": time.Since(started).String(),
	})
	logger.Debug("Run metrics", metrics.Fields())

	return result, nil
}

func failedEntries(report *calendar.Report) []event.Entry {
	var failed []event.Entry
	for _, res := range report.Results {
		if res.Err != nil {
			failed = append(failed, res.Entry)
		}
	}
	return failed
}

// updateSnapshot diffs records against the stored snapshot and replaces
// it. A failed entry keeps its previous record, so it is neither reported
// as removed now nor as new on the next successful run.
func updateSnapshot(dataDir string, records []*event.Record, failed []event.Entry) ([]*event.Change, error) {
	store, err := storage.New(dataDir)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}

	previous, err := store.LoadSnapshot()
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}

	current := records
	for _, e := range failed {
		if rec, ok := previous.Records[e.ID()]; ok {
			current = append(current[:len(current):len(current)], rec)
			logger.Debug("Keeping previous record", logger.Fields{"title": e.Title})
		}
	}

	changes := event.Diff(previous, current)

	if err := store.SaveSnapshot(current); err != nil {
		return nil, fmt.Errorf("saving snapshot: %w", err)
	}

	return changes, nil
}
