package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/pfrederiksen/motogp-ics/internal/config"
	"github.com/pfrederiksen/motogp-ics/internal/logger"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

// DefaultWatchSchedule regenerates the calendar every six hours.
const DefaultWatchSchedule = "0 */6 * * *"

func newWatchCmd(opts *options) *cobra.Command {
	var (
		schedule  string
		skipFirst bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate the .ics file on a cron schedule",
		Long: `Runs generate on a standard five-field cron schedule until interrupted.
A failed run is logged and leaves the previous calendar file in place.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts, os.LookupEnv)
			if err != nil {
				return err
			}

			progress := cmd.OutOrStdout()
			if opts.quiet {
				progress = io.Discard
			}

			return watch(cmd.Context(), cfg, schedule, !skipFirst, progress)
		},
	}

	cmd.Flags().StringVar(&schedule, "schedule", DefaultWatchSchedule, "Cron schedule (minute hour dom month dow)")
	cmd.Flags().BoolVar(&skipFirst, "skip-first", false, "Wait for the first scheduled time instead of running immediately")

	return cmd
}

// watch runs generate on the cron schedule until ctx is done. Overlapping runs are
// skipped rather than queued.
func watch(ctx context.Context, cfg *config.Config, spec string, runNow bool, progress io.Writer) error {
	var mu sync.Mutex
	runOnce := func() {
		if !mu.TryLock() {
			logger.Warn("Previous run still in progress, skipping", nil)
			return
		}
		defer mu.Unlock()

		if _, err := generate(ctx, cfg, progress); err != nil {
			logger.Error("Calendar run failed", logger.Fields{"output": cfg.Output}, err)
		}
	}

	c := cron.New()
	id, err := c.AddFunc(spec, runOnce)
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	if runNow {
		runOnce()
	}

	c.Start()
	logger.Info("Watching", logger.Fields{"schedule": spec, "next": c.Entry(id).Next.String()})

	<-ctx.Done()
	<-c.Stop().Done()
	logger.Info("Stopped watching", nil)

	return nil
}
