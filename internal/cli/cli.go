package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pfrederiksen/motogp-ics/internal/config"
	"github.com/pfrederiksen/motogp-ics/internal/country"
	"github.com/pfrederiksen/motogp-ics/internal/logger"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
	ExitConfig  = 2
	ExitPartial = 3
)

// version is set at build time with -ldflags "-X ...cli.version=v1.2.3".
var version = "dev"

// ErrPartial is returned when a best-effort run skipped failed entries.
var ErrPartial = errors.New("some events could not be resolved")

type options struct {
	configPath   string
	sessions     string
	output       string
	calendarURL  string
	dataDir      string
	workers      int
	timeout      time.Duration
	bestEffort   bool
	fullDuration bool
	format       string
	logLevel     string
	verbose      bool
	quiet        bool
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "motogp-ics",
		Short: "Generate an iCalendar feed of MotoGP race weekends",
		Long: `Scrapes the MotoGP calendar, reads each event's session schedule and
writes one .ics event per race weekend, spanning the sessions of the
selected class plus a two hour buffer, with a reminder 30 minutes before
the first session.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(cmd.ErrOrStderr(), opts)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts)
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	f.StringVar(&opts.sessions, "sessions", "", "Session class prefix, e.g. MotoGP (env SESSIONS)")
	f.StringVarP(&opts.output, "output", "o", "", "Path of the .ics file to write (env OUTPUT)")
	f.StringVar(&opts.calendarURL, "calendar-url", config.DefaultCalendarURL, "Calendar page to scrape")
	f.StringVar(&opts.dataDir, "data-dir", "", "Directory for the run snapshot; enables change reporting")
	f.IntVar(&opts.workers, "workers", 1, "Number of detail pages fetched concurrently")
	f.DurationVar(&opts.timeout, "timeout", config.DefaultTimeout, "Per-request timeout")
	f.BoolVar(&opts.bestEffort, "best-effort", false, "Skip events that fail instead of aborting the run")
	f.BoolVar(&opts.fullDuration, "full-duration", false, "Use total elapsed time for multi-day events")
	f.StringVar(&opts.format, "format", string(FormatText), "Summary format: text or json")
	f.StringVar(&opts.logLevel, "log-level", "info", "Minimum log level: debug, info, warn or error")
	f.BoolVar(&opts.verbose, "verbose", false, "Enable debug logging (same as --log-level debug)")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress per-event progress output")

	cmd.AddCommand(newGenerateCmd(opts))
	cmd.AddCommand(newWatchCmd(opts))
	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newCountriesCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "motogp-ics %s\n", version)
			return err
		},
	}
}

// newCountriesCmd lists the country names the calendar may use. Any
// other name fails the run.
func newCountriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "countries",
		Short: "List the known countries and their flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			for _, name := range country.Names() {
				flag, err := country.Lookup(name)
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintf(w, "%s %s\n", flag, name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func setupLogging(w io.Writer, opts *options) error {
	level, err := logger.ParseLevel(opts.logLevel)
	if err != nil {
		return err
	}
	if opts.verbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, w))
	return nil
}

// loadConfig layers the YAML file, the environment and explicitly set
// flags, then validates the result.
func loadConfig(cmd *cobra.Command, opts *options, lookup func(string) (string, bool)) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("sessions") {
		cfg.Sessions = opts.sessions
	}
	if flags.Changed("output") {
		cfg.Output = opts.output
	}
	if flags.Changed("calendar-url") {
		cfg.CalendarURL = opts.calendarURL
	}
	if flags.Changed("data-dir") {
		cfg.DataDir = opts.dataDir
	}
	if flags.Changed("workers") {
		cfg.Workers = opts.workers
	}
	if flags.Changed("timeout") {
		cfg.Timeout = opts.timeout
	}
	if flags.Changed("best-effort") {
		cfg.BestEffort = opts.bestEffort
	}
	if flags.Changed("full-duration") {
		cfg.FullDuration = opts.fullDuration
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// exitCode maps an error returned by a command to a process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, config.ErrMissing):
		return ExitConfig
	case errors.Is(err, ErrPartial):
		return ExitPartial
	default:
		return ExitError
	}
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(exitCode(err))
}
