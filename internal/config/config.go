// Package config holds the settings for a calendar run. A Config is built
// once by the CLI from defaults, an optional YAML file, the environment and
// flags, then passed down explicitly.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultCalendarURL = "https://www.motogp.com/en/calendar"
	DefaultUserAgent   = "motogp-ics/1.0 (github.com/pfrederiksen/motogp-ics)"
	DefaultTimeout     = 30 * time.Second
)

// Environment variable names. SESSIONS and OUTPUT are the names used by
// existing cron deployments.
const (
	EnvSessions    = "SESSIONS"
	EnvOutput      = "OUTPUT"
	EnvCalendarURL = "MOTOGP_CALENDAR_URL"
	EnvDataDir     = "MOTOGP_DATA_DIR"
	EnvWorkers     = "MOTOGP_WORKERS"
)

// ErrMissing is returned by Validate when a required option is unset.
var ErrMissing = errors.New("missing required configuration")

// Selectors are the CSS selectors used against the calendar listing and
// the per-event detail page.
type Selectors struct {
	Entry        string `yaml:"entry"`
	Title        string `yaml:"title"`
	Location     string `yaml:"location"`
	ScheduleRow  string `yaml:"schedule_row"`
	Tier         string `yaml:"tier"`
	Cell         string `yaml:"cell"`
	Time         string `yaml:"time"`
	TimeAttr     string `yaml:"time_attr"`
	CategoryCell int    `yaml:"category_cell"`
}

// Config is the full set of options for one run.
type Config struct {
	// Sessions is the tier prefix used to select schedule rows and to
	// annotate event names.
	Sessions string `yaml:"sessions"`
	// Output is the path of the generated .ics file.
	Output string `yaml:"output"`

	CalendarURL string        `yaml:"calendar_url"`
	UserAgent   string        `yaml:"user_agent"`
	Timeout     time.Duration `yaml:"timeout"`

	// DataDir, when set, stores a snapshot of the last run for diffing.
	DataDir string `yaml:"data_dir"`

	Workers      int  `yaml:"workers"`
	BestEffort   bool `yaml:"best_effort"`
	FullDuration bool `yaml:"full_duration"`

	ReminderMinutes int `yaml:"reminder_minutes"`
	BufferMinutes   int `yaml:"buffer_minutes"`

	Selectors Selectors `yaml:"selectors"`
}

// DefaultSelectors match the motogp.com page structure.
func DefaultSelectors() Selectors {
	return Selectors{
		Entry:        "div.calendar_events div.event_container div.event",
		Title:        ".event_title a",
		Location:     ".location span",
		ScheduleRow:  ".c-schedule__table-row",
		Tier:         ".c-schedule__table-cell:nth-child(3) span.hidden-xs",
		Cell:         ".c-schedule__table-cell",
		Time:         ".c-schedule__time span",
		TimeAttr:     "data-ini-time",
		CategoryCell: 1,
	}
}

// DefaultConfig returns a Config with every optional field populated.
// Sessions and Output have no defaults.
func DefaultConfig() *Config {
	return &Config{
		CalendarURL:     DefaultCalendarURL,
		UserAgent:       DefaultUserAgent,
		Timeout:         DefaultTimeout,
		Workers:         1,
		ReminderMinutes: 30,
		BufferMinutes:   120,
		Selectors:       DefaultSelectors(),
	}
}

// Load reads a YAML file at path on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	p, err := expandPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides fields from environment variables that are set and
// non-empty. Values other than SESSIONS are trimmed. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) string {
		v, ok := lookup(key)
		if !ok {
			return ""
		}
		return strings.TrimSpace(v)
	}

	// The tier prefix is matched verbatim, surrounding spaces included.
	if v, ok := lookup(EnvSessions); ok && v != "" {
		c.Sessions = v
	}
	if v := get(EnvOutput); v != "" {
		c.Output = v
	}
	if v := get(EnvCalendarURL); v != "" {
		c.CalendarURL = v
	}
	if v := get(EnvDataDir); v != "" {
		c.DataDir = v
	}
	if v := get(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvWorkers, err)
		}
		c.Workers = n
	}

	return nil
}

// Validate checks required options and normalizes the rest.
func (c *Config) Validate() error {
	if c.Sessions == "" {
		return fmt.Errorf("%w: sessions (set %s or --sessions)", ErrMissing, EnvSessions)
	}
	if c.Output == "" {
		return fmt.Errorf("%w: output (set %s or --output)", ErrMissing, EnvOutput)
	}
	if c.CalendarURL == "" {
		return fmt.Errorf("%w: calendar_url", ErrMissing)
	}

	out, err := expandPath(c.Output)
	if err != nil {
		return err
	}
	c.Output = out

	if c.DataDir != "" {
		dir, err := expandPath(c.DataDir)
		if err != nil {
			return err
		}
		c.DataDir = dir
	}

	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.ReminderMinutes < 0 {
		return fmt.Errorf("reminder_minutes must not be negative, got %d", c.ReminderMinutes)
	}
	if c.BufferMinutes < 0 {
		return fmt.Errorf("buffer_minutes must not be negative, got %d", c.BufferMinutes)
	}

	return nil
}

// Reminder returns how long before the start the alarm fires.
func (c *Config) Reminder() time.Duration {
	return time.Duration(c.ReminderMinutes) * time.Minute
}

// Buffer returns the fixed time added to each event's duration.
func (c *Config) Buffer() time.Duration {
	return time.Duration(c.BufferMinutes) * time.Minute
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}
