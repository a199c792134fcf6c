// Package cli implements the command-line interface for motogp-ics.
//
// The root command (and its "generate" alias) scrapes the MotoGP calendar,
// resolves every event's session window and writes a single .ics file.
// "watch" repeats that on a cron schedule. Options come from an optional
// YAML file, the SESSIONS/OUTPUT environment variables and flags, in
// increasing order of precedence.
package cli
