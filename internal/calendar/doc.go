// Package calendar assembles event records from scraped calendar entries
// and serializes them as an iCalendar (.ics) file.
//
// Assembly is strict by default: the first failing entry aborts the run
// and nothing is returned. With PolicyBestEffort failures are collected in
// the Report and the remaining entries are still built.
package calendar
