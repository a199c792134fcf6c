// Package event turns a calendar-page entry into a finished event record.
//
// The Builder combines the entry's title and location with the session
// window resolved from the entry's detail page. Entries whose title marks a
// private test are skipped. Records are identified by a name-based UUID
// derived from their detail URL, so identical input always yields identical
// records.
package event
