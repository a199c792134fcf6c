// Package schedule reduces the session rows scraped from an event's detail
// page to a single time window.
//
// Everything in this package is pure: rows are fetched elsewhere and passed
// in, so the filter and resolver can be tested without a network.
package schedule
