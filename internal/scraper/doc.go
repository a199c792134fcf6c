// Package scraper provides HTTP fetching and HTML parsing for the MotoGP
// calendar.
//
// Two page structures are supported: the calendar listing, which yields one
// event.Entry per event block, and an event's detail page, which yields the
// raw rows of its schedule table. All CSS selectors come from
// config.Selectors so a layout change on the site is a config change.
package scraper
