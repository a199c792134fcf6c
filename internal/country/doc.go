// Package country maps the country names printed on the MotoGP calendar
// page to their Unicode regional-indicator flags.
package country
