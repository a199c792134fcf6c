package country

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknown is returned when a country name has no flag entry.
var ErrUnknown = errors.New("unknown country")

// regionalIndicatorOffset shifts 'A'..'Z' onto U+1F1E6..U+1F1FF.
const regionalIndicatorOffset = 0x1F1E6 - 'A'

var flags = map[string]string{
	"ARGENTINA":      Flag("AR"),
	"AUSTRALIA":      Flag("AU"),
	"AUSTRIA":        Flag("AT"),
	"BRAZIL":         Flag("BR"),
	"CZECH REPUBLIC": Flag("CZ"),
	"CZECHIA":        Flag("CZ"),
	"FINLAND":        Flag("FI"),
	"FRANCE":         Flag("FR"),
	"GERMANY":        Flag("DE"),
	"GREAT BRITAIN":  Flag("GB"),
	"HUNGARY":        Flag("HU"),
	"INDIA":          Flag("IN"),
	"INDONESIA":      Flag("ID"),
	"ITALY":          Flag("IT"),
	"JAPAN":          Flag("JP"),
	"KAZAKHSTAN":     Flag("KZ"),
	"MALAYSIA":       Flag("MY"),
	"NETHERLANDS":    Flag("NL"),
	"PORTUGAL":       Flag("PT"),
	"QATAR":          Flag("QA"),
	"SAN MARINO":     Flag("SM"),
	"SPAIN":          Flag("ES"),
	"THAILAND":       Flag("TH"),
	"UNITED STATES":  Flag("US"),
}

// Flag builds the two-codepoint flag for an ISO 3166-1 alpha-2 code.
// The code must be two uppercase ASCII letters.
func Flag(code string) string {
	return string([]rune{
		rune(code[0]) + regionalIndicatorOffset,
		rune(code[1]) + regionalIndicatorOffset,
	})
}

// Lookup returns the flag for an exact, uppercase country name.
func Lookup(name string) (string, error) {
	flag, ok := flags[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	return flag, nil
}

// Names returns every known country name in sorted order.
func Names() []string {
	names := make([]string, 0, len(flags))
	for name := range flags {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
