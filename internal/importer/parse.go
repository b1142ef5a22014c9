package importer

// parse.go provides locale-aware value parsing for raw export cells.
//
// Parse failures never propagate: unparsable input degrades to a default
// value (0.0 for numbers, absent for timestamps) with a warning logged, so
// a malformed cell can never fail a row on its own.

import (
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in priority order; the first match wins. The export
// mixes month-first and day-first slash dates with ISO dashed timestamps.
var dateLayouts = []string{
	"1/2/2006 15:04",
	"1/2/2006",
	"2/1/2006 15:04",
	"2/1/2006",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseFloat parses a numeric cell under the Indonesian convention: "." is
// the thousands separator and "," the decimal separator, so "100.000,5"
// means 100000.5. This is a fixed assumption of the one marketplace locale
// this importer targets; no other convention is supported.
//
// Empty input yields 0.0 silently; unparsable input yields 0.0 with a
// warning.
func ParseFloat(s string) float64 {
	if s == "" {
		return 0.0
	}

	cleaned := strings.ReplaceAll(s, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		slog.Warn("invalid numeric value", "value", s)
		return 0.0
	}
	return v
}

// ParseDateTime parses a timestamp cell into a naive time. The second
// return value is false when the timestamp is absent: either the cell was
// empty (no warning) or no layout matched (warning logged).
func ParseDateTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	// ISO-8601 fallback: accept an offset but strip it, keeping the literal
	// wall-clock components.
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(),
			t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC), true
	}

	slog.Warn("unable to parse date", "value", s)
	return time.Time{}, false
}

// dateField converts a parsed timestamp into a store field value, mapping
// the absent sentinel to nil.
func dateField(s string) any {
	t, ok := ParseDateTime(s)
	if !ok {
		return nil
	}
	return t
}
