package model

import (
	"regexp"
	"strings"
	"time"
)

// ISODate is the layout of normalized event dates.
const ISODate = "2006-01-02"

var (
	isoDateRe   = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)
	longLayouts = []string{"January 2, 2006", "Jan 2, 2006"}
)

// NormalizeDate rewrites a source date string to YYYY-MM-DD. An embedded ISO
// date wins, then "January 2, 2006" and "Jan 2, 2006"; anything else is
// returned unchanged.
func NormalizeDate(s string) string {
	if m := isoDateRe.FindStringSubmatch(s); m != nil {
		return m[1] + "-" + m[2] + "-" + m[3]
	}
	trimmed := strings.TrimSpace(s)
	for _, layout := range append(longLayouts, ISODate) {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format(ISODate)
		}
	}
	return s
}

// ParseDate parses a normalized or source date. The first ten characters are
// tried as ISO before the long month layouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if len(s) >= len(ISODate) {
		if t, err := time.Parse(ISODate, s[:len(ISODate)]); err == nil {
			return t, true
		}
	}
	for _, layout := range longLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
