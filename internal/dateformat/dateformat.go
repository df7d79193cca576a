// Package dateformat renders dates with the note-store's journal title tokens.
package dateformat

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// DefaultFormat is used when the note-store does not report a preference.
const DefaultFormat = "MMM do, yyyy"

// Alternatives are ordered longest first within each token class so that
// MMMM is never read as MMM + M. E{1,4} is greedy and EE has no renderer.
var tokenRe = regexp.MustCompile(`yyyy|MMMM|MMM|MM|E{1,4}|dd|do`)

var renderers = map[string]func(time.Time) string{
	"yyyy": func(t time.Time) string { return strconv.Itoa(t.Year()) },
	"MMMM": func(t time.Time) string { return t.Month().String() },
	"MMM":  func(t time.Time) string { return t.Month().String()[:3] },
	"MM":   func(t time.Time) string { return fmt.Sprintf("%02d", int(t.Month())) },
	"EEEE": func(t time.Time) string { return t.Weekday().String() },
	"EEE":  func(t time.Time) string { return t.Weekday().String()[:3] },
	"E":    func(t time.Time) string { return t.Weekday().String()[:3] },
	"dd":   func(t time.Time) string { return fmt.Sprintf("%02d", t.Day()) },
	"do":   func(t time.Time) string { return Ordinal(t.Day()) },
}

// Format renders t according to layout. Unrecognised text passes through.
func Format(t time.Time, layout string) string {
	return tokenRe.ReplaceAllStringFunc(layout, func(tok string) string {
		if r, ok := renderers[tok]; ok {
			return r(t)
		}
		return tok
	})
}

// Ordinal returns n with its English ordinal suffix (1st, 2nd, 11th, 23rd).
func Ordinal(n int) string {
	suffix := "th"
	switch v := n % 100; {
	case v >= 11 && v <= 13:
	case v%10 == 1:
		suffix = "st"
	case v%10 == 2:
		suffix = "nd"
	case v%10 == 3:
		suffix = "rd"
	}
	return strconv.Itoa(n) + suffix
}
