// Package normalize turns raw source-of-truth values into canonical CRM
// field values. All functions are pure.
package normalize

import (
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var intPrinter = message.NewPrinter(language.English)

// Phone reduces a raw phone value to its canonical form: "+" followed by
// every digit present in the input, in order. Returns "" when the input
// contains no digit at all.
//
// The reduction is lossy on purpose: a leading zero and an explicit
// country code canonicalize differently, so numbers are expected to be
// normalized upstream. Any digit string is accepted.
func Phone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return "+" + b.String()
}

// Text trims the value and treats the case-insensitive literal "N/A" as
// empty.
func Text(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.EqualFold(s, "N/A") {
		return ""
	}
	return s
}

// Parenthesized extracts the label between the first "(" and the last ")"
// of the text, trimmed. When the extracted label is empty it falls back to
// the whole trimmed text; when no such pair exists the text is returned
// unchanged.
func Parenthesized(raw string) string {
	open := strings.Index(raw, "(")
	if open < 0 {
		return raw
	}
	close := strings.LastIndex(raw, ")")
	if close <= open {
		return raw
	}
	inner := strings.TrimSpace(raw[open+1 : close])
	if inner == "" {
		return strings.TrimSpace(raw)
	}
	return inner
}

// EmailLocalPart returns the substring before the first "@" when present
// and non-empty, else the text unchanged.
func EmailLocalPart(raw string) string {
	at := strings.Index(raw, "@")
	if at <= 0 {
		return raw
	}
	return raw[:at]
}

// Integer formats n truncated toward zero with en-US thousands grouping.
// Non-finite input formats as "0".
func Integer(n float64) string {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return "0"
	}
	return intPrinter.Sprintf("%d", int64(math.Trunc(n)))
}

// HoursToHM renders decimal hours as "<H>h <M>m", rounded to the nearest
// minute. Non-positive or non-finite input yields "0h 0m".
func HoursToHM(hours float64) string {
	if math.IsNaN(hours) || math.IsInf(hours, 0) || hours <= 0 {
		return "0h 0m"
	}
	totalMinutes := int64(math.Round(hours * 60))
	return fmt.Sprintf("%dh %dm", totalMinutes/60, totalMinutes%60)
}

// DayMonth renders a timestamp as "<day><ordinal> <3-letter month>" using
// UTC calendar fields, e.g. "3rd Jan". The zero time yields "".
func DayMonth(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	utc := t.UTC()
	day := utc.Day()
	return fmt.Sprintf("%d%s %s", day, ordinalSuffix(day), utc.Month().String()[:3])
}

// ordinalSuffix returns the English ordinal suffix for a day of month:
// 11-13 take "th"; otherwise the last digit decides.
func ordinalSuffix(day int) string {
	if day%100 >= 11 && day%100 <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}
