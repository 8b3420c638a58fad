// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Display layouts. The defaults mirror en-US locale rendering.
var (
	DateLayout  = "1/2/2006, 3:04:05 PM"
	LabelLayout = "1/2/2006"
)

// InvalidDate is rendered for timestamps that cannot be parsed.
const InvalidDate = "Invalid Date"

// Unknown is rendered for values that are missing or not numeric.
const Unknown = "Unknown"

// SetLayouts overrides the display layouts. Empty values keep the current ones.
func SetLayouts(date, label string) {
	if date != "" {
		DateLayout = date
	}
	if label != "" {
		LabelLayout = label
	}
}

// Layouts carrying their own zone information.
var zonedLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	time.RFC1123Z,
	time.RFC1123,
}

// Naive layouts are read as local time, the way a browser does.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// ParseTimestamp parses an ISO-like timestamp. Date-only input is UTC.
func ParseTimestamp(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// FormatDate renders a timestamp for the summary view.
// Unparseable input yields InvalidDate.
func FormatDate(raw string) string {
	t, ok := ParseTimestamp(raw)
	if !ok {
		return InvalidDate
	}
	return t.Local().Format(DateLayout)
}

// FormatLabelDate renders a timestamp as a chart label. Unparseable input is
// returned unchanged so the axis still shows something meaningful.
func FormatLabelDate(raw string) string {
	t, ok := ParseTimestamp(raw)
	if !ok {
		if strings.TrimSpace(raw) == "" {
			return Unknown
		}
		return raw
	}
	return t.Local().Format(LabelLayout)
}

// FormatNumber groups the integer part of v with commas.
// e.g., 1234567 -> "1,234,567". NaN and infinities render as Unknown.
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Unknown
	}
	return humanize.Commaf(v)
}

// FormatCount adds comma separators to an integer count.
func FormatCount(n int64) string {
	return humanize.Comma(n)
}

// digitRun matches the first run of digits, allowing thousands separators
// between complete three-digit groups.
var digitRun = regexp.MustCompile(`\d{1,3}(?:,\d{3})+|\d+`)

var leadingDigits = regexp.MustCompile(`^\d+`)

// ExtractNumber pulls the first integer out of a loosely formatted value.
// e.g., "1,234 ACUs" -> 1234. Returns NaN when s holds no digits.
// Badly grouped input such as "12,3456" yields the leading run only.
func ExtractNumber(s string) float64 {
	loc := digitRun.FindStringIndex(s)
	if loc == nil {
		return math.NaN()
	}
	m := s[loc[0]:loc[1]]
	if loc[1] < len(s) && isDigit(s[loc[1]]) {
		m = leadingDigits.FindString(m)
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// CalculateRemaining returns limit - used, clamped at zero.
// NaN inputs propagate so the caller renders Unknown.
func CalculateRemaining(used, limit float64) float64 {
	return math.Max(0, limit-used)
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatDuration formats seconds into a human-readable duration.
// e.g., 3725 -> "1h 2m", 125 -> "2m", 45 -> "45s"
func FormatDuration(secs int64) string {
	if secs <= 0 {
		return "0s"
	}

	hours := secs / 3600
	mins := (secs % 3600) / 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	if mins > 0 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%ds", secs)
}
