package cli

import (
	"math"
	"testing"
	"time"
)

func TestExtractNumber(t *testing.T) {
	cases := map[string]float64{
		"1234 ACUs":     1234,
		"1,234 ACUs":    1234,
		"ACUs: 42":      42,
		"12.5 ACUs":     12,
		"1,23 ACUs":     1,
		"1,234,567":     1234567,
		"used 7 of 100": 7,
		"12,3456":       12,
		"1,2345 ACUs":   1,
		"1,234,5678":    1,
		"1,234,567 x 9": 1234567,
	}
	for in, want := range cases {
		if got := ExtractNumber(in); got != want {
			t.Errorf("ExtractNumber(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestExtractNumber_NoDigits(t *testing.T) {
	for _, in := range []string{"No digits here", "", "   "} {
		if got := ExtractNumber(in); !math.IsNaN(got) {
			t.Errorf("ExtractNumber(%q) = %v, want NaN", in, got)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{500, "500"},
		{1234, "1,234"},
		{1234567, "1,234,567"},
		{-9876, "-9,876"},
		{1234.5, "1,234.5"},
	}
	for _, c := range cases {
		if got := FormatNumber(c.in); got != c.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatNumber_NaN(t *testing.T) {
	if got := FormatNumber(math.NaN()); got != "Unknown" {
		t.Fatalf("FormatNumber(NaN) = %q, want Unknown", got)
	}
	if got := FormatNumber(math.Inf(1)); got != "Unknown" {
		t.Fatalf("FormatNumber(+Inf) = %q, want Unknown", got)
	}
}

func TestCalculateRemaining(t *testing.T) {
	if got := CalculateRemaining(150, 100); got != 0 {
		t.Errorf("CalculateRemaining(150, 100) = %v, want 0", got)
	}
	if got := CalculateRemaining(40, 100); got != 60 {
		t.Errorf("CalculateRemaining(40, 100) = %v, want 60", got)
	}
	if got := CalculateRemaining(math.NaN(), 100); !math.IsNaN(got) {
		t.Errorf("CalculateRemaining(NaN, 100) = %v, want NaN", got)
	}
}

func TestFormatDate(t *testing.T) {
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Local().Format(DateLayout)
	if got := FormatDate("2024-01-01T00:00:00Z"); got != want {
		t.Fatalf("FormatDate = %q, want %q", got, want)
	}
}

func TestFormatDate_NaiveIsLocal(t *testing.T) {
	want := time.Date(2024, 3, 5, 14, 30, 0, 0, time.Local).Format(DateLayout)
	if got := FormatDate("2024-03-05T14:30:00.123456"); got != want {
		t.Fatalf("FormatDate(naive) = %q, want %q", got, want)
	}
}

func TestFormatDate_Invalid(t *testing.T) {
	for _, in := range []string{"", "yesterday", "2024-13-45"} {
		if got := FormatDate(in); got != InvalidDate {
			t.Errorf("FormatDate(%q) = %q, want %q", in, got, InvalidDate)
		}
	}
}

func TestFormatLabelDate(t *testing.T) {
	want := time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC).Local().Format(LabelLayout)
	if got := FormatLabelDate("2024-02-10T12:00:00Z"); got != want {
		t.Errorf("FormatLabelDate = %q, want %q", got, want)
	}
	if got := FormatLabelDate("session-7"); got != "session-7" {
		t.Errorf("unparseable label should fall back to raw, got %q", got)
	}
	if got := FormatLabelDate(""); got != "Unknown" {
		t.Errorf("empty label = %q, want Unknown", got)
	}
}

func TestFormatDuration(t *testing.T) {
	if got := FormatDuration(300); got != "5m" {
		t.Errorf("FormatDuration(300) = %q, want 5m", got)
	}
	if got := FormatDuration(3725); got != "1h 2m" {
		t.Errorf("FormatDuration(3725) = %q, want 1h 2m", got)
	}
}

func TestFormatCountAndPercent(t *testing.T) {
	if got := FormatCount(1234); got != "1,234" {
		t.Errorf("FormatCount(1234) = %q, want 1,234", got)
	}
	if got := FormatPercent(0.255); got != "25.5%" {
		t.Errorf("FormatPercent(0.255) = %q, want 25.5%%", got)
	}
}
