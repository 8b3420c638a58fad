package cmd

import "testing"

func TestUtilization(t *testing.T) {
	if pct, ok := utilization("1,250", "5,000"); !ok || pct != 0.25 {
		t.Errorf("utilization = %v, %v, want 0.25", pct, ok)
	}
	for _, c := range [][2]string{{"Unknown", "5,000"}, {"10", "0"}, {"10", ""}} {
		if _, ok := utilization(c[0], c[1]); ok {
			t.Errorf("utilization(%q, %q) should not be known", c[0], c[1])
		}
	}
}
