package components

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/theirongolddev/acumon/internal/tui/theme"
)

func TestRenderStatusBarRelativeTime(t *testing.T) {
	theme.SetActive("flexoki-dark")
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	bar := RenderStatusBar(100, Status{
		Updated: now.Add(-3 * time.Minute),
		Now:     now,
	})
	if !strings.Contains(bar, "updated 3 minutes ago") {
		t.Errorf("status bar missing relative time: %q", bar)
	}
	if w := lipgloss.Width(bar); w != 100 {
		t.Errorf("width = %d, want 100", w)
	}
}

func TestRenderStatusBarStates(t *testing.T) {
	theme.SetActive("flexoki-dark")

	if bar := RenderStatusBar(80, Status{Refreshing: true}); !strings.Contains(bar, "refreshing") {
		t.Errorf("refreshing state missing: %q", bar)
	}
	if bar := RenderStatusBar(80, Status{Err: errors.New("x")}); !strings.Contains(bar, "fetch failed") {
		t.Errorf("error state missing: %q", bar)
	}
}

func TestTabBarAndKeys(t *testing.T) {
	theme.SetActive("flexoki-dark")

	bar := RenderTabBar(0, "acumon", 60)
	if w := lipgloss.Width(bar); w != 60 {
		t.Errorf("tab bar width = %d, want 60", w)
	}
	if !strings.Contains(bar, "Overview") || !strings.Contains(bar, "istory") {
		t.Errorf("tab bar missing tabs: %q", bar)
	}
	if TabIdxByKey('h') != 1 || TabIdxByKey('o') != 0 || TabIdxByKey('z') != -1 {
		t.Error("TabIdxByKey mismatch")
	}
}

func TestUtilization(t *testing.T) {
	if pct, ok := Utilization(50, 200); !ok || pct != 0.25 {
		t.Errorf("Utilization(50, 200) = %v, %v", pct, ok)
	}
	if pct, ok := Utilization(300, 200); !ok || pct != 1 {
		t.Errorf("over-limit utilization = %v, %v, want clamped to 1", pct, ok)
	}
	if _, ok := Utilization(5, 0); ok {
		t.Error("zero limit should not report utilization")
	}
}

func TestUsageBarWithoutLimit(t *testing.T) {
	theme.SetActive("flexoki-dark")
	if bar := UsageBar("Used", 5, 0, 6, 20); !strings.Contains(bar, "no limit reported") {
		t.Errorf("UsageBar without limit = %q", bar)
	}
	if bar := UsageBar("Used", 50, 100, 6, 20); !strings.Contains(bar, "50%") {
		t.Errorf("UsageBar = %q, want 50%%", bar)
	}
}

func TestRenderStatusBarInterval(t *testing.T) {
	theme.SetActive("flexoki-dark")

	bar := RenderStatusBar(100, Status{Interval: 5 * time.Minute})
	if !strings.Contains(bar, "every 5m") {
		t.Errorf("status bar missing refresh interval: %q", bar)
	}
}
