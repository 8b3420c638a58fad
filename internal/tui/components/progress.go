package components

import (
	"fmt"
	"math"

	"github.com/theirongolddev/acumon/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ColorForPct returns green/yellow/orange/red based on utilization level.
func ColorForPct(pct float64) string {
	t := theme.Active
	switch {
	case pct >= 0.9:
		return string(t.Red)
	case pct >= 0.7:
		return string(t.Orange)
	case pct >= 0.5:
		return string(t.Yellow)
	default:
		return string(t.Green)
	}
}

// Utilization returns used/limit clamped to [0, 1]. ok is false when either
// value is unknown or the limit is not positive.
func Utilization(used, limit float64) (pct float64, ok bool) {
	if math.IsNaN(used) || math.IsNaN(limit) || limit <= 0 {
		return 0, false
	}
	pct = used / limit
	if pct < 0 {
		pct = 0
	}
	if pct > 1 {
		pct = 1
	}
	return pct, true
}

// UsageBar renders a labeled credit utilization bar with percentage.
func UsageBar(label string, used, limit float64, labelW, barWidth int) string {
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	pct, ok := Utilization(used, limit)
	if !ok {
		dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
		return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) +
			spaceStyle.Render(" ") +
			dimStyle.Render("no limit reported")
	}

	bar := progress.New(
		progress.WithSolidFill(ColorForPct(pct)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	pctStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorForPct(pct))).Background(t.Surface).Bold(true)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) +
		spaceStyle.Render(" ") +
		bar.ViewAs(pct) +
		spaceStyle.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%3.0f%%", pct*100))
}
