package components

import (
	"strings"
	"time"

	"github.com/theirongolddev/acumon/internal/cli"
	"github.com/theirongolddev/acumon/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// Status is what the status bar reports about the data.
type Status struct {
	Source     string    // backend URL
	Updated    time.Time // last applied result, zero if none
	Interval   time.Duration
	Refreshing bool
	Err        error
	Now        time.Time // reference for relative times, defaults to time.Now
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, st Status) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	errStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	left := base.Render(" ") +
		keyStyle.Render("[?]") + base.Render("help  ") +
		keyStyle.Render("[r]") + base.Render("efresh  ") +
		keyStyle.Render("[q]") + base.Render("uit")

	now := st.Now
	if now.IsZero() {
		now = time.Now()
	}

	var right string
	switch {
	case st.Refreshing:
		right = base.Render("refreshing... ")
	case st.Err != nil:
		right = errStyle.Render("fetch failed ")
	case !st.Updated.IsZero():
		right = base.Render("updated " + humanize.RelTime(st.Updated, now, "ago", "from now") + " ")
	}
	if st.Interval > 0 {
		right = dimStyle.Render("every "+cli.FormatDuration(int64(st.Interval.Seconds()))+" · ") + right
	}
	if st.Source != "" {
		right = dimStyle.Render(st.Source+" · ") + right
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		// Drop the source first when the terminal is narrow.
		right = strings.TrimSpace(right)
		padding = width - lipgloss.Width(left) - lipgloss.Width(right)
	}
	if padding < 0 {
		padding = 0
	}

	return left + base.Render(strings.Repeat(" ", padding)) + right
}
