package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/acumon/internal/cli"
	"github.com/theirongolddev/acumon/internal/dashboard"
	"github.com/theirongolddev/acumon/internal/tui/components"
	"github.com/theirongolddev/acumon/internal/tui/theme"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// historyChrome is the number of content lines the history card spends
// outside the table body: border, title, sparkline and header.
const historyChrome = 6

func newHistoryTable() table.Model {
	t := theme.Active

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(t.Border).
		BorderBottom(true).
		Foreground(t.Accent).
		Bold(true)
	styles.Cell = styles.Cell.Foreground(t.TextPrimary)
	styles.Selected = styles.Selected.
		Foreground(t.TextPrimary).
		Background(t.SurfaceHover).
		Bold(false)

	return table.New(
		table.WithColumns(historyColumns(80)),
		table.WithStyles(styles),
		table.WithHeight(10),
	)
}

// historyColumns splits width across the history columns, giving the
// session name the most room.
func historyColumns(width int) []table.Column {
	// Each cell carries one column of padding on both sides.
	avail := width - 2*len(dashboard.HistoryColumns)
	if avail < 30 {
		avail = 30
	}
	created := 22
	used := 12
	session := avail - created - used
	if session < 10 {
		session = 10
	}
	widths := []int{session, created, used}

	cols := make([]table.Column, len(dashboard.HistoryColumns))
	for i, title := range dashboard.HistoryColumns {
		cols[i] = table.Column{Title: title, Width: widths[i]}
	}
	return cols
}

// syncTable copies the view's history rows into the table. The spanning
// placeholder row is rendered separately, so it leaves the table empty.
func (a *App) syncTable() {
	if historyPlaceholder(a.view.Rows) != "" {
		a.table.SetRows(nil)
		return
	}
	rows := make([]table.Row, len(a.view.Rows))
	for i, r := range a.view.Rows {
		rows[i] = table.Row(r)
	}
	a.table.SetRows(rows)
	if len(rows) > 0 && a.table.Cursor() >= len(rows) {
		a.table.SetCursor(len(rows) - 1)
	}
}

func (a *App) resizeTable() {
	cw := a.contentWidth()
	a.table.SetColumns(historyColumns(components.CardInnerWidth(cw)))
	a.table.SetWidth(components.CardInnerWidth(cw))

	h := a.height - 2 - historyChrome // tab bar and status bar
	if h < 3 {
		h = 3
	}
	a.table.SetHeight(h)
}

// historyPlaceholder returns the text of a single spanning row, or "".
func historyPlaceholder(rows [][]string) string {
	if len(rows) == 1 && len(rows[0]) == 1 {
		return rows[0][0]
	}
	return ""
}

func (a App) renderHistoryTab(cw int) string {
	t := theme.Active

	if text := historyPlaceholder(a.view.Rows); text != "" {
		muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
		return components.ContentCard("Usage History", muted.Render(text), cw)
	}

	var b strings.Builder

	// Per-session usage trend in table order.
	values := make([]float64, 0, len(a.view.Records))
	for _, r := range a.view.Records {
		n := cli.ExtractNumber(r.Used().Text())
		if math.IsNaN(n) {
			n = 0
		}
		values = append(values, n)
	}
	if len(values) > 0 {
		inner := components.CardInnerWidth(cw)
		if len(values) > inner {
			values = values[len(values)-inner:]
		}
		b.WriteString(components.Sparkline(values, t.SeriesColor(0)))
		b.WriteString("\n")
	}

	b.WriteString(a.table.View())

	title := fmt.Sprintf("Usage History (%s sessions)", cli.FormatCount(int64(len(a.view.Rows))))
	return components.ContentCard(title, b.String(), cw)
}
