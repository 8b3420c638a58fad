package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/acumon/internal/cli"
	"github.com/theirongolddev/acumon/internal/dashboard"
	"github.com/theirongolddev/acumon/internal/tui/components"
	"github.com/theirongolddev/acumon/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// chartChrome is the number of lines around the plot rows: card border and
// title, legend, tooltip, Y title, X axis, X labels and X title.
const chartChrome = 9

func (a App) renderOverviewTab(cw, contentH int) string {
	t := theme.Active
	s := a.view.Summary
	var b strings.Builder
	used := 0

	// Row 1: summary cards
	cards := []components.Metric{
		{Label: "Available ACUs", Value: s.Available},
		{Label: "ACUs Used", Value: s.Used},
		{Label: "Credit Limit", Value: s.Limit},
		{Label: "Remaining", Value: s.Remaining},
		{Label: "Last Updated", Value: s.LastUpdated},
	}
	if row := components.MetricCardRow(cards, cw); row != "" {
		b.WriteString(row)
		b.WriteString("\n")
		used += lipgloss.Height(row)
	}

	// Row 2: utilization, when the backend reports used and limit
	if s.Used != "" && s.Limit != "" {
		inner := components.CardInnerWidth(cw)
		labelW := len("Credits")
		barW := inner - labelW - 6
		if barW < 10 {
			barW = 10
		}
		card := components.ContentCard("Utilization",
			components.UsageBar("Credits", cli.ExtractNumber(s.Used), cli.ExtractNumber(s.Limit), labelW, barW),
			cw)
		b.WriteString(card)
		b.WriteString("\n")
		used += lipgloss.Height(card)
	}

	// Row 3: usage chart
	chart := a.view.Chart()
	if chart == nil || chart.Len() == 0 {
		muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
		b.WriteString(components.ContentCard("Usage Over Time", muted.Render(dashboard.NoHistory), cw))
		return b.String()
	}

	plotH := contentH - used - chartChrome
	if plotH < minChartHeight {
		plotH = minChartHeight
	}

	title := fmt.Sprintf("Usage Over Time (%s sessions)", cli.FormatCount(int64(chart.Len())))
	b.WriteString(components.ContentCard(title, a.renderChart(chart, components.CardInnerWidth(cw), plotH), cw))
	return b.String()
}

// renderChart draws the persistent dashboard chart. The used series is
// shaded; other series are drawn as lines on top.
func (a App) renderChart(chart *dashboard.Chart, width, plotH int) string {
	t := theme.Active

	series := make([]components.ChartSeries, 0, len(chart.Series))
	for i, s := range chart.Series {
		series = append(series, components.ChartSeries{
			Name:   s.Name,
			Values: s.Data,
			Color:  t.SeriesColor(i),
			Fill:   chart.Config.Fill && s.Name == dashboard.SeriesUsed,
		})
	}

	return components.AreaChart(chart.Labels, series, components.AreaChartOpts{
		Width:  width,
		Height: plotH,
		XTitle: chart.Config.XTitle,
		YTitle: chart.Config.YTitle,
		Cursor: a.cursor,
	})
}
