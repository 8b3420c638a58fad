package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/acumon/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	peak := values[0]
	for _, v := range values[1:] {
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		peak = 1
	}

	style := lipgloss.NewStyle().Foreground(color).Background(t.Surface)

	var buf strings.Builder
	buf.Grow(len(values) * 4) // UTF-8 block chars are up to 3 bytes
	for _, v := range values {
		idx := int(v / peak * float64(len(blocks)-1))
		if idx >= len(blocks) {
			idx = len(blocks) - 1
		}
		if idx < 0 {
			idx = 0
		}
		buf.WriteRune(blocks[idx]) //nolint:gosec // bounds checked above
	}

	return style.Render(buf.String())
}

// ChartSeries is one line of an AreaChart.
type ChartSeries struct {
	Name   string
	Values []float64 // parallel to the chart labels
	Color  lipgloss.Color
	Fill   bool // shade the area under the line
}

// AreaChartOpts controls AreaChart layout.
type AreaChartOpts struct {
	Width  int
	Height int // plot rows, excluding legend and axes
	XTitle string
	YTitle string
	Cursor int // highlighted point index, -1 for none
}

// AreaChart renders a line chart with optional filled areas, a top legend,
// axis titles and a shared tooltip for the point under the cursor. The Y axis
// always starts at zero.
func AreaChart(labels []string, series []ChartSeries, o AreaChartOpts) string {
	n := len(labels)
	if n == 0 || len(series) == 0 {
		return ""
	}
	if o.Width < 20 || o.Height < 3 {
		return Sparkline(series[0].Values, series[0].Color)
	}

	t := theme.Active
	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	blank := lipgloss.NewStyle().Background(t.Surface)

	maxVal := 0.0
	for _, s := range series {
		for _, v := range s.Values {
			if v > maxVal {
				maxVal = v
			}
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}

	// Y-axis: compute tick step and ceiling
	tickStep := chartTickStep(maxVal)
	maxIntervals := o.Height / 2
	if maxIntervals < 2 {
		maxIntervals = 2
	}
	for {
		k := int(math.Ceil(maxVal / tickStep))
		if k <= maxIntervals {
			break
		}
		tickStep *= 2
	}
	ceiling := math.Ceil(maxVal/tickStep) * tickStep
	numIntervals := int(math.Round(ceiling / tickStep))
	if numIntervals < 1 {
		numIntervals = 1
	}
	rowsPerTick := o.Height / numIntervals
	if rowsPerTick < 1 {
		rowsPerTick = 1
	}
	chartH := rowsPerTick * numIntervals

	yLabelW := len(formatChartLabel(ceiling)) + 1
	if yLabelW < 4 {
		yLabelW = 4
	}
	tickLabels := make(map[int]string)
	for i := 1; i <= numIntervals; i++ {
		tickLabels[i*rowsPerTick] = formatChartLabel(tickStep * float64(i))
	}

	plotW := o.Width - yLabelW - 1
	if plotW < 5 {
		plotW = 5
	}

	grid := plotSeries(series, ceiling, chartH, plotW)

	cursorX := -1
	if o.Cursor >= 0 && o.Cursor < n {
		cursorX = pointX(o.Cursor, n, plotW)
	}

	var b strings.Builder

	// Legend
	for i, s := range series {
		if i > 0 {
			b.WriteString(blank.Render("  "))
		}
		b.WriteString(lipgloss.NewStyle().Foreground(s.Color).Background(t.Surface).Render("■ "))
		b.WriteString(mutedStyle.Render(s.Name))
	}
	b.WriteString("\n")

	// Shared tooltip for the cursor index
	if cursorX >= 0 {
		b.WriteString(renderTooltip(labels[o.Cursor], series, o.Cursor, o.Width))
		b.WriteString("\n")
	}

	if o.YTitle != "" {
		b.WriteString(axisStyle.Render(o.YTitle))
		b.WriteString("\n")
	}

	cursorStyle := lipgloss.NewStyle().Foreground(t.BorderAccent).Background(t.Surface)
	for row := chartH; row >= 1; row-- {
		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, tickLabels[row])))
		b.WriteString(axisStyle.Render("│"))

		cells := grid[row-1]
		x := 0
		for x < plotW {
			c := cells[x]
			if x == cursorX && c.ch == ' ' {
				b.WriteString(cursorStyle.Render("┊"))
				x++
				continue
			}
			// Group runs of identical cells into one styled segment.
			end := x + 1
			for end < plotW && cells[end] == c && end != cursorX {
				end++
			}
			run := strings.Repeat(string(c.ch), end-x)
			if c.ch == ' ' {
				b.WriteString(blank.Render(run))
			} else {
				b.WriteString(lipgloss.NewStyle().Foreground(c.color).Background(t.Surface).Render(run))
			}
			x = end
		}
		b.WriteString("\n")
	}

	// X-axis line with 0 label
	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, "0")))
	b.WriteString(axisStyle.Render("└"))
	b.WriteString(axisStyle.Render(strings.Repeat("─", plotW)))

	// X-axis labels
	b.WriteString("\n")
	b.WriteString(blank.Render(strings.Repeat(" ", yLabelW+1)))
	b.WriteString(axisStyle.Render(strings.TrimRight(placeLabels(labels, plotW), " ")))

	if o.XTitle != "" {
		b.WriteString("\n")
		pad := yLabelW + 1 + (plotW-lipgloss.Width(o.XTitle))/2
		if pad < 0 {
			pad = 0
		}
		b.WriteString(blank.Render(strings.Repeat(" ", pad)))
		b.WriteString(axisStyle.Render(o.XTitle))
	}

	return b.String()
}

type plotCell struct {
	ch    rune
	color lipgloss.Color
}

// plotSeries rasterizes every series into chartH rows of plotW cells, row 0
// at the bottom. Later series draw over earlier ones.
func plotSeries(series []ChartSeries, ceiling float64, chartH, plotW int) [][]plotCell {
	grid := make([][]plotCell, chartH)
	for r := range grid {
		grid[r] = make([]plotCell, plotW)
		for x := range grid[r] {
			grid[r][x] = plotCell{ch: ' '}
		}
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	for _, s := range series {
		if len(s.Values) == 0 {
			continue
		}
		for x := 0; x < plotW; x++ {
			v := sampleAt(s.Values, x, plotW)
			level := v / ceiling * float64(chartH)
			if level <= 0 {
				continue
			}
			if level > float64(chartH) {
				level = float64(chartH)
			}
			top := int(math.Ceil(level)) - 1
			frac := level - float64(top)

			if s.Fill {
				for r := 0; r < top; r++ {
					grid[r][x] = plotCell{ch: '░', color: s.Color}
				}
				idx := int(frac*float64(len(blocks))) - 1
				if idx < 0 {
					idx = 0
				}
				if idx >= len(blocks) {
					idx = len(blocks) - 1
				}
				grid[top][x] = plotCell{ch: blocks[idx], color: s.Color}
				continue
			}

			ch := '─'
			if frac < 0.5 {
				ch = '_'
			}
			grid[top][x] = plotCell{ch: ch, color: s.Color}
		}
	}
	return grid
}

// sampleAt linearly interpolates values at plot column x.
func sampleAt(values []float64, x, plotW int) float64 {
	n := len(values)
	if n == 1 || plotW <= 1 {
		return values[0]
	}
	pos := float64(x) * float64(n-1) / float64(plotW-1)
	i := int(pos)
	if i >= n-1 {
		return values[n-1]
	}
	f := pos - float64(i)
	return values[i]*(1-f) + values[i+1]*f
}

// pointX maps a point index to its plot column.
func pointX(i, n, plotW int) int {
	if n <= 1 {
		return 0
	}
	return int(math.Round(float64(i) * float64(plotW-1) / float64(n-1)))
}

// placeLabels lays X labels over plotW columns, skipping any that would
// collide with the previous one. The last label is always attempted.
func placeLabels(labels []string, plotW int) string {
	n := len(labels)
	buf := []rune(strings.Repeat(" ", plotW))

	put := func(i, lastEnd int) int {
		lbl := []rune(labels[i])
		pos := pointX(i, n, plotW) - len(lbl)/2
		if pos < 0 {
			pos = 0
		}
		if pos+len(lbl) > plotW {
			pos = plotW - len(lbl)
		}
		if pos < 0 || pos <= lastEnd {
			return lastEnd
		}
		copy(buf[pos:], lbl)
		return pos + len(lbl)
	}

	lastEnd := -1
	for i := 0; i < n-1; i++ {
		// Leave room for the final label.
		if n > 1 {
			last := []rune(labels[n-1])
			if pointX(i, n, plotW)+len([]rune(labels[i])) >= plotW-len(last)-1 {
				break
			}
		}
		lastEnd = put(i, lastEnd)
	}
	put(n-1, lastEnd)

	return string(buf)
}

// renderTooltip renders the index-mode tooltip: the label and every series
// value at that index.
func renderTooltip(label string, series []ChartSeries, idx, width int) string {
	t := theme.Active
	labelStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover).Bold(true)
	textStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.SurfaceHover)

	out := labelStyle.Render(" " + label + " ")
	for _, s := range series {
		if idx >= len(s.Values) {
			continue
		}
		swatch := lipgloss.NewStyle().Foreground(s.Color).Background(t.SurfaceHover).Render("■")
		out += swatch + textStyle.Render(fmt.Sprintf(" %s: %s ", s.Name, formatTooltipValue(s.Values[idx])))
	}
	if lipgloss.Width(out) > width {
		out = lipgloss.NewStyle().MaxWidth(width).Render(out)
	}
	return out
}

func formatTooltipValue(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

// chartTickStep computes a nice tick interval targeting ~5 ticks.
func chartTickStep(maxVal float64) float64 {
	if maxVal <= 0 {
		return 1
	}
	rough := maxVal / 5
	exp := math.Floor(math.Log10(rough))
	base := math.Pow(10, exp)
	frac := rough / base

	switch {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

func formatChartLabel(v float64) string {
	switch {
	case v >= 1e9:
		if v == math.Trunc(v/1e9)*1e9 {
			return fmt.Sprintf("%.0fB", v/1e9)
		}
		return fmt.Sprintf("%.1fB", v/1e9)
	case v >= 1e6:
		if v == math.Trunc(v/1e6)*1e6 {
			return fmt.Sprintf("%.0fM", v/1e6)
		}
		return fmt.Sprintf("%.1fM", v/1e6)
	case v >= 1e3:
		if v == math.Trunc(v/1e3)*1e3 {
			return fmt.Sprintf("%.0fk", v/1e3)
		}
		return fmt.Sprintf("%.1fk", v/1e3)
	case v >= 1:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
