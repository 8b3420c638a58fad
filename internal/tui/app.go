// Package tui provides the interactive Bubble Tea dashboard for acumon.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/acumon/internal/dashboard"
	"github.com/theirongolddev/acumon/internal/tui/components"
	"github.com/theirongolddev/acumon/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Refresher triggers an out-of-band fetch of both endpoints. Results come
// back to the program as dashboard.LatestResult and dashboard.HistoryResult
// messages.
type Refresher interface {
	Refresh(ctx context.Context)
}

// Options configures a new App.
type Options struct {
	View      *dashboard.View
	Refresher Refresher
	Source    string // backend URL shown in the status bar
	Interval  time.Duration
}

// App is the root Bubble Tea model.
type App struct {
	// Data
	view      *dashboard.View
	refresher Refresher
	ctx       context.Context

	// Refresh state
	source     string
	interval   time.Duration
	refreshing bool
	now        time.Time

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	cursor    int // chart point under the tooltip, -1 for none

	spinner spinner.Model
	table   table.Model
}

const (
	minTerminalWidth = 60
	maxContentWidth  = 160

	minContentHeight = 5
	minChartHeight   = 3

	tabOverview = 0
	tabHistory  = 1
)

// NewApp creates a new TUI app model. ctx bounds the fetches started by
// manual refreshes.
func NewApp(ctx context.Context, o Options) App {
	view := o.View
	if view == nil {
		view = dashboard.NewView()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	a := App{
		view:      view,
		refresher: o.Refresher,
		ctx:       ctx,
		source:    o.Source,
		interval:  o.Interval,
		now:       time.Now(),
		cursor:    -1,
		spinner:   sp,
		table:     newHistoryTable(),
	}
	a.syncTable()
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		a.spinner.Tick,
		tickCmd(),
	)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resizeTable()
		return a, nil

	case dashboard.LatestResult, dashboard.HistoryResult:
		// A tooltip on the newest point follows it across refreshes.
		follow := a.cursor >= 0 && a.cursor == a.chartLen()-1
		if a.view.Apply(msg) {
			a.refreshing = false
			a.syncTable()
			if follow {
				a.cursor = a.chartLen() - 1
			}
			a.clampCursor()
		}
		return a, nil

	case tea.MouseMsg:
		if a.view.Pending() || a.showHelp {
			return a, nil
		}
		return a.updateMouse(msg)

	case tea.KeyMsg:
		return a.updateKey(msg)

	case spinner.TickMsg:
		if a.view.Pending() {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		a.now = time.Time(msg)
		return a, tickCmd()
	}

	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" || key == "q" {
		return a, tea.Quit
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	if key == "r" {
		cmd := a.refreshCmd()
		return a, cmd
	}

	switch key {
	case "tab":
		a.setTab((a.activeTab + 1) % len(components.Tabs))
		return a, nil
	case "shift+tab":
		a.setTab((a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs))
		return a, nil
	}
	if len(msg.Runes) == 1 {
		if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
			a.setTab(idx)
			return a, nil
		}
	}

	switch a.activeTab {
	case tabOverview:
		switch key {
		case "left":
			a.moveCursor(-1)
		case "right":
			a.moveCursor(1)
		case "home":
			a.moveCursor(-a.chartLen())
		case "end":
			a.moveCursor(a.chartLen())
		case "esc":
			a.cursor = -1
		}
		return a, nil

	case tabHistory:
		var cmd tea.Cmd
		a.table, cmd = a.table.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if a.activeTab == tabHistory {
			a.table.MoveUp(1)
		}
	case tea.MouseButtonWheelDown:
		if a.activeTab == tabHistory {
			a.table.MoveDown(1)
		}
	case tea.MouseButtonLeft:
		// The tab bar is the first line.
		if msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.setTab(tab)
			}
		}
	}
	return a, nil
}

// refreshCmd starts a manual refresh unless one is already outstanding.
func (a *App) refreshCmd() tea.Cmd {
	if a.refreshing || a.refresher == nil {
		return nil
	}
	a.refreshing = true
	r, ctx := a.refresher, a.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return func() tea.Msg {
		r.Refresh(ctx)
		return nil
	}
}

func (a *App) setTab(idx int) {
	a.activeTab = idx
	if idx == tabHistory {
		a.table.Focus()
	} else {
		a.table.Blur()
	}
}

func (a App) chartLen() int {
	if c := a.view.Chart(); c != nil {
		return c.Len()
	}
	return 0
}

// moveCursor moves the chart tooltip by delta points. The first move from
// no selection lands on the newest point.
func (a *App) moveCursor(delta int) {
	n := a.chartLen()
	if n == 0 {
		a.cursor = -1
		return
	}
	if a.cursor < 0 {
		a.cursor = n - 1
		return
	}
	a.cursor += delta
	if a.cursor < 0 {
		a.cursor = 0
	}
	a.clampCursor()
}

// clampCursor keeps the tooltip on an existing point after the chart
// shrinks.
func (a *App) clampCursor() {
	if a.cursor < 0 {
		return
	}
	n := a.chartLen()
	switch {
	case n == 0:
		a.cursor = -1
	case a.cursor >= n:
		a.cursor = n - 1
	}
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

// lastUpdated is when the most recent successful result was applied.
func (a App) lastUpdated() time.Time {
	if a.view.HistoryAt.After(a.view.LatestAt) {
		return a.view.HistoryAt
	}
	return a.view.LatestAt
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}

	if a.view.Pending() {
		return a.viewLoading()
	}

	if a.showHelp {
		return a.viewHelp()
	}

	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}

	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  acumon needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)

	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)

	logoStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Surface).
		Bold(true)

	subtitleStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ acumon"))
	b.WriteString(subtitleStyle.Render(" · ACU Credit Monitor"))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())
	b.WriteString(subtitleStyle.Render(" " + dashboard.Loading))
	if a.source != "" {
		b.WriteString("\n")
		b.WriteString(subtitleStyle.Render(a.source))
	}

	card := cardStyle.Render(b.String())

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Surface).
		Bold(true)

	sectionStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface).
		Bold(true)

	keyStyle := lipgloss.NewStyle().
		Foreground(t.Cyan).
		Background(t.Surface).
		Bold(true)

	descStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)

	dimStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"o h", "Jump to tab"},
			{"Tab", "Next tab"},
			{"← →", "Move chart tooltip"},
			{"j k", "Scroll history"},
		}},
		{"Actions", []struct{ key, desc string }{
			{"r", "Refresh now"},
			{"Esc", "Hide tooltip"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}
	for i, sec := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	card := cardStyle.Render(b.String())

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, "◈ acumon", w)

	statusBar := components.RenderStatusBar(w, components.Status{
		Source:     a.source,
		Updated:    a.lastUpdated(),
		Interval:   a.interval,
		Refreshing: a.refreshing,
		Err:        a.view.LastErr,
		Now:        a.now,
	})

	headerH := lipgloss.Height(header)
	statusH := lipgloss.Height(statusBar)
	contentH := h - headerH - statusH
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	var content string
	switch a.activeTab {
	case tabOverview:
		content = a.renderOverviewTab(cw, contentH)
	case tabHistory:
		content = a.renderHistoryTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)

	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Helpers ────────────────────────────────────────────────────

type tickMsg time.Time

// tickCmd drives relative times in the status bar.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	padding := strings.Repeat("\n", h-len(lines))
	return s + padding
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		placed := lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
		result.WriteString(placed)
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)

		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW

		// Separator is one column between tabs.
		if i < len(components.Tabs)-1 {
			pos++
		}
	}
	return -1
}
