package tui

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/acumon/internal/dashboard"
	"github.com/theirongolddev/acumon/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

type countingRefresher struct{ calls int }

func (r *countingRefresher) Refresh(context.Context) { r.calls++ }

func newTestApp(t *testing.T) (App, *countingRefresher) {
	t.Helper()
	r := &countingRefresher{}
	a := NewApp(context.Background(), Options{
		Refresher: r,
		Source:    "http://localhost:5000",
		Interval:  5 * time.Minute,
	})
	m, _ := a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m.(App), r
}

func records(t *testing.T, raw string) []model.HistoryRecord {
	t.Helper()
	var recs []model.HistoryRecord
	if err := json.Unmarshal([]byte(raw), &recs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return recs
}

func snapshot(t *testing.T, raw string) *model.Snapshot {
	t.Helper()
	var s model.Snapshot
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return &s
}

func send(a App, msg tea.Msg) App {
	m, _ := a.Update(msg)
	return m.(App)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

const threeRecords = `[
	{"session_name":"b","created_at":"2024-01-02T00:00:00Z","acus_used":20},
	{"session_name":"a","created_at":"2024-01-01T00:00:00Z","acus_used":10},
	{"session_name":"c","created_at":"2024-01-03T00:00:00Z","acus_used":30}
]`

func TestAppLoadingUntilFirstResult(t *testing.T) {
	a, _ := newTestApp(t)
	if !strings.Contains(a.View(), dashboard.Loading) {
		t.Fatal("expected loading view before any result")
	}

	a = send(a, dashboard.LatestResult{Seq: 1, At: time.Now(), Snapshot: snapshot(t, `{"available_acus":"500 ACUs"}`)})
	out := a.View()
	if strings.Contains(out, dashboard.Loading) {
		t.Fatal("loading view still shown after a result")
	}
	if !strings.Contains(out, "Available ACUs") || !strings.Contains(out, "500") {
		t.Fatalf("overview missing available card:\n%s", out)
	}
}

func TestAppHistoryTabShowsRowsInInputOrder(t *testing.T) {
	a, _ := newTestApp(t)
	a = send(a, dashboard.HistoryResult{Seq: 1, At: time.Now(), Records: records(t, threeRecords)})
	a = send(a, key("h"))

	if a.activeTab != tabHistory {
		t.Fatalf("activeTab = %d, want history", a.activeTab)
	}
	rows := a.table.Rows()
	if len(rows) != 3 {
		t.Fatalf("table rows = %d, want 3", len(rows))
	}
	if rows[0][0] != "b" || rows[1][0] != "a" || rows[2][0] != "c" {
		t.Errorf("table order = %v, want input order b,a,c", rows)
	}

	out := a.View()
	if !strings.Contains(out, "Session") || !strings.Contains(out, "ACUs Used") {
		t.Errorf("history view missing headers:\n%s", out)
	}
	if !strings.Contains(out, "Usage History (3 sessions)") {
		t.Errorf("history view missing session count:\n%s", out)
	}
}

func TestAppHistoryPlaceholder(t *testing.T) {
	a, _ := newTestApp(t)
	a = send(a, dashboard.HistoryResult{Seq: 1, At: time.Now(), Records: nil})
	a = send(a, key("h"))

	if n := len(a.table.Rows()); n != 0 {
		t.Errorf("placeholder should leave the table empty, got %d rows", n)
	}
	if !strings.Contains(a.View(), dashboard.NoHistory) {
		t.Error("history tab should show the no-history placeholder")
	}
}

func TestAppRefreshKey(t *testing.T) {
	a, r := newTestApp(t)
	a = send(a, dashboard.LatestResult{Seq: 1, At: time.Now(), Snapshot: snapshot(t, `{}`)})

	m, cmd := a.Update(key("r"))
	a = m.(App)
	if !a.refreshing {
		t.Fatal("refreshing should be set after r")
	}
	if cmd == nil {
		t.Fatal("expected a refresh command")
	}
	cmd()
	if r.calls != 1 {
		t.Fatalf("Refresh calls = %d, want 1", r.calls)
	}

	// A second press while outstanding does nothing.
	if _, cmd := a.Update(key("r")); cmd != nil {
		t.Error("second refresh should be ignored while one is outstanding")
	}

	a = send(a, dashboard.LatestResult{Seq: 2, At: time.Now(), Snapshot: snapshot(t, `{}`)})
	if a.refreshing {
		t.Error("refreshing should clear when a result arrives")
	}
}

func TestAppFetchErrorShowsErrorCards(t *testing.T) {
	a, _ := newTestApp(t)
	a = send(a, dashboard.LatestResult{Seq: 1, Err: errors.New("boom")})

	out := a.View()
	if !strings.Contains(out, dashboard.ErrorText) {
		t.Error("summary cards should show Error")
	}
	if !strings.Contains(out, "fetch failed") {
		t.Error("status bar should report the failure")
	}
}

func TestAppChartCursor(t *testing.T) {
	a, _ := newTestApp(t)
	a = send(a, dashboard.HistoryResult{Seq: 1, At: time.Now(), Records: records(t, threeRecords)})

	if a.cursor != -1 {
		t.Fatalf("cursor = %d, want -1 before any move", a.cursor)
	}
	a = send(a, key("left"))
	if a.cursor != 2 {
		t.Fatalf("first move should land on newest point, got %d", a.cursor)
	}
	a = send(a, key("left"))
	a = send(a, key("left"))
	a = send(a, key("left"))
	if a.cursor != 0 {
		t.Fatalf("cursor = %d, want clamped to 0", a.cursor)
	}

	// Tooltip shows the label and value of the selected point.
	if out := a.View(); !strings.Contains(out, "ACUs Used: 10") {
		t.Errorf("tooltip missing selected value:\n%s", out)
	}

	// Shrinking history clamps the cursor.
	a = send(a, key("right"))
	a = send(a, key("right"))
	a = send(a, dashboard.HistoryResult{Seq: 2, At: time.Now(), Records: records(t, `[{"created_at":"2024-01-01T00:00:00Z","acus_used":1}]`)})
	if a.cursor != 0 {
		t.Errorf("cursor = %d after shrink, want 0", a.cursor)
	}
}

func TestAppStaleResultIgnored(t *testing.T) {
	a, _ := newTestApp(t)
	a = send(a, dashboard.LatestResult{Seq: 2, At: time.Now(), Snapshot: snapshot(t, `{"available_acus":"7"}`)})
	a = send(a, dashboard.LatestResult{Seq: 1, At: time.Now(), Snapshot: snapshot(t, `{"available_acus":"9"}`)})
	if a.view.Summary.Available != "7" {
		t.Fatalf("Available = %q, stale result should be dropped", a.view.Summary.Available)
	}
}

func TestAppTabSwitching(t *testing.T) {
	a, _ := newTestApp(t)
	a = send(a, dashboard.LatestResult{Seq: 1, At: time.Now(), Snapshot: snapshot(t, `{}`)})

	a = send(a, key("tab"))
	if a.activeTab != tabHistory {
		t.Fatalf("tab should move to history, got %d", a.activeTab)
	}
	a = send(a, key("o"))
	if a.activeTab != tabOverview {
		t.Fatalf("o should jump to overview, got %d", a.activeTab)
	}

	a = send(a, tea.MouseMsg{X: 12, Y: 0, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	if a.activeTab != tabHistory {
		t.Fatalf("click on History should switch tabs, got %d", a.activeTab)
	}
}

func TestAppHelpToggle(t *testing.T) {
	a, _ := newTestApp(t)
	a = send(a, dashboard.LatestResult{Seq: 1, At: time.Now(), Snapshot: snapshot(t, `{}`)})

	a = send(a, key("?"))
	if !strings.Contains(a.View(), "Keyboard Shortcuts") {
		t.Fatal("help overlay not shown")
	}
	a = send(a, key("x"))
	if a.showHelp {
		t.Fatal("any key should close help")
	}
}

func TestAppTooNarrow(t *testing.T) {
	a, _ := newTestApp(t)
	a = send(a, tea.WindowSizeMsg{Width: 40, Height: 20})
	if !strings.Contains(a.View(), "too narrow") {
		t.Fatal("expected too-narrow message")
	}
}
