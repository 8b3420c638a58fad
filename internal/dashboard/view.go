// Package dashboard holds the display state of the credit dashboard and the
// scheduler that keeps it fresh. Renderers read a View; only the consumer of
// fetch results writes to it.
package dashboard

import (
	"math"
	"sort"
	"time"

	"github.com/theirongolddev/acumon/internal/cli"
	"github.com/theirongolddev/acumon/internal/model"
)

// Region literals.
const (
	Loading   = "Loading..."
	NoData    = "No data"
	Never     = "Never"
	ErrorText = "Error"
	NoHistory = "No history data available"
)

// HistoryColumns are the history table headers.
var HistoryColumns = []string{"Session", "Created At", "ACUs Used"}

// Summary holds the text of each summary region. An empty string means the
// region does not apply to the connected backend and should be hidden.
type Summary struct {
	Available   string
	Used        string
	Limit       string
	Remaining   string
	LastUpdated string
}

// View is the full display state.
type View struct {
	Summary Summary

	// Rows is the history table body. A single-cell row spans every column.
	Rows [][]string

	// Records is the latest history in table order, kept for sparklines
	// and the chart tooltip.
	Records []model.HistoryRecord

	LatestAt  time.Time // when the last latest result was applied
	HistoryAt time.Time // when the last successful history was applied
	LastErr   error     // most recent fetch error, cleared on success

	chart *Chart
	seq   [numKinds]uint64
}

// NewView returns a view in its pre-fetch state.
func NewView() *View {
	return &View{
		Summary: Summary{
			Available:   Loading,
			LastUpdated: Loading,
		},
		Rows: [][]string{{Loading}},
	}
}

// Chart returns the chart, or nil before the first non-empty history.
func (v *View) Chart() *Chart {
	return v.chart
}

// Pending reports whether no result of either kind has arrived yet.
func (v *View) Pending() bool {
	return v.seq[KindLatest] == 0 && v.seq[KindHistory] == 0 && v.LastErr == nil
}

// UpdateCurrentUsage renders a snapshot into the summary regions.
func (v *View) UpdateCurrentUsage(snap *model.Snapshot) {
	if snap.Empty() {
		v.Summary = Summary{
			Available:   NoData,
			Used:        NoData,
			Limit:       NoData,
			Remaining:   NoData,
			LastUpdated: Never,
		}
		return
	}

	var s Summary
	hasUsed, hasLimit := snap.CreditUsed.Present(), snap.CreditLimit.Present()
	used := cli.ExtractNumber(snap.CreditUsed.Text())
	limit := cli.ExtractNumber(snap.CreditLimit.Text())
	remaining := math.NaN()
	if hasUsed && hasLimit {
		remaining = cli.CalculateRemaining(used, limit)
	}

	if hasUsed || hasLimit {
		s.Used = cli.FormatNumber(used)
		s.Limit = cli.FormatNumber(limit)
		s.Remaining = cli.FormatNumber(remaining)
	}

	switch {
	case snap.AvailableACUs.Present():
		s.Available = cli.FormatNumber(cli.ExtractNumber(snap.AvailableACUs.Text()))
	default:
		s.Available = cli.FormatNumber(remaining)
	}

	s.LastUpdated = cli.FormatDate(snap.Timestamp.Text())
	v.Summary = s
}

// SetSummaryError marks every summary value region as failed. The
// last-updated region keeps its previous text.
func (v *View) SetSummaryError() {
	v.Summary.Available = ErrorText
	v.Summary.Used = ErrorText
	v.Summary.Limit = ErrorText
	v.Summary.Remaining = ErrorText
}

// UpdateHistoryTable rebuilds the table body in input order.
func (v *View) UpdateHistoryTable(records []model.HistoryRecord) {
	v.Rows = v.Rows[:0]
	if len(records) == 0 {
		v.Rows = append(v.Rows, []string{NoHistory})
		return
	}
	for _, r := range records {
		v.Rows = append(v.Rows, []string{
			cellText(r.SessionName),
			cellText(r.CreatedAt()),
			cellText(r.Used()),
		})
	}
}

func cellText(f model.Field) string {
	if t := f.Text(); t != "" {
		return t
	}
	return cli.Unknown
}

// UpdateUsageChart sorts records by creation time, in place, and feeds them
// to the chart. The chart is created on first use and mutated afterwards.
// Empty input leaves the chart untouched.
func (v *View) UpdateUsageChart(records []model.HistoryRecord) {
	if len(records) == 0 {
		return
	}

	SortByCreated(records)

	labels := make([]string, len(records))
	used := make([]float64, len(records))
	limits := make([]float64, len(records))
	hasLimit := false
	for i, r := range records {
		labels[i] = cli.FormatLabelDate(r.CreatedAt().Text())
		used[i] = numberOrZero(r.Used())
		if r.Limit().Present() {
			hasLimit = true
		}
		limits[i] = numberOrZero(r.Limit())
	}

	series := []Series{{Name: SeriesUsed, Data: used}}
	if hasLimit {
		series = append(series, Series{Name: SeriesLimit, Data: limits})
	}

	if v.chart == nil {
		v.chart = newChart(labels, series)
		return
	}
	v.chart.update(labels, series)
}

// SortByCreated stable-sorts records ascending by parsed creation time.
// Records whose time does not parse sort first.
func SortByCreated(records []model.HistoryRecord) {
	type keyed struct {
		at  time.Time
		rec model.HistoryRecord
	}
	ks := make([]keyed, len(records))
	for i, r := range records {
		t, _ := cli.ParseTimestamp(r.CreatedAt().Text())
		ks[i] = keyed{at: t, rec: r}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		return ks[i].at.Before(ks[j].at)
	})
	for i := range ks {
		records[i] = ks[i].rec
	}
}

func numberOrZero(f model.Field) float64 {
	n := cli.ExtractNumber(f.Text())
	if math.IsNaN(n) {
		return 0
	}
	return n
}

// ApplyLatest applies a latest-snapshot result. Results older than the last
// applied one are dropped; it reports whether r was applied.
func (v *View) ApplyLatest(r LatestResult) bool {
	if r.Seq <= v.seq[KindLatest] {
		return false
	}
	v.seq[KindLatest] = r.Seq

	if r.Err != nil {
		v.LastErr = r.Err
		v.SetSummaryError()
		return true
	}
	v.LastErr = nil
	v.LatestAt = r.At
	v.UpdateCurrentUsage(r.Snapshot)
	return true
}

// ApplyHistory applies a history result. A failed fetch leaves the table and
// chart at their last good state.
func (v *View) ApplyHistory(r HistoryResult) bool {
	if r.Seq <= v.seq[KindHistory] {
		return false
	}
	if r.Err != nil {
		v.LastErr = r.Err
		return true
	}
	v.seq[KindHistory] = r.Seq
	v.LastErr = nil
	v.HistoryAt = r.At

	v.UpdateHistoryTable(r.Records)
	v.Records = append(v.Records[:0], r.Records...)
	v.UpdateUsageChart(r.Records)
	return true
}
