package dashboard

// ChartConfig is the fixed visual configuration of the usage chart.
type ChartConfig struct {
	Kind        string  // "line"
	Fill        bool    // shade the area under each series
	Tension     float64 // curve smoothing, 0 for straight segments
	BeginAtZero bool
	XTitle      string
	YTitle      string
	Legend      string // legend position
	Tooltip     string // "index": one tooltip shows every series at the cursor
}

// UsageChartConfig is the configuration every usage chart is created with.
var UsageChartConfig = ChartConfig{
	Kind:        "line",
	Fill:        true,
	Tension:     0.4,
	BeginAtZero: true,
	XTitle:      "Date",
	YTitle:      "ACUs Used",
	Legend:      "top",
	Tooltip:     "index",
}

// Series names.
const (
	SeriesUsed  = "ACUs Used"
	SeriesLimit = "Credit Limit"
)

// Series is one named line on the chart, parallel to Chart.Labels.
type Series struct {
	Name string
	Data []float64
}

// Chart is the persistent chart state. It is created once, on the first
// non-empty history, and mutated in place on every later refresh.
type Chart struct {
	Config ChartConfig
	Labels []string
	Series []Series

	revision int
}

func newChart(labels []string, series []Series) *Chart {
	c := &Chart{Config: UsageChartConfig}
	c.update(labels, series)
	return c
}

// update replaces labels and data without reallocating the chart. Series
// are matched by name so the backing arrays are reused across refreshes.
func (c *Chart) update(labels []string, series []Series) {
	c.Labels = append(c.Labels[:0], labels...)

	kept := make([]Series, 0, len(series))
	for _, s := range series {
		var dst *Series
		for i := range c.Series {
			if c.Series[i].Name == s.Name {
				dst = &c.Series[i]
				break
			}
		}
		if dst == nil {
			kept = append(kept, Series{Name: s.Name, Data: append([]float64(nil), s.Data...)})
			continue
		}
		dst.Data = append(dst.Data[:0], s.Data...)
		kept = append(kept, *dst)
	}
	c.Series = kept
	c.revision++
}

// Revision counts the updates applied since the chart was created.
func (c *Chart) Revision() int {
	return c.revision
}

// Len returns the number of points on the X axis.
func (c *Chart) Len() int {
	return len(c.Labels)
}

// Find returns the named series, or nil.
func (c *Chart) Find(name string) *Series {
	for i := range c.Series {
		if c.Series[i].Name == name {
			return &c.Series[i]
		}
	}
	return nil
}
