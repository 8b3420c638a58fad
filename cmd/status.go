package cmd

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/theirongolddev/acumon/internal/cli"
	"github.com/theirongolddev/acumon/internal/dashboard"
	"github.com/theirongolddev/acumon/internal/devin"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Fetch current credit usage once and print it",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client := devin.NewClient(cfg.API.BaseURL, devin.Options{
		LatestPath:  cfg.API.LatestPath,
		HistoryPath: cfg.API.HistoryPath,
		Timeout:     cfg.Timeout(),
	})

	progress("Fetching credit data from %s...", client.BaseURL())

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*cfg.Timeout())
	defer cancel()

	view := dashboard.NewView()
	snap, latestErr := client.Latest(ctx)
	view.ApplyLatest(dashboard.LatestResult{Seq: 1, At: time.Now(), Snapshot: snap, Err: latestErr})
	records, historyErr := client.History(ctx)
	view.ApplyHistory(dashboard.HistoryResult{Seq: 1, At: time.Now(), Records: records, Err: historyErr})

	if latestErr != nil && historyErr != nil {
		return fmt.Errorf("fetch failed: %w", errors.Join(latestErr, historyErr))
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("ACU CREDIT STATUS"))
	fmt.Println()

	s := view.Summary
	rows := [][]string{}
	for _, r := range [][2]string{
		{"Available ACUs", s.Available},
		{"ACUs Used", s.Used},
		{"Credit Limit", s.Limit},
		{"Remaining", s.Remaining},
		{"Last Updated", s.LastUpdated},
	} {
		if r[1] != "" {
			rows = append(rows, []string{r[0], r[1]})
		}
	}
	if pct, ok := utilization(s.Used, s.Limit); ok {
		rows = append(rows, []string{"Utilization", cli.FormatPercent(pct)})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Current Usage",
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Usage History (%s sessions)", cli.FormatCount(int64(len(view.Records)))),
		Headers: dashboard.HistoryColumns,
		Rows:    view.Rows,
	}))

	if len(view.Records) > 1 {
		values := make([]float64, len(view.Records))
		for i, r := range view.Records {
			if n := cli.ExtractNumber(r.Used().Text()); !math.IsNaN(n) {
				values[i] = n
			}
		}
		fmt.Printf("  Trend  %s\n\n", cli.RenderSparkline(values))
	}

	// Partial error warning
	if err := errors.Join(latestErr, historyErr); err != nil {
		warnStyle := lipgloss.NewStyle().Foreground(cli.ColorOrange)
		fmt.Printf("  %s\n\n", warnStyle.Render(fmt.Sprintf("Partial data: %s", err)))
	}

	fmt.Printf("  Fetched at %s\n\n", time.Now().Format("3:04:05 PM"))
	return nil
}

// utilization returns used/limit for the summary texts, when both are known
// and the limit is positive.
func utilization(used, limit string) (float64, bool) {
	u, l := cli.ExtractNumber(used), cli.ExtractNumber(limit)
	if math.IsNaN(u) || math.IsNaN(l) || l <= 0 {
		return 0, false
	}
	return u / l, true
}
