package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/theirongolddev/acumon/internal/applog"
	"github.com/theirongolddev/acumon/internal/dashboard"
	"github.com/theirongolddev/acumon/internal/devin"
	"github.com/theirongolddev/acumon/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// First run: offer the setup form before the dashboard takes the screen.
	if !configExists() && isTerminal(os.Stdin) && flagBaseURL == "" {
		if err := runSetupForm(); err != nil {
			return err
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, closeLog := openTUILog(cfg.LogPath(), cfg.Log.Level, os.Stderr)
	defer closeLog()

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	client := devin.NewClient(cfg.API.BaseURL, devin.Options{
		LatestPath:  cfg.API.LatestPath,
		HistoryPath: cfg.API.HistoryPath,
		Timeout:     cfg.Timeout(),
	})

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// The scheduler starts after the program exists, so p is set before the
	// first emit.
	var p *tea.Program
	sched := dashboard.NewScheduler(client, cfg.Interval(), func(msg any) { p.Send(msg) }, log)

	app := tui.NewApp(ctx, tui.Options{
		Refresher: sched,
		Source:    client.BaseURL(),
		Interval:  sched.Interval(),
	})
	p = tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	done := make(chan struct{})
	go func() {
		defer close(done)
		sched.Run(ctx)
	}()

	log.Info().Str("base_url", client.BaseURL()).Dur("interval", sched.Interval()).Msg("dashboard started")

	_, runErr := p.Run()
	cancel()
	<-done

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI error: %w", runErr)
	}
	return nil
}

// openTUILog opens the dashboard log file. The alt screen hides stderr once
// the program starts, so a failure is reported on w first and logging is
// turned off.
func openTUILog(path, level string, w io.Writer) (zerolog.Logger, func()) {
	log, closer, err := applog.File(path, level)
	if err != nil {
		fmt.Fprintf(w, "  logging disabled: %v\n", err)
		return zerolog.Nop(), func() {}
	}
	return log, func() { _ = closer.Close() }
}
