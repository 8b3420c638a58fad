package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/theirongolddev/acumon/internal/applog"
	"github.com/theirongolddev/acumon/internal/model"
	"github.com/theirongolddev/acumon/internal/scraper"

	"github.com/spf13/cobra"
)

var (
	flagRecordUsed      string
	flagRecordLimit     string
	flagRecordAvailable string
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Append one snapshot to the backend store",
	Long: "Append a snapshot built from --used, --limit and --available, or read a JSON\n" +
		"object from stdin when no flags are given.",
	Example: `  acumon record --used "1,234" --limit 5000
  echo '{"session_name":"deploy","acus_used":12.5}' | acumon record`,
	RunE: runRecord,
}

func init() {
	recordCmd.Flags().StringVar(&flagRecordUsed, "used", "", "Credits used")
	recordCmd.Flags().StringVar(&flagRecordLimit, "limit", "", "Credit limit")
	recordCmd.Flags().StringVar(&flagRecordAvailable, "available", "", "Available ACUs")
	rootCmd.AddCommand(recordCmd)
}

func runRecord(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	raw, err := recordBody(os.Stdin)
	if err != nil {
		return err
	}

	log := applog.Console(os.Stderr, cfg.Log.Level)
	svc, cleanup, err := openBackend(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	id, err := svc.Record(raw)
	if err != nil {
		return fmt.Errorf("recording: %w", err)
	}

	fmt.Printf("  Recorded snapshot #%d\n", id)
	return nil
}

// recordBody builds the record from the flags, or reads it from in when no
// flag is set.
func recordBody(in io.Reader) (json.RawMessage, error) {
	if flagRecordUsed == "" && flagRecordLimit == "" && flagRecordAvailable == "" {
		data, err := io.ReadAll(in)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		if !json.Valid(data) {
			return nil, errors.New("stdin is not valid JSON")
		}
		return data, nil
	}

	snap := model.Snapshot{Timestamp: model.StringField(time.Now().Format(scraper.TimestampLayout))}
	if flagRecordUsed != "" {
		snap.CreditUsed = model.StringField(flagRecordUsed)
	}
	if flagRecordLimit != "" {
		snap.CreditLimit = model.StringField(flagRecordLimit)
	}
	if flagRecordAvailable != "" {
		snap.AvailableACUs = model.StringField(flagRecordAvailable)
	}
	return json.Marshal(snap)
}
