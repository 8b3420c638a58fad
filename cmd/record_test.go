package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/theirongolddev/acumon/internal/model"
)

func TestRecordBodyFromFlags(t *testing.T) {
	flagRecordUsed, flagRecordLimit, flagRecordAvailable = "1,234", "5000", ""
	t.Cleanup(func() { flagRecordUsed, flagRecordLimit = "", "" })

	raw, err := recordBody(strings.NewReader("ignored"))
	if err != nil {
		t.Fatalf("recordBody: %v", err)
	}
	var snap model.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if snap.CreditUsed.Text() != "1,234" || snap.CreditLimit.Text() != "5000" {
		t.Errorf("snapshot = %s", raw)
	}
	if snap.AvailableACUs.Present() {
		t.Error("available_acus should be omitted when not given")
	}
	if !snap.Timestamp.Present() {
		t.Error("timestamp should be set")
	}
}

func TestRecordBodyFromStdin(t *testing.T) {
	raw, err := recordBody(strings.NewReader(`{"session_name":"deploy","acus_used":12.5}`))
	if err != nil {
		t.Fatalf("recordBody: %v", err)
	}
	if !strings.Contains(string(raw), "deploy") {
		t.Errorf("body = %s", raw)
	}

	if _, err := recordBody(strings.NewReader("not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestMaskSecret(t *testing.T) {
	cases := map[string]string{
		"":                 "not configured",
		"short":            "****",
		"hunter2-but-long": "hu...ng",
	}
	for in, want := range cases {
		if got := maskSecret(in); got != want {
			t.Errorf("maskSecret(%q) = %q, want %q", in, got, want)
		}
	}
}
