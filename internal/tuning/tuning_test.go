package tuning

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if !reflect.DeepEqual(got, Defaults()) {
		t.Fatalf("expected defaults, got %+v", got)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	body := "roll_delay_ms: 50\nrescue:\n  max_attempts: 5\n  backoff_ms: [100, 200]\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.RollDelay() != 50*time.Millisecond {
		t.Fatalf("roll delay: %v", got.RollDelay())
	}
	// Untouched keys keep their defaults.
	if got.EndTurnDelayMs != Defaults().EndTurnDelayMs {
		t.Fatalf("end turn delay should stay default, got %d", got.EndTurnDelayMs)
	}
	rp := got.RescueRetry()
	if rp.MaxAttempts != 5 || len(rp.Backoff) != 2 || rp.Backoff[1] != 200*time.Millisecond {
		t.Fatalf("rescue retry: %+v", rp)
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("rescue:\n  max_attempts: 0\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("zero rescue attempts should be rejected")
	}
}
