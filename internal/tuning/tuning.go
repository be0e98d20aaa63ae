// Package tuning loads operator-adjustable timing knobs from yaml. Everything
// here has a sane default; a missing file is not an error.
package tuning

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"tycoon.gg/internal/auto"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	// Automation pacing.
	RollDelayMs    int `yaml:"roll_delay_ms"`
	EndTurnDelayMs int `yaml:"end_turn_delay_ms"`
	DedupeVersions int `yaml:"dedupe_versions"`

	Rescue Rescue `yaml:"rescue"`

	// Session transport.
	ReconnectMinMs  int `yaml:"reconnect_min_ms"`
	ReconnectMaxMs  int `yaml:"reconnect_max_ms"`
	WriteTimeoutMs  int `yaml:"write_timeout_ms"`
	PingIntervalSec int `yaml:"ping_interval_sec"`
}

type Rescue struct {
	MaxAttempts int   `yaml:"max_attempts"`
	BackoffMs   []int `yaml:"backoff_ms"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion: "1.0",
		RollDelayMs:     400,
		EndTurnDelayMs:  600,
		DedupeVersions:  8,
		Rescue: Rescue{
			MaxAttempts: 3,
			BackoffMs:   []int{500, 1000, 1500},
		},
		ReconnectMinMs:  500,
		ReconnectMaxMs:  15000,
		WriteTimeoutMs:  5000,
		PingIntervalSec: 20,
	}
}

// Load reads the file over the defaults. A missing file returns defaults
// unchanged so a bare checkout runs without configuration.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) validate() error {
	if t.RollDelayMs < 0 || t.EndTurnDelayMs < 0 {
		return fmt.Errorf("delays must be non-negative")
	}
	if t.Rescue.MaxAttempts < 1 {
		return fmt.Errorf("rescue.max_attempts must be at least 1")
	}
	if t.ReconnectMinMs > t.ReconnectMaxMs {
		return fmt.Errorf("reconnect_min_ms exceeds reconnect_max_ms")
	}
	return nil
}

func (t Tuning) RollDelay() time.Duration    { return time.Duration(t.RollDelayMs) * time.Millisecond }
func (t Tuning) EndTurnDelay() time.Duration { return time.Duration(t.EndTurnDelayMs) * time.Millisecond }
func (t Tuning) ReconnectMin() time.Duration { return time.Duration(t.ReconnectMinMs) * time.Millisecond }
func (t Tuning) ReconnectMax() time.Duration { return time.Duration(t.ReconnectMaxMs) * time.Millisecond }
func (t Tuning) WriteTimeout() time.Duration { return time.Duration(t.WriteTimeoutMs) * time.Millisecond }
func (t Tuning) PingInterval() time.Duration { return time.Duration(t.PingIntervalSec) * time.Second }

// RescueRetry converts the yaml schedule into the engine's retry policy.
func (t Tuning) RescueRetry() auto.RetryPolicy {
	backoff := make([]time.Duration, 0, len(t.Rescue.BackoffMs))
	for _, ms := range t.Rescue.BackoffMs {
		backoff = append(backoff, time.Duration(ms)*time.Millisecond)
	}
	return auto.RetryPolicy{MaxAttempts: t.Rescue.MaxAttempts, Backoff: backoff}
}
