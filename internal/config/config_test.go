package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPAddress != ":8080" {
		t.Fatalf("unexpected http address %q", cfg.HTTPAddress)
	}
	if len(cfg.KafkaBrokers) != 1 || cfg.KafkaBrokers[0] != "kafka:9092" {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}
	if len(cfg.ConsumerTopics) != 2 {
		t.Fatalf("expected 2 default consumer topics, got %v", cfg.ConsumerTopics)
	}
	if cfg.ScoreInterval != time.Hour {
		t.Fatalf("unexpected score interval %s", cfg.ScoreInterval)
	}
}

func TestLoadParsesFrequencyRule(t *testing.T) {
	t.Setenv("FREQUENCY_RULE", "1:1, 2:1.2, 3:1.3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cfg.Scoring.Multipliers[2]; got != 1.2 {
		t.Fatalf("expected multiplier 1.2 for 2 days, got %v", got)
	}
	if len(cfg.Scoring.Multipliers) != 3 {
		t.Fatalf("expected 3 pairs, got %v", cfg.Scoring.Multipliers)
	}
}

func TestLoadRejectsMalformedFrequencyRule(t *testing.T) {
	t.Setenv("FREQUENCY_RULE", "1=1.5")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed pair")
	}
}

func TestLoadRejectsInvalidScoringConfig(t *testing.T) {
	t.Setenv("EVENT_DATES", "30/11/2022")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for non ISO event date")
	}
}
