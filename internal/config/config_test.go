package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.FacePassThreshold != 0.35 {
		t.Fatalf("unexpected face threshold: %v", cfg.FacePassThreshold)
	}
	if cfg.LivenessPassThreshold != 0.35 {
		t.Fatalf("unexpected liveness threshold: %v", cfg.LivenessPassThreshold)
	}
	if cfg.SanctionsFlagThreshold != 0.85 {
		t.Fatalf("unexpected sanctions threshold: %v", cfg.SanctionsFlagThreshold)
	}
	if cfg.SanctionsTopK != 5 {
		t.Fatalf("unexpected sanctions top-k: %v", cfg.SanctionsTopK)
	}
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("unexpected listen addr: %v", cfg.ListenAddr)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FACE_PASS_THRESHOLD", "0.6")
	t.Setenv("SANCTIONS_TOPK", "10")
	t.Setenv("SANCTIONS_TIMEOUT", "5s")
	t.Setenv("OPEN_SANCTIONS_API_KEY", "key-1")

	cfg := Load()

	if cfg.FacePassThreshold != 0.6 {
		t.Fatalf("override not applied: %v", cfg.FacePassThreshold)
	}
	if cfg.SanctionsTopK != 10 {
		t.Fatalf("override not applied: %v", cfg.SanctionsTopK)
	}
	if cfg.SanctionsTimeout != 5*time.Second {
		t.Fatalf("override not applied: %v", cfg.SanctionsTimeout)
	}
	if cfg.SanctionsAPIKey != "key-1" {
		t.Fatalf("override not applied: %v", cfg.SanctionsAPIKey)
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("FACE_PASS_THRESHOLD", "not-a-float")
	t.Setenv("SANCTIONS_TOPK", "many")

	cfg := Load()

	if cfg.FacePassThreshold != 0.35 {
		t.Fatalf("expected default on malformed value, got %v", cfg.FacePassThreshold)
	}
	if cfg.SanctionsTopK != 5 {
		t.Fatalf("expected default on malformed value, got %v", cfg.SanctionsTopK)
	}
}
