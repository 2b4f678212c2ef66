package config

import (
	"testing"
	"time"
)

func TestNewDefaults(t *testing.T) {
	cfg, err := New()
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if cfg.LLMProvider != ProviderRelay || cfg.Port != 8080 || cfg.LLMModel != "gpt-4" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.SessionIdle != 30*time.Minute {
		t.Fatalf("SessionIdle = %v", cfg.SessionIdle)
	}
	if s := cfg.Sync(); s.MaxAttempts != 5 || s.RetryAfter != 30*time.Second || s.FlushTimeout != 10*time.Second {
		t.Fatalf("unexpected sync config: %+v", s)
	}
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	t.Setenv("LLMPROVIDER", "other")
	if _, err := New(); err == nil {
		t.Fatalf("expected error")
	}
}

func TestNewVertexNeedsProject(t *testing.T) {
	t.Setenv("LLMPROVIDER", ProviderVertex)
	t.Setenv("PROJECTID", "")
	if _, err := New(); err == nil {
		t.Fatalf("expected error")
	}

	t.Setenv("PROJECTID", "proj")
	cfg, err := New()
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if cfg.ProjectID != "proj" {
		t.Fatalf("ProjectID = %q", cfg.ProjectID)
	}
}

func TestNewRelayDefaults(t *testing.T) {
	t.Setenv("OPENAIAPIKEY", "sk-test")
	cfg, err := NewRelay()
	if err != nil {
		t.Fatalf("NewRelay returned error: %v", err)
	}
	if cfg.Port != 3000 || cfg.APIKey != "sk-test" || cfg.ValidateTimeout != 5*time.Second {
		t.Fatalf("unexpected relay config: %+v", cfg)
	}
}
