package kgx

import (
	"testing"
)

func TestNewEngineRequiresDomainDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DomainDir = ""
	if _, err := NewEngine(cfg); err != ErrDomainNotConfigured {
		t.Errorf("expected ErrDomainNotConfigured, got %v", err)
	}
}

func TestNewEngineRejectsNegativeBounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DomainDir = "testdata/domain"
	cfg.MaxIterations = -1
	if _, err := NewEngine(cfg); err != ErrInvalidConfig {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestNewEngineRejectsUnknownProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DomainDir = "testdata/domain"
	cfg.LLM.Provider = "not-a-real-provider"
	if _, err := NewEngine(cfg); err == nil {
		t.Error("expected an error for an unknown provider")
	}
}

func TestNewEngineDefaultsDomainIDFromDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DomainDir = "testdata/domain"
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Domain != "domain" {
		t.Errorf("expected domain id %q, got %q", "domain", e.Domain)
	}
}
