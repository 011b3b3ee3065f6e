package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MIRADOR_RESOLVER_CONFIG", "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Address != ":50051" || cfg.Server.MetricsAddress != ":2112" {
		t.Fatalf("unexpected server defaults: %+v", cfg.Server)
	}
	if cfg.Workflow.AnalysisDelay != 1500*time.Millisecond || !cfg.Workflow.IncludeLogs || cfg.Workflow.FailureThreshold != 2 {
		t.Fatalf("unexpected workflow defaults: %+v", cfg.Workflow)
	}
	if cfg.Environment.Version != "2.4.1" || cfg.Corpus.Path != "" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resolver.yaml")
	body := `
server:
  address: ":6000"
workflow:
  stepDelay: 50ms
  includeLogs: false
  genericConfidence: computed
environment:
  browser: Firefox
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("MIRADOR_RESOLVER_CONFIG", path)
	t.Setenv("MIRADOR_RESOLVER_LOG_FORMAT", "json")
	t.Setenv("MIRADOR_RESOLVER_FAILURE_THRESHOLD", "4")
	t.Setenv("MIRADOR_RESOLVER_OUTCOME", "STEPS")
	t.Setenv("MIRADOR_RESOLVER_ANALYSIS_DELAY", "not-a-duration")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Address != ":6000" || cfg.Server.MetricsAddress != ":2112" {
		t.Fatalf("file values should merge over defaults: %+v", cfg.Server)
	}
	if cfg.Workflow.StepDelay != 50*time.Millisecond || cfg.Workflow.IncludeLogs {
		t.Fatalf("unexpected workflow: %+v", cfg.Workflow)
	}
	if cfg.Workflow.AnalysisDelay != 1500*time.Millisecond {
		t.Fatalf("invalid duration override should be ignored, got %v", cfg.Workflow.AnalysisDelay)
	}
	if !cfg.Logging.JSON || cfg.Workflow.FailureThreshold != 4 || cfg.Workflow.Outcome != "steps" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.Environment.Browser != "Firefox" || cfg.Environment.OS != "Unknown OS" {
		t.Fatalf("unexpected environment: %+v", cfg.Environment)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestLoadRejectsUnknownPolicy(t *testing.T) {
	t.Setenv("MIRADOR_RESOLVER_CONFIG", "")
	t.Setenv("MIRADOR_RESOLVER_GENERIC_CONFIDENCE", "sometimes")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected validation error")
	}
}
