package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the settings required to boot the resolver service.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Logging     LoggingConfig     `yaml:"logging"`
	Corpus      CorpusConfig      `yaml:"corpus"`
	Workflow    WorkflowConfig    `yaml:"workflow"`
	Environment EnvironmentConfig `yaml:"environment"`
}

// ServerConfig controls gRPC listener behaviour.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	MetricsAddress  string        `yaml:"metricsAddress"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// CorpusConfig points at an optional knowledge corpus file. Empty uses the embedded corpus.
type CorpusConfig struct {
	Path string `yaml:"path"`
}

// WorkflowConfig tunes pacing and policies of the resolver state machine.
type WorkflowConfig struct {
	AnalysisDelay    time.Duration `yaml:"analysisDelay"`
	StepDelay        time.Duration `yaml:"stepDelay"`
	FinalizeDelay    time.Duration `yaml:"finalizeDelay"`
	IncludeLogs      bool          `yaml:"includeLogs"`
	FailureThreshold int           `yaml:"failureThreshold"`
	// GenericConfidence is "low" (always low without the OAuth signal) or "computed".
	GenericConfidence string `yaml:"genericConfidence"`
	// Outcome is "fail" (every attempt fails) or "steps" (success when every step completes).
	Outcome      string `yaml:"outcome"`
	TicketPrefix string `yaml:"ticketPrefix"`
}

// EnvironmentConfig describes the client the resolver reports on tickets.
type EnvironmentConfig struct {
	Browser string `yaml:"browser"`
	OS      string `yaml:"os"`
	Version string `yaml:"version"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("MIRADOR_RESOLVER_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the workflow cannot run with.
func (c *Config) Validate() error {
	if c.Workflow.AnalysisDelay < 0 || c.Workflow.StepDelay < 0 || c.Workflow.FinalizeDelay < 0 {
		return errors.New("workflow delays must not be negative")
	}
	switch c.Workflow.GenericConfidence {
	case "low", "computed":
	default:
		return fmt.Errorf("unknown workflow.genericConfidence %q", c.Workflow.GenericConfidence)
	}
	switch c.Workflow.Outcome {
	case "fail", "steps":
	default:
		return fmt.Errorf("unknown workflow.outcome %q", c.Workflow.Outcome)
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":50051",
			MetricsAddress:  ":2112",
			GracefulTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
		Workflow: WorkflowConfig{
			AnalysisDelay:     1500 * time.Millisecond,
			StepDelay:         1200 * time.Millisecond,
			FinalizeDelay:     800 * time.Millisecond,
			IncludeLogs:       true,
			FailureThreshold:  2,
			GenericConfidence: "low",
			Outcome:           "fail",
			TicketPrefix:      "ZS",
		},
		Environment: EnvironmentConfig{
			Browser: "Unknown Browser",
			OS:      "Unknown OS",
			Version: "2.4.1",
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MIRADOR_RESOLVER_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("MIRADOR_RESOLVER_METRICS_ADDRESS"); v != "" {
		cfg.Server.MetricsAddress = v
	}
	if v := os.Getenv("MIRADOR_RESOLVER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("MIRADOR_RESOLVER_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("MIRADOR_RESOLVER_CORPUS_PATH"); v != "" {
		cfg.Corpus.Path = v
	}
	if v := os.Getenv("MIRADOR_RESOLVER_ANALYSIS_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Workflow.AnalysisDelay = d
		}
	}
	if v := os.Getenv("MIRADOR_RESOLVER_STEP_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Workflow.StepDelay = d
		}
	}
	if v := os.Getenv("MIRADOR_RESOLVER_FINALIZE_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Workflow.FinalizeDelay = d
		}
	}
	if v := os.Getenv("MIRADOR_RESOLVER_INCLUDE_LOGS"); v != "" {
		cfg.Workflow.IncludeLogs = strings.EqualFold(v, "true") || strings.EqualFold(v, "1")
	}
	if v := os.Getenv("MIRADOR_RESOLVER_FAILURE_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Workflow.FailureThreshold = n
		}
	}
	if v := os.Getenv("MIRADOR_RESOLVER_GENERIC_CONFIDENCE"); v != "" {
		cfg.Workflow.GenericConfidence = strings.ToLower(v)
	}
	if v := os.Getenv("MIRADOR_RESOLVER_OUTCOME"); v != "" {
		cfg.Workflow.Outcome = strings.ToLower(v)
	}
	if v := os.Getenv("MIRADOR_RESOLVER_TICKET_PREFIX"); v != "" {
		cfg.Workflow.TicketPrefix = v
	}
	if v := os.Getenv("MIRADOR_RESOLVER_BROWSER"); v != "" {
		cfg.Environment.Browser = v
	}
	if v := os.Getenv("MIRADOR_RESOLVER_OS"); v != "" {
		cfg.Environment.OS = v
	}
	if v := os.Getenv("MIRADOR_RESOLVER_APP_VERSION"); v != "" {
		cfg.Environment.Version = v
	}
}
