package main

import (
	"fmt"
	"log/slog"

	"github.com/miradorstack/mirador-resolver/internal/config"
	"github.com/miradorstack/mirador-resolver/internal/corpus"
	"github.com/miradorstack/mirador-resolver/internal/engine"
	"github.com/miradorstack/mirador-resolver/internal/models"
	"github.com/miradorstack/mirador-resolver/internal/workflow"
)

// buildMachine assembles a resolver machine from configuration.
func buildMachine(cfg *config.Config, logger *slog.Logger) (*workflow.Machine, error) {
	c, err := corpus.Load(cfg.Corpus.Path)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	articles, issues, notes := c.Size()
	logger.Debug("knowledge corpus loaded",
		slog.String("path", cfg.Corpus.Path),
		slog.Int("articles", articles),
		slog.Int("known_issues", issues),
		slog.Int("codebase_notes", notes),
	)

	var outcome engine.OutcomePolicy = engine.AlwaysFail{}
	if cfg.Workflow.Outcome == "steps" {
		outcome = engine.StepsDecide{}
	}

	opts := workflow.DefaultOptions()
	opts.AnalysisDelay = cfg.Workflow.AnalysisDelay
	opts.StepDelay = cfg.Workflow.StepDelay
	opts.FinalizeDelay = cfg.Workflow.FinalizeDelay
	opts.IncludeLogs = cfg.Workflow.IncludeLogs
	opts.Environment = models.Environment{
		Browser: cfg.Environment.Browser,
		OS:      cfg.Environment.OS,
		Version: cfg.Environment.Version,
	}
	opts.Outcome = outcome
	opts.IDs = workflow.UUIDGenerator{Prefix: cfg.Workflow.TicketPrefix}

	return workflow.NewMachine(
		logger,
		newAnalysisComposer(cfg, c),
		engine.NewRemediationPlanner(),
		engine.NewEscalationComposer(),
		opts,
	), nil
}

// newAnalysisComposer applies the configured generic-confidence policy.
func newAnalysisComposer(cfg *config.Config, c corpus.Provider) *engine.AnalysisComposer {
	generic := engine.GenericForceLow
	if cfg.Workflow.GenericConfidence == "computed" {
		generic = engine.GenericComputed
	}
	return engine.NewAnalysisComposer(engine.NewKnowledgeMatcher(c), generic)
}
