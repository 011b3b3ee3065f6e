package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/miradorstack/mirador-resolver/internal/config"
	"github.com/miradorstack/mirador-resolver/internal/corpus"
	"github.com/miradorstack/mirador-resolver/internal/formatter"
	"github.com/miradorstack/mirador-resolver/internal/models"
)

func newCorpusCmd(configPath *string) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "Inspect the knowledge corpus",
	}
	cmd.PersistentFlags().StringVarP(&output, "output", "o", formatter.FormatHuman, "Output format (human, json, yaml)")

	load := func() (*config.Config, *corpus.Corpus, error) {
		cfg, err := config.Load(*configPath)
		if err != nil {
			return nil, nil, err
		}
		c, err := corpus.Load(cfg.Corpus.Path)
		return cfg, c, err
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List every corpus entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, c, err := load()
			if err != nil {
				return err
			}
			return formatter.DisplayCorpus(cmd.OutOrStdout(), c, output)
		},
	}

	var page, action, errorMessage string
	match := &cobra.Command{
		Use:   "match",
		Short: "Show which corpus entries a failure matches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, c, err := load()
			if err != nil {
				return err
			}
			ctx := models.UserContext{Page: page, Action: action, ErrorMessage: errorMessage, Timestamp: time.Now().UTC()}
			analysis := newAnalysisComposer(cfg, c).Analyze(ctx)
			if err := formatter.DisplayCitations(cmd.OutOrStdout(), analysis.WhatChecked.Sources, output); err != nil {
				return err
			}
			if output == formatter.FormatHuman {
				confidence := analysis.Confidence
				fmt.Fprintf(cmd.OutOrStdout(), "Confidence: %s (%s)\n", confidence.Level, confidence.Explanation)
			}
			return nil
		},
	}
	match.Flags().StringVar(&page, "page", "", "Page the failure happened on")
	match.Flags().StringVar(&action, "action", "", "Action the user attempted")
	match.Flags().StringVar(&errorMessage, "error", "", "Error message shown to the user")
	_ = match.MarkFlagRequired("page")

	cmd.AddCommand(list, match)
	return cmd
}
