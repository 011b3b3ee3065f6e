package formatter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/miradorstack/mirador-resolver/internal/corpus"
	"github.com/miradorstack/mirador-resolver/internal/models"
	"github.com/miradorstack/mirador-resolver/internal/workflow"
)

func init() {
	color.NoColor = true
}

func sampleSnapshot() workflow.Snapshot {
	now := time.Date(2026, 1, 8, 13, 45, 0, 0, time.UTC)
	return workflow.Snapshot{
		State:  workflow.StateEscalated,
		IsOpen: true,
		Context: &models.UserContext{
			Page:         "Integrations",
			Action:       "Sync Salesforce integration",
			ErrorMessage: "OAuth token expired",
			Timestamp:    now,
		},
		Analysis: &models.ResolverAnalysis{
			WhatIsHappening: "Your Salesforce integration's OAuth authentication token has expired.",
			Confidence:      models.Confidence{Level: models.ConfidenceHigh, Explanation: "Matched a known issue"},
		},
		Attempt: &models.RemediationAttempt{
			Action: "Attempting to refresh Salesforce authentication",
			Steps: []models.RemediationStep{
				{ID: "step-1", Description: "Revoking current OAuth session", Status: models.StepFailed},
			},
			Outcome:       models.OutcomeFailed,
			FailureReason: "Manual re-authorization is required.",
		},
		Ticket: &models.SupportTicket{
			ID:       "ZS-0001",
			Summary:  "Integration sync failure",
			Timeline: []models.TimelineEntry{{Time: now, Action: "User clicked sync"}},
			Logs:     []string{"[ERROR] token expired"},
		},
	}
}

func TestDisplaySnapshotHuman(t *testing.T) {
	var buf bytes.Buffer
	if err := DisplaySnapshot(&buf, sampleSnapshot(), FormatHuman); err != nil {
		t.Fatalf("display: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Resolver: escalated",
		"CONFIDENCE: HIGH",
		"✗ Revoking current OAuth session",
		"Failed: Manual re-authorization is required.",
		"TICKET ZS-0001",
		"01:45 PM  User clicked sync",
		"[ERROR] token expired",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestDisplaySnapshotMachineFormats(t *testing.T) {
	var buf bytes.Buffer
	if err := DisplaySnapshot(&buf, sampleSnapshot(), FormatJSON); err != nil {
		t.Fatalf("json: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if decoded["state"] != "escalated" {
		t.Fatalf("unexpected state: %v", decoded["state"])
	}

	buf.Reset()
	if err := DisplaySnapshot(&buf, sampleSnapshot(), FormatYAML); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if strings.Contains(buf.String(), "{") {
		t.Fatalf("expected block style yaml:\n%s", buf.String())
	}
	var fromYAML map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &fromYAML); err != nil {
		t.Fatalf("invalid yaml: %v", err)
	}
	if fromYAML["currentStepIndex"] != 0 {
		t.Fatalf("expected json field names in yaml, got %v", fromYAML)
	}
}

func TestDisplayCorpus(t *testing.T) {
	c, err := corpus.Default()
	if err != nil {
		t.Fatalf("corpus: %v", err)
	}
	var buf bytes.Buffer
	if err := DisplayCorpus(&buf, c, FormatHuman); err != nil {
		t.Fatalf("display: %v", err)
	}
	if !strings.Contains(buf.String(), "HELP ARTICLES (3)") || !strings.Contains(buf.String(), "CODEBASE NOTES (3)") {
		t.Fatalf("unexpected corpus listing:\n%s", buf.String())
	}

	buf.Reset()
	if err := DisplayCorpus(&buf, c, FormatYAML); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	reparsed, err := corpus.Parse(buf.Bytes())
	if err != nil {
		t.Fatalf("yaml listing should parse as a corpus file: %v", err)
	}
	if a, i, n := reparsed.Size(); a != 3 || i != 3 || n != 3 {
		t.Fatalf("unexpected reparsed sizes %d/%d/%d", a, i, n)
	}
}

func TestDisplayCitationsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := DisplayCitations(&buf, nil, FormatHuman); err != nil {
		t.Fatalf("display: %v", err)
	}
	if !strings.Contains(buf.String(), "No corpus entries matched.") {
		t.Fatalf("unexpected output: %s", buf.String())
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("alpha beta gamma", 12, "  ")
	if got != "  alpha beta\n  gamma" {
		t.Fatalf("unexpected wrap: %q", got)
	}
}
