package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	t.Setenv("MIRADOR_RESOLVER_CONFIG", "")
	color.NoColor = true

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		t.Fatalf("execute %v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func TestVersionCommand(t *testing.T) {
	if out := execute(t, "version"); !strings.Contains(out, "resolver dev") {
		t.Fatalf("unexpected version output: %s", out)
	}
}

func TestRunEscalatesScenario(t *testing.T) {
	out := execute(t, "run", "--fast", "--submit", "-o", "json")

	var snap struct {
		State  string `json:"state"`
		Ticket struct {
			ID       string            `json:"id"`
			Timeline []json.RawMessage `json:"timeline"`
			Logs     []string          `json:"logs"`
		} `json:"ticket"`
	}
	if err := json.Unmarshal([]byte(out), &snap); err != nil {
		t.Fatalf("invalid json output: %v\n%s", err, out)
	}
	if snap.State != "submitted" {
		t.Fatalf("expected submitted, got %s", snap.State)
	}
	if !strings.HasPrefix(snap.Ticket.ID, "ZS-") || len(snap.Ticket.Timeline) != 10 || len(snap.Ticket.Logs) == 0 {
		t.Fatalf("unexpected ticket: %+v", snap.Ticket)
	}
}

func TestRunWithoutConsentEscalatesFromProposing(t *testing.T) {
	out := execute(t, "run", "--fast", "--consent=false", "--page", "Reports", "--action", "Export report", "--error", "Export timed out", "-o", "json")
	if !strings.Contains(out, `"state": "escalated"`) || strings.Contains(out, `"attemptedRemediation"`) {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestRunHumanOutput(t *testing.T) {
	out := execute(t, "run", "--fast")
	for _, want := range []string{"Analysis complete", "CONFIDENCE: HIGH", "Revoking current OAuth session", "TICKET ZS-"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestCorpusMatch(t *testing.T) {
	cases := []struct {
		name       string
		page       string
		errMessage string
		confidence string
	}{
		{"oauth", "Integrations", "Unable to authenticate with Salesforce. OAuth token expired.", "Confidence: high"},
		{"generic with matches", "Notifications", "Slack channel not found", "Confidence: low"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := execute(t, "corpus", "match", "--page", tc.page, "--error", tc.errMessage)
			if !strings.Contains(out, "[known-issue]") || !strings.Contains(out, tc.confidence) {
				t.Fatalf("unexpected match output: %s", out)
			}
		})
	}
}
