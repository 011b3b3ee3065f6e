package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/miradorstack/mirador-resolver/internal/corpus"
	"github.com/miradorstack/mirador-resolver/internal/models"
)

const scenarioError = "Unable to authenticate with Salesforce. OAuth token expired."

func defaultMatcher(t *testing.T) *KnowledgeMatcher {
	t.Helper()
	c, err := corpus.Default()
	if err != nil {
		t.Fatalf("load default corpus: %v", err)
	}
	return NewKnowledgeMatcher(c)
}

func scenarioContext() models.UserContext {
	return models.UserContext{
		Page:         "Integrations",
		Action:       "Sync Salesforce integration",
		ErrorMessage: scenarioError,
		Timestamp:    time.Date(2026, 1, 8, 13, 45, 0, 0, time.UTC),
		Environment:  models.Environment{Browser: "Chrome", OS: "macOS", Version: "2.4.1"},
	}
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, id(item))
	}
	return out
}

func TestMatchScenario(t *testing.T) {
	m := defaultMatcher(t).Match(scenarioContext())

	articles := ids(m.Articles, func(a models.HelpArticle) string { return a.ID })
	if strings.Join(articles, ",") != "integration-auth-guide,salesforce-sync-guide" {
		t.Fatalf("unexpected articles: %v", articles)
	}
	issues := ids(m.Issues, func(i models.KnownIssue) string { return i.ID })
	if strings.Join(issues, ",") != "salesforce-oauth-token-expiry" {
		t.Fatalf("unexpected issues: %v", issues)
	}
	if len(m.Notes) != 0 {
		t.Fatalf("expected no codebase notes, got %d", len(m.Notes))
	}

	cites := m.Citations()
	if len(cites) != 3 || cites[0].Type != models.SourceHelpArticle || cites[2].Type != models.SourceKnownIssue {
		t.Fatalf("unexpected citations: %+v", cites)
	}
}

func TestMatchNoCorpusEntries(t *testing.T) {
	m := defaultMatcher(t).Match(models.UserContext{Page: "Billing", ErrorMessage: "Card declined"})
	if !m.Empty() {
		t.Fatalf("expected empty matches, got %+v", m)
	}
	if len(m.Citations()) != 0 {
		t.Fatalf("expected no citations")
	}
}

func TestMatchNilCorpus(t *testing.T) {
	if m := NewKnowledgeMatcher(nil).Match(scenarioContext()); !m.Empty() {
		t.Fatalf("expected nil corpus to match nothing")
	}
}

func TestMatchCodebaseNotes(t *testing.T) {
	matcher := defaultMatcher(t)

	byPage := matcher.Match(models.UserContext{Page: "IntegrationManager admin"})
	if len(byPage.Notes) != 1 || byPage.Notes[0].ID != "integration-manager" {
		t.Fatalf("expected page match on IntegrationManager, got %+v", byPage.Notes)
	}

	byError := matcher.Match(models.UserContext{Page: "Alerts", ErrorMessage: "Notification delivery failed"})
	if len(byError.Notes) != 1 || byError.Notes[0].ID != "notification-service" {
		t.Fatalf("expected error match on NotificationService, got %+v", byError.Notes)
	}
}

func TestMatchKnownIssuePrefixOnPage(t *testing.T) {
	m := defaultMatcher(t).Match(models.UserContext{Page: "HubSpot settings"})
	if len(m.Issues) != 1 || m.Issues[0].ID != "hubspot-field-sync" {
		t.Fatalf("expected hubspot issue, got %+v", m.Issues)
	}
}

func TestConfidenceFor(t *testing.T) {
	article := []models.HelpArticle{{ID: "a"}}
	issue := []models.KnownIssue{{ID: "i"}}
	note := []models.CodebaseNote{{ID: "n"}}

	cases := []struct {
		name string
		m    Matches
		want models.ConfidenceLevel
	}{
		{"issue and article", Matches{Articles: article, Issues: issue}, models.ConfidenceHigh},
		{"issue only", Matches{Issues: issue}, models.ConfidenceLow},
		{"article only", Matches{Articles: article}, models.ConfidenceMedium},
		{"note only", Matches{Notes: note}, models.ConfidenceMedium},
		{"everything", Matches{Articles: article, Issues: issue, Notes: note}, models.ConfidenceHigh},
		{"nothing", Matches{}, models.ConfidenceLow},
	}
	for _, tc := range cases {
		if got := ConfidenceFor(tc.m).Level; got != tc.want {
			t.Fatalf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestAnalyzeOAuthScenario(t *testing.T) {
	analysis := NewAnalysisComposer(defaultMatcher(t), GenericForceLow).Analyze(scenarioContext())
	if analysis.Confidence.Level != models.ConfidenceHigh {
		t.Fatalf("expected high confidence, got %s", analysis.Confidence.Level)
	}
	if !strings.Contains(analysis.WhatIsHappening, "OAuth authentication token has expired") {
		t.Fatalf("unexpected narrative: %s", analysis.WhatIsHappening)
	}
	if len(analysis.WhatUsuallyFixes.Steps) != 4 {
		t.Fatalf("expected 4 fix steps, got %d", len(analysis.WhatUsuallyFixes.Steps))
	}
	if len(analysis.WhatChecked.Sources) != 3 {
		t.Fatalf("expected 3 cited sources, got %d", len(analysis.WhatChecked.Sources))
	}
}

func TestAnalyzeGenericForcesLow(t *testing.T) {
	matcher := defaultMatcher(t)
	forced := NewAnalysisComposer(matcher, GenericForceLow)
	computed := NewAnalysisComposer(matcher, GenericComputed)

	// None of these carry an OAuth signal.
	cases := []struct {
		name     string
		ctx      models.UserContext
		articles int
		issues   int
		notes    int
		computed models.ConfidenceLevel
	}{
		{
			name:     "article only",
			ctx:      models.UserContext{Page: "Settings", ErrorMessage: "Workspace bot disconnected"},
			articles: 1,
			computed: models.ConfidenceMedium,
		},
		{
			name:     "note only",
			ctx:      models.UserContext{Page: "Dashboard", ErrorMessage: "IntegrationManager returned INT_002"},
			notes:    1,
			computed: models.ConfidenceMedium,
		},
		{
			name:     "issue only",
			ctx:      models.UserContext{Page: "HubSpot", ErrorMessage: "Contact fields missing"},
			issues:   1,
			computed: models.ConfidenceLow,
		},
		{
			name:     "issue and article",
			ctx:      models.UserContext{Page: "Notifications", ErrorMessage: "Slack channel not found"},
			articles: 1,
			issues:   1,
			computed: models.ConfidenceHigh,
		},
		{
			name:     "nothing matched",
			ctx:      models.UserContext{Page: "Billing", ErrorMessage: "Card declined"},
			computed: models.ConfidenceLow,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if IsOAuthFailure(tc.ctx) {
				t.Fatalf("context unexpectedly carries an OAuth signal")
			}
			m := matcher.Match(tc.ctx)
			if len(m.Articles) != tc.articles || len(m.Issues) != tc.issues || len(m.Notes) != tc.notes {
				t.Fatalf("unexpected matches: %d articles, %d issues, %d notes", len(m.Articles), len(m.Issues), len(m.Notes))
			}
			if got := computed.Analyze(tc.ctx).Confidence.Level; got != tc.computed {
				t.Fatalf("expected computed confidence %s, got %s", tc.computed, got)
			}

			analysis := forced.Analyze(tc.ctx)
			if len(analysis.WhatChecked.Sources) != tc.articles+tc.issues+tc.notes {
				t.Fatalf("expected every match to be cited, got %d sources", len(analysis.WhatChecked.Sources))
			}
			if analysis.Confidence.Level != models.ConfidenceLow {
				t.Fatalf("expected forced low confidence, got %s", analysis.Confidence.Level)
			}
			if analysis.Confidence.Explanation != explainNoMatch {
				t.Fatalf("unexpected explanation: %s", analysis.Confidence.Explanation)
			}
			if !strings.HasPrefix(analysis.WhatIsHappening, "An issue was detected on the "+tc.ctx.Page+" page.") {
				t.Fatalf("unexpected narrative: %s", analysis.WhatIsHappening)
			}
		})
	}
}

func TestAnalyzeGenericComputedPolicy(t *testing.T) {
	composer := NewAnalysisComposer(defaultMatcher(t), GenericComputed)
	analysis := composer.Analyze(models.UserContext{Page: "Notifications", ErrorMessage: "Slack channel not found"})
	if analysis.Confidence.Level != models.ConfidenceHigh {
		t.Fatalf("expected computed high confidence, got %s", analysis.Confidence.Level)
	}
}

func TestAnalyzeWithoutErrorMessage(t *testing.T) {
	analysis := NewAnalysisComposer(defaultMatcher(t), GenericForceLow).Analyze(models.UserContext{Page: "Settings"})
	if !strings.Contains(analysis.WhatIsHappening, "being analyzed") {
		t.Fatalf("expected placeholder detail, got %s", analysis.WhatIsHappening)
	}
}

func TestIsOAuthFailure(t *testing.T) {
	for msg, want := range map[string]bool{
		"SALESFORCE down":         true,
		"oauth handshake":         true,
		"could not Authenticate":  true,
		"Slack channel not found": false,
		"":                        false,
	} {
		if got := IsOAuthFailure(models.UserContext{ErrorMessage: msg}); got != want {
			t.Fatalf("IsOAuthFailure(%q) = %v, want %v", msg, got, want)
		}
	}
}

func TestPlanOAuth(t *testing.T) {
	ctx := scenarioContext()
	attempt := NewRemediationPlanner().Plan(ctx, models.ResolverAnalysis{})
	if len(attempt.Steps) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(attempt.Steps))
	}
	if attempt.FailureReason != FailureReasonOAuth || attempt.Outcome != models.OutcomePending {
		t.Fatalf("unexpected attempt: %+v", attempt)
	}
	for i, step := range attempt.Steps {
		if step.Status != models.StepPending {
			t.Fatalf("step %d should start pending, got %s", i, step.Status)
		}
		if step.Detail == "" {
			t.Fatalf("step %d missing detail", i)
		}
	}
	if attempt.Steps[3].ID != "step-4" {
		t.Fatalf("unexpected step id: %s", attempt.Steps[3].ID)
	}
}

func TestPlanGeneric(t *testing.T) {
	attempt := NewRemediationPlanner().Plan(models.UserContext{Page: "Reports"}, models.ResolverAnalysis{})
	if len(attempt.Steps) != 2 || attempt.FailureReason != FailureReasonGeneric {
		t.Fatalf("unexpected generic attempt: %+v", attempt)
	}
}

func TestOutcomePolicies(t *testing.T) {
	attempt := NewRemediationPlanner().Plan(scenarioContext(), models.ResolverAnalysis{})

	outcome, reason := AlwaysFail{}.Resolve(attempt)
	if outcome != models.OutcomeFailed || reason != FailureReasonOAuth {
		t.Fatalf("unexpected AlwaysFail result: %s %q", outcome, reason)
	}

	for i := range attempt.Steps {
		attempt.Steps[i].Status = models.StepCompleted
	}
	if outcome, _ := (StepsDecide{}).Resolve(attempt); outcome != models.OutcomeSuccess {
		t.Fatalf("expected success when all steps completed, got %s", outcome)
	}
	attempt.Steps[2].Status = models.StepFailed
	if outcome, _ := (StepsDecide{}).Resolve(attempt); outcome != models.OutcomeFailed {
		t.Fatalf("expected failure when a step failed, got %s", outcome)
	}
}

func TestComposeWithAttemptAndLogs(t *testing.T) {
	ctx := scenarioContext()
	analysis := NewAnalysisComposer(defaultMatcher(t), GenericForceLow).Analyze(ctx)
	attempt := NewRemediationPlanner().Plan(ctx, analysis)

	ticket := NewEscalationComposer().Compose(ctx, analysis, &attempt, true)
	if len(ticket.Timeline) != 10 {
		t.Fatalf("expected 10 timeline entries, got %d", len(ticket.Timeline))
	}
	if !ticket.Timeline[0].Time.Equal(ctx.Timestamp.Add(-120 * time.Second)) {
		t.Fatalf("unexpected first entry time: %v", ticket.Timeline[0].Time)
	}
	if !ticket.Timeline[5].Time.Equal(ctx.Timestamp.Add(-10*time.Second)) || ticket.Timeline[5].Action != "Step 1: Revoking current OAuth session" {
		t.Fatalf("unexpected first step entry: %+v", ticket.Timeline[5])
	}
	if !ticket.Timeline[8].Time.Equal(ctx.Timestamp.Add(-7 * time.Second)) {
		t.Fatalf("unexpected last step time: %v", ticket.Timeline[8].Time)
	}
	last := ticket.Timeline[9]
	if !last.Time.Equal(ctx.Timestamp) || !strings.HasPrefix(last.Action, "Remediation failed: ") {
		t.Fatalf("unexpected failure entry: %+v", last)
	}
	if !strings.Contains(ticket.Summary, attempt.Action) || !strings.Contains(ticket.Summary, FailureReasonOAuth) {
		t.Fatalf("summary should mention the attempt: %s", ticket.Summary)
	}

	want := SimulatedLogs()
	if len(ticket.Logs) != len(want) {
		t.Fatalf("expected %d log lines, got %d", len(want), len(ticket.Logs))
	}
	for i := range want {
		if ticket.Logs[i] != want[i] {
			t.Fatalf("log line %d differs: %q", i, ticket.Logs[i])
		}
	}
	if ticket.AttemptedRemediation == nil || ticket.AttemptedRemediation == &attempt {
		t.Fatalf("expected a copied attempt on the ticket")
	}
	if ticket.Environment.Page != "Integrations" || ticket.Environment.Browser != "Chrome" {
		t.Fatalf("unexpected environment: %+v", ticket.Environment)
	}
	if len(ticket.Hypotheses) != 4 || len(ticket.SourcesReferenced) != 3 {
		t.Fatalf("unexpected hypotheses/sources: %d/%d", len(ticket.Hypotheses), len(ticket.SourcesReferenced))
	}
}

func TestComposeLogsRequireFlagAndAttempt(t *testing.T) {
	ctx := scenarioContext()
	analysis := models.ResolverAnalysis{}
	attempt := NewRemediationPlanner().Plan(ctx, analysis)
	composer := NewEscalationComposer()

	if ticket := composer.Compose(ctx, analysis, &attempt, false); ticket.Logs != nil {
		t.Fatalf("expected no logs when includeLogs is false")
	}
	noAttempt := composer.Compose(ctx, analysis, nil, true)
	if noAttempt.Logs != nil || noAttempt.AttemptedRemediation != nil {
		t.Fatalf("expected no logs or attempt without an attempt")
	}
	if len(noAttempt.Timeline) != 5 {
		t.Fatalf("expected 5 timeline entries without an attempt, got %d", len(noAttempt.Timeline))
	}
	if !strings.Contains(noAttempt.Summary, "encountered an error") {
		t.Fatalf("unexpected no-attempt summary: %s", noAttempt.Summary)
	}
}
