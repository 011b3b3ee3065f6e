package engine

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/miradorstack/mirador-resolver/internal/models"
	"github.com/miradorstack/mirador-resolver/internal/utils"
)

// Capture-phase timeline offsets, in seconds relative to the context timestamp.
var captureOffsets = [...]int{-120, -60, -45, -30, -15}

const (
	stepBaseOffset    = -10
	failureOffset     = 0
	triggerPromptText = `Something isn't working`
)

var oauthHypotheses = []string{
	"OAuth refresh token has been revoked from Salesforce admin console",
	"Salesforce Connected App configuration may have changed",
	"User who authorized the integration may no longer have required permissions",
	"Salesforce org may have enforced new session policies",
}

var simulatedLogs = []string{
	"[2026-01-08T13:43:21Z] SalesforceSyncService: Initiating OAuth refresh",
	"[2026-01-08T13:43:22Z] OAuthProvider: Sending refresh token request to https://login.salesforce.com/services/oauth2/token",
	`[2026-01-08T13:43:23Z] OAuthProvider: ERROR - Received 400 Bad Request: {"error":"invalid_grant","error_description":"refresh token has been revoked"}`,
	"[2026-01-08T13:43:23Z] SalesforceSyncService: Token refresh failed, marking integration as errored",
	"[2026-01-08T13:43:24Z] IntegrationManager: Updated Salesforce status to ERROR",
}

// SimulatedLogs returns the log lines attached to tickets when logs are included.
func SimulatedLogs() []string {
	return append([]string(nil), simulatedLogs...)
}

// EscalationComposer assembles the ticket handed to a human responder.
type EscalationComposer struct{}

// NewEscalationComposer constructs an EscalationComposer.
func NewEscalationComposer() *EscalationComposer {
	return &EscalationComposer{}
}

// Compose builds a ticket from the session data. attempt may be nil when the
// user escalated without trying a remediation. Logs are attached only when
// includeLogs is set and an attempt was made.
func (c *EscalationComposer) Compose(ctx models.UserContext, analysis models.ResolverAnalysis, attempt *models.RemediationAttempt, includeLogs bool) models.SupportTicket {
	ticket := models.SupportTicket{
		Summary:  summarize(ctx, attempt),
		Timeline: buildTimeline(ctx, attempt),
		Environment: models.TicketEnvironment{
			Browser: ctx.Environment.Browser,
			OS:      ctx.Environment.OS,
			Page:    ctx.Page,
		},
		Hypotheses:        append([]string(nil), oauthHypotheses...),
		SourcesReferenced: slices.Clone(analysis.WhatChecked.Sources),
	}
	if attempt != nil {
		copied := attempt.Clone()
		ticket.AttemptedRemediation = &copied
		if includeLogs {
			ticket.Logs = SimulatedLogs()
		}
	}
	return ticket
}

func buildTimeline(ctx models.UserContext, attempt *models.RemediationAttempt) []models.TimelineEntry {
	failure := "Action failed"
	if ctx.ErrorMessage != "" {
		failure = fmt.Sprintf("Action failed with error: %q", ctx.ErrorMessage)
	}
	actions := [len(captureOffsets)]string{
		fmt.Sprintf("User navigated to %s page", ctx.Page),
		"User attempted to " + lowerFirst(ctx.Action),
		failure,
		fmt.Sprintf("User triggered the resolver via %q", triggerPromptText),
		"Resolver analyzed the issue and proposed remediation",
	}

	size := len(actions)
	if attempt != nil {
		size += len(attempt.Steps) + 1
	}
	timeline := make([]models.TimelineEntry, 0, size)
	for i, offset := range captureOffsets {
		timeline = append(timeline, models.TimelineEntry{
			Time:   utils.RelativeTime(ctx.Timestamp, offset),
			Action: actions[i],
		})
	}
	if attempt == nil {
		return timeline
	}

	for i, step := range attempt.Steps {
		timeline = append(timeline, models.TimelineEntry{
			Time:   utils.RelativeTime(ctx.Timestamp, stepBaseOffset+i),
			Action: fmt.Sprintf("Step %d: %s", i+1, step.Description),
		})
	}
	return append(timeline, models.TimelineEntry{
		Time:   utils.RelativeTime(ctx.Timestamp, failureOffset),
		Action: "Remediation failed: " + attempt.FailureReason,
	})
}

func summarize(ctx models.UserContext, attempt *models.RemediationAttempt) string {
	kind := "Failure"
	if IsOAuthFailure(ctx) {
		kind = "Integration sync failure"
	}
	if attempt != nil {
		return fmt.Sprintf("%s on %s page. The resolver attempted automated remediation (%s) but was unsuccessful. %s Manual intervention by a support engineer is recommended.",
			kind, ctx.Page, attempt.Action, attempt.FailureReason)
	}
	summary := fmt.Sprintf("%s on %s page. User attempted to %s", kind, ctx.Page, lowerFirst(ctx.Action))
	if ctx.ErrorMessage != "" {
		return summary + " but encountered an error: " + strings.TrimSpace(ctx.ErrorMessage)
	}
	return summary + " but the action did not complete."
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
