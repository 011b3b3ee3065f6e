package models

import (
	"slices"
	"time"
)

// SupportTicket is the escalation artifact handed to a human responder.
type SupportTicket struct {
	ID                   string              `json:"id"`
	Summary              string              `json:"summary"`
	Timeline             []TimelineEntry     `json:"timeline"`
	Environment          TicketEnvironment   `json:"environment"`
	Hypotheses           []string            `json:"hypotheses"`
	SourcesReferenced    []SourceCitation    `json:"sourcesReferenced"`
	AttemptedRemediation *RemediationAttempt `json:"attemptedRemediation,omitempty"`
	Logs                 []string            `json:"logs,omitempty"`
}

// TimelineEntry records one event leading up to the escalation.
type TimelineEntry struct {
	Time   time.Time `json:"time"`
	Action string    `json:"action"`
}

// TicketEnvironment is the environment snapshot attached to a ticket.
type TicketEnvironment struct {
	Browser string `json:"browser"`
	OS      string `json:"os"`
	Page    string `json:"page"`
}

// Clone returns a deep copy.
func (t SupportTicket) Clone() SupportTicket {
	t.Timeline = slices.Clone(t.Timeline)
	t.Hypotheses = slices.Clone(t.Hypotheses)
	t.SourcesReferenced = slices.Clone(t.SourcesReferenced)
	if t.AttemptedRemediation != nil {
		attempt := t.AttemptedRemediation.Clone()
		t.AttemptedRemediation = &attempt
	}
	t.Logs = slices.Clone(t.Logs)
	return t
}
