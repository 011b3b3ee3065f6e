package models

import "slices"

// StepStatus tracks a single remediation step.
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepRunning   StepStatus = "running"
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
)

// Outcome is the overall result of a remediation attempt.
type Outcome string

const (
	OutcomePending Outcome = "pending"
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
)

// RemediationStep is one executable action in an attempt.
type RemediationStep struct {
	ID          string     `json:"id"`
	Description string     `json:"description"`
	Detail      string     `json:"detail"`
	Status      StepStatus `json:"status"`
}

// RemediationAttempt is the ordered plan the resolver executes with consent.
type RemediationAttempt struct {
	Action        string            `json:"action"`
	Steps         []RemediationStep `json:"steps"`
	Outcome       Outcome           `json:"outcome"`
	FailureReason string            `json:"failureReason,omitempty"`
}

// Clone returns a deep copy.
func (a RemediationAttempt) Clone() RemediationAttempt {
	a.Steps = slices.Clone(a.Steps)
	return a
}
