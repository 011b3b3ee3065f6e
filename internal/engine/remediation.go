package engine

import (
	"strconv"

	"github.com/miradorstack/mirador-resolver/internal/models"
)

const (
	// FailureReasonOAuth is the planned failure narrative for the Salesforce refresh script.
	FailureReasonOAuth = "The refresh token has been revoked on the Salesforce side. Manual re-authorization is required by an admin with Salesforce access."
	// FailureReasonGeneric is the planned failure narrative for the generic script.
	FailureReasonGeneric = "The automated remediation could not resolve this issue."
)

// RemediationPlanner chooses the concrete step script for a diagnosis.
type RemediationPlanner struct{}

// NewRemediationPlanner constructs a RemediationPlanner.
func NewRemediationPlanner() *RemediationPlanner {
	return &RemediationPlanner{}
}

// Plan returns a pending attempt. The OAuth signal is re-evaluated from ctx so
// the script does not depend on the wording of the analysis.
func (p *RemediationPlanner) Plan(ctx models.UserContext, _ models.ResolverAnalysis) models.RemediationAttempt {
	if IsOAuthFailure(ctx) {
		return models.RemediationAttempt{
			Action: "Attempting to refresh Salesforce authentication",
			Steps: pendingSteps(
				[2]string{"Revoking current OAuth session", "Clearing cached authentication tokens from the integration service..."},
				[2]string{"Requesting new authentication token", "Initiating OAuth 2.0 refresh flow with Salesforce API..."},
				[2]string{"Validating new credentials", "Testing API connection with refreshed token..."},
				[2]string{"Retrying sync operation", "Attempting to sync records with new authentication..."},
			),
			Outcome:       models.OutcomePending,
			FailureReason: FailureReasonOAuth,
		}
	}
	return models.RemediationAttempt{
		Action: "Attempting automated remediation",
		Steps: pendingSteps(
			[2]string{"Clearing cached data", "Removing stale cache entries..."},
			[2]string{"Retrying operation", "Attempting the failed operation again..."},
		),
		Outcome:       models.OutcomePending,
		FailureReason: FailureReasonGeneric,
	}
}

func pendingSteps(defs ...[2]string) []models.RemediationStep {
	steps := make([]models.RemediationStep, 0, len(defs))
	for i, def := range defs {
		steps = append(steps, models.RemediationStep{
			ID:          stepID(i),
			Description: def[0],
			Detail:      def[1],
			Status:      models.StepPending,
		})
	}
	return steps
}

func stepID(index int) string {
	return "step-" + strconv.Itoa(index+1)
}

// OutcomePolicy decides how an attempt resolves once every step has run.
type OutcomePolicy interface {
	Resolve(attempt models.RemediationAttempt) (models.Outcome, string)
}

// AlwaysFail resolves every attempt as failed with its planned failure reason.
// It is the default policy: the resolver exists to demonstrate escalation.
type AlwaysFail struct{}

// Resolve implements OutcomePolicy.
func (AlwaysFail) Resolve(attempt models.RemediationAttempt) (models.Outcome, string) {
	return models.OutcomeFailed, attempt.FailureReason
}

// StepsDecide reports success only when every step completed.
type StepsDecide struct{}

// Resolve implements OutcomePolicy.
func (StepsDecide) Resolve(attempt models.RemediationAttempt) (models.Outcome, string) {
	if len(attempt.Steps) == 0 {
		return models.OutcomeFailed, attempt.FailureReason
	}
	for _, step := range attempt.Steps {
		if step.Status != models.StepCompleted {
			return models.OutcomeFailed, attempt.FailureReason
		}
	}
	return models.OutcomeSuccess, ""
}
