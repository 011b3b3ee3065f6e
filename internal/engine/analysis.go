package engine

import (
	"fmt"

	"github.com/miradorstack/mirador-resolver/internal/models"
)

// GenericConfidence selects how confidence is reported on the generic diagnosis path.
type GenericConfidence int

const (
	// GenericForceLow always reports low confidence when no specialised
	// diagnosis applies, even if articles or notes matched.
	GenericForceLow GenericConfidence = iota
	// GenericComputed reports the confidence derived from the matched sources.
	GenericComputed
)

const (
	explainHigh    = "This matches a known issue with documented resolution steps."
	explainMedium  = "This matches documented patterns, though the specific cause may vary."
	explainLow     = "Limited matching documentation. Human review may be needed."
	explainNoMatch = "Unable to find a specific match for this issue. Human review is recommended."
)

// AnalysisComposer turns matcher output into a ResolverAnalysis.
type AnalysisComposer struct {
	matcher *KnowledgeMatcher
	generic GenericConfidence
}

// NewAnalysisComposer constructs a composer backed by matcher.
func NewAnalysisComposer(matcher *KnowledgeMatcher, generic GenericConfidence) *AnalysisComposer {
	return &AnalysisComposer{matcher: matcher, generic: generic}
}

// ConfidenceFor applies the source-kind priority rule: a known issue together
// with an article is high, any article or note is medium, anything else low.
func ConfidenceFor(m Matches) models.Confidence {
	switch {
	case len(m.Issues) > 0 && len(m.Articles) > 0:
		return models.Confidence{Level: models.ConfidenceHigh, Explanation: explainHigh}
	case len(m.Articles) > 0 || len(m.Notes) > 0:
		return models.Confidence{Level: models.ConfidenceMedium, Explanation: explainMedium}
	default:
		return models.Confidence{Level: models.ConfidenceLow, Explanation: explainLow}
	}
}

// Analyze diagnoses ctx. It never fails; an unmatched context yields a generic, low confidence diagnosis.
func (c *AnalysisComposer) Analyze(ctx models.UserContext) models.ResolverAnalysis {
	matches := c.matcher.Match(ctx)
	sources := matches.Citations()
	confidence := ConfidenceFor(matches)

	if IsOAuthFailure(ctx) {
		return models.ResolverAnalysis{
			WhatIsHappening: "The Salesforce integration is unable to complete sync operations because the OAuth authentication token has expired. " +
				"This prevents the application from accessing your Salesforce data until re-authentication is completed.",
			WhatChecked: models.CheckedSummary{
				Description: "Reviewed integration authentication documentation, checked active known issues, and analyzed the SalesforceSyncService error patterns.",
				Sources:     sources,
			},
			WhatUsuallyFixes: models.FixSummary{
				Description: "Re-authenticating with Salesforce typically resolves this issue. The OAuth token will be refreshed, restoring sync functionality.",
				Steps: []string{
					"Invalidate the current OAuth session",
					"Request a new authentication token from Salesforce",
					"Validate the new token with a test API call",
					"Retry the sync operation",
				},
			},
			Confidence: confidence,
		}
	}

	detail := ctx.ErrorMessage
	if detail == "" {
		detail = "The specific error details are being analyzed."
	}
	if c.generic == GenericForceLow {
		confidence = models.Confidence{Level: models.ConfidenceLow, Explanation: explainNoMatch}
	}
	return models.ResolverAnalysis{
		WhatIsHappening: fmt.Sprintf("An issue was detected on the %s page. %s", ctx.Page, detail),
		WhatChecked: models.CheckedSummary{
			Description: "Searched help documentation and known issues for matching patterns.",
			Sources:     sources,
		},
		WhatUsuallyFixes: models.FixSummary{
			Description: "Based on the available information, the following steps may help resolve this issue.",
			Steps: []string{
				"Refresh the page and retry",
				"Check network connectivity",
				"Clear browser cache",
				"Escalate to support if issue persists",
			},
		},
		Confidence: confidence,
	}
}
