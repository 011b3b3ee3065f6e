package models

import "slices"

// ConfidenceLevel is the discrete rating attached to a diagnosis.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// ResolverAnalysis is the diagnosis shown to the user before any remediation.
type ResolverAnalysis struct {
	WhatIsHappening  string         `json:"whatIsHappening"`
	WhatChecked      CheckedSummary `json:"whatChecked"`
	WhatUsuallyFixes FixSummary     `json:"whatUsuallyFixes"`
	Confidence       Confidence     `json:"confidence"`
}

// CheckedSummary lists the sources consulted during diagnosis.
type CheckedSummary struct {
	Description string           `json:"description"`
	Sources     []SourceCitation `json:"sources"`
}

// FixSummary is the proposed remediation plan in prose.
type FixSummary struct {
	Description string   `json:"description"`
	Steps       []string `json:"steps"`
}

// Confidence pairs a level with a human readable explanation.
type Confidence struct {
	Level       ConfidenceLevel `json:"level"`
	Explanation string          `json:"explanation"`
}

// Clone returns a deep copy.
func (a ResolverAnalysis) Clone() ResolverAnalysis {
	a.WhatChecked.Sources = slices.Clone(a.WhatChecked.Sources)
	a.WhatUsuallyFixes.Steps = slices.Clone(a.WhatUsuallyFixes.Steps)
	return a
}
