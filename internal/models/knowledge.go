package models

// SourceType enumerates the corpus collections a citation can point at.
type SourceType string

const (
	SourceHelpArticle  SourceType = "help-article"
	SourceKnownIssue   SourceType = "known-issue"
	SourceCodebaseNote SourceType = "codebase-note"
)

// IssueStatus captures the lifecycle of a known issue.
type IssueStatus string

const (
	IssueInvestigating IssueStatus = "investigating"
	IssueIdentified    IssueStatus = "identified"
	IssueMonitoring    IssueStatus = "monitoring"
	IssueResolved      IssueStatus = "resolved"
)

// HelpArticle is a customer-facing troubleshooting guide.
type HelpArticle struct {
	ID       string   `json:"id" yaml:"id"`
	Title    string   `json:"title" yaml:"title"`
	Content  string   `json:"content" yaml:"content"`
	Category string   `json:"category" yaml:"category"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// KnownIssue is an acknowledged incident affecting one or more services.
type KnownIssue struct {
	ID               string      `json:"id" yaml:"id"`
	Title            string      `json:"title" yaml:"title"`
	Description      string      `json:"description" yaml:"description"`
	Status           IssueStatus `json:"status" yaml:"status"`
	AffectedServices []string    `json:"affectedServices" yaml:"affectedServices"`
	Workaround       string      `json:"workaround,omitempty" yaml:"workaround,omitempty"`
	LastUpdated      string      `json:"lastUpdated" yaml:"lastUpdated"`
}

// CodebaseNote documents how an internal service tends to fail.
type CodebaseNote struct {
	ID                 string            `json:"id" yaml:"id"`
	Service            string            `json:"service" yaml:"service"`
	Description        string            `json:"description" yaml:"description"`
	CommonFailureModes []string          `json:"commonFailureModes" yaml:"commonFailureModes"`
	ErrorCodes         map[string]string `json:"errorCodes,omitempty" yaml:"errorCodes,omitempty"`
}

// SourceCitation is a lightweight reference to a corpus entry.
type SourceCitation struct {
	Type  SourceType `json:"type"`
	ID    string     `json:"id"`
	Title string     `json:"title"`
}

// Cite returns the citation for an article.
func (a HelpArticle) Cite() SourceCitation {
	return SourceCitation{Type: SourceHelpArticle, ID: a.ID, Title: a.Title}
}

// Cite returns the citation for a known issue.
func (i KnownIssue) Cite() SourceCitation {
	return SourceCitation{Type: SourceKnownIssue, ID: i.ID, Title: i.Title}
}

// Cite returns the citation for a codebase note. Notes are titled by service name.
func (n CodebaseNote) Cite() SourceCitation {
	return SourceCitation{Type: SourceCodebaseNote, ID: n.ID, Title: n.Service}
}
