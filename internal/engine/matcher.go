package engine

import (
	"strings"

	"github.com/miradorstack/mirador-resolver/internal/corpus"
	"github.com/miradorstack/mirador-resolver/internal/models"
)

// Matches holds the corpus entries relevant to a captured context, in corpus order.
type Matches struct {
	Articles []models.HelpArticle
	Issues   []models.KnownIssue
	Notes    []models.CodebaseNote
}

// Citations lists articles, then issues, then notes.
func (m Matches) Citations() []models.SourceCitation {
	sources := make([]models.SourceCitation, 0, len(m.Articles)+len(m.Issues)+len(m.Notes))
	for _, a := range m.Articles {
		sources = append(sources, a.Cite())
	}
	for _, i := range m.Issues {
		sources = append(sources, i.Cite())
	}
	for _, n := range m.Notes {
		sources = append(sources, n.Cite())
	}
	return sources
}

// Empty reports whether nothing matched.
func (m Matches) Empty() bool {
	return len(m.Articles) == 0 && len(m.Issues) == 0 && len(m.Notes) == 0
}

// KnowledgeMatcher selects corpus entries by keyword and service-name overlap.
type KnowledgeMatcher struct {
	corpus corpus.Provider
}

// NewKnowledgeMatcher constructs a matcher over the supplied corpus. A nil corpus matches nothing.
func NewKnowledgeMatcher(c corpus.Provider) *KnowledgeMatcher {
	return &KnowledgeMatcher{corpus: c}
}

// Match returns the relevant subset of every collection.
func (m *KnowledgeMatcher) Match(ctx models.UserContext) Matches {
	var out Matches
	if m == nil || m.corpus == nil {
		return out
	}

	page := strings.ToLower(ctx.Page)
	errLower := strings.ToLower(ctx.ErrorMessage)
	terms := append(strings.Fields(page), strings.Fields(errLower)...)

	for _, article := range m.corpus.Articles() {
		if keywordsOverlap(article.Keywords, terms) {
			out.Articles = append(out.Articles, article)
		}
	}
	for _, issue := range m.corpus.KnownIssues() {
		if servicesOverlap(issue.AffectedServices, page, errLower) {
			out.Issues = append(out.Issues, issue)
		}
	}
	for _, note := range m.corpus.CodebaseNotes() {
		if noteMatches(note.Service, page, errLower) {
			out.Notes = append(out.Notes, note)
		}
	}
	return out
}

func keywordsOverlap(keywords, terms []string) bool {
	for _, kw := range keywords {
		kw = strings.ToLower(kw)
		if kw == "" {
			continue
		}
		for _, term := range terms {
			if strings.Contains(term, kw) || strings.Contains(kw, term) {
				return true
			}
		}
	}
	return false
}

// servicesOverlap compares the prefix of each "prefix-suffix" service name.
func servicesOverlap(services []string, page, errLower string) bool {
	for _, svc := range services {
		prefix := strings.ToLower(strings.SplitN(svc, "-", 2)[0])
		if prefix == "" {
			continue
		}
		if strings.Contains(errLower, prefix) || strings.Contains(page, prefix) {
			return true
		}
	}
	return false
}

func noteMatches(service, page, errLower string) bool {
	name := strings.ToLower(service)
	if name == "" {
		return false
	}
	if strings.Contains(page, name) {
		return true
	}
	stem := strings.ReplaceAll(name, "service", "")
	return stem != "" && strings.Contains(errLower, stem)
}
