package corpus

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/miradorstack/mirador-resolver/internal/models"
	"github.com/miradorstack/mirador-resolver/internal/utils"
)

//go:embed default.yaml
var defaultCorpus []byte

// ErrDuplicateID is returned when two entries in one collection share an id.
var ErrDuplicateID = errors.New("duplicate id")

// ErrMissingID is returned when an entry has no id.
var ErrMissingID = errors.New("missing id")

// Provider exposes the three read-only knowledge collections in declaration order.
type Provider interface {
	Articles() []models.HelpArticle
	KnownIssues() []models.KnownIssue
	CodebaseNotes() []models.CodebaseNote
}

// Corpus is an immutable, fully loaded Provider.
type Corpus struct {
	articles []models.HelpArticle
	issues   []models.KnownIssue
	notes    []models.CodebaseNote
}

// File is the YAML root structure of a corpus file.
type File struct {
	Articles      []models.HelpArticle  `json:"articles" yaml:"articles"`
	KnownIssues   []models.KnownIssue   `json:"knownIssues" yaml:"knownIssues"`
	CodebaseNotes []models.CodebaseNote `json:"codebaseNotes" yaml:"codebaseNotes"`
}

// New builds a Corpus from already decoded collections after validating ids.
func New(articles []models.HelpArticle, issues []models.KnownIssue, notes []models.CodebaseNote) (*Corpus, error) {
	if err := validate(articles, issues, notes); err != nil {
		return nil, utils.NewAppError("corpus.New", "invalid corpus", err)
	}
	return &Corpus{
		articles: append([]models.HelpArticle(nil), articles...),
		issues:   append([]models.KnownIssue(nil), issues...),
		notes:    append([]models.CodebaseNote(nil), notes...),
	}, nil
}

// Default returns the corpus embedded in the binary.
func Default() (*Corpus, error) {
	return Parse(defaultCorpus)
}

// Load reads a corpus from path. An empty path yields the embedded default.
func Load(path string) (*Corpus, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, utils.NewAppError("corpus.Load", fmt.Sprintf("read %s", path), err)
	}
	return Parse(data)
}

// Parse decodes YAML corpus content.
func Parse(data []byte) (*Corpus, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, utils.NewAppError("corpus.Parse", "decode yaml", err)
	}
	return New(file.Articles, file.KnownIssues, file.CodebaseNotes)
}

// Articles returns the help articles.
func (c *Corpus) Articles() []models.HelpArticle { return c.articles }

// KnownIssues returns the known issues.
func (c *Corpus) KnownIssues() []models.KnownIssue { return c.issues }

// CodebaseNotes returns the codebase failure notes.
func (c *Corpus) CodebaseNotes() []models.CodebaseNote { return c.notes }

// Size reports the number of entries per collection.
func (c *Corpus) Size() (articles, issues, notes int) {
	return len(c.articles), len(c.issues), len(c.notes)
}

func validate(articles []models.HelpArticle, issues []models.KnownIssue, notes []models.CodebaseNote) error {
	ids := make([]string, 0, len(articles))
	for _, a := range articles {
		ids = append(ids, a.ID)
	}
	if err := uniqueIDs(models.SourceHelpArticle, ids); err != nil {
		return err
	}

	ids = ids[:0]
	for _, i := range issues {
		ids = append(ids, i.ID)
	}
	if err := uniqueIDs(models.SourceKnownIssue, ids); err != nil {
		return err
	}

	ids = ids[:0]
	for _, n := range notes {
		ids = append(ids, n.ID)
	}
	return uniqueIDs(models.SourceCodebaseNote, ids)
}

func uniqueIDs(kind models.SourceType, ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for idx, id := range ids {
		if id == "" {
			return fmt.Errorf("%s #%d: %w", kind, idx, ErrMissingID)
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%s %q: %w", kind, id, ErrDuplicateID)
		}
		seen[id] = struct{}{}
	}
	return nil
}
