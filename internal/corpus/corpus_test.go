package corpus

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultCorpus(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("load default corpus: %v", err)
	}
	articles, issues, notes := c.Size()
	if articles != 3 || issues != 3 || notes != 3 {
		t.Fatalf("unexpected corpus size: %d articles, %d issues, %d notes", articles, issues, notes)
	}
	if c.Articles()[0].ID != "integration-auth-guide" {
		t.Fatalf("expected declaration order to be preserved, got %s first", c.Articles()[0].ID)
	}
	if got := c.CodebaseNotes()[0].ErrorCodes["SF_AUTH_001"]; got != "OAuth token expired or revoked" {
		t.Fatalf("unexpected error code text: %q", got)
	}
	if c.KnownIssues()[0].Status != "investigating" {
		t.Fatalf("unexpected status: %s", c.KnownIssues()[0].Status)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corpus.yaml")
	if err := os.WriteFile(path, []byte(`articles:
  - id: billing
    title: Billing questions
    keywords: [invoice]
knownIssues: []
codebaseNotes:
  - id: billing-service
    service: BillingService
`), 0644); err != nil {
		t.Fatalf("write corpus: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load corpus: %v", err)
	}
	if len(c.Articles()) != 1 || len(c.KnownIssues()) != 0 || len(c.CodebaseNotes()) != 1 {
		t.Fatalf("unexpected collections: %+v", c)
	}
}

func TestLoadEmptyPathUsesDefault(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.Articles()) == 0 {
		t.Fatalf("expected default articles")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestParseRejectsDuplicateIDs(t *testing.T) {
	_, err := Parse([]byte(`knownIssues:
  - id: dup
  - id: dup
`))
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestParseRejectsMissingIDs(t *testing.T) {
	_, err := Parse([]byte(`articles:
  - title: nameless
`))
	if !errors.Is(err, ErrMissingID) {
		t.Fatalf("expected ErrMissingID, got %v", err)
	}
}
