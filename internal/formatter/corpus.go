package formatter

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/miradorstack/mirador-resolver/internal/corpus"
	"github.com/miradorstack/mirador-resolver/internal/models"
)

// DisplayCorpus lists every corpus entry.
func DisplayCorpus(w io.Writer, p corpus.Provider, format string) error {
	file := corpus.File{
		Articles:      p.Articles(),
		KnownIssues:   p.KnownIssues(),
		CodebaseNotes: p.CodebaseNotes(),
	}
	switch format {
	case FormatJSON:
		return writeJSON(w, file)
	case FormatYAML:
		return writeYAML(w, file)
	}

	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Fprintf(w, "HELP ARTICLES (%d)\n", len(file.Articles))
	for _, a := range file.Articles {
		fmt.Fprintf(w, "   %-10s %s %s\n", a.ID, a.Title, color.HiBlackString("[%s]", a.Category))
	}
	cyan.Fprintf(w, "KNOWN ISSUES (%d)\n", len(file.KnownIssues))
	for _, i := range file.KnownIssues {
		fmt.Fprintf(w, "   %-10s %s %s\n", i.ID, i.Title, color.YellowString("(%s)", i.Status))
	}
	cyan.Fprintf(w, "CODEBASE NOTES (%d)\n", len(file.CodebaseNotes))
	for _, n := range file.CodebaseNotes {
		fmt.Fprintf(w, "   %-10s %s\n", n.ID, n.Service)
	}
	return nil
}

// DisplayCitations lists the sources a context matched.
func DisplayCitations(w io.Writer, sources []models.SourceCitation, format string) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, sources)
	case FormatYAML:
		return writeYAML(w, sources)
	}
	if len(sources) == 0 {
		fmt.Fprintln(w, color.HiBlackString("No corpus entries matched."))
		return nil
	}
	for _, src := range sources {
		fmt.Fprintf(w, "   [%s] %s %s\n", src.Type, src.Title, color.HiBlackString(src.ID))
	}
	return nil
}
