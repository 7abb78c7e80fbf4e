package preprocess

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/cognicore/facet/pkg/facet/analysis"
	"github.com/cognicore/facet/pkg/facet/config"
	"github.com/cognicore/facet/pkg/facet/document"
	"github.com/cognicore/facet/pkg/facet/lexicon"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func testLexicon(t *testing.T) *lexicon.Data {
	t.Helper()
	lex, err := lexicon.NewData("en",
		[]string{"the", "of", "a", "and", "for", "in", "is"},
		[]string{`^privacy policy$`})
	if err != nil {
		t.Fatalf("NewData: %v", err)
	}
	return lex
}

func newTestBuilder(t *testing.T, cfg config.Config, query string) *Builder {
	t.Helper()
	lex := testLexicon(t)
	return NewBuilder(cfg, analysis.NewEnglish(lex), lex, query, quietLogger)
}

// runAll runs every stage and freezes
func runAll(t *testing.T, cfg config.Config, docs []document.Document, query string) *Frozen {
	t.Helper()
	b := newTestBuilder(t, cfg, query)
	TokenizeDocuments(b, docs)
	NormalizeCase(b)
	BindStems(b)
	ExtractPhrases(b)
	FilterLabels(b)
	AssignDocuments(b)
	return b.Freeze()
}

// titles makes one title-only English document per text
func titles(texts ...string) []document.Document {
	docs := make([]document.Document, len(texts))
	for i, text := range texts {
		docs[i] = document.Document{
			Index:    i,
			Language: "en",
			Fields:   []document.Field{{Name: document.FieldTitle, Text: text}},
		}
	}
	return docs
}

func labelTexts(f *Frozen) []string {
	var out []string
	for _, l := range f.Labels() {
		out = append(out, l.Text)
	}
	return out
}

func findLabel(f *Frozen, text string) (Label, int, bool) {
	for i, l := range f.Labels() {
		if l.Text == text {
			return l, i, true
		}
	}
	return Label{}, -1, false
}

// phraseTexts renders the non-suppressed phrases as lowercase word sequences
func phraseTexts(f *Frozen) []string {
	var out []string
	for _, p := range f.Phrases() {
		if p.Suppressed {
			continue
		}
		out = append(out, phraseText(f, p))
	}
	return out
}

func phraseText(f *Frozen, p Phrase) string {
	parts := make([]string, len(p.Words))
	for i, wi := range p.Words {
		parts[i] = f.Word(wi).Key
	}
	return strings.Join(parts, " ")
}

func docsOf(l Label) []uint32 {
	if l.Docs == nil {
		return nil
	}
	return l.Docs.ToArray()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
