package preprocess

import (
	"testing"

	"github.com/cognicore/facet/pkg/facet/config"
)

func TestFilterLabelsRejections(t *testing.T) {
	cfg := config.Default()
	f := runAll(t, cfg, titles(
		"the Lucene 2024 go",
		"the Lucene 2024 go",
		"privacy policy",
		"privacy policy",
	), "lucene")

	got := labelTexts(f)
	for _, text := range []string{"the", "Lucene", "2024", "go", "privacy policy"} {
		if contains(got, text) {
			t.Errorf("%q should have been filtered, labels %v", text, got)
		}
	}
	if !contains(got, "privacy") || !contains(got, "policy") {
		t.Errorf("Single words privacy and policy should survive, got %v", got)
	}

	rej := f.Rejections()
	want := map[string]int{
		RejectStopWords:  1, // the
		RejectQueryWords: 1, // Lucene
		RejectNumeric:    1, // 2024
		RejectLength:     1, // go
		RejectStopLabels: 1, // privacy policy
	}
	for name, n := range want {
		if rej[name] != n {
			t.Errorf("Rejections[%s] = %d, want %d (all: %v)", name, rej[name], n, rej)
		}
	}
}

func TestFilterLabelsSwitches(t *testing.T) {
	cfg := config.Default()
	cfg.Filters = config.Filters{}
	cfg.MinLabelLength = 1

	f := runAll(t, cfg, titles("the Lucene 2024 go", "the Lucene 2024 go"), "lucene")
	got := labelTexts(f)
	for _, text := range []string{"the", "Lucene", "2024", "go"} {
		if !contains(got, text) {
			t.Errorf("With filters off %q should survive, got %v", text, got)
		}
	}
}

func TestFilterLabelsPhraseOfStopWords(t *testing.T) {
	b := newTestBuilder(t, config.Default(), "")
	TokenizeDocuments(b, titles("engine for the web", "engine for the web"))
	NormalizeCase(b)
	BindStems(b)
	ExtractPhrases(b)

	c := candidate{words: []int{b.wordIndex["for"], b.wordIndex["the"]}}
	c.Text = "for the"
	if reason := b.reject(c); reason != RejectStopWords {
		t.Errorf("A phrase made of stop words should be rejected, got %q", reason)
	}
	c = candidate{words: []int{b.wordIndex["engine"], b.wordIndex["for"], b.wordIndex["the"], b.wordIndex["web"]}}
	c.Text = "engine for the web"
	if reason := b.reject(c); reason != "" {
		t.Errorf("A phrase with interior stop words should pass, got %q", reason)
	}
}

func TestFilterLabelsStemDuplicates(t *testing.T) {
	f := runAll(t, config.Default(), titles(
		"engine design",
		"engine tuning",
		"engines",
	), "")

	got := labelTexts(f)
	if !contains(got, "engine") {
		t.Fatalf("engine should survive, got %v", got)
	}
	if contains(got, "engines") {
		t.Errorf("engines shares engine's stem and is the rarer spelling, got %v", got)
	}
	if n := f.Rejections()[RejectStemDuplicates]; n != 1 {
		t.Errorf("Expected 1 stem-duplicate rejection, got %d", n)
	}

	// The surviving word label covers the whole stem group
	l, _, _ := findLabel(f, "engine")
	if docs := docsOf(l); len(docs) != 3 {
		t.Errorf("engine should be assigned to all 3 documents, got %v", docs)
	}
}

func TestWordLabelsUseStemGroupStatistics(t *testing.T) {
	f := runAll(t, config.Default(), titles(
		"engine design",
		"engines design",
		"engines review",
	), "")

	got := labelTexts(f)
	if len(got) == 0 || got[0] != "engines" {
		t.Fatalf("engines covers all 3 documents and should rank first, got %v", got)
	}
	l, _, _ := findLabel(f, "engines")
	if l.DF != 3 || l.TF != 3 {
		t.Errorf("engines DF %d TF %d, want the stem group's 3 and 3", l.DF, l.TF)
	}

	for _, l := range f.Labels() {
		if l.Kind != LabelWord {
			continue
		}
		if n := int(l.Docs.GetCardinality()); n != l.DF {
			t.Errorf("Word label %q DF %d, assigned to %d documents", l.Text, l.DF, n)
		}
	}
}

func TestFilterLabelsStemDuplicateTieKeepsShorter(t *testing.T) {
	f := runAll(t, config.Default(), titles("connections", "connection"), "")
	got := labelTexts(f)
	if !contains(got, "connection") || contains(got, "connections") {
		t.Errorf("Equal DF should keep the shorter text, got %v", got)
	}
}

func TestFilterLabelsOrdering(t *testing.T) {
	f := runAll(t, config.Default(), titles(
		"zeta alpha",
		"zeta alpha",
		"zeta beta",
	), "")
	got := labelTexts(f)
	// zeta DF3; "zeta alpha" DF2 two words; alpha DF2; beta DF1
	want := []string{"zeta", "zeta alpha", "alpha", "beta"}
	if len(got) != len(want) {
		t.Fatalf("Labels = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Label %d = %q, want %q (all %v)", i, got[i], want[i], got)
		}
	}
}
