package facet

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/cognicore/facet/pkg/facet/config"
	"github.com/cognicore/facet/pkg/facet/document"
	"github.com/cognicore/facet/pkg/facet/internalerr"
	"github.com/cognicore/facet/pkg/facet/lexicon"
	"github.com/cognicore/facet/pkg/facet/metrics"
	"github.com/cognicore/facet/pkg/facet/preprocess"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func exampleDocs() []document.Document {
	return []document.Document{
		document.New(0, "en", "Apache Lucene search engine", ""),
		document.New(1, "en", "Lucene search engine performance", ""),
		document.New(2, "en", "Apache search engine design", ""),
	}
}

func labelIndex(f *preprocess.Frozen, text string) (preprocess.Label, int) {
	for i, l := range f.Labels() {
		if l.Text == text {
			return l, i
		}
	}
	return preprocess.Label{}, -1
}

func TestPreprocessExample(t *testing.T) {
	ctx := context.Background()
	p, err := New(ctx, Options{Config: config.Default(), Logger: quiet})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	f, err := p.Preprocess(ctx, exampleDocs(), "")
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}

	se, seIdx := labelIndex(f, "search engine")
	if seIdx < 0 {
		t.Fatalf("Missing search engine label")
	}
	if se.DF != 3 {
		t.Errorf("search engine DF = %d, want 3", se.DF)
	}
	_, sIdx := labelIndex(f, "search")
	_, eIdx := labelIndex(f, "engine")
	if sIdx < seIdx || eIdx < seIdx {
		t.Errorf("search engine (%d) should rank above search (%d) and engine (%d)", seIdx, sIdx, eIdx)
	}

	apache, aIdx := labelIndex(f, "Apache")
	if aIdx < 0 {
		t.Fatal("Missing Apache label")
	}
	docs := apache.Docs.ToArray()
	if len(docs) != 2 || f.Document(int(docs[0])).Index != 0 || f.Document(int(docs[1])).Index != 2 {
		t.Errorf("Apache should be assigned to documents 0 and 2, got %v", docs)
	}
}

func TestPreprocessConfigurationErrors(t *testing.T) {
	ctx := context.Background()

	cfg := config.Default()
	cfg.Language = "tlh"
	p, err := New(ctx, Options{Config: cfg, Logger: quiet})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := p.Preprocess(ctx, exampleDocs(), ""); !errors.Is(err, internalerr.ErrUnsupportedLanguage) {
		t.Errorf("Expected ErrUnsupportedLanguage, got %v", err)
	}

	// A provider whose source has no English data
	empty := lexicon.NewProvider(lexicon.DirSource{Dir: t.TempDir()})
	p, err = New(ctx, Options{Config: config.Default(), Provider: empty, Logger: quiet})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := p.Preprocess(ctx, exampleDocs(), ""); !errors.Is(err, internalerr.ErrMissingLexicalResource) {
		t.Errorf("Expected ErrMissingLexicalResource, got %v", err)
	}

	bad := config.Default()
	bad.MaxPhraseLength = 0
	if _, err := New(ctx, Options{Config: bad}); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestPreprocessSkipsBadDocuments(t *testing.T) {
	ctx := context.Background()
	p, err := New(ctx, Options{Config: config.Default(), Logger: quiet})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	docs := append(exampleDocs(), document.Document{Index: 3, Language: "en"})
	f, err := p.Preprocess(ctx, docs, "")
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	if f.DocumentCount() != 3 {
		t.Errorf("Expected 3 accepted documents, got %d", f.DocumentCount())
	}
	w := f.Warnings()
	if len(w) != 1 || w[0].DocIndex != 3 || !errors.Is(w[0].Err, internalerr.ErrInvalidDocument) {
		t.Errorf("Unexpected warnings: %+v", w)
	}
}

func TestPreprocessDirOverride(t *testing.T) {
	dir := t.TempDir()
	content := "language: en\nstopwords: [lucene]\nstoplabels: []\n"
	if err := os.WriteFile(filepath.Join(dir, "en.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.LexicalResourceOverride.Dir = dir
	ctx := context.Background()
	p, err := New(ctx, Options{Config: cfg, Logger: quiet})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f, err := p.Preprocess(ctx, exampleDocs(), "")
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	if _, i := labelIndex(f, "Lucene"); i >= 0 {
		t.Error("Lucene is a stop word in the override and should be filtered")
	}
	if _, i := labelIndex(f, "Apache"); i < 0 {
		t.Error("Apache should still be a label")
	}
}

func TestPreprocessSQLiteOverride(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "lexicon.db")

	db, err := lexicon.OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	data, err := lexicon.NewData("en", []string{"apache"}, []string{`^design$`})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Replace(ctx, data); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	db.Close()

	cfg := config.Default()
	cfg.LexicalResourceOverride.SQLite = path
	p, err := New(ctx, Options{Config: cfg, Logger: quiet})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	f, err := p.Preprocess(ctx, exampleDocs(), "")
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	if _, i := labelIndex(f, "Apache"); i >= 0 {
		t.Error("Apache is a stop word in the SQLite lexicon")
	}
	if _, i := labelIndex(f, "design"); i >= 0 {
		t.Error("design matches a stop label in the SQLite lexicon")
	}
	if _, i := labelIndex(f, "search engine"); i < 0 {
		t.Error("search engine should survive")
	}
}

func TestPreprocessConcurrentRunsShareLexicon(t *testing.T) {
	ctx := context.Background()
	provider := lexicon.NewProvider(nil)
	p, err := New(ctx, Options{Config: config.Default(), Provider: provider, Logger: quiet})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	const runs = 16
	var wg sync.WaitGroup
	results := make([]int, runs)
	errs := make([]error, runs)
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			f, err := p.Preprocess(ctx, exampleDocs(), "")
			errs[i] = err
			if err == nil {
				results[i] = f.LabelCount()
			}
		}(i)
	}
	wg.Wait()

	for i := range errs {
		if errs[i] != nil {
			t.Fatalf("Run %d: %v", i, errs[i])
		}
		if results[i] != results[0] {
			t.Errorf("Run %d produced %d labels, run 0 %d", i, results[i], results[0])
		}
	}
	if provider.Loads() != 1 {
		t.Errorf("English lexicon loaded %d times, want 1", provider.Loads())
	}
}

func TestPreprocessMetrics(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	p, err := New(ctx, Options{Config: config.Default(), Logger: quiet, Metrics: m})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := p.Preprocess(ctx, exampleDocs(), ""); err != nil {
		t.Fatalf("Preprocess: %v", err)
	}

	if got := testutil.ToFloat64(m.RunsTotal.WithLabelValues("en", "ok")); got != 1 {
		t.Errorf("Expected 1 run, got %v", got)
	}
	if got := testutil.ToFloat64(m.DocumentsTotal.WithLabelValues("accepted")); got != 3 {
		t.Errorf("Expected 3 accepted documents, got %v", got)
	}
	if n := testutil.CollectAndCount(m.StageDuration); n != 6 {
		t.Errorf("Expected 6 stage series, got %d", n)
	}
}

func TestPreprocessJapanese(t *testing.T) {
	cfg := config.Default()
	cfg.Language = "ja"
	cfg.MinLabelLength = 2

	ctx := context.Background()
	p, err := New(ctx, Options{Config: cfg, Logger: quiet})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	docs := []document.Document{
		document.New(0, "ja", "検索エンジンの設計", ""),
		document.New(1, "ja", "高速な検索エンジン", ""),
		document.New(2, "ja", "検索エンジンの性能", ""),
	}
	f, err := p.Preprocess(ctx, docs, "")
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}

	l, i := labelIndex(f, "検索エンジン")
	if i < 0 {
		var texts []string
		for _, l := range f.Labels() {
			texts = append(texts, l.Text)
		}
		t.Fatalf("Expected the phrase 検索エンジン joined without spaces, got %v", texts)
	}
	if l.DF != 3 {
		t.Errorf("検索エンジン DF = %d, want 3", l.DF)
	}
	if _, i := labelIndex(f, "の"); i >= 0 {
		t.Error("Particle の must not be a label")
	}
}

func TestOverrideSource(t *testing.T) {
	ctx := context.Background()

	src, closer, err := overrideSource(ctx, config.LexicalOverride{})
	if err != nil || closer != nil {
		t.Fatalf("No override: closer %v, err %v", closer, err)
	}
	if _, ok := src.(lexicon.EmbeddedSource); !ok {
		t.Errorf("No override should use the embedded defaults, got %T", src)
	}

	src, closer, err = overrideSource(ctx, config.LexicalOverride{Dir: t.TempDir()})
	if err != nil || closer != nil {
		t.Fatalf("Dir override: closer %v, err %v", closer, err)
	}
	if fb, ok := src.(lexicon.Fallback); !ok || len(fb) != 2 {
		t.Errorf("Dir override should fall back to the defaults, got %#v", src)
	}

	src, closer, err = overrideSource(ctx, config.LexicalOverride{SQLite: filepath.Join(t.TempDir(), "lex.db")})
	if err != nil {
		t.Fatalf("SQLite override: %v", err)
	}
	if closer == nil {
		t.Fatal("SQLite override should hand back its database for closing")
	}
	defer closer.Close()
	if _, err := src.Load(ctx, "en"); err != nil {
		t.Errorf("An empty SQLite source should fall back for en: %v", err)
	}
}
