// Package facet is the entry point of the preprocessing core: it resolves
// the configured language and lexical resources, runs the pipeline stages
// in order and hands back a frozen preprocessing context.
//
// Example:
//
//	p, err := facet.New(ctx, facet.Options{Config: config.Default()})
//	if err != nil { ... }
//	defer p.Close()
//	frozen, err := p.Preprocess(ctx, docs, "search engine")
//	for _, l := range frozen.Labels() {
//		fmt.Println(l.Text, l.DF, l.Docs.ToArray())
//	}
package facet

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cognicore/facet/internal/logging"
	"github.com/cognicore/facet/pkg/facet/analysis"
	"github.com/cognicore/facet/pkg/facet/config"
	"github.com/cognicore/facet/pkg/facet/document"
	"github.com/cognicore/facet/pkg/facet/lexicon"
	"github.com/cognicore/facet/pkg/facet/metrics"
	"github.com/cognicore/facet/pkg/facet/preprocess"
)

// Options configures a Preprocessor
type Options struct {
	Config config.Config
	// Provider supplies lexical data. When nil one is built from
	// Config.LexicalResourceOverride, falling back to the embedded defaults.
	Provider *lexicon.Provider
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
}

// Preprocessor runs preprocessing batches. It is safe for concurrent use;
// every call to Preprocess builds its own context and only the lexicon
// provider is shared.
type Preprocessor struct {
	cfg      config.Config
	provider *lexicon.Provider
	logger   *slog.Logger
	metrics  *metrics.Metrics
	closer   io.Closer
}

// New validates the configuration and prepares the lexicon provider.
func New(ctx context.Context, opts Options) (*Preprocessor, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	logger := logging.WithComponent("facet")
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "facet")
	}
	p := &Preprocessor{
		cfg:      opts.Config,
		provider: opts.Provider,
		logger:   logger,
		metrics:  opts.Metrics,
	}
	if p.provider == nil {
		source, closer, err := overrideSource(ctx, opts.Config.LexicalResourceOverride)
		if err != nil {
			return nil, err
		}
		p.provider = lexicon.NewProvider(source)
		p.closer = closer
	}
	return p, nil
}

// overrideSource builds the lexical source named by the override, with the
// embedded defaults behind it
func overrideSource(ctx context.Context, o config.LexicalOverride) (lexicon.Source, io.Closer, error) {
	switch {
	case o.IsZero():
		return lexicon.EmbeddedSource{}, nil, nil
	case o.SQLite != "":
		db, err := lexicon.OpenSQLite(ctx, o.SQLite)
		if err != nil {
			return nil, nil, fmt.Errorf("lexical override: %w", err)
		}
		return lexicon.Fallback{db, lexicon.EmbeddedSource{}}, db, nil
	}
	return lexicon.Fallback{lexicon.DirSource{Dir: o.Dir}, lexicon.EmbeddedSource{}}, nil, nil
}

// Close releases the lexical override source, if one was opened
func (p *Preprocessor) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}

// Config returns the configuration in use
func (p *Preprocessor) Config() config.Config { return p.cfg }

// Preprocess runs the whole pipeline over one batch. Configuration errors
// (unsupported language, missing lexical resource) are returned before any
// stage runs. Bad documents are skipped and reported as warnings on the
// result.
func (p *Preprocessor) Preprocess(ctx context.Context, docs []document.Document, query string) (*preprocess.Frozen, error) {
	lang, err := analysis.ParseLanguage(p.cfg.Language)
	if err != nil {
		p.metrics.ObserveFailure(p.cfg.Language)
		return nil, fmt.Errorf("preprocess: %w", err)
	}
	lex, err := p.provider.Get(ctx, string(lang))
	p.metrics.ObserveLexicon(string(lang), err)
	if err != nil {
		p.metrics.ObserveFailure(string(lang))
		return nil, fmt.Errorf("preprocess: %w", err)
	}
	analyzer, err := analysis.Select(lang, lex)
	if err != nil {
		p.metrics.ObserveFailure(string(lang))
		return nil, fmt.Errorf("preprocess: %w", err)
	}

	start := time.Now()
	b := preprocess.NewBuilder(p.cfg, analyzer, lex, query, p.logger)
	stages := []struct {
		name string
		run  func(*preprocess.Builder)
	}{
		{"tokenize", func(b *preprocess.Builder) { preprocess.TokenizeDocuments(b, docs) }},
		{"case", preprocess.NormalizeCase},
		{"stems", preprocess.BindStems},
		{"phrases", preprocess.ExtractPhrases},
		{"labels", preprocess.FilterLabels},
		{"assign", preprocess.AssignDocuments},
	}
	for _, s := range stages {
		t := time.Now()
		s.run(b)
		p.metrics.ObserveStage(s.name, time.Since(t))
	}
	frozen := b.Freeze()

	p.metrics.ObserveRun(metrics.RunResult{
		Language:   string(lang),
		Accepted:   frozen.DocumentCount(),
		Skipped:    len(frozen.Warnings()),
		Labels:     frozen.LabelCount(),
		Rejections: frozen.Rejections(),
	})
	p.logger.Info("preprocessing finished",
		slog.String("run", frozen.RunID()),
		slog.String("language", string(lang)),
		slog.Int("documents", frozen.DocumentCount()),
		slog.Int("skipped", len(frozen.Warnings())),
		slog.Int("words", frozen.WordCount()),
		slog.Int("phrases", frozen.PhraseCount()),
		slog.Int("labels", frozen.LabelCount()),
		slog.Duration("elapsed", time.Since(start)))
	return frozen, nil
}
