package lexicon

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/cognicore/facet/internal/logging"
	"github.com/cognicore/facet/pkg/facet/internalerr"
)

// Provider memoizes lexical data per language on top of a Source.
//
// Each language is loaded at most once, even when many preprocessing runs
// ask for it at the same moment: concurrent first requests share a single
// in-flight load, and the result is published to a read-only cache that
// every later request reads without locking. Failed loads are not cached.
type Provider struct {
	source Source
	group  singleflight.Group
	cache  sync.Map // language -> *Data
	loads  atomic.Int64
	logger *slog.Logger
}

// NewProvider creates a provider over the given source. A nil source
// means the embedded defaults.
func NewProvider(source Source) *Provider {
	if source == nil {
		source = EmbeddedSource{}
	}
	return &Provider{
		source: source,
		logger: logging.WithComponent("lexicon"),
	}
}

// Get returns the lexical data for a language, loading it on first use.
func (p *Provider) Get(ctx context.Context, language string) (*Data, error) {
	key := strings.ToLower(strings.TrimSpace(language))
	if key == "" {
		return nil, fmt.Errorf("lexicon: empty language: %w", internalerr.ErrInvalidInput)
	}
	if d, ok := p.cache.Load(key); ok {
		return d.(*Data), nil
	}

	v, err, shared := p.group.Do(key, func() (any, error) {
		// A flight that finished between our cache miss and Do already
		// published the data.
		if d, ok := p.cache.Load(key); ok {
			return d, nil
		}
		d, err := p.source.Load(ctx, key)
		if err != nil {
			return nil, err
		}
		p.loads.Add(1)
		p.cache.Store(key, d)
		p.logger.Debug("lexical data loaded",
			"language", key,
			"stop_words", d.Stats().StopWords,
			"stop_labels", d.Stats().StopLabels)
		return d, nil
	})
	if err != nil {
		return nil, fmt.Errorf("lexicon %q: %w", key, err)
	}
	if shared {
		p.logger.Debug("lexical data load shared", "language", key)
	}
	return v.(*Data), nil
}

// Loads returns how many times the underlying source was successfully
// loaded. It never exceeds the number of distinct languages requested.
func (p *Provider) Loads() int64 {
	return p.loads.Load()
}
