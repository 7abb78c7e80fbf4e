package lexicon

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/facet/pkg/facet/internalerr"
)

//go:embed defaults/*.yaml
var defaultFiles embed.FS

// Source loads lexical data for a language. Implementations return an
// error wrapping internalerr.ErrMissingLexicalResource when they hold no
// data for the requested language.
type Source interface {
	Load(ctx context.Context, language string) (*Data, error)
}

// File is the on-disk YAML layout of one language's resources.
//
// Expected format:
//
//	language: en
//	stopwords: [a, an, the]
//	stoplabels:
//	  - '(?i)^click here$'
type File struct {
	Language   string   `yaml:"language"`
	StopWords  []string `yaml:"stopwords"`
	StopLabels []string `yaml:"stoplabels"`
}

// ParseYAML decodes a lexical resource file. When the file does not name
// its language, fallbackLanguage is used.
func ParseYAML(data []byte, fallbackLanguage string) (*Data, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse lexical resource: %w", err)
	}
	lang := f.Language
	if strings.TrimSpace(lang) == "" {
		lang = fallbackLanguage
	}
	return NewData(lang, f.StopWords, f.StopLabels)
}

// LoadFromYAML loads lexical data from a single YAML file
func LoadFromYAML(file string) (*Data, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	lang := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	return ParseYAML(data, lang)
}

// EmbeddedSource serves the built-in resources compiled into the binary.
type EmbeddedSource struct{}

// Load implements Source.
func (EmbeddedSource) Load(_ context.Context, language string) (*Data, error) {
	return loadFS(defaultFiles, "defaults", language)
}

// DirSource reads <Dir>/<language>.yaml on every Load. Wrap it in a
// Provider to load each language once.
type DirSource struct {
	Dir string
}

// Load implements Source.
func (s DirSource) Load(_ context.Context, language string) (*Data, error) {
	if s.Dir == "" {
		return nil, fmt.Errorf("lexicon dir source: empty directory: %w", internalerr.ErrInvalidConfig)
	}
	return loadFS(os.DirFS(s.Dir), ".", language)
}

func loadFS(fsys fs.FS, dir, language string) (*Data, error) {
	name := strings.ToLower(strings.TrimSpace(language))
	if name == "" || strings.ContainsAny(name, `/\.`) {
		return nil, fmt.Errorf("lexicon: bad language tag %q: %w", language, internalerr.ErrInvalidInput)
	}

	data, err := fs.ReadFile(fsys, path.Join(dir, name+".yaml"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("lexicon: no resources for %q: %w", name, internalerr.ErrMissingLexicalResource)
	}
	if err != nil {
		return nil, fmt.Errorf("lexicon: read %s: %w", name, err)
	}
	return ParseYAML(data, name)
}

// Fallback tries each source in order and returns the first data found.
// Only ErrMissingLexicalResource moves on to the next source; any other
// error is returned as is.
type Fallback []Source

// Load implements Source.
func (f Fallback) Load(ctx context.Context, language string) (*Data, error) {
	for _, src := range f {
		data, err := src.Load(ctx, language)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, internalerr.ErrMissingLexicalResource) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("lexicon: no source holds %q: %w", language, internalerr.ErrMissingLexicalResource)
}
