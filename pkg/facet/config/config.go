// Package config holds the preprocessing configuration: language, phrase
// and label bounds, the canonical-case policy, filter switches and the
// lexical resource override. Values come from defaults, an optional YAML
// file and FACET_* environment overrides, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/facet/pkg/facet/internalerr"
)

// CasePolicy selects how the canonical display form of a word is chosen
// among its observed case variants.
type CasePolicy string

const (
	// CaseMajority picks the most frequent variant; ties go to the
	// capitalization pattern preference, then to the first seen.
	CaseMajority CasePolicy = "majority"
	// CasePattern prefers Capitalized > ALLCAPS > lowercase > mixed, then
	// count, then first seen.
	CasePattern CasePolicy = "pattern"
	// CaseFirstSeen keeps the first variant observed.
	CaseFirstSeen CasePolicy = "first-seen"
)

// Config is the full pipeline configuration.
type Config struct {
	Language                 string          `yaml:"language"`
	MinPhraseFrequency       int             `yaml:"minPhraseFrequency"`
	MaxPhraseLength          int             `yaml:"maxPhraseLength"`
	MinLabelLength           int             `yaml:"minLabelLength"`
	MaxLabelLength           int             `yaml:"maxLabelLength"`
	MinWordDocumentFrequency int             `yaml:"minWordDocumentFrequency"`
	MinLabelDocuments        int             `yaml:"minLabelDocuments"`
	CasePolicy               CasePolicy      `yaml:"casePolicy"`
	ExactPhraseAssignment    bool            `yaml:"exactPhraseAssignment"`
	StripMarkup              bool            `yaml:"stripMarkup"`
	Fields                   []string        `yaml:"fields"`
	Filters                  Filters         `yaml:"filters"`
	LexicalResourceOverride  LexicalOverride `yaml:"lexicalResourceOverride"`
	Logging                  LoggingConfig   `yaml:"logging"`
}

// Filters switches the individual label filters on or off.
type Filters struct {
	StopWords      bool `yaml:"stopWords"`
	QueryWords     bool `yaml:"queryWords"`
	Numeric        bool `yaml:"numeric"`
	Length         bool `yaml:"length"`
	StopLabels     bool `yaml:"stopLabels"`
	StemDuplicates bool `yaml:"stemDuplicates"`
}

// LexicalOverride points the lexicon provider at an alternate source.
// At most one of Dir and SQLite may be set; the embedded defaults are
// consulted for languages the override does not carry.
type LexicalOverride struct {
	Dir    string `yaml:"dir"`
	SQLite string `yaml:"sqlite"`
}

// IsZero reports whether no override is configured.
func (o LexicalOverride) IsZero() bool {
	return o.Dir == "" && o.SQLite == ""
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Language:                 "en",
		MinPhraseFrequency:       2,
		MaxPhraseLength:          8,
		MinLabelLength:           3,
		MaxLabelLength:           64,
		MinWordDocumentFrequency: 1,
		MinLabelDocuments:        1,
		CasePolicy:               CaseMajority,
		ExactPhraseAssignment:    true,
		Filters: Filters{
			StopWords:      true,
			QueryWords:     true,
			Numeric:        true,
			Length:         true,
			StopLabels:     true,
			StemDuplicates: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML config file (if provided) over the defaults and applies
// environment-variable overrides. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %v: %w", path, err, internalerr.ErrInvalidConfig)
		}
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks bounds and enumerations. Errors wrap ErrInvalidConfig.
func (c Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Language) == "" {
		problems = append(problems, "language is empty")
	}
	if c.MinPhraseFrequency < 1 {
		problems = append(problems, fmt.Sprintf("minPhraseFrequency %d < 1", c.MinPhraseFrequency))
	}
	if c.MaxPhraseLength < 2 {
		problems = append(problems, fmt.Sprintf("maxPhraseLength %d < 2", c.MaxPhraseLength))
	}
	if c.MinLabelLength < 1 {
		problems = append(problems, fmt.Sprintf("minLabelLength %d < 1", c.MinLabelLength))
	}
	if c.MaxLabelLength < c.MinLabelLength {
		problems = append(problems, fmt.Sprintf("maxLabelLength %d < minLabelLength %d", c.MaxLabelLength, c.MinLabelLength))
	}
	if c.MinWordDocumentFrequency < 1 {
		problems = append(problems, fmt.Sprintf("minWordDocumentFrequency %d < 1", c.MinWordDocumentFrequency))
	}
	if c.MinLabelDocuments < 1 {
		problems = append(problems, fmt.Sprintf("minLabelDocuments %d < 1", c.MinLabelDocuments))
	}
	switch c.CasePolicy {
	case CaseMajority, CasePattern, CaseFirstSeen:
	default:
		problems = append(problems, fmt.Sprintf("unknown casePolicy %q", c.CasePolicy))
	}
	if c.LexicalResourceOverride.Dir != "" && c.LexicalResourceOverride.SQLite != "" {
		problems = append(problems, "lexicalResourceOverride: dir and sqlite are mutually exclusive")
	}
	if len(c.Fields) > MaxFields {
		problems = append(problems, fmt.Sprintf("%d fields configured, at most %d supported", len(c.Fields), MaxFields))
	}
	if len(problems) > 0 {
		return fmt.Errorf("config: %s: %w", strings.Join(problems, "; "), internalerr.ErrInvalidConfig)
	}
	return nil
}

// MaxFields bounds the number of distinct field names; each gets one bit of
// a word's field mask.
const MaxFields = 64

// FieldAllowed reports whether a document field takes part in the run.
func (c Config) FieldAllowed(name string) bool {
	if len(c.Fields) == 0 {
		return true
	}
	for _, f := range c.Fields {
		if f == name {
			return true
		}
	}
	return false
}

// applyEnvOverrides reads FACET_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("FACET_LANGUAGE"); v != "" {
		cfg.Language = v
	}
	ints := []struct {
		env string
		dst *int
	}{
		{"FACET_MIN_PHRASE_FREQUENCY", &cfg.MinPhraseFrequency},
		{"FACET_MAX_PHRASE_LENGTH", &cfg.MaxPhraseLength},
		{"FACET_MIN_LABEL_LENGTH", &cfg.MinLabelLength},
		{"FACET_MAX_LABEL_LENGTH", &cfg.MaxLabelLength},
		{"FACET_MIN_WORD_DOCUMENT_FREQUENCY", &cfg.MinWordDocumentFrequency},
		{"FACET_MIN_LABEL_DOCUMENTS", &cfg.MinLabelDocuments},
	}
	for _, o := range ints {
		v := os.Getenv(o.env)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s=%q: %v: %w", o.env, v, err, internalerr.ErrInvalidConfig)
		}
		*o.dst = n
	}
	if v := os.Getenv("FACET_CASE_POLICY"); v != "" {
		cfg.CasePolicy = CasePolicy(v)
	}
	if v := os.Getenv("FACET_EXACT_PHRASE_ASSIGNMENT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("FACET_EXACT_PHRASE_ASSIGNMENT=%q: %v: %w", v, err, internalerr.ErrInvalidConfig)
		}
		cfg.ExactPhraseAssignment = b
	}
	if v := os.Getenv("FACET_STRIP_MARKUP"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("FACET_STRIP_MARKUP=%q: %v: %w", v, err, internalerr.ErrInvalidConfig)
		}
		cfg.StripMarkup = b
	}
	if v := os.Getenv("FACET_FIELDS"); v != "" {
		cfg.Fields = strings.Split(v, ",")
	}
	if v := os.Getenv("FACET_LEXICON_DIR"); v != "" {
		cfg.LexicalResourceOverride.Dir = v
	}
	if v := os.Getenv("FACET_LEXICON_SQLITE"); v != "" {
		cfg.LexicalResourceOverride.SQLite = v
	}
	if v := os.Getenv("FACET_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("FACET_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	return nil
}
