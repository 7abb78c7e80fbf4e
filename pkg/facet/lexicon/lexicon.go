package lexicon

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/cognicore/facet/pkg/facet/internalerr"
)

// Data stores the lexical resources of one language:
// - Stop words: common words that carry no labelling value ("the", "of", "の")
// - Stop labels: regular expressions matching whole labels that must never
//   describe a cluster ("(?i)click here", "(?i)^read more$")
//
// Data is immutable after construction and safe for concurrent readers.
type Data struct {
	language   string
	stopWords  map[string]struct{}
	stopLabels []*regexp.Regexp
}

// NewData builds lexical data from raw stop words and stop-label patterns.
// Stop words are matched case-insensitively. A pattern that fails to
// compile is reported as ErrInvalidInput.
func NewData(language string, stopWords, stopLabels []string) (*Data, error) {
	d := &Data{
		language:  strings.ToLower(strings.TrimSpace(language)),
		stopWords: make(map[string]struct{}, len(stopWords)),
	}

	for _, w := range stopWords {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		d.stopWords[w] = struct{}{}
	}

	for _, p := range stopLabels {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("stop label %q: %v: %w", p, err, internalerr.ErrInvalidInput)
		}
		d.stopLabels = append(d.stopLabels, re)
	}

	return d, nil
}

// Language returns the language tag the data was built for
func (d *Data) Language() string {
	return d.language
}

// IsStopWord checks if a word is a stop word
func (d *Data) IsStopWord(word string) bool {
	if _, ok := d.stopWords[word]; ok {
		return true
	}
	_, ok := d.stopWords[strings.ToLower(word)]
	return ok
}

// IsStopLabel reports whether the label matches any stop-label pattern
func (d *Data) IsStopLabel(label string) bool {
	for _, re := range d.stopLabels {
		if re.MatchString(label) {
			return true
		}
	}
	return false
}

// StopWords returns all stop words in sorted order
func (d *Data) StopWords() []string {
	result := make([]string, 0, len(d.stopWords))
	for w := range d.stopWords {
		result = append(result, w)
	}
	sort.Strings(result)
	return result
}

// StopLabels returns the source of all stop-label patterns
func (d *Data) StopLabels() []string {
	result := make([]string, len(d.stopLabels))
	for i, re := range d.stopLabels {
		result[i] = re.String()
	}
	return result
}

// Stats returns statistics about the lexical data.
func (d *Data) Stats() Stats {
	return Stats{
		Language:   d.language,
		StopWords:  len(d.stopWords),
		StopLabels: len(d.stopLabels),
	}
}

// Stats holds statistics about lexical data contents.
type Stats struct {
	Language   string
	StopWords  int
	StopLabels int
}
