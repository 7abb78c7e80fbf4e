// Package analysis turns field text into typed tokens, one language at a
// time. Each supported language is a variant implementing Analyzer; the
// rest of the pipeline only ever sees the Token abstraction, so it stays
// language-agnostic.
package analysis

import (
	"fmt"
	"iter"
	"strings"

	"github.com/cognicore/facet/pkg/facet/internalerr"
)

// Language identifies a supported analyzer variant
type Language string

// Supported languages
const (
	English  Language = "en"
	Japanese Language = "ja"
)

// ParseLanguage maps a language tag ("en", "en-US", "English", "ja_JP")
// to a supported Language.
func ParseLanguage(tag string) (Language, error) {
	t := strings.ToLower(strings.TrimSpace(tag))
	if i := strings.IndexAny(t, "-_"); i > 0 {
		t = t[:i]
	}
	switch t {
	case "en", "eng", "english":
		return English, nil
	case "ja", "jpn", "japanese":
		return Japanese, nil
	}
	return "", fmt.Errorf("language %q: %w", tag, internalerr.ErrUnsupportedLanguage)
}

// TokenType tags what a token is
type TokenType uint8

const (
	TypeWord TokenType = iota + 1
	TypePunctuation
	TypeFieldBoundary
	TypeDocumentBoundary
)

func (t TokenType) String() string {
	switch t {
	case TypeWord:
		return "word"
	case TypePunctuation:
		return "punctuation"
	case TypeFieldBoundary:
		return "field-boundary"
	case TypeDocumentBoundary:
		return "document-boundary"
	}
	return fmt.Sprintf("TokenType(%d)", t)
}

// Kind refines TypeWord tokens
type Kind uint8

const (
	KindNone Kind = iota
	KindTerm
	KindNumeric
	KindAcronym
	KindHyphenated
	KindEmail
	KindURL
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindTerm:
		return "term"
	case KindNumeric:
		return "numeric"
	case KindAcronym:
		return "acronym"
	case KindHyphenated:
		return "hyphenated"
	case KindEmail:
		return "email"
	case KindURL:
		return "url"
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Flags annotate tokens and words
type Flags uint8

const (
	FlagSentenceEnd Flags = 1 << iota
	FlagCommonWord
	FlagQueryWord
)

// Has reports whether all bits of x are set
func (f Flags) Has(x Flags) bool {
	return f&x == x
}

// Token is one span of analyzed text.
// Start and Length are byte offsets into the text passed to Tokenize;
// Image is the normalized surface form (possessive stripped, base form,
// width folded) with the original letter case preserved.
type Token struct {
	Start  int
	Length int
	Type   TokenType
	Kind   Kind
	Flags  Flags
	Image  string
}

// Analyzer is the capability every language variant provides.
type Analyzer interface {
	// Language returns the variant's language.
	Language() Language
	// Tokenize segments text into word and punctuation tokens. The
	// sequence is produced lazily and is meant to be consumed once.
	Tokenize(text string) iter.Seq[Token]
	// Stem reduces a lowercase word to its stem. It must be pure and
	// deterministic; words it cannot stem are returned unchanged.
	Stem(word string) string
	// IsCommonWord reports whether a lowercase word is a stop word.
	IsCommonWord(word string) bool
	// SpaceDelimited reports whether words of this language are written
	// with spaces between them (used when joining phrase labels).
	SpaceDelimited() bool
}
