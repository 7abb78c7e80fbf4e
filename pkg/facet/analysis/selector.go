package analysis

import (
	"fmt"

	"github.com/cognicore/facet/pkg/facet/internalerr"
	"github.com/cognicore/facet/pkg/facet/lexicon"
)

// Supported returns every language an analyzer exists for
func Supported() []Language {
	return []Language{English, Japanese}
}

// Select returns the analyzer variant for lang, bound to the given lexical
// data. Unknown languages fail with ErrUnsupportedLanguage; a nil lexicon
// fails with ErrMissingLexicalResource.
func Select(lang Language, lex *lexicon.Data) (Analyzer, error) {
	if lex == nil {
		return nil, fmt.Errorf("analyzer %q: nil lexical data: %w", lang, internalerr.ErrMissingLexicalResource)
	}

	switch lang {
	case English:
		return NewEnglish(lex), nil
	case Japanese:
		return NewJapanese(lex)
	}
	return nil, fmt.Errorf("analyzer %q: %w", lang, internalerr.ErrUnsupportedLanguage)
}
