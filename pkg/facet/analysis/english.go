package analysis

import (
	"iter"
	"strings"
	"unicode"

	snowballeng "github.com/kljensen/snowball/english"

	"github.com/cognicore/facet/pkg/facet/lexicon"
)

// EnglishAnalyzer is the Latin-script variant:
// span tokenization → possessive stripping → common-word marking,
// with Snowball (Porter2) stemming applied to lowercase word keys.
//
// Example:
//
//	"Lucene's search engines." →
//	  word "Lucene" (possessive stripped), word "search", word "engines",
//	  punctuation "." (sentence end)
//	Stem("engines") → "engin"
type EnglishAnalyzer struct {
	lex *lexicon.Data
}

// NewEnglish creates the English analyzer bound to the given lexical data
func NewEnglish(lex *lexicon.Data) *EnglishAnalyzer {
	return &EnglishAnalyzer{lex: lex}
}

func (a *EnglishAnalyzer) Language() Language { return English }

func (a *EnglishAnalyzer) SpaceDelimited() bool { return true }

// IsCommonWord checks the word against the lexical stop words
func (a *EnglishAnalyzer) IsCommonWord(word string) bool {
	return a.lex.IsStopWord(word)
}

// Tokenize implements Analyzer.
func (a *EnglishAnalyzer) Tokenize(text string) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		s := scanner{text: text}
		for {
			tok, ok := s.next()
			if !ok {
				return
			}
			if tok.Type == TypeWord {
				if tok.Kind == KindTerm || tok.Kind == KindHyphenated {
					tok.Image = stripPossessive(tok.Image)
				}
				if a.IsCommonWord(strings.ToLower(tok.Image)) {
					tok.Flags |= FlagCommonWord
				}
			}
			if !yield(tok) {
				return
			}
		}
	}
}

// Stem reduces the word with the Snowball English stemmer. Words that
// contain anything but letters (numbers, URLs, "e-mail") are not stemmed.
func (a *EnglishAnalyzer) Stem(word string) string {
	if word == "" {
		return word
	}
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return word
		}
	}
	if stem := snowballeng.Stem(word, false); stem != "" {
		return stem
	}
	return word
}

// stripPossessive removes a trailing English possessive: "Lucene's" → "Lucene"
func stripPossessive(s string) string {
	for _, suffix := range []string{"'s", "'S", "’s", "’S"} {
		if strings.HasSuffix(s, suffix) && len(s) > len(suffix) {
			return s[:len(s)-len(suffix)]
		}
	}
	return s
}
