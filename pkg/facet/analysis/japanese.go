package analysis

import (
	"fmt"
	"iter"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"

	"github.com/cognicore/facet/pkg/facet/internalerr"
	"github.com/cognicore/facet/pkg/facet/lexicon"
)

const (
	prolongedSoundMark  = 'ー'
	minKatakanaStemRune = 4
)

// The IPA dictionary is large; it is loaded once per process and the
// tokenizer is shared read-only by every Japanese analyzer.
var sharedKagome = sync.OnceValues(func() (*tokenizer.Tokenizer, error) {
	return tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
})

// JapaneseAnalyzer is the logographic/agglutinative variant:
// morphological segmentation (kagome, IPA dictionary) → base forms →
// width folding, with katakana stemming. There is no possessive step and
// phrase labels are joined without spaces.
type JapaneseAnalyzer struct {
	lex *lexicon.Data
	tok *tokenizer.Tokenizer
}

// NewJapanese creates the Japanese analyzer bound to the given lexical data
func NewJapanese(lex *lexicon.Data) (*JapaneseAnalyzer, error) {
	t, err := sharedKagome()
	if err != nil {
		return nil, fmt.Errorf("japanese tokenizer: %v: %w", err, internalerr.ErrMissingLexicalResource)
	}
	return &JapaneseAnalyzer{lex: lex, tok: t}, nil
}

func (a *JapaneseAnalyzer) Language() Language { return Japanese }

func (a *JapaneseAnalyzer) SpaceDelimited() bool { return false }

// IsCommonWord checks the (width folded) word against the stop words
func (a *JapaneseAnalyzer) IsCommonWord(word string) bool {
	return a.lex.IsStopWord(FoldWidth(word))
}

// Tokenize implements Analyzer.
func (a *JapaneseAnalyzer) Tokenize(text string) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for _, mt := range a.tok.Analyze(text, tokenizer.Search) {
			if strings.TrimSpace(mt.Surface) == "" {
				continue
			}
			if !yield(a.convert(mt)) {
				return
			}
		}
	}
}

// convert maps a morphological token onto the shared Token abstraction
func (a *JapaneseAnalyzer) convert(mt tokenizer.Token) Token {
	tok := Token{
		Start:  mt.Position,
		Length: len(mt.Surface),
		Type:   TypeWord,
		Kind:   KindTerm,
	}

	pos := mt.POS()
	major, minor := "", ""
	if len(pos) > 0 {
		major = pos[0]
	}
	if len(pos) > 1 {
		minor = pos[1]
	}

	image := mt.Surface
	if base, ok := mt.BaseForm(); ok && base != "" && base != "*" {
		image = base
	}
	tok.Image = FoldWidth(image)

	switch {
	case major == "記号" && !hasLetterOrDigit(tok.Image):
		tok.Type = TypePunctuation
		tok.Kind = KindNone
		if r, _ := utf8.DecodeRuneInString(tok.Image); utf8.RuneCountInString(tok.Image) == 1 && isSentenceEnd(r) {
			tok.Flags |= FlagSentenceEnd
		}
		return tok
	case major == "名詞" && minor == "数", isNumeric(tok.Image):
		tok.Kind = KindNumeric
	}

	if major == "助詞" || major == "助動詞" || a.IsCommonWord(strings.ToLower(tok.Image)) {
		tok.Flags |= FlagCommonWord
	}
	return tok
}

// Stem strips a trailing prolonged sound mark from katakana words of at
// least four runes: "コンピューター" → "コンピュータ". Other words are
// returned unchanged.
func (a *JapaneseAnalyzer) Stem(word string) string {
	return StemKatakana(word)
}

// StemKatakana is the katakana stemming rule used by the Japanese analyzer
func StemKatakana(word string) string {
	n := utf8.RuneCountInString(word)
	if n < minKatakanaStemRune {
		return word
	}
	for _, r := range word {
		if !unicode.Is(unicode.Katakana, r) && r != prolongedSoundMark {
			return word
		}
	}
	last, size := utf8.DecodeLastRuneInString(word)
	if last == prolongedSoundMark {
		return word[:len(word)-size]
	}
	return word
}

// FoldWidth unifies full-width and half-width forms: full-width ASCII
// becomes ASCII and half-width katakana becomes full-width. NFKC runs
// first so half-width voiced marks compose with their base kana.
func FoldWidth(s string) string {
	return width.Fold.String(norm.NFKC.String(s))
}

func hasLetterOrDigit(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return true
		}
	}
	return false
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsNumber(r) && r != '.' && r != ',' {
			return false
		}
	}
	return true
}
