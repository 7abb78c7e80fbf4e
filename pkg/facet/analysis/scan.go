package analysis

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// scanner splits Latin-script text into word and punctuation spans.
//
// A word is a run of letters and digits, possibly joined by connector
// runes that sit between two word runes ("e-mail", "AT&T", "node.js",
// "1,000"). URLs ("https://...", "www....") and e-mail addresses are kept
// whole. Every other non-space rune becomes a single punctuation token.
type scanner struct {
	text string
	pos  int
}

func (s *scanner) next() (Token, bool) {
	for s.pos < len(s.text) {
		r, size := utf8.DecodeRuneInString(s.text[s.pos:])
		switch {
		case unicode.IsSpace(r) || unicode.IsControl(r):
			s.pos += size
		case isWordRune(r):
			return s.word(), true
		default:
			start := s.pos
			s.pos += size
			tok := Token{
				Start:  start,
				Length: size,
				Type:   TypePunctuation,
				Kind:   KindNone,
				Image:  s.text[start:s.pos],
			}
			if isSentenceEnd(r) {
				tok.Flags |= FlagSentenceEnd
			}
			return tok, true
		}
	}
	return Token{}, false
}

func (s *scanner) word() Token {
	start := s.pos
	var hasLetter, hasDigit, urlMode, prevDigit bool

	for s.pos < len(s.text) {
		r, size := utf8.DecodeRuneInString(s.text[s.pos:])
		if isWordRune(r) {
			if unicode.IsLetter(r) {
				hasLetter = true
				prevDigit = false
			} else {
				hasDigit = true
				prevDigit = unicode.IsDigit(r)
			}
			s.pos += size
			continue
		}

		if r == ':' && !urlMode && strings.HasPrefix(s.text[s.pos:], "://") && isScheme(s.text[start:s.pos]) {
			urlMode = true
			s.pos += 3
			continue
		}
		if !isConnector(r, urlMode) {
			break
		}
		after := s.pos + size
		if after >= len(s.text) {
			break
		}
		nr, _ := utf8.DecodeRuneInString(s.text[after:])
		if !isWordRune(nr) {
			break
		}
		if r == ',' && !(prevDigit && unicode.IsDigit(nr)) {
			break
		}
		s.pos = after
	}

	raw := s.text[start:s.pos]
	kind := classify(raw, hasLetter, hasDigit, urlMode)

	// "U.S.A." keeps its closing dot
	if kind == KindAcronym && s.pos < len(s.text) && s.text[s.pos] == '.' {
		s.pos++
		raw = s.text[start:s.pos]
	}

	return Token{
		Start:  start,
		Length: s.pos - start,
		Type:   TypeWord,
		Kind:   kind,
		Image:  raw,
	}
}

func classify(raw string, hasLetter, hasDigit, urlMode bool) Kind {
	lower := strings.ToLower(raw)
	switch {
	case urlMode || (strings.HasPrefix(lower, "www.") && len(lower) > 4):
		return KindURL
	case isEmail(raw):
		return KindEmail
	case !hasLetter && hasDigit:
		return KindNumeric
	case isAcronym(raw):
		return KindAcronym
	case strings.ContainsRune(raw, '-'):
		return KindHyphenated
	}
	return KindTerm
}

func isEmail(s string) bool {
	at := strings.IndexByte(s, '@')
	return at > 0 && strings.Contains(s[at+1:], ".")
}

// isAcronym matches single letters separated by dots: "U.S", "e.g".
func isAcronym(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) < 2 {
		return false
	}
	for _, p := range parts {
		if utf8.RuneCountInString(p) != 1 {
			return false
		}
		r, _ := utf8.DecodeRuneInString(p)
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func isScheme(s string) bool {
	switch strings.ToLower(s) {
	case "http", "https", "ftp":
		return true
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.Is(unicode.Mn, r)
}

func isConnector(r rune, urlMode bool) bool {
	switch r {
	case '-', '\'', '’', '.', '_', '@', '&', '/', ',':
		return true
	case '?', '=', '%', '#', '~', '+', ':':
		return urlMode
	}
	return false
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '…', '。', '！', '？':
		return true
	}
	return false
}
