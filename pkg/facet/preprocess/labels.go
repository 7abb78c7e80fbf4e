package preprocess

import (
	"log/slog"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Names under which FilterLabels and AssignDocuments count rejections.
const (
	RejectStopWords      = "stop-words"
	RejectQueryWords     = "query-words"
	RejectNumeric        = "numeric"
	RejectLength         = "length"
	RejectStopLabels     = "stop-labels"
	RejectStemDuplicates = "stem-duplicates"
	RejectDocuments      = "documents"
)

// candidate is a label under consideration; own is the TF of the word or
// phrase itself, seq its position in the candidate list and the last
// ordering tie-break
type candidate struct {
	Label
	words []int
	own   int
	seq   int
}

// FilterLabels builds label candidates from every word entry and every
// phrase not suppressed by containment, then removes the ones unsuitable
// as cluster labels. Filters run in order and each can be switched off in
// Config.Filters:
//
//  1. stop words: a common word, or a phrase made only of common words
//  2. query words: a candidate made only of query words
//  3. numeric: no letter at all
//  4. length: lowercase rune count outside [MinLabelLength, MaxLabelLength]
//  5. stop labels: lowercase text matches a lexical stop-label pattern
//  6. stem duplicates: of candidates with the same stem sequence the one
//     with the higher DF stays; ties keep the more frequent spelling, then
//     the shorter text, then the first
//
// A word candidate stands for its whole stem group: its TF and DF are the
// group's, matching the documents AssignDocuments gives it.
//
// Survivors are ordered by DF desc, word count desc, TF desc, text asc.
// FilterLabels never fails; the result may be empty.
func FilterLabels(b *Builder) {
	b.advance(stageFiltered)

	cands := b.candidates()
	total := len(cands)
	f := b.cfg.Filters

	kept := cands[:0]
	for _, c := range cands {
		if reason := b.reject(c); reason != "" {
			b.rejected[reason]++
			continue
		}
		kept = append(kept, c)
	}
	cands = kept

	if f.StemDuplicates {
		cands = b.collapseStemDuplicates(cands)
	}

	sort.SliceStable(cands, func(i, j int) bool {
		a, c := cands[i], cands[j]
		if a.DF != c.DF {
			return a.DF > c.DF
		}
		if a.WordCount() != c.WordCount() {
			return a.WordCount() > c.WordCount()
		}
		if a.TF != c.TF {
			return a.TF > c.TF
		}
		if la, lc := strings.ToLower(a.Text), strings.ToLower(c.Text); la != lc {
			return la < lc
		}
		if a.Text != c.Text {
			return a.Text < c.Text
		}
		return a.seq < c.seq
	})

	b.labels = make([]Label, len(cands))
	for i, c := range cands {
		b.labels[i] = c.Label
	}

	b.logger.Debug("labels filtered",
		slog.Int("candidates", total),
		slog.Int("labels", len(b.labels)))
}

// candidates lists word labels followed by phrase labels
func (b *Builder) candidates() []candidate {
	out := make([]candidate, 0, len(b.words)+len(b.phrases))
	for wi, w := range b.words {
		out = append(out, candidate{
			Label: Label{
				Kind:  LabelWord,
				Index: wi,
				Text:  w.Image,
				Stems: []int{w.Stem},
				TF:    b.stems[w.Stem].TF,
				DF:    b.stems[w.Stem].DF,
			},
			words: []int{wi},
			own:   w.TF,
			seq:   len(out),
		})
	}
	for pi, p := range b.phrases {
		if p.Suppressed {
			continue
		}
		out = append(out, candidate{
			Label: Label{
				Kind:  LabelPhrase,
				Index: pi,
				Text:  b.joinWords(p.Words),
				Stems: append([]int(nil), p.Stems...),
				TF:    p.TF,
				DF:    p.DF,
			},
			words: p.Words,
			own:   p.TF,
			seq:   len(out),
		})
	}
	return out
}

// joinWords renders a word sequence, with spaces only for languages that
// delimit words by spaces
func (b *Builder) joinWords(words []int) string {
	sep := ""
	if b.analyzer.SpaceDelimited() {
		sep = " "
	}
	parts := make([]string, len(words))
	for i, wi := range words {
		parts[i] = b.words[wi].Image
	}
	return strings.Join(parts, sep)
}

// reject returns the name of the first filter that removes c, or ""
func (b *Builder) reject(c candidate) string {
	f := b.cfg.Filters
	if f.StopWords && b.allWords(c.words, func(w Word) bool { return w.Flags.common() }) {
		return RejectStopWords
	}
	if f.QueryWords && b.allWords(c.words, func(w Word) bool { return w.Flags.Has(FlagQueryWord) }) {
		return RejectQueryWords
	}
	if f.Numeric && !hasLetter(c.Text) {
		return RejectNumeric
	}
	normalized := strings.ToLower(c.Text)
	if f.Length {
		n := utf8.RuneCountInString(normalized)
		if n < b.cfg.MinLabelLength || n > b.cfg.MaxLabelLength {
			return RejectLength
		}
	}
	if f.StopLabels && b.lex.IsStopLabel(normalized) {
		return RejectStopLabels
	}
	return ""
}

func (b *Builder) allWords(words []int, pred func(Word) bool) bool {
	for _, wi := range words {
		if !pred(b.words[wi]) {
			return false
		}
	}
	return len(words) > 0
}

// collapseStemDuplicates keeps one candidate per stem sequence
func (b *Builder) collapseStemDuplicates(cands []candidate) []candidate {
	best := make(map[string]int, len(cands))
	for i, c := range cands {
		key := seqKey(c.Stems)
		j, ok := best[key]
		if !ok || preferred(c, cands[j]) {
			best[key] = i
		}
	}
	out := make([]candidate, 0, len(best))
	for i, c := range cands {
		if best[seqKey(c.Stems)] == i {
			out = append(out, c)
		} else {
			b.rejected[RejectStemDuplicates]++
		}
	}
	return out
}

// preferred reports whether a beats c as the representative of a stem
// sequence
func preferred(a, c candidate) bool {
	if a.DF != c.DF {
		return a.DF > c.DF
	}
	if a.own != c.own {
		return a.own > c.own
	}
	la, lc := utf8.RuneCountInString(a.Text), utf8.RuneCountInString(c.Text)
	if la != lc {
		return la < lc
	}
	return a.seq < c.seq
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
