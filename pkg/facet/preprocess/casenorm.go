package preprocess

import (
	"log/slog"
	"sort"
	"strings"
	"unicode"

	"github.com/RoaringBitmap/roaring"

	"github.com/cognicore/facet/pkg/facet/analysis"
	"github.com/cognicore/facet/pkg/facet/config"
)

// casePattern ranks capitalization shapes; lower is preferred.
type casePattern int

const (
	patternCapitalized casePattern = iota // "Lucene"
	patternAllCaps                        // "NASA"
	patternLower                          // "engine"
	patternMixed                          // "iPhone"
)

func patternOf(s string) casePattern {
	var letters, upper int
	firstUpper, restUpper := false, false
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.IsUpper(r) {
			upper++
			if letters == 1 {
				firstUpper = true
			} else {
				restUpper = true
			}
		}
	}
	switch {
	case upper == 0:
		return patternLower
	case firstUpper && !restUpper:
		return patternCapitalized
	case upper == letters:
		return patternAllCaps
	}
	return patternMixed
}

// variant is one observed spelling of a word
type variant struct {
	image   string
	count   int
	first   int // order of first observation
	pattern casePattern
}

// canonical picks the display form among variants according to policy
func canonical(variants []variant, policy config.CasePolicy) string {
	best := append([]variant(nil), variants...)
	switch policy {
	case config.CaseFirstSeen:
		sort.SliceStable(best, func(i, j int) bool { return best[i].first < best[j].first })
	case config.CasePattern:
		sort.SliceStable(best, func(i, j int) bool {
			if best[i].pattern != best[j].pattern {
				return best[i].pattern < best[j].pattern
			}
			if best[i].count != best[j].count {
				return best[i].count > best[j].count
			}
			return best[i].first < best[j].first
		})
	default:
		sort.SliceStable(best, func(i, j int) bool {
			if best[i].count != best[j].count {
				return best[i].count > best[j].count
			}
			if best[i].pattern != best[j].pattern {
				return best[i].pattern < best[j].pattern
			}
			return best[i].first < best[j].first
		})
	}
	return best[0].image
}

// NormalizeCase collapses the case variants of every word token into one
// word entry keyed by the lowercase text, counting TF, DF, per-document TF
// and the field mask. The canonical image follows Config.CasePolicy. Words
// whose DF is below Config.MinWordDocumentFrequency are dropped and their
// tokens keep word index -1. Every remaining word token is rewritten to
// reference its word entry.
func NormalizeCase(b *Builder) {
	b.advance(stageNormalized)

	variants := make([][]variant, 0)
	for i := range b.tokens {
		t := &b.tokens[i]
		if t.Type != analysis.TypeWord {
			continue
		}
		key := strings.ToLower(t.Image)
		wi, ok := b.wordIndex[key]
		if !ok {
			wi = len(b.words)
			b.wordIndex[key] = wi
			b.words = append(b.words, Word{
				Key:   key,
				DocTF: make(map[int]int),
				Kind:  t.Kind,
				Stem:  -1,
				Docs:  roaring.New(),
			})
			variants = append(variants, nil)
		}

		w := &b.words[wi]
		w.TF++
		w.DocTF[t.Doc]++
		w.Docs.Add(uint32(t.Doc))
		w.FieldMask |= 1 << uint(t.Field)
		if t.Flags.Has(analysis.FlagCommonWord) {
			w.Flags |= FlagCommonWord
		}
		if t.Flags.Has(analysis.FlagQueryWord) {
			w.Flags |= FlagQueryWord
		}

		vs := variants[wi]
		found := false
		for k := range vs {
			if vs[k].image == t.Image {
				vs[k].count++
				found = true
				break
			}
		}
		if !found {
			vs = append(vs, variant{image: t.Image, count: 1, first: i, pattern: patternOf(t.Image)})
		}
		variants[wi] = vs
		t.Word = wi
	}

	for wi := range b.words {
		w := &b.words[wi]
		w.Image = canonical(variants[wi], b.cfg.CasePolicy)
		w.DF = int(w.Docs.GetCardinality())
		if b.lex.IsStopWord(w.Key) {
			w.Flags |= FlagStopWord
		}
	}

	dropped := b.dropRareWords()

	b.logger.Debug("case normalized",
		slog.Int("words", len(b.words)),
		slog.Int("dropped", dropped))
}

// dropRareWords removes words under the DF threshold and compacts the word
// table, remapping token references.
func (b *Builder) dropRareWords() int {
	threshold := b.cfg.MinWordDocumentFrequency
	if threshold <= 1 {
		return 0
	}
	remap := make([]int, len(b.words))
	kept := b.words[:0]
	for wi, w := range b.words {
		if w.DF < threshold {
			remap[wi] = -1
			delete(b.wordIndex, w.Key)
			continue
		}
		remap[wi] = len(kept)
		b.wordIndex[w.Key] = len(kept)
		kept = append(kept, w)
	}
	dropped := len(b.words) - len(kept)
	b.words = kept
	for i := range b.tokens {
		if t := &b.tokens[i]; t.Word >= 0 {
			t.Word = remap[t.Word]
		}
	}
	return dropped
}
