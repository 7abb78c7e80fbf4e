package preprocess

import (
	"log/slog"
	"strconv"

	"github.com/RoaringBitmap/roaring"
)

// phraseAcc accumulates the occurrences of one stem sequence
type phraseAcc struct {
	stems    []int
	tf       int
	docs     *roaring.Bitmap
	surfaces map[string]*surface
}

// surface is one word-level spelling of a stem sequence
type surface struct {
	words []int
	count int
	first int
}

// ExtractPhrases counts every n-gram of 2..Config.MaxPhraseLength stems
// inside runs of consecutive word tokens. Runs break at punctuation, field
// and document boundaries and at dropped words, so a phrase never spans a
// sentence end. Counting is over stem indices, so inflected variants
// collapse into one phrase.
//
// Only occurrences whose first and last words are not common are counted;
// the check is on the words themselves, so "lasting" is not trimmed because
// it shares a stem with the stop word "last". A phrase survives when its
// TF reaches Config.MinPhraseFrequency. A surviving phrase is
// marked Suppressed when a surviving phrase one stem longer, having it as
// prefix or suffix, has the same DF.
func ExtractPhrases(b *Builder) {
	b.advance(stagePhrases)

	maxLen := b.cfg.MaxPhraseLength
	acc := make(map[string]*phraseAcc)
	var order []*phraseAcc
	occurrence := 0

	var runStems, runWords []int
	doc := -1
	flush := func() {
		for i := 0; i+1 < len(runStems); i++ {
			if b.words[runWords[i]].Flags.common() {
				continue
			}
			key := strconv.AppendInt(nil, int64(runStems[i]), 10)
			for n := 2; n <= maxLen && i+n <= len(runStems); n++ {
				key = append(key, ',')
				key = strconv.AppendInt(key, int64(runStems[i+n-1]), 10)
				if b.words[runWords[i+n-1]].Flags.common() {
					continue
				}

				p, ok := acc[string(key)]
				if !ok {
					p = &phraseAcc{
						stems:    append([]int(nil), runStems[i:i+n]...),
						docs:     roaring.New(),
						surfaces: make(map[string]*surface),
					}
					acc[string(key)] = p
					order = append(order, p)
				}
				p.tf++
				p.docs.Add(uint32(doc))

				words := runWords[i : i+n]
				wkey := seqKey(words)
				s, ok := p.surfaces[wkey]
				if !ok {
					s = &surface{words: append([]int(nil), words...), first: occurrence}
					p.surfaces[wkey] = s
				}
				s.count++
				occurrence++
			}
		}
		runStems, runWords = runStems[:0], runWords[:0]
	}

	for _, t := range b.tokens {
		if !t.IsWord() {
			flush()
			continue
		}
		doc = t.Doc
		runWords = append(runWords, t.Word)
		runStems = append(runStems, b.words[t.Word].Stem)
	}
	flush()

	minTF := b.cfg.MinPhraseFrequency
	byKey := make(map[string]int)
	for _, p := range order {
		if p.tf < minTF {
			continue
		}
		byKey[seqKey(p.stems)] = len(b.phrases)
		b.phrases = append(b.phrases, Phrase{
			Stems: p.stems,
			Words: p.display(),
			TF:    p.tf,
			DF:    int(p.docs.GetCardinality()),
			Docs:  p.docs,
		})
	}

	suppressed := 0
	for _, p := range b.phrases {
		k := len(p.Stems)
		if k < 3 {
			continue
		}
		for _, sub := range [][]int{p.Stems[:k-1], p.Stems[1:]} {
			si, ok := byKey[seqKey(sub)]
			if !ok || b.phrases[si].DF != p.DF || b.phrases[si].Suppressed {
				continue
			}
			b.phrases[si].Suppressed = true
			suppressed++
		}
	}

	b.logger.Debug("phrases extracted",
		slog.Int("ngrams", len(order)),
		slog.Int("phrases", len(b.phrases)),
		slog.Int("suppressed", suppressed))
}

// display returns the most frequent surface form; ties go to the first seen
func (p *phraseAcc) display() []int {
	var best *surface
	for _, s := range p.surfaces {
		if best == nil || s.count > best.count || (s.count == best.count && s.first < best.first) {
			best = s
		}
	}
	return best.words
}

func seqKey(seq []int) string {
	buf := make([]byte, 0, len(seq)*4)
	for i, v := range seq {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendInt(buf, int64(v), 10)
	}
	return string(buf)
}
