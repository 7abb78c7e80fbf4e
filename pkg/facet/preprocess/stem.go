package preprocess

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/RoaringBitmap/roaring"
)

// BindStems stems every word key with the analyzer and groups words with
// identical stems, in first-seen order. A stem that comes back empty or
// malformed falls back to the key itself. Group TF is the sum of member TF;
// group DF is the size of the union of member document sets.
func BindStems(b *Builder) {
	b.advance(stageStemmed)

	index := make(map[string]int, len(b.words))
	for wi := range b.words {
		w := &b.words[wi]
		text := b.analyzer.Stem(w.Key)
		if strings.TrimSpace(text) == "" || !utf8.ValidString(text) {
			text = w.Key
		}

		si, ok := index[text]
		if !ok {
			si = len(b.stems)
			index[text] = si
			b.stems = append(b.stems, Stem{Text: text, Best: wi, Docs: roaring.New()})
		}
		s := &b.stems[si]
		s.Words = append(s.Words, wi)
		s.TF += w.TF
		s.Flags |= w.Flags
		s.Docs.Or(w.Docs)
		if w.TF > b.words[s.Best].TF {
			s.Best = wi
		}
		w.Stem = si
	}
	for si := range b.stems {
		b.stems[si].DF = int(b.stems[si].Docs.GetCardinality())
	}

	b.logger.Debug("stems bound", slog.Int("stems", len(b.stems)))
}
