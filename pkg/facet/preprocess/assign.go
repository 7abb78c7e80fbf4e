package preprocess

import (
	"log/slog"

	"github.com/RoaringBitmap/roaring"
)

// AssignDocuments computes the document set of every label that survived
// FilterLabels. A word label covers every document containing any word of
// its stem group. A phrase label covers the documents where its stem
// sequence occurs contiguously; with Config.ExactPhraseAssignment off it
// covers the documents containing all of its non-common stems instead.
// Labels covering fewer than Config.MinLabelDocuments documents are
// removed, so every remaining label has a non-empty document set.
func AssignDocuments(b *Builder) {
	b.advance(stageAssigned)

	var positions map[int][]int
	if b.cfg.ExactPhraseAssignment {
		positions = b.stemPositions()
	}

	minDocs := max(b.cfg.MinLabelDocuments, 1)
	kept := b.labels[:0]
	for _, l := range b.labels {
		switch l.Kind {
		case LabelWord:
			l.Docs = b.stems[l.Stems[0]].Docs.Clone()
		case LabelPhrase:
			if positions != nil {
				l.Docs = b.phraseDocsExact(l.Stems, positions)
			} else {
				l.Docs = b.phraseDocsAll(l.Stems)
			}
		}
		if int(l.Docs.GetCardinality()) < minDocs {
			b.rejected[RejectDocuments]++
			continue
		}
		kept = append(kept, l)
	}
	b.labels = kept

	b.logger.Debug("documents assigned", slog.Int("labels", len(b.labels)))
}

// stemPositions maps each stem to the token positions of its words
func (b *Builder) stemPositions() map[int][]int {
	out := make(map[int][]int, len(b.stems))
	for i, t := range b.tokens {
		if t.IsWord() {
			s := b.words[t.Word].Stem
			out[s] = append(out[s], i)
		}
	}
	return out
}

func (b *Builder) phraseDocsExact(stems []int, positions map[int][]int) *roaring.Bitmap {
	docs := roaring.New()
next:
	for _, start := range positions[stems[0]] {
		if start+len(stems) > len(b.tokens) {
			continue
		}
		doc := b.tokens[start].Doc
		if docs.Contains(uint32(doc)) {
			continue
		}
		for k := 1; k < len(stems); k++ {
			t := b.tokens[start+k]
			if !t.IsWord() || b.words[t.Word].Stem != stems[k] {
				continue next
			}
		}
		docs.Add(uint32(doc))
	}
	return docs
}

func (b *Builder) phraseDocsAll(stems []int) *roaring.Bitmap {
	var sets []*roaring.Bitmap
	for _, s := range stems {
		if !b.stems[s].Flags.common() {
			sets = append(sets, b.stems[s].Docs)
		}
	}
	if len(sets) == 0 {
		for _, s := range stems {
			sets = append(sets, b.stems[s].Docs)
		}
	}
	return roaring.FastAnd(sets...)
}
