// Package preprocess turns a batch of documents into the preprocessing
// context consumed by a clustering algorithm: a flat token array, the word
// table, stem groups, phrases and label candidates with their document
// sets.
//
// The stages run strictly in order over one Builder:
//
//	b := preprocess.NewBuilder(cfg, analyzer, lex, query, logger)
//	preprocess.TokenizeDocuments(b, docs)
//	preprocess.NormalizeCase(b)
//	preprocess.BindStems(b)
//	preprocess.ExtractPhrases(b)
//	preprocess.FilterLabels(b)
//	preprocess.AssignDocuments(b)
//	frozen := b.Freeze()
//
// Entries reference each other by integer index into dense arrays. After
// Freeze the Builder rejects every call and the Frozen snapshot exposes
// read accessors only.
package preprocess

import (
	"crypto/rand"
	"fmt"
	"log/slog"

	"github.com/RoaringBitmap/roaring"
	"github.com/oklog/ulid/v2"

	"github.com/cognicore/facet/internal/logging"
	"github.com/cognicore/facet/pkg/facet/analysis"
	"github.com/cognicore/facet/pkg/facet/config"
	"github.com/cognicore/facet/pkg/facet/document"
	"github.com/cognicore/facet/pkg/facet/internalerr"
	"github.com/cognicore/facet/pkg/facet/lexicon"
)

// Flags annotate word entries and stem groups.
type Flags uint8

const (
	FlagCommonWord Flags = 1 << iota // analyzer says common (stop word, particle)
	FlagStopWord                     // listed in the lexical stop words
	FlagQueryWord                    // occurs in the query
)

// Has reports whether all bits of x are set
func (f Flags) Has(x Flags) bool { return f&x == x }

func (f Flags) common() bool { return f&(FlagCommonWord|FlagStopWord) != 0 }

// Token is one materialized token. Start and Length are byte offsets into
// the (possibly markup-stripped) text of field Field of document Doc.
type Token struct {
	Start  int
	Length int
	Type   analysis.TokenType
	Kind   analysis.Kind
	Flags  analysis.Flags
	Image  string
	Doc    int // position in the accepted document list
	Field  int // index into the field-name table; -1 on document boundaries
	Word   int // word index; -1 for non-words and dropped words
}

// IsWord reports whether the token is a word that made it into the word table
func (t Token) IsWord() bool { return t.Type == analysis.TypeWord && t.Word >= 0 }

// Word is a case-unified distinct token text.
type Word struct {
	Image     string      // canonical display form
	Key       string      // lowercase lookup key
	TF        int         // occurrences across the batch
	DF        int         // documents containing the word
	DocTF     map[int]int // occurrences per document
	FieldMask uint64      // bit i set when the word occurs in field i
	Flags     Flags
	Kind      analysis.Kind
	Stem      int // stem group index, -1 before BindStems
	Docs      *roaring.Bitmap
}

func (w Word) clone() Word {
	docTF := make(map[int]int, len(w.DocTF))
	for d, n := range w.DocTF {
		docTF[d] = n
	}
	w.DocTF = docTF
	w.Docs = w.Docs.Clone()
	return w
}

// Stem groups the words that reduce to the same stem text.
type Stem struct {
	Text  string
	Words []int // member word indices, ascending
	TF    int
	DF    int
	Flags Flags // union of the member flags
	Best  int   // most frequent member word
	Docs  *roaring.Bitmap
}

func (s Stem) clone() Stem {
	s.Words = append([]int(nil), s.Words...)
	s.Docs = s.Docs.Clone()
	return s
}

// Phrase is a recurring sequence of stems.
type Phrase struct {
	Stems      []int // stem index sequence, the identity of the phrase
	Words      []int // most frequent surface variant, for display
	TF         int
	DF         int
	Suppressed bool // a longer phrase with the same DF contains it
	Docs       *roaring.Bitmap
}

func (p Phrase) clone() Phrase {
	p.Stems = append([]int(nil), p.Stems...)
	p.Words = append([]int(nil), p.Words...)
	p.Docs = p.Docs.Clone()
	return p
}

// LabelKind tells which arena a label points into.
type LabelKind uint8

const (
	LabelWord LabelKind = iota + 1
	LabelPhrase
)

func (k LabelKind) String() string {
	switch k {
	case LabelWord:
		return "word"
	case LabelPhrase:
		return "phrase"
	}
	return "unknown"
}

// Label is a candidate cluster label.
type Label struct {
	Kind  LabelKind
	Index int // word or phrase index, depending on Kind
	Text  string
	Stems []int
	TF    int
	DF    int
	Docs  *roaring.Bitmap // assigned documents, set by AssignDocuments
}

// WordCount is the number of words in the label
func (l Label) WordCount() int { return len(l.Stems) }

func (l Label) clone() Label {
	l.Stems = append([]int(nil), l.Stems...)
	if l.Docs != nil {
		l.Docs = l.Docs.Clone()
	}
	return l
}

// Warning records a document skipped by the tokenizer.
type Warning struct {
	DocIndex int // Document.Index of the skipped document
	Reason   string
	Err      error
}

type stage int

const (
	stageNew stage = iota
	stageTokenized
	stageNormalized
	stageStemmed
	stagePhrases
	stageFiltered
	stageAssigned
	stageFrozen
)

var stageNames = map[stage]string{
	stageNew:        "new",
	stageTokenized:  "TokenizeDocuments",
	stageNormalized: "NormalizeCase",
	stageStemmed:    "BindStems",
	stagePhrases:    "ExtractPhrases",
	stageFiltered:   "FilterLabels",
	stageAssigned:   "AssignDocuments",
	stageFrozen:     "Freeze",
}

// fieldText is the text a field contributed to the token array
type fieldText struct {
	field int
	text  string
}

// Builder is the mutable preprocessing context. It is owned by a single
// goroutine and must not be shared before Freeze.
type Builder struct {
	cfg      config.Config
	analyzer analysis.Analyzer
	lex      *lexicon.Data
	query    string
	runID    ulid.ULID
	logger   *slog.Logger
	stage    stage

	docs       []document.Document
	texts      [][]fieldText
	fieldNames []string
	fieldIndex map[string]int
	warnings   []Warning

	queryKeys  map[string]struct{}
	queryStems map[string]struct{}

	tokens    []Token
	words     []Word
	wordIndex map[string]int
	stems     []Stem
	phrases   []Phrase
	labels    []Label
	rejected  map[string]int
}

// NewBuilder starts a run. The analyzer and lexical data must belong to the
// same language; logger may be nil.
func NewBuilder(cfg config.Config, a analysis.Analyzer, lex *lexicon.Data, query string, logger *slog.Logger) *Builder {
	if a == nil || lex == nil {
		panic(fmt.Errorf("preprocess: NewBuilder needs an analyzer and lexical data: %w", internalerr.ErrInvalidInput))
	}
	if logger == nil {
		logger = logging.WithComponent("preprocess")
	}
	id := ulid.MustNew(ulid.Now(), rand.Reader)
	return &Builder{
		cfg:        cfg,
		analyzer:   a,
		lex:        lex,
		query:      query,
		runID:      id,
		logger:     logger.With("run", id.String()),
		fieldIndex: make(map[string]int),
		queryKeys:  make(map[string]struct{}),
		queryStems: make(map[string]struct{}),
		wordIndex:  make(map[string]int),
		rejected:   make(map[string]int),
	}
}

// RunID identifies the run in logs and in the frozen snapshot
func (b *Builder) RunID() string { return b.runID.String() }

// advance moves the builder into stage next. Stages must run in order and
// nothing runs after Freeze.
func (b *Builder) advance(next stage) {
	if b.stage == stageFrozen {
		panic(fmt.Errorf("preprocess: %s after Freeze: %w", stageNames[next], internalerr.ErrFrozen))
	}
	if b.stage != next-1 {
		panic(fmt.Errorf("preprocess: %s called after %s", stageNames[next], stageNames[b.stage]))
	}
	b.stage = next
}

// Freeze finishes the run and hands ownership of everything built so far to
// an immutable snapshot. Freeze may be called once, after AssignDocuments.
func (b *Builder) Freeze() *Frozen {
	b.advance(stageFrozen)
	f := &Frozen{
		runID:      b.runID.String(),
		language:   b.analyzer.Language(),
		query:      b.query,
		docs:       b.docs,
		texts:      b.texts,
		fieldNames: b.fieldNames,
		warnings:   b.warnings,
		tokens:     b.tokens,
		words:      b.words,
		stems:      b.stems,
		phrases:    b.phrases,
		labels:     b.labels,
		rejected:   b.rejected,
	}
	b.docs, b.texts, b.fieldNames, b.warnings = nil, nil, nil, nil
	b.tokens, b.words, b.stems, b.phrases, b.labels = nil, nil, nil, nil, nil
	b.wordIndex, b.rejected = nil, nil
	return f
}

func (b *Builder) warn(doc document.Document, err error) {
	b.warnings = append(b.warnings, Warning{DocIndex: doc.Index, Reason: err.Error(), Err: err})
	b.logger.Warn("skipping document",
		slog.Int("doc", doc.Index),
		slog.String("reason", err.Error()))
}

// Frozen is the finished, read-only preprocessing context. It is safe for
// concurrent readers. Accessors return copies; bitmaps are cloned.
type Frozen struct {
	runID      string
	language   analysis.Language
	query      string
	docs       []document.Document
	texts      [][]fieldText
	fieldNames []string
	warnings   []Warning
	tokens     []Token
	words      []Word
	stems      []Stem
	phrases    []Phrase
	labels     []Label
	rejected   map[string]int
}

func (f *Frozen) RunID() string               { return f.runID }
func (f *Frozen) Language() analysis.Language { return f.language }
func (f *Frozen) Query() string               { return f.query }

// DocumentCount is the number of accepted documents
func (f *Frozen) DocumentCount() int { return len(f.docs) }

// Document returns the accepted document at position i. Token.Doc and the
// bitmaps refer to these positions.
func (f *Frozen) Document(i int) document.Document {
	d := f.docs[i]
	d.Fields = append([]document.Field(nil), d.Fields...)
	return d
}

// Documents returns all accepted documents
func (f *Frozen) Documents() []document.Document {
	out := make([]document.Document, len(f.docs))
	for i := range f.docs {
		out[i] = f.Document(i)
	}
	return out
}

// FieldNames returns the field-name table; Token.Field indexes it
func (f *Frozen) FieldNames() []string { return append([]string(nil), f.fieldNames...) }

// FieldText returns the text the tokens of field of document doc point into
func (f *Frozen) FieldText(doc, field int) (string, bool) {
	for _, ft := range f.texts[doc] {
		if ft.field == field {
			return ft.text, true
		}
	}
	return "", false
}

// TokenText returns the source text a token spans
func (f *Frozen) TokenText(t Token) string {
	if t.Field < 0 {
		return ""
	}
	text, ok := f.FieldText(t.Doc, t.Field)
	if !ok {
		return ""
	}
	return text[t.Start : t.Start+t.Length]
}

func (f *Frozen) Warnings() []Warning { return append([]Warning(nil), f.warnings...) }

func (f *Frozen) TokenCount() int     { return len(f.tokens) }
func (f *Frozen) Token(i int) Token   { return f.tokens[i] }
func (f *Frozen) Tokens() []Token     { return append([]Token(nil), f.tokens...) }
func (f *Frozen) WordCount() int      { return len(f.words) }
func (f *Frozen) Word(i int) Word     { return f.words[i].clone() }
func (f *Frozen) StemCount() int      { return len(f.stems) }
func (f *Frozen) Stem(i int) Stem     { return f.stems[i].clone() }
func (f *Frozen) PhraseCount() int    { return len(f.phrases) }
func (f *Frozen) Phrase(i int) Phrase { return f.phrases[i].clone() }
func (f *Frozen) LabelCount() int     { return len(f.labels) }
func (f *Frozen) Label(i int) Label   { return f.labels[i].clone() }

// Words returns a copy of the word table
func (f *Frozen) Words() []Word {
	out := make([]Word, len(f.words))
	for i := range f.words {
		out[i] = f.words[i].clone()
	}
	return out
}

// Stems returns a copy of the stem groups
func (f *Frozen) Stems() []Stem {
	out := make([]Stem, len(f.stems))
	for i := range f.stems {
		out[i] = f.stems[i].clone()
	}
	return out
}

// Phrases returns a copy of the phrase list
func (f *Frozen) Phrases() []Phrase {
	out := make([]Phrase, len(f.phrases))
	for i := range f.phrases {
		out[i] = f.phrases[i].clone()
	}
	return out
}

// Labels returns the label candidates in rank order
func (f *Frozen) Labels() []Label {
	out := make([]Label, len(f.labels))
	for i := range f.labels {
		out[i] = f.labels[i].clone()
	}
	return out
}

// Rejections returns how many candidates each label filter removed
func (f *Frozen) Rejections() map[string]int {
	out := make(map[string]int, len(f.rejected))
	for k, v := range f.rejected {
		out[k] = v
	}
	return out
}
