package preprocess

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/cognicore/facet/pkg/facet/analysis"
	"github.com/cognicore/facet/pkg/facet/config"
	"github.com/cognicore/facet/pkg/facet/document"
	"github.com/cognicore/facet/pkg/facet/htmltext"
	"github.com/cognicore/facet/pkg/facet/internalerr"
)

// TokenizeDocuments runs the analyzer over every field of every document and
// materializes one flat token array. Each field sub-segment ends with a
// FieldBoundary token and each document segment with a DocumentBoundary.
//
// Documents that fail validation, carry a different language tag or have
// no usable field are skipped with a warning. The query is tokenized with
// the same analyzer; matching words are flagged as query words.
func TokenizeDocuments(b *Builder, docs []document.Document) {
	b.advance(stageTokenized)
	b.indexQuery()

	for i := range docs {
		doc := docs[i]
		if err := b.accept(&doc); err != nil {
			b.warn(doc, err)
			continue
		}

		pos := len(b.docs)
		var texts []fieldText
		for _, f := range doc.Fields {
			if !b.cfg.FieldAllowed(f.Name) {
				continue
			}
			fi, ok := b.field(f.Name)
			if !ok {
				continue
			}
			text := f.Text
			if b.cfg.StripMarkup {
				text = htmltext.Strip(text)
			}
			texts = append(texts, fieldText{field: fi, text: text})

			for tok := range b.analyzer.Tokenize(text) {
				t := Token{
					Start:  tok.Start,
					Length: tok.Length,
					Type:   tok.Type,
					Kind:   tok.Kind,
					Flags:  tok.Flags,
					Image:  tok.Image,
					Doc:    pos,
					Field:  fi,
					Word:   -1,
				}
				if t.Type == analysis.TypeWord && b.isQueryWord(tok.Image) {
					t.Flags |= analysis.FlagQueryWord
				}
				b.tokens = append(b.tokens, t)
			}
			b.tokens = append(b.tokens, Token{
				Start: len(text),
				Type:  analysis.TypeFieldBoundary,
				Doc:   pos,
				Field: fi,
				Word:  -1,
			})
		}
		b.tokens = append(b.tokens, Token{
			Type:  analysis.TypeDocumentBoundary,
			Doc:   pos,
			Field: -1,
			Word:  -1,
		})
		b.docs = append(b.docs, doc)
		b.texts = append(b.texts, texts)
	}

	b.logger.Debug("documents tokenized",
		slog.Int("documents", len(b.docs)),
		slog.Int("skipped", len(b.warnings)),
		slog.Int("tokens", len(b.tokens)))
}

// accept decides whether a document takes part in the run
func (b *Builder) accept(doc *document.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	if doc.Language != "" {
		lang, err := analysis.ParseLanguage(doc.Language)
		if err != nil {
			return fmt.Errorf("document %d: %v: %w", doc.Index, err, internalerr.ErrInvalidDocument)
		}
		if lang != b.analyzer.Language() {
			return fmt.Errorf("document %d is %q, run is %q: %w", doc.Index, lang, b.analyzer.Language(), internalerr.ErrInvalidDocument)
		}
	}
	for _, f := range doc.Fields {
		if b.cfg.FieldAllowed(f.Name) && strings.TrimSpace(f.Text) != "" {
			return nil
		}
	}
	return fmt.Errorf("document %d has no recognized fields: %w", doc.Index, internalerr.ErrInvalidDocument)
}

// field returns the index of a field name, registering it on first use.
// The table is capped so every field has a bit in a word's field mask.
func (b *Builder) field(name string) (int, bool) {
	if i, ok := b.fieldIndex[name]; ok {
		return i, true
	}
	if len(b.fieldNames) >= config.MaxFields {
		b.logger.Warn("field table full, ignoring field", slog.String("field", name))
		return 0, false
	}
	i := len(b.fieldNames)
	b.fieldNames = append(b.fieldNames, name)
	b.fieldIndex[name] = i
	return i, true
}

func (b *Builder) indexQuery() {
	if strings.TrimSpace(b.query) == "" {
		return
	}
	for tok := range b.analyzer.Tokenize(b.query) {
		if tok.Type != analysis.TypeWord {
			continue
		}
		key := strings.ToLower(tok.Image)
		b.queryKeys[key] = struct{}{}
		b.queryStems[b.analyzer.Stem(key)] = struct{}{}
	}
}

func (b *Builder) isQueryWord(image string) bool {
	if len(b.queryKeys) == 0 {
		return false
	}
	key := strings.ToLower(image)
	if _, ok := b.queryKeys[key]; ok {
		return true
	}
	_, ok := b.queryStems[b.analyzer.Stem(key)]
	return ok
}
