package document

import (
	"fmt"
	"strings"

	"github.com/cognicore/facet/pkg/facet/internalerr"
)

// Common field names. Documents may carry any field names; these are the
// ones the default configuration knows about.
const (
	FieldTitle   = "title"
	FieldSnippet = "snippet"
)

// Field is one named text field of a document
type Field struct {
	Name string
	Text string
}

// Document is a short text record bound to a search query.
// Documents are treated as immutable once handed to the preprocessor.
type Document struct {
	Index    int    // position in the batch, unique
	ID       string // optional external identifier
	URL      string // optional
	Language string // language tag, e.g. "en", "ja"
	Fields   []Field
}

// New creates a document with title and snippet fields
func New(index int, language, title, snippet string) Document {
	return Document{
		Index:    index,
		Language: language,
		Fields: []Field{
			{Name: FieldTitle, Text: title},
			{Name: FieldSnippet, Text: snippet},
		},
	}
}

// Field returns the text of the named field and whether it exists
func (d Document) Field(name string) (string, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f.Text, true
		}
	}
	return "", false
}

// Validate checks that the document has at least one non-blank, named field
func (d *Document) Validate() error {
	if len(d.Fields) == 0 {
		return fmt.Errorf("document %d has no fields: %w", d.Index, internalerr.ErrInvalidDocument)
	}

	nonBlank := 0
	for i, f := range d.Fields {
		if strings.TrimSpace(f.Name) == "" {
			return fmt.Errorf("document %d field %d has no name: %w", d.Index, i, internalerr.ErrInvalidDocument)
		}
		if strings.TrimSpace(f.Text) != "" {
			nonBlank++
		}
	}
	if nonBlank == 0 {
		return fmt.Errorf("document %d has only blank fields: %w", d.Index, internalerr.ErrInvalidDocument)
	}

	return nil
}
