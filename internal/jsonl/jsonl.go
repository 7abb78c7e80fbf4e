// Package jsonl reads document batches stored one JSON object per line.
package jsonl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/cognicore/facet/pkg/facet/document"
)

// Record is the line format of a batch file.
//
//	{"id": "a1", "url": "https://...", "language": "en",
//	 "title": "Apache Lucene", "snippet": "Search engine library",
//	 "fields": {"body": "..."}}
//
// Title and snippet become the first two fields; any extra fields follow
// in name order.
type Record struct {
	ID       string            `json:"id"`
	URL      string            `json:"url"`
	Language string            `json:"language"`
	Title    string            `json:"title"`
	Snippet  string            `json:"snippet"`
	Fields   map[string]string `json:"fields"`
}

// Document converts the record into a document at the given batch position
func (r Record) Document(index int) document.Document {
	doc := document.New(index, r.Language, r.Title, r.Snippet)
	doc.ID = r.ID
	doc.URL = r.URL

	names := make([]string, 0, len(r.Fields))
	for name := range r.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		doc.Fields = append(doc.Fields, document.Field{Name: name, Text: r.Fields[name]})
	}
	return doc
}

// LoadFile loads documents from a JSONL file
func LoadFile(path string) ([]document.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	docs, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return docs, nil
}

// Load reads documents from r. Malformed lines are logged and skipped;
// document indices follow the order of the lines that parsed.
func Load(r io.Reader) ([]document.Document, error) {
	var docs []document.Document
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var rec Record
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			slog.Warn("skipping malformed JSON line", "line", line, "error", err)
			continue
		}
		docs = append(docs, rec.Document(len(docs)))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read documents: %w", err)
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("no valid documents found")
	}
	return docs, nil
}
