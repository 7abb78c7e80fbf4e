package lexicon

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/cognicore/facet/pkg/facet/internalerr"
)

// SQLiteSource keeps stop words and stop labels for any number of
// languages in a SQLite database. It is the usual override source for
// deployments that curate their dictionaries outside the binary.
type SQLiteSource struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) a lexical resource database with WAL mode
// enabled.
func OpenSQLite(ctx context.Context, path string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open lexicon db: %v: %w", err, internalerr.ErrSourceUnavailable)
	}

	// Enable WAL mode for concurrent readers
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("lexicon db wal: %v: %w", err, internalerr.ErrSourceUnavailable)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteSource{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS stopwords (
	language TEXT NOT NULL,
	token TEXT NOT NULL,
	PRIMARY KEY(language, token)
);

CREATE TABLE IF NOT EXISTS stoplabels (
	language TEXT NOT NULL,
	pattern TEXT NOT NULL,
	PRIMARY KEY(language, pattern)
);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("lexicon db schema: %w", err)
	}
	return nil
}

// Load implements Source.
func (s *SQLiteSource) Load(ctx context.Context, language string) (*Data, error) {
	lang := strings.ToLower(strings.TrimSpace(language))

	words, err := s.column(ctx, `SELECT token FROM stopwords WHERE language=? ORDER BY token`, lang)
	if err != nil {
		return nil, err
	}
	labels, err := s.column(ctx, `SELECT pattern FROM stoplabels WHERE language=? ORDER BY pattern`, lang)
	if err != nil {
		return nil, err
	}

	if len(words) == 0 && len(labels) == 0 {
		return nil, fmt.Errorf("lexicon db: no resources for %q: %w", lang, internalerr.ErrMissingLexicalResource)
	}
	return NewData(lang, words, labels)
}

func (s *SQLiteSource) column(ctx context.Context, query, lang string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, lang)
	if err != nil {
		return nil, fmt.Errorf("lexicon db query: %v: %w", err, internalerr.ErrSourceUnavailable)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Replace swaps the stored resources of data's language for the contents
// of data in a single transaction.
func (s *SQLiteSource) Replace(ctx context.Context, data *Data) error {
	lang := data.Language()
	if lang == "" {
		return fmt.Errorf("lexicon db replace: data has no language: %w", internalerr.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM stopwords WHERE language=?`, lang); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM stoplabels WHERE language=?`, lang); err != nil {
		return err
	}

	if err := insertAll(ctx, tx, `INSERT OR IGNORE INTO stopwords (language, token) VALUES (?, ?)`, lang, data.StopWords()); err != nil {
		return err
	}
	if err := insertAll(ctx, tx, `INSERT OR IGNORE INTO stoplabels (language, pattern) VALUES (?, ?)`, lang, data.StopLabels()); err != nil {
		return err
	}

	return tx.Commit()
}

func insertAll(ctx context.Context, tx *sql.Tx, query, lang string, values []string) error {
	if len(values) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, v := range values {
		if _, err := stmt.ExecContext(ctx, lang, v); err != nil {
			return err
		}
	}
	return nil
}

// Languages lists every language with at least one stored resource
func (s *SQLiteSource) Languages(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT language FROM stopwords
UNION
SELECT language FROM stoplabels
ORDER BY language`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var langs []string
	for rows.Next() {
		var l string
		if err := rows.Scan(&l); err != nil {
			return nil, err
		}
		langs = append(langs, l)
	}
	return langs, rows.Err()
}
