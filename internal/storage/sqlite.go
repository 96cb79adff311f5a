package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite query cache.
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS articles (
			best_id TEXT PRIMARY KEY,
			publication_id INTEGER NOT NULL,
			line INTEGER NOT NULL,
			article_json TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS keywords (
			publication_id INTEGER NOT NULL,
			locale TEXT NOT NULL,
			position INTEGER NOT NULL,
			keyword TEXT NOT NULL,
			PRIMARY KEY (publication_id, locale, position)
		);

		-- Identifiers found in galley files, never written back to JSONL
		CREATE TABLE IF NOT EXISTS detected_ids (
			best_id TEXT NOT NULL,
			id_type TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (best_id, id_type)
		);
	`

	_, err := db.Exec(schema)
	return err
}

// RebuildFromJSONL clears the database and rebuilds it from a JSONL file.
// It returns the number of articles loaded.
func (d *DB) RebuildFromJSONL(jsonlPath string) (int, error) {
	articles, err := ReadAll(jsonlPath)
	if err != nil {
		return 0, fmt.Errorf("reading JSONL: %w", err)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"articles", "keywords", "detected_ids"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return 0, fmt.Errorf("clearing %s table: %w", table, err)
		}
	}

	articleStmt, err := tx.Prepare(`
		INSERT INTO articles (best_id, publication_id, line, article_json)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing articles insert: %w", err)
	}
	defer articleStmt.Close()

	keywordStmt, err := tx.Prepare(`
		INSERT INTO keywords (publication_id, locale, position, keyword)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing keywords insert: %w", err)
	}
	defer keywordStmt.Close()

	for i, a := range articles {
		data, err := json.Marshal(a)
		if err != nil {
			return 0, fmt.Errorf("marshaling article %s: %w", a.Submission.BestID, err)
		}
		pubID := a.Submission.CurrentPublicationID
		if _, err := articleStmt.Exec(a.Submission.BestID, pubID, i, string(data)); err != nil {
			return 0, fmt.Errorf("inserting article %s: %w", a.Submission.BestID, err)
		}

		for locale, keywords := range a.Keywords {
			for pos, kw := range keywords {
				if _, err := keywordStmt.Exec(pubID, locale, pos, kw); err != nil {
					return 0, fmt.Errorf("inserting keyword for %s: %w", a.Submission.BestID, err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rebuild: %w", err)
	}
	return len(articles), nil
}

// GetArticle returns the article with the given best id, or nil if there is
// none. Detected identifiers fill in stored identifiers that are missing.
func (d *DB) GetArticle(ctx context.Context, bestID string) (*Article, error) {
	var data string
	err := d.db.QueryRowContext(ctx,
		`SELECT article_json FROM articles WHERE best_id = ?`, bestID).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying article %s: %w", bestID, err)
	}

	var a Article
	if err := json.Unmarshal([]byte(data), &a); err != nil {
		return nil, fmt.Errorf("decoding article %s: %w", bestID, err)
	}

	detected, err := d.DetectedIDs(ctx, bestID)
	if err != nil {
		return nil, err
	}
	for idType, value := range detected {
		if a.Submission.StoredID(idType) != "" {
			continue
		}
		if a.Submission.StoredIDs == nil {
			a.Submission.StoredIDs = make(map[string]string)
		}
		a.Submission.StoredIDs[idType] = value
	}

	return &a, nil
}

// ListIDs returns all best ids in source file order.
func (d *DB) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT best_id FROM articles ORDER BY line`)
	if err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning article id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Count returns the number of cached articles.
func (d *DB) Count() (int, error) {
	var n int
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM articles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting articles: %w", err)
	}
	return n, nil
}

// Keywords returns a publication's keywords for the given locales, each list
// in source order. Locales without keywords are absent from the result.
func (d *DB) Keywords(ctx context.Context, publicationID int64, locales []string) (map[string][]string, error) {
	out := make(map[string][]string)
	if len(locales) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(locales)), ",")
	args := make([]any, 0, len(locales)+1)
	args = append(args, publicationID)
	for _, loc := range locales {
		args = append(args, loc)
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT locale, keyword FROM keywords
		WHERE publication_id = ? AND locale IN (`+placeholders+`)
		ORDER BY locale, position
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying keywords: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var locale, keyword string
		if err := rows.Scan(&locale, &keyword); err != nil {
			return nil, fmt.Errorf("scanning keyword: %w", err)
		}
		out[locale] = append(out[locale], keyword)
	}
	return out, rows.Err()
}

// SetDetectedID records an identifier found outside the source data.
func (d *DB) SetDetectedID(ctx context.Context, bestID, idType, value string) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO detected_ids (best_id, id_type, value) VALUES (?, ?, ?)
		ON CONFLICT (best_id, id_type) DO UPDATE SET value = excluded.value
	`, bestID, idType, value)
	if err != nil {
		return fmt.Errorf("recording %s for %s: %w", idType, bestID, err)
	}
	return nil
}

// DetectedIDs returns the detected identifiers of an article by type.
func (d *DB) DetectedIDs(ctx context.Context, bestID string) (map[string]string, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id_type, value FROM detected_ids WHERE best_id = ?`, bestID)
	if err != nil {
		return nil, fmt.Errorf("querying detected ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]string)
	for rows.Next() {
		var idType, value string
		if err := rows.Scan(&idType, &value); err != nil {
			return nil, fmt.Errorf("scanning detected id: %w", err)
		}
		ids[idType] = value
	}
	return ids, rows.Err()
}
