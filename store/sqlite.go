// Package store persists embedding collections in a SQLite database,
// as a durable alternative to the single-file collection format.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/embedkit/embedkit/collection"
	"github.com/embedkit/embedkit/vector"
)

// ErrCollectionNotFound indicates a Load for a collection name that has
// never been saved.
var ErrCollectionNotFound = errors.New("store: collection not found")

const schema = `
CREATE TABLE IF NOT EXISTS collections (
    name TEXT PRIMARY KEY,
    model_name TEXT NOT NULL,
    model_version TEXT NOT NULL,
    dimension INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS embeddings (
    collection_name TEXT NOT NULL REFERENCES collections(name) ON DELETE CASCADE,
    idx INTEGER NOT NULL,
    text TEXT,
    timestamp INTEGER NOT NULL,
    vector BLOB NOT NULL,
    PRIMARY KEY (collection_name, idx)
);
`

// SQLiteStore keeps named embedding collections in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (creating if needed) a SQLite database at path and returns a
// store backed by it. Use ":memory:" for an ephemeral database.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	s, err := NewSQLiteStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLiteStore wraps an existing database handle, ensuring the schema
// exists.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("store: db is nil")
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("store: ensure schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Save stores the collection under name, replacing any previous save with
// the same name. The write is transactional: a failed save leaves the
// previous contents intact.
func (s *SQLiteStore) Save(ctx context.Context, name string, c *collection.Collection) error {
	if name == "" {
		return fmt.Errorf("store: collection name must be set")
	}
	if err := c.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM embeddings WHERE collection_name = ?`, name); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO collections(name, model_name, model_version, dimension) VALUES(?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET model_name=excluded.model_name,
		     model_version=excluded.model_version, dimension=excluded.dimension`,
		name, c.ModelName, c.ModelVersion, c.Dimension); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO embeddings(collection_name, idx, text, timestamp, vector) VALUES(?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, rec := range c.Records {
		blob := vector.EncodeBlob(rec.Values)
		if _, err := stmt.ExecContext(ctx, name, i, rec.Text, rec.Timestamp, blob); err != nil {
			return fmt.Errorf("store: insert record %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// Load reads the collection saved under name. Returns ErrCollectionNotFound
// when the name is unknown, and ErrDimensionInconsistency when a stored
// vector disagrees with the collection's declared dimension.
func (s *SQLiteStore) Load(ctx context.Context, name string) (*collection.Collection, error) {
	c := &collection.Collection{}

	err := s.db.QueryRowContext(ctx,
		`SELECT model_name, model_version, dimension FROM collections WHERE name = ?`, name).
		Scan(&c.ModelName, &c.ModelVersion, &c.Dimension)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrCollectionNotFound, name)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT text, timestamp, vector FROM embeddings WHERE collection_name = ? ORDER BY idx`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var rec collection.Record
		var blob []byte
		if err := rows.Scan(&rec.Text, &rec.Timestamp, &blob); err != nil {
			return nil, err
		}
		rec.Values, err = vector.DecodeBlob(blob)
		if err != nil {
			return nil, err
		}
		c.Records = append(c.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// List returns the names of all saved collections.
func (s *SQLiteStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM collections ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Delete removes a saved collection and its records.
func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM embeddings WHERE collection_name = ?`, name); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM collections WHERE name = ?`, name); err != nil {
		return err
	}
	return tx.Commit()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
