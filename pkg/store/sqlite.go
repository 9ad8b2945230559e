package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	key        TEXT PRIMARY KEY,
	content    TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
`

// SQLiteStore persists documents in a single sqlite table, one row per key.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (and if necessary initializes) the database at path.
// Use ":memory:" for an ephemeral store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open sqlite store at %s", path)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "initialize documents table")
	}
	return &SQLiteStore{db: db}, nil
}

var _ Store = (*SQLiteStore)(nil)

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var content string
	err := s.db.GetContext(ctx, &content, "SELECT content FROM documents WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "get document %s", key)
	}
	return content, true, nil
}

func (s *SQLiteStore) Put(ctx context.Context, key string, text string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (key, content, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at`,
		key, text, time.Now().UTC())
	if err != nil {
		return errors.Wrapf(err, "put document %s", key)
	}
	log.Debug().Str("key", key).Int("content_len", len(text)).Msg("store: document updated")
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
