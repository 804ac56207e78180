package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteFileStore keeps file contents as blobs keyed by path.
type SQLiteFileStore struct {
	db *sql.DB
}

// NewSQLiteFileStore opens the database behind connectionString and creates the files table.
func NewSQLiteFileStore(connectionString string) (*SQLiteFileStore, error) {
	db, err := sql.Open("sqlite", connectionString)
	if err != nil {
		return nil, err
	}
	// in-memory databases are per connection
	db.SetMaxOpenConns(1)

	store := &SQLiteFileStore{db: db}
	if err := store.createSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteFileStore) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS files (
		path TEXT PRIMARY KEY,
		data BLOB NOT NULL
	)`)
	return err
}

func (s *SQLiteFileStore) Read(ctx context.Context, path string) ([]byte, error) {
	row := s.db.QueryRowContext(ctx, "SELECT data FROM files WHERE path = ?", path)
	var data []byte
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, err
	}
	return data, nil
}

func (s *SQLiteFileStore) Write(ctx context.Context, path string, data []byte) error {
	if data == nil {
		data = []byte{}
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO files (path, data) VALUES (?, ?) ON CONFLICT(path) DO UPDATE SET data = excluded.data",
		path, data)
	return err
}

func (s *SQLiteFileStore) Delete(ctx context.Context, path string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM files WHERE path = ?", path)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return nil
}

func (s *SQLiteFileStore) Exists(ctx context.Context, path string) (bool, error) {
	row := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM files WHERE path = ?", path)
	var count int
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *SQLiteFileStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
