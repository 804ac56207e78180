package storage

import (
	"fmt"
	"log/slog"
)

const (
	TypeLocal  = "local"
	TypeSQLite = "sqlite"
	TypeRedis  = "redis"
)

// NewFileStore creates the file store backend for the given type.
// For "local" the connection string is the root directory, for "sqlite" the DSN and
// for "redis" a redis URL (redis://host:port/db).
func NewFileStore(storeType, connectionString string) (store FileStore, err error) {
	switch storeType {
	case TypeLocal, "":
		store, err = NewLocalFileStore(connectionString)
	case TypeSQLite:
		store, err = NewSQLiteFileStore(connectionString)
	case TypeRedis:
		store, err = NewRedisFileStoreFromURL(connectionString)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storeType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s file store: %w", storeType, err)
	}

	slog.Info("file store initialized", "type", storeType)
	return store, nil
}
