package db

import (
	"errors"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned by single-row lookups that match nothing.
var ErrNotFound = errors.New("record not found")

// Store runs every repository query against one connection pool.
type Store struct {
	db     *sqlx.DB
	sqlite bool
}

func NewStore(conn *sqlx.DB) *Store {
	return &Store{
		db:     conn,
		sqlite: conn.DriverName() == "sqlite",
	}
}

// Default returns a store over the package connection opened by ConnectWithConfig.
func Default() *Store {
	return NewStore(DB)
}
