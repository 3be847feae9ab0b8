// Package db opens the posgate SQLite database and applies its schema
// migrations.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// A single writer connection serializes every mutation while readers fan
// out over their own pool. Both sides run WAL, so readers never block the
// writer and a busy writer only delays, never fails, a read.
const (
	busyTimeoutMS  = 5000
	defaultReaders = 4
)

type poolSettings struct {
	maxOpen     int
	txImmediate bool
}

// OpenSQLitePair opens the write pool (one connection, immediate
// transactions) and the read pool for the same database file. readers
// sizes the read pool; values <= 0 fall back to the default of 4.
func OpenSQLitePair(path string, readers int) (writeDB, readDB *sql.DB, err error) {
	writeDB, err = openPool(path, poolSettings{maxOpen: 1, txImmediate: true})
	if err != nil {
		return nil, nil, fmt.Errorf("open write pool: %w", err)
	}

	if readers <= 0 {
		readers = defaultReaders
	}
	readDB, err = openPool(path, poolSettings{maxOpen: readers})
	if err != nil {
		_ = writeDB.Close()
		return nil, nil, fmt.Errorf("open read pool: %w", err)
	}
	return writeDB, readDB, nil
}

func openPool(path string, s poolSettings) (*sql.DB, error) {
	pool, err := sql.Open("sqlite3", dsn(path, s.txImmediate))
	if err != nil {
		return nil, err
	}
	pool.SetMaxOpenConns(s.maxOpen)
	pool.SetMaxIdleConns(s.maxOpen)
	pool.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return pool, nil
}

// dsn renders the connection string. txImmediate makes every transaction
// on the pool take the write lock up front, which turns lock contention
// into busy_timeout waits instead of mid-transaction failures.
func dsn(path string, txImmediate bool) string {
	params := url.Values{}
	params.Set("_journal_mode", "WAL")
	params.Set("_busy_timeout", strconv.Itoa(busyTimeoutMS))
	params.Set("_synchronous", "NORMAL")
	params.Set("_foreign_keys", "on")
	if txImmediate {
		params.Set("_txlock", "immediate")
	}
	return path + "?" + params.Encode()
}
