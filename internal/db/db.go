package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// connParams are applied by the driver to every pooled connection.
// _txlock=immediate makes BeginTx take the write lock up front, so a
// transaction's reads and writes cannot interleave with another writer.
var connParams = []string{
	"_pragma=journal_mode(WAL)",
	"_pragma=busy_timeout(5000)",
	"_pragma=foreign_keys(1)",
	"_pragma=synchronous(NORMAL)",
	"_time_format=sqlite",
	"_txlock=immediate",
}

// Open opens a SQLite database connection pool.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?"+strings.Join(connParams, "&"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return db, nil
}
