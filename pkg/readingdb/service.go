// ReadingDB archives raw ESP32 readings keyed by push id.
// It is written by reading_collector and read by analysis_api.
package readingdb

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync"

	"github.com/NotCoffee418/dbmigrator"
	"github.com/NotCoffee418/ignyte_sensor/pkg/pathing"

	_ "modernc.org/sqlite"
)

var ErrSchemaMissing = errors.New("readings table missing after migration")

var (
	db    *sql.DB
	dbErr error
	once  sync.Once
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Initialize must be called manually on startup
func InitializeDatabase() error {
	db, err := GetDB()
	if err != nil {
		return fmt.Errorf("open reading db: %w", err)
	}
	return Migrate(db)
}

// Migrate applies the embedded migrations to db and checks that the
// readings table is in place afterwards.
func Migrate(db *sql.DB) error {
	dbmigrator.SetDatabaseType(dbmigrator.SQLite)
	<-dbmigrator.MigrateUpCh(
		db,
		migrationFS,
		"migrations",
	)
	return verifySchema(db)
}

func verifySchema(db *sql.DB) error {
	var count int64
	if err := db.QueryRow("SELECT COUNT(*) FROM readings").Scan(&count); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaMissing, err)
	}
	return nil
}

// GetDB returns the shared database at pathing.GetReadingDbPath.
// A failed open is remembered and returned on every call.
func GetDB() (*sql.DB, error) {
	once.Do(func() {
		db, dbErr = Open(pathing.GetReadingDbPath())
	})
	return db, dbErr
}

// Open connects to the SQLite file at path and verifies the connection.
func Open(path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err = conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}
	// SQLite allows a single writer
	conn.SetMaxOpenConns(1)
	return conn, nil
}
