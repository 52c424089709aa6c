// Package testsupport holds database helpers shared by package tests.
package testsupport

import (
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

var dbSeq atomic.Int64

func NewSQLiteMemoryDB() (*sql.DB, error) {
	return sql.Open("sqlite3", "file::memory:?cache=shared")
}

// MemoryDSN returns a sqlite DSN for an in-memory database private to the
// calling test.
func MemoryDSN(tb testing.TB) string {
	tb.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(tb.Name())
	return fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_fk=1", name, dbSeq.Add(1))
}

// NewBunSQLiteDB opens a private in-memory sqlite database wrapped in bun.
// It is closed when the test ends.
func NewBunSQLiteDB(tb testing.TB) *bun.DB {
	tb.Helper()
	sqlDB, err := sql.Open("sqlite3", MemoryDSN(tb))
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	tb.Cleanup(func() { _ = db.Close() })
	return db
}
