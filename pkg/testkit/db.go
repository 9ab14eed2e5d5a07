package testkit

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/shashiranjanraj/tiffin/pkg/database"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var dbSeq atomic.Int64

// NewDB opens a private in-memory SQLite database, migrates models into it
// and closes it when t finishes. The pool is pinned to one connection so
// every statement sees the same memory database.
func NewDB(t testing.TB, models ...any) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))

	db, err := database.OpenDialector(sqlite.Open(dsn))
	if err != nil {
		t.Fatalf("testkit: open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("testkit: sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			t.Fatalf("testkit: migrate: %v", err)
		}
	}
	return db
}
