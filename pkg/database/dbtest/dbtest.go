// Package dbtest opens throwaway in-memory databases with the full schema.
package dbtest

import (
	"fmt"
	"io"
	"sync/atomic"
	"testing"

	"github.com/RigelNana/arktutor/pkg/database"
	"github.com/RigelNana/arktutor/pkg/database/schema"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var seq atomic.Int64

// New returns a migrated in-memory sqlite database private to t.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	// Named so a recycled connection reopens the same data; unique per test.
	dsn := fmt.Sprintf("file:arktutor_test_%d?mode=memory&cache=shared&_foreign_keys=on", seq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), database.NewGormConfig())
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db, schema.Models()...); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

// QuietLogger discards all output.
func QuietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
