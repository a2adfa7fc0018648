// Package testutil holds helpers shared by the package tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"bookstore/config"
	"bookstore/database"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var dbSeq atomic.Int64

// AdminEmail and AdminPassword are the credentials of the seeded admin.
const (
	AdminEmail    = "admin@example.com"
	AdminPassword = "adminpassword"
)

// OpenDB opens a migrated and seeded in-memory SQLite database private to the test.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=on", name, dbSeq.Add(1))

	db, err := database.Open(sqlite.Open(dsn), zap.NewNop())
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	admin := config.AdminConfig{Email: AdminEmail, Password: AdminPassword}
	if err := database.SeedInitialData(db, admin, zap.NewNop()); err != nil {
		t.Fatalf("seed test db: %v", err)
	}
	return db
}

// JwtOptions returns token options suitable for tests.
func JwtOptions() config.JwtAuthOptions {
	return config.JwtAuthOptions{
		SecretKey:        "test-secret",
		Issuer:           "bookstore-test",
		Audience:         "bookstore-test-client",
		LifetimeMinutes:  30,
		ValidateIssuer:   true,
		ValidateAudience: true,
		ValidateLifetime: true,
	}
}
