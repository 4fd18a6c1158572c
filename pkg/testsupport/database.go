package testsupport

import (
	"context"
	"testing"

	"github.com/goliatone/go-skillsnap/internal/database"
	"github.com/goliatone/go-skillsnap/portfolio"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewTestDB opens a private in-memory SQLite database with the portfolio schema.
// The database is closed when the test ends.
func NewTestDB(t testing.TB) *bun.DB {
	t.Helper()
	ctx := context.Background()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := database.Open(ctx, database.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := portfolio.CreateSchema(ctx, db); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	return db
}

// InsertUser stores a portfolio user and returns it with its id.
func InsertUser(t testing.TB, db bun.IDB, name string) portfolio.PortfolioUser {
	t.Helper()

	user := portfolio.PortfolioUser{Name: name}
	if _, err := db.NewInsert().Model(&user).Exec(context.Background()); err != nil {
		t.Fatalf("failed to insert user %s: %v", name, err)
	}
	return user
}
