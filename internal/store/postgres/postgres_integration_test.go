package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/pulseboard/pulseboard/internal/store"
	"github.com/pulseboard/pulseboard/internal/store/storetest"
)

func makePGStore(t *testing.T) store.Store {
	t.Helper()
	dsn := os.Getenv("PULSEBOARD_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("PULSEBOARD_POSTGRES_DSN not set; skipping postgres store integration test")
	}
	db, err := Open(dsn)
	if err != nil {
		t.Fatalf("postgres open: %v", err)
	}
	if err := EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return NewWithDB(db)
}

func TestPostgresStore_Compliance(t *testing.T) {
	storetest.Run(t, makePGStore)
}
