package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pulseboard/pulseboard/internal/store"
	"github.com/pulseboard/pulseboard/internal/store/storetest"
)

func makeMongoStore(t *testing.T) store.Store {
	t.Helper()
	uri := os.Getenv("PULSEBOARD_MONGO_URI")
	if uri == "" {
		t.Skip("PULSEBOARD_MONGO_URI not set; skipping mongo store integration test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Fresh database per run keeps the suite isolated.
	dbName := "pulseboard_test_" + uuid.New().String()[:8]
	db, err := Open(ctx, uri, dbName)
	if err != nil {
		t.Fatalf("mongo open: %v", err)
	}
	t.Cleanup(func() {
		dropCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(dropCtx)
		_ = db.Client().Disconnect(dropCtx)
	})
	if err := EnsureIndexes(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	return New(db)
}

func TestMongoStore_Compliance(t *testing.T) {
	storetest.Run(t, makeMongoStore)
}
