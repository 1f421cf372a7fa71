package store

import (
	"context"
	"testing"

	"github.com/lostflight/lostflight/internal/db"
)

func TestGetJWTSecretGeneratesAndPersists(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatalf("GetJWTSecret: %v", err)
	}
	if len(first) == 0 {
		t.Fatal("expected non-empty secret")
	}

	second, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatalf("second GetJWTSecret: %v", err)
	}
	if string(first) != string(second) {
		t.Error("expected the same secret on repeat calls")
	}
}
