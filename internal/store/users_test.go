package store

import (
	"context"
	"testing"

	"github.com/pointmint/market/internal/db"
	"github.com/pointmint/market/internal/model"
)

func TestCreateAndGetUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, "admin", "hash", model.RoleAdmin)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Username != "admin" || user.Role != model.RoleAdmin {
		t.Errorf("unexpected user: %+v", user)
	}

	got, err := GetUserByUsername(ctx, database, "admin")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if got == nil || got.ID != user.ID {
		t.Errorf("expected user %d, got %+v", user.ID, got)
	}
}

func TestGetUserMissing(t *testing.T) {
	database := db.NewTestDB(t)

	got, err := GetUserByUsername(context.Background(), database, "nobody")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}
