package store

import (
	"context"
	"testing"
	"time"

	"github.com/munidigital/transporte/internal/db"
	"github.com/munidigital/transporte/internal/model"
)

func TestUserCRUD(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, "inspector1", "hash", model.RoleInspector)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	byName, _ := GetUserByUsername(ctx, database, "inspector1")
	if byName == nil || byName.ID != user.ID {
		t.Fatal("expected user found by username")
	}

	if err := UpdateUser(ctx, database, user.ID, model.RoleSupervisor); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	updated, _ := GetUser(ctx, database, user.ID)
	if updated.Role != model.RoleSupervisor {
		t.Errorf("expected supervisor, got %s", updated.Role)
	}

	if err := DeleteUser(ctx, database, user.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	users, _ := ListUsers(ctx, database)
	if len(users) != 0 {
		t.Errorf("expected no listed users after delete, got %d", len(users))
	}

	// Soft-deleted usernames can be reused.
	if _, err := CreateUser(ctx, database, "inspector1", "hash2", model.RoleInspector); err != nil {
		t.Errorf("expected soft-deleted username reusable: %v", err)
	}
}

func TestRoleAtLeast(t *testing.T) {
	if !model.RoleAtLeast(model.RoleAdmin, model.RoleInspector) {
		t.Error("admin should satisfy inspector")
	}
	if model.RoleAtLeast(model.RoleInspector, model.RoleSupervisor) {
		t.Error("inspector should not satisfy supervisor")
	}
	if !model.RoleAtLeast(model.RoleSupervisor, model.RoleSupervisor) {
		t.Error("role should satisfy itself")
	}
}

func TestTokenRevocation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	revoked, err := IsTokenRevoked(ctx, database, "jti-1")
	if err != nil {
		t.Fatalf("IsTokenRevoked: %v", err)
	}
	if revoked {
		t.Error("expected unknown jti not revoked")
	}

	if err := RevokeToken(ctx, database, "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}

	revoked, _ = IsTokenRevoked(ctx, database, "jti-1")
	if !revoked {
		t.Error("expected jti revoked")
	}
}
