package user_test

import (
	"context"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"winsbygroup.com/tracker/internal/sqlite"
	"winsbygroup.com/tracker/internal/testutil"
	"winsbygroup.com/tracker/internal/user"
)

func TestUserLifecycle(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	svc := user.NewService(db)

	before := time.Now().UTC().Add(-time.Second)
	created, err := svc.Create(ctx, &user.User{
		Email:        "noa@example.com",
		PasswordHash: "$2a$10$hash",
		FirstName:    "Noa",
		LastName:     "Levi",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.UserID == "" {
		t.Fatal("expected an id")
	}
	if created.CreatedAt.Before(before) {
		t.Errorf("unexpected created_at %v", created.CreatedAt)
	}

	t.Run("get by id", func(t *testing.T) {
		got, err := svc.Get(ctx, created.UserID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Email != "noa@example.com" || got.PasswordHash != "$2a$10$hash" {
			t.Errorf("unexpected user %+v", got)
		}
	})

	t.Run("get by email ignores case", func(t *testing.T) {
		got, err := svc.GetByEmail(ctx, "NOA@example.com")
		if err != nil {
			t.Fatalf("get by email: %v", err)
		}
		if got.UserID != created.UserID {
			t.Errorf("expected %s, got %s", created.UserID, got.UserID)
		}
	})

	t.Run("email exists", func(t *testing.T) {
		exists, err := svc.EmailExists(ctx, "noa@example.com")
		if err != nil || !exists {
			t.Errorf("expected email to exist, got %v (err %v)", exists, err)
		}
		exists, err = svc.EmailExists(ctx, "other@example.com")
		if err != nil || exists {
			t.Errorf("expected email not to exist, got %v (err %v)", exists, err)
		}
	})

	t.Run("duplicate email violates the unique constraint", func(t *testing.T) {
		_, err := svc.Create(ctx, &user.User{
			Email:        "Noa@Example.com",
			PasswordHash: "x",
			FirstName:    "Dup",
			LastName:     "User",
		})
		if !sqlite.IsUniqueConstraintError(err) {
			t.Errorf("expected unique constraint error, got %v", err)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		if _, err := svc.Get(ctx, "missing"); !errors.Is(err, user.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if _, err := svc.GetByEmail(ctx, "missing@example.com"); !errors.Is(err, user.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}
