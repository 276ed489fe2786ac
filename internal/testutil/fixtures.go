package testutil

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"

	"winsbygroup.com/tracker/internal/auth"
	"winsbygroup.com/tracker/internal/customer"
	"winsbygroup.com/tracker/internal/project"
	"winsbygroup.com/tracker/internal/user"
)

// CreateUser stores a user whose password is "secret".
func CreateUser(t *testing.T, db *sqlx.DB, email string) *user.User {
	t.Helper()

	hash, err := auth.HashPassword("secret")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	u, err := user.NewService(db).Create(context.Background(), &user.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Test",
		LastName:     "User",
	})
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

// CreateCustomer stores a customer owned by userID.
func CreateCustomer(t *testing.T, db *sqlx.DB, userID, firstName string) *customer.Customer {
	t.Helper()

	c, err := customer.NewService(db).Create(context.Background(), &customer.Customer{
		UserID:    userID,
		FirstName: firstName,
		LastName:  "Customer",
		Email:     firstName + "@example.com",
	})
	if err != nil {
		t.Fatalf("create customer %s: %v", firstName, err)
	}
	return c
}

// CreateProject stores p under the customer's owner and returns its id.
func CreateProject(t *testing.T, db *sqlx.DB, ownerID string, p project.Project) string {
	t.Helper()

	ids, err := project.NewService(db).Create(context.Background(), ownerID, []project.Project{p})
	if err != nil {
		t.Fatalf("create project %s: %v", p.Name, err)
	}
	return ids[0]
}
