package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when no user matches the lookup.
var ErrNotFound = errors.New("user not found")

type Repository interface {
	Get(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, tx *sqlx.Tx, u *User) (string, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	DeleteAll(ctx context.Context, tx *sqlx.Tx) error
}

type repo struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) Repository {
	return &repo{db: db}
}

func (r *repo) Get(ctx context.Context, id string) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, getUserSQL, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w (%s)", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (r *repo) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, getUserByEmailSQL, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w (%s)", ErrNotFound, email)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}

func (r *repo) Create(ctx context.Context, tx *sqlx.Tx, u *User) (string, error) {
	id := uuid.NewString()
	_, err := tx.ExecContext(ctx, createUserSQL,
		id,
		u.Email,
		u.PasswordHash,
		u.FirstName,
		u.LastName,
		time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}
	return id, nil
}

func (r *repo) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, emailExistsSQL, email); err != nil {
		return false, fmt.Errorf("email exists: %w", err)
	}
	return exists, nil
}

// DeleteAll removes every user; customers, projects and sessions follow by cascade.
func (r *repo) DeleteAll(ctx context.Context, tx *sqlx.Tx) error {
	if _, err := tx.ExecContext(ctx, deleteAllUsersSQL); err != nil {
		return fmt.Errorf("delete all users: %w", err)
	}
	return nil
}
