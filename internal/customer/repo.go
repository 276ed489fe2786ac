package customer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"winsbygroup.com/tracker/internal/sqlite"
)

// ErrNotFound is returned when no customer has the requested id.
var ErrNotFound = errors.New("customer not found")

// ErrOwnerNotFound is returned when a customer is created for a user that
// no longer exists.
var ErrOwnerNotFound = errors.New("customer owner not found")

type Repository interface {
	GetByUser(ctx context.Context, userID string) ([]Customer, error)
	GetProjectRefsByUser(ctx context.Context, userID string) ([]ProjectRef, error)
	Get(ctx context.Context, id string) (*Customer, error)
	Create(ctx context.Context, tx *sqlx.Tx, c *Customer) (string, error)
	Patch(ctx context.Context, tx *sqlx.Tx, id string, p *Patch) error
	Delete(ctx context.Context, tx *sqlx.Tx, id string) error
	Owner(ctx context.Context, id string) (string, error)
}

type repo struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) Repository {
	return &repo{db: db}
}

func (r *repo) GetByUser(ctx context.Context, userID string) ([]Customer, error) {
	out := []Customer{}
	if err := r.db.SelectContext(ctx, &out, getCustomersByUserSQL, userID); err != nil {
		return nil, fmt.Errorf("get customers: %w", err)
	}
	return out, nil
}

func (r *repo) GetProjectRefsByUser(ctx context.Context, userID string) ([]ProjectRef, error) {
	var out []ProjectRef
	if err := r.db.SelectContext(ctx, &out, getProjectRefsByUserSQL, userID); err != nil {
		return nil, fmt.Errorf("get project refs: %w", err)
	}
	return out, nil
}

func (r *repo) Get(ctx context.Context, id string) (*Customer, error) {
	var c Customer
	err := r.db.GetContext(ctx, &c, getCustomerSQL, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w (%s)", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}

func (r *repo) Create(ctx context.Context, tx *sqlx.Tx, c *Customer) (string, error) {
	id := uuid.NewString()
	_, err := tx.ExecContext(ctx, createCustomerSQL,
		id,
		c.UserID,
		c.FirstName,
		c.LastName,
		c.Email,
		c.Phone,
		c.Address,
	)
	if sqlite.IsForeignKeyError(err) {
		return "", fmt.Errorf("%w (%s)", ErrOwnerNotFound, c.UserID)
	}
	if err != nil {
		return "", fmt.Errorf("create customer: %w", err)
	}
	return id, nil
}

func (r *repo) Patch(ctx context.Context, tx *sqlx.Tx, id string, p *Patch) error {
	res, err := tx.ExecContext(ctx, patchCustomerSQL,
		p.FirstName,
		p.LastName,
		p.Email,
		p.Phone,
		p.Address,
		id,
	)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w (%s)", ErrNotFound, id)
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, tx *sqlx.Tx, id string) error {
	_, err := tx.ExecContext(ctx, deleteCustomerSQL, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	return nil
}

func (r *repo) Owner(ctx context.Context, id string) (string, error) {
	var userID string
	err := r.db.GetContext(ctx, &userID, customerOwnerSQL, id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w (%s)", ErrNotFound, id)
	}
	if err != nil {
		return "", fmt.Errorf("customer owner: %w", err)
	}
	return userID, nil
}
