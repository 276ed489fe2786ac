package customer

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
)

type Service struct {
	repo Repository
	db   *sqlx.DB
}

func NewService(db *sqlx.DB) *Service {
	return &Service{
		db:   db,
		repo: New(db),
	}
}

func (s *Service) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// ListByUser returns the customers owned by userID in insertion order,
// each with references to its projects.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]WithProjects, error) {
	customers, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	refs, err := s.repo.GetProjectRefsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	byCustomer := make(map[string][]ProjectRef, len(customers))
	for _, ref := range refs {
		byCustomer[ref.CustomerID] = append(byCustomer[ref.CustomerID], ref)
	}

	out := make([]WithProjects, 0, len(customers))
	for _, c := range customers {
		projects := byCustomer[c.CustomerID]
		if projects == nil {
			projects = []ProjectRef{}
		}
		out = append(out, WithProjects{Customer: c, Projects: projects})
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Customer, error) {
	return s.repo.Get(ctx, id)
}

// Create stores c under c.UserID and returns the stored record.
func (s *Service) Create(ctx context.Context, c *Customer) (*Customer, error) {
	var id string
	err := s.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		id, err = s.repo.Create(ctx, tx, c)
		return err
	})
	if err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, id)
}

// Update merges the non-nil fields of p into the customer.
func (s *Service) Update(ctx context.Context, id string, p *Patch) error {
	return s.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.Patch(ctx, tx, id, p)
	})
}

// Delete removes the customer and, by cascade, its projects.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.Delete(ctx, tx, id)
	})
}

// OwnerOf reports the user owning the customer. found is false when the
// customer does not exist.
func (s *Service) OwnerOf(ctx context.Context, id string) (owner string, found bool, err error) {
	owner, err = s.repo.Owner(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return owner, true, nil
}
