package project

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"winsbygroup.com/tracker/internal/customer"
)

type Service struct {
	repo      Repository
	customers customer.Repository
	db        *sqlx.DB
}

func NewService(db *sqlx.DB) *Service {
	return &Service{
		db:        db,
		repo:      New(db),
		customers: customer.New(db),
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

// Get returns the project with its customer embedded.
func (s *Service) Get(ctx context.Context, id string) (*Populated, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	c, err := s.customers.Get(ctx, p.CustomerID)
	if err != nil && !errors.Is(err, customer.ErrNotFound) {
		return nil, err
	}

	return &Populated{Project: *p, Customer: c}, nil
}

// Create stores every project in one transaction. Each referenced customer
// must belong to ownerID; otherwise nothing is stored and ErrCustomerNotFound
// is returned.
func (s *Service) Create(ctx context.Context, ownerID string, projects []Project) ([]string, error) {
	ids := make([]string, 0, len(projects))
	err := s.WithTx(ctx, func(tx *sqlx.Tx) error {
		for i := range projects {
			p := &projects[i]
			owner, err := s.repo.CustomerOwner(ctx, tx, p.CustomerID)
			if err != nil {
				return err
			}
			if owner != ownerID {
				return fmt.Errorf("%w (%s)", ErrCustomerNotFound, p.CustomerID)
			}

			id, err := s.repo.Create(ctx, tx, p)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Update merges p into the project.
func (s *Service) Update(ctx context.Context, id string, p *Patch) error {
	return s.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.Patch(ctx, tx, id, p)
	})
}

// OwnerOf reports the user owning the project through its customer. found
// is false when the project does not exist.
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
