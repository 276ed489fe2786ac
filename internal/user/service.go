package user

import (
	"context"

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

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *Service) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.repo.EmailExists(ctx, email)
}

// Create stores u (PasswordHash must already be set) and returns the stored record.
func (s *Service) Create(ctx context.Context, u *User) (*User, error) {
	var id string
	err := s.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		id, err = s.repo.Create(ctx, tx, u)
		return err
	})
	if err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, id)
}
