package auth

import (
	"context"
	"errors"
	"strings"

	"winsbygroup.com/tracker/internal/sqlite"
	"winsbygroup.com/tracker/internal/user"
)

// Registration holds the fields a new account is created from.
type Registration struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Profile is the public view of a user. It never carries the password.
type Profile struct {
	Email     string
	FirstName string
	LastName  string
}

// ProfileOf returns the public view of u.
func ProfileOf(u *user.User) Profile {
	return Profile{
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

type Service struct {
	users *user.Service
}

func NewService(users *user.Service) *Service {
	return &Service{users: users}
}

// Register creates the account described by r.
func (s *Service) Register(ctx context.Context, r Registration) (*user.User, error) {
	r.Email = strings.TrimSpace(r.Email)
	if r.Email == "" || r.Password == "" || r.FirstName == "" || r.LastName == "" {
		return nil, ErrValidation
	}
	if len(r.Password) > MaxPasswordBytes {
		return nil, ErrPasswordTooLong
	}

	exists, err := s.users.EmailExists(ctx, r.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	hash, err := HashPassword(r.Password)
	if err != nil {
		return nil, err
	}

	u, err := s.users.Create(ctx, &user.User{
		Email:        r.Email,
		PasswordHash: hash,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
	})
	if sqlite.IsUniqueConstraintError(err) {
		// lost a race with a concurrent registration
		return nil, ErrDuplicateEmail
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Login returns the user identified by email when password matches.
func (s *Service) Login(ctx context.Context, email, password string) (*user.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	if len(password) > MaxPasswordBytes {
		// no stored hash can match it
		return nil, ErrInvalidCredentials
	}

	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, user.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	ok, err := CheckPassword(u.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}
