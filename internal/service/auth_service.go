package service

import (
	"context"
	"fmt"
	"net/mail"

	"omnisearch/gateway/internal/backend"
	app_errors "omnisearch/gateway/internal/errors"
	"omnisearch/gateway/internal/model"
)

const minPasswordLength = 8

// AuthBackend is the slice of the backend client the auth routes proxy to.
type AuthBackend interface {
	Login(ctx context.Context, creds *backend.Credentials) (*model.Token, error)
	Register(ctx context.Context, reg *backend.Registration) (*model.User, error)
	Me(ctx context.Context) (*model.User, error)
	Refresh(ctx context.Context) (*model.Token, error)
}

// AuthService runs the local validation rules (email shape, password
// length, required fields) before any network call, then forwards to the
// backend. Token issuance and verification stay upstream.
type AuthService struct {
	backend AuthBackend
}

func NewAuthService(b AuthBackend) *AuthService {
	return &AuthService{backend: b}
}

func (s *AuthService) Login(ctx context.Context, creds *backend.Credentials) (*model.Token, error) {
	if err := validEmail(creds.Email); err != nil {
		return nil, err
	}
	if creds.Password == "" {
		return nil, fmt.Errorf("%w: password is required", app_errors.ErrValidation)
	}
	return s.backend.Login(ctx, creds)
}

func (s *AuthService) Register(ctx context.Context, reg *backend.Registration) (*model.User, error) {
	if err := validEmail(reg.Email); err != nil {
		return nil, err
	}
	if reg.Name == "" {
		return nil, fmt.Errorf("%w: name is required", app_errors.ErrValidation)
	}
	if len(reg.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", app_errors.ErrValidation, minPasswordLength)
	}
	return s.backend.Register(ctx, reg)
}

func (s *AuthService) Me(ctx context.Context) (*model.User, error) {
	return s.backend.Me(ctx)
}

func (s *AuthService) Refresh(ctx context.Context) (*model.Token, error) {
	return s.backend.Refresh(ctx)
}

func validEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", app_errors.ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: email address is not valid", app_errors.ErrValidation)
	}
	return nil
}
