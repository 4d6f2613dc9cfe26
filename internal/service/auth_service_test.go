package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"omnisearch/gateway/internal/backend"
	app_errors "omnisearch/gateway/internal/errors"
	"omnisearch/gateway/internal/model"
)

type fakeAuthBackend struct {
	loginCalled    bool
	registerCalled bool
}

func (f *fakeAuthBackend) Login(context.Context, *backend.Credentials) (*model.Token, error) {
	f.loginCalled = true
	return &model.Token{AccessToken: "tok"}, nil
}

func (f *fakeAuthBackend) Register(context.Context, *backend.Registration) (*model.User, error) {
	f.registerCalled = true
	return &model.User{ID: "u1"}, nil
}

func (f *fakeAuthBackend) Me(context.Context) (*model.User, error) {
	return &model.User{ID: "u1"}, nil
}

func (f *fakeAuthBackend) Refresh(context.Context) (*model.Token, error) {
	return &model.Token{AccessToken: "tok2"}, nil
}

func TestAuthService_LoginValidation(t *testing.T) {
	b := &fakeAuthBackend{}
	svc := NewAuthService(b)
	ctx := context.Background()

	cases := []struct {
		name  string
		creds backend.Credentials
	}{
		{"missing email", backend.Credentials{Password: "secret123"}},
		{"malformed email", backend.Credentials{Email: "not-an-email", Password: "secret123"}},
		{"missing password", backend.Credentials{Email: "a@example.com"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(ctx, &tc.creds)
			assert.ErrorIs(t, err, app_errors.ErrValidation)
		})
	}
	assert.False(t, b.loginCalled, "invalid credentials never reach the backend")

	token, err := svc.Login(ctx, &backend.Credentials{Email: "a@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "tok", token.AccessToken)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	b := &fakeAuthBackend{}
	svc := NewAuthService(b)
	ctx := context.Background()

	_, err := svc.Register(ctx, &backend.Registration{Email: "a@example.com", Name: "A", Password: "short"})
	assert.ErrorIs(t, err, app_errors.ErrValidation, "passwords under 8 characters are rejected")

	_, err = svc.Register(ctx, &backend.Registration{Email: "a@example.com", Password: "longenough"})
	assert.ErrorIs(t, err, app_errors.ErrValidation, "name is required")
	assert.False(t, b.registerCalled)

	user, err := svc.Register(ctx, &backend.Registration{Email: "a@example.com", Name: "A", Password: "longenough"})
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
}
