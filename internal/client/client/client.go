package client

import (
	"context"

	"github.com/dmitrijs2005/nyayguru/internal/client/models"
)

// Client is the auth service contract consumed by the session manager.
type Client interface {
	// ValidateToken returns the user owning the current bearer token.
	ValidateToken(ctx context.Context) (*models.User, error)
	Login(ctx context.Context, identifier, secret string) (*models.AuthResult, error)
	// LoginWithAssertion exchanges a third-party identity proof; the service
	// creates the account on first use.
	LoginWithAssertion(ctx context.Context, a models.ExternalAssertion) (*models.AuthResult, error)
	Register(ctx context.Context, p models.Profile) (*models.AuthResult, error)
	UploadAvatar(ctx context.Context, a models.Avatar) (models.Record, error)
	// Logout invalidates the current token remotely.
	Logout(ctx context.Context) error
	// UpdateProfile sends a partial record and returns the fields the service
	// reports back, which may be partial too.
	UpdateProfile(ctx context.Context, patch models.Record) (models.Record, error)
	Ping(ctx context.Context) error
}

// TokenSource yields the bearer token attached to requests.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type ctxKey string

const tokenKey ctxKey = "access_token"

// WithToken overrides the TokenSource for calls made with the returned context.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// TokenFromContext returns the token set by WithToken.
func TokenFromContext(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(tokenKey).(string)
	return t, ok
}
