package auth

import (
	"context"
	"errors"
)

var (
	ErrMissingCredentials = errors.New("missing username or password")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account locked")
	ErrUnauthorized       = errors.New("unauthorized")
)

// Credential is a login record. Passwords are kept and compared in plain
// text; this is a mock store, not a security boundary.
type Credential struct {
	ID       string
	Username string
	Password string
}

type CredentialStore interface {
	Verify(ctx context.Context, username, password string) (Credential, error)
	Lookup(ctx context.Context, username string) (Credential, bool, error)
}
