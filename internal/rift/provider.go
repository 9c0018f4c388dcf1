// Package rift talks to the Rift identity and wallet provider. The provider
// is the source of truth for accounts; the application keeps a local mirror
// so relational joins never need a round trip to Rift.
package rift

import (
	"context"
	"errors"
)

var (
	// ErrInvalidCredentials is returned when Rift rejects a login
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountExists is returned when Rift already holds the external id
	ErrAccountExists = errors.New("account already exists")
	// ErrAccountNotFound is returned when a token resolves to no account
	ErrAccountNotFound = errors.New("account not found")
)

// SignupParams is the data needed to create a Rift account
type SignupParams struct {
	ExternalID  string `json:"externalId"`
	Password    string `json:"password"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// LoginParams is the data needed to authenticate against Rift
type LoginParams struct {
	ExternalID string `json:"externalId"`
	Password   string `json:"password"`
}

// SignupResult is what Rift returns from account creation. It carries no
// session, which is why signup is always followed by a login call.
type SignupResult struct {
	UserID string `json:"userId"`
}

// Session is an authenticated Rift session: the bearer credential plus the
// wallet address bound to the account.
type Session struct {
	AccessToken   string `json:"accessToken"`
	WalletAddress string `json:"address"`
}

// Account is the Rift-side view of a user
type Account struct {
	ID          string `json:"id"`
	ExternalID  string `json:"externalId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// Provider is the identity/wallet contract the rest of the application
// depends on. Production uses the HTTP client; development and tests use the
// embedded local provider.
type Provider interface {
	Signup(ctx context.Context, params SignupParams) (*SignupResult, error)
	Login(ctx context.Context, params LoginParams) (*Session, error)
	GetUser(ctx context.Context, accessToken string) (*Account, error)
}
