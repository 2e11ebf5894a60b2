package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/pgstay/api/internal/business/session"
)

// TokenClient matches the subset of *auth.Client used here, for testability.
type TokenClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// Provider verifies Firebase ID tokens, or accepts "mock:<uid>[:<name>]"
// tokens when running in mock mode.
type Provider struct {
	client TokenClient
	mock   bool
}

// Config defines settings for the identity provider.
type Config struct {
	Mock bool
}

// New creates a Provider. client may be nil in mock mode.
func New(client TokenClient, cfg Config) *Provider {
	return &Provider{client: client, mock: cfg.Mock}
}

// VerifyToken checks token and returns the identity it carries.
func (p *Provider) VerifyToken(ctx context.Context, token string) (session.Identity, error) {
	if p.mock {
		return parseMockToken(token)
	}
	if p.client == nil {
		return session.Identity{}, errors.New("identity provider not configured")
	}

	tok, err := p.client.VerifyIDToken(ctx, token)
	if err != nil {
		return session.Identity{}, fmt.Errorf("verify id token: %w", err)
	}
	return session.Identity{
		UID:      tok.UID,
		Name:     claim(tok.Claims, "name"),
		Email:    claim(tok.Claims, "email"),
		PhotoURL: claim(tok.Claims, "picture"),
	}, nil
}

// SignOut revokes the user's refresh tokens so other devices are signed out too.
func (p *Provider) SignOut(ctx context.Context, uid string) error {
	if p.mock {
		return nil
	}
	if p.client == nil {
		return errors.New("identity provider not configured")
	}
	if err := p.client.RevokeRefreshTokens(ctx, uid); err != nil {
		return fmt.Errorf("revoke refresh tokens for %s: %w", uid, err)
	}
	return nil
}

func parseMockToken(token string) (session.Identity, error) {
	rest, ok := strings.CutPrefix(token, "mock:")
	if !ok || rest == "" {
		return session.Identity{}, errors.New("mock token must look like mock:<uid>[:<name>]")
	}
	uid, name, _ := strings.Cut(rest, ":")
	if uid == "" {
		return session.Identity{}, errors.New("mock token has empty uid")
	}
	return session.Identity{UID: uid, Name: name, Email: uid + "@mock.local"}, nil
}

func claim(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
