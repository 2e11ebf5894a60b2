package identity

import (
	"context"
	"errors"
	"testing"

	"firebase.google.com/go/v4/auth"
)

type fakeTokenClient struct {
	tokens  map[string]*auth.Token
	revoked []string
}

func (f *fakeTokenClient) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	tok, ok := f.tokens[idToken]
	if !ok {
		return nil, errors.New("ID token has expired")
	}
	return tok, nil
}

func (f *fakeTokenClient) RevokeRefreshTokens(ctx context.Context, uid string) error {
	f.revoked = append(f.revoked, uid)
	return nil
}

func TestProviderVerifiesFirebaseToken(t *testing.T) {
	client := &fakeTokenClient{tokens: map[string]*auth.Token{
		"good": {UID: "u1", Claims: map[string]interface{}{"name": "Asha", "email": "asha@example.com", "picture": 42}},
	}}
	p := New(client, Config{})

	id, err := p.VerifyToken(context.Background(), "good")
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if id.UID != "u1" || id.Name != "Asha" || id.Email != "asha@example.com" || id.PhotoURL != "" {
		t.Errorf("identity = %+v", id)
	}

	if _, err := p.VerifyToken(context.Background(), "stale"); err == nil {
		t.Errorf("expected error for rejected token")
	}

	if err := p.SignOut(context.Background(), "u1"); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if len(client.revoked) != 1 || client.revoked[0] != "u1" {
		t.Errorf("revoked = %v", client.revoked)
	}
}

func TestProviderMock(t *testing.T) {
	p := New(nil, Config{Mock: true})

	id, err := p.VerifyToken(context.Background(), "mock:owner-1:Asha")
	if err != nil {
		t.Fatalf("VerifyToken mock: %v", err)
	}
	if id.UID != "owner-1" || id.Name != "Asha" {
		t.Errorf("identity = %+v", id)
	}

	for _, bad := range []string{"", "mock:", "mock::Asha", "Bearer abc"} {
		if _, err := p.VerifyToken(context.Background(), bad); err == nil {
			t.Errorf("VerifyToken(%q) should fail", bad)
		}
	}
	if err := p.SignOut(context.Background(), "owner-1"); err != nil {
		t.Errorf("mock SignOut: %v", err)
	}
}

func TestProviderWithoutClient(t *testing.T) {
	p := New(nil, Config{})
	if _, err := p.VerifyToken(context.Background(), "x"); err == nil {
		t.Errorf("expected error without client")
	}
}
