package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pgstay/api/internal/repository"
	"github.com/pgstay/api/pkg/model"
)

var (
	// ErrUnauthenticated is returned when the identity provider rejects a token.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrRoleNotFound is returned by a RoleStore when no role record exists for a uid.
	ErrRoleNotFound = repository.ErrNotFound
)

// Identity is what the identity provider knows about a signed-in user.
type Identity struct {
	UID      string `json:"uid"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	PhotoURL string `json:"photo,omitempty"`
}

// User is an identity with its resolved role.
type User struct {
	Identity
	Role model.Role `json:"role"`
}

// IdentityProvider verifies a bearer token.
type IdentityProvider interface {
	VerifyToken(ctx context.Context, token string) (Identity, error)
}

// RoleStore reads and writes the role record of a user.
type RoleStore interface {
	GetRole(ctx context.Context, uid string) (model.Role, error)
	SaveProfile(ctx context.Context, profile model.UserProfile) error
}

// Resolver turns a bearer token into a User in two separate steps: identity,
// then role. A failed or missing role lookup yields RoleStudent.
type Resolver struct {
	identities IdentityProvider
	roles      RoleStore
	logger     *slog.Logger
}

func NewResolver(identities IdentityProvider, roles RoleStore, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{identities: identities, roles: roles, logger: logger}
}

// ResolveIdentity verifies token with the identity provider.
func (r *Resolver) ResolveIdentity(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, fmt.Errorf("%w: missing token", ErrUnauthenticated)
	}
	id, err := r.identities.VerifyToken(ctx, token)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if id.UID == "" {
		return Identity{}, fmt.Errorf("%w: token has no uid", ErrUnauthenticated)
	}
	if id.Name == "" {
		id.Name = "User"
	}
	return id, nil
}

// ResolveRole looks up the stored role for uid. It never fails: lookup errors,
// missing records and unknown values all resolve to RoleStudent.
func (r *Resolver) ResolveRole(ctx context.Context, uid string) model.Role {
	role, err := r.roles.GetRole(ctx, uid)
	switch {
	case errors.Is(err, ErrRoleNotFound):
		return model.RoleStudent
	case err != nil:
		r.logger.Warn("role lookup failed, defaulting to student", "uid", uid, "error", err)
		return model.RoleStudent
	case !role.Valid():
		r.logger.Warn("unknown stored role, defaulting to student", "uid", uid, "role", string(role))
		return model.RoleStudent
	}
	return role
}

// Resolve runs both steps.
func (r *Resolver) Resolve(ctx context.Context, token string) (User, error) {
	id, err := r.ResolveIdentity(ctx, token)
	if err != nil {
		return User{}, err
	}
	return User{Identity: id, Role: r.ResolveRole(ctx, id.UID)}, nil
}

// SetRole stores the role chosen at sign-up (or switched later) for user.
func (r *Resolver) SetRole(ctx context.Context, user User, role model.Role) (User, error) {
	if !role.Valid() {
		return user, fmt.Errorf("invalid role %q", role)
	}
	err := r.roles.SaveProfile(ctx, model.UserProfile{
		UID:   user.UID,
		Name:  user.Name,
		Email: user.Email,
		Role:  role,
	})
	if err != nil {
		return user, fmt.Errorf("save role for %s: %w", user.UID, err)
	}
	user.Role = role
	return user, nil
}
