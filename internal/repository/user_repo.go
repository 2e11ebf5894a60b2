package repository

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/pgstay/api/pkg/model"
)

// UserRepository manages user role records in the `users` collection.
type UserRepository struct {
	client *firestore.Client
}

func NewUserRepository(client *firestore.Client) *UserRepository {
	return &UserRepository{client: client}
}

// GetRole returns the stored role for uid, or ErrNotFound when no record exists.
func (r *UserRepository) GetRole(ctx context.Context, uid string) (model.Role, error) {
	snap, err := r.client.Collection("users").Doc(uid).Get(ctx)
	if isNotFound(err) {
		return "", fmt.Errorf("user %s: %w", uid, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get user %s: %w", uid, err)
	}
	var p model.UserProfile
	if err := snap.DataTo(&p); err != nil {
		return "", fmt.Errorf("decode user %s: %w", uid, err)
	}
	return p.Role, nil
}

// SaveProfile creates or overwrites the user's record.
func (r *UserRepository) SaveProfile(ctx context.Context, p model.UserProfile) error {
	if p.UID == "" {
		return fmt.Errorf("uid is required")
	}
	p.UpdatedAt = time.Now().UTC()
	if _, err := r.client.Collection("users").Doc(p.UID).Set(ctx, p); err != nil {
		return fmt.Errorf("save user %s: %w", p.UID, err)
	}
	return nil
}
