package firebase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	firebasesdk "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/pgstay/api/internal/platform/config"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// Clients bundles the Firebase services the API talks to. All of them share
// one service account.
type Clients struct {
	App       *firebasesdk.App
	Firestore *firestore.Client
	Auth      *auth.Client
	// Storage is nil when media uploads run in mock mode.
	Storage *storage.Client
	// CredsSource describes where the service account came from ("base64" or "file").
	CredsSource string
}

// New creates the Firebase app plus Firestore and Auth clients using
// credentials provided via env (base64 or file).
func New(ctx context.Context, cfg config.Config) (*Clients, error) {
	creds, source, err := cfg.FirebaseCredentialsJSON()
	if err != nil {
		return nil, err
	}

	app, err := firebasesdk.NewApp(ctx, &firebasesdk.Config{
		ProjectID:     cfg.FirebaseProjectID,
		StorageBucket: cfg.StorageBucket,
	}, option.WithCredentialsJSON(creds))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	fs, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firestore client: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		fs.Close()
		return nil, fmt.Errorf("init auth client: %w", err)
	}

	clients := &Clients{App: app, Firestore: fs, Auth: authClient, CredsSource: source}
	if !cfg.MediaMock {
		clients.Storage, err = storage.NewClient(ctx, option.WithCredentialsJSON(creds))
		if err != nil {
			fs.Close()
			return nil, fmt.Errorf("init storage client: %w", err)
		}
	}
	return clients, nil
}

// Close releases the Firestore and Storage connections.
func (c *Clients) Close() error {
	err := c.Firestore.Close()
	if c.Storage != nil {
		err = errors.Join(err, c.Storage.Close())
	}
	return err
}

// Ping performs a lightweight check by attempting to iterate collections.
func Ping(ctx context.Context, client *firestore.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	iter := client.Collections(ctx)
	_, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return nil
	}
	return err
}
