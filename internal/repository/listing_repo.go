package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/pgstay/api/pkg/model"
	"google.golang.org/api/iterator"
)

const listingsCollection = "properties"

// ListingRepository handles Firestore read/write for listings.
type ListingRepository struct {
	client *firestore.Client
}

func NewListingRepository(client *firestore.Client) *ListingRepository {
	return &ListingRepository{client: client}
}

// FetchAll loads every listing in document ID order.
func (r *ListingRepository) FetchAll(ctx context.Context) ([]model.Listing, error) {
	return collect(r.client.Collection(listingsCollection).Documents(ctx), "listings")
}

// ListByOwner loads the listings created by ownerID.
func (r *ListingRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Listing, error) {
	iter := r.client.Collection(listingsCollection).Where("ownerId", "==", ownerID).Documents(ctx)
	return collect(iter, "listings of "+ownerID)
}

// Get loads a single listing, returning ErrNotFound when it does not exist.
func (r *ListingRepository) Get(ctx context.Context, id string) (model.Listing, error) {
	snap, err := r.client.Collection(listingsCollection).Doc(id).Get(ctx)
	if isNotFound(err) {
		return model.Listing{}, fmt.Errorf("listing %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Listing{}, fmt.Errorf("get listing %s: %w", id, err)
	}
	return decodeListing(snap)
}

// Create stores a new listing under a generated document ID and returns it.
func (r *ListingRepository) Create(ctx context.Context, l model.Listing) (model.Listing, error) {
	ref := r.client.Collection(listingsCollection).NewDoc()
	l.ID = ref.ID
	if _, err := ref.Create(ctx, l); err != nil {
		return model.Listing{}, fmt.Errorf("create listing: %w", err)
	}
	return l, nil
}

// Delete removes a listing document.
func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.client.Collection(listingsCollection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("delete listing %s: %w", id, err)
	}
	return nil
}

// BatchUpsert writes listings in batches to reduce round trips. Listings
// without an ID get a generated one.
func (r *ListingRepository) BatchUpsert(ctx context.Context, listings []model.Listing) error {
	if len(listings) == 0 {
		return nil
	}
	const batchSize = 400

	for start := 0; start < len(listings); start += batchSize {
		end := min(start+batchSize, len(listings))
		batch := r.client.Batch()
		for _, l := range listings[start:end] {
			var ref *firestore.DocumentRef
			if l.ID != "" {
				ref = r.client.Collection(listingsCollection).Doc(l.ID)
			} else {
				ref = r.client.Collection(listingsCollection).NewDoc()
				l.ID = ref.ID
			}
			batch.Set(ref, l)
		}
		if _, err := batch.Commit(ctx); err != nil {
			return fmt.Errorf("commit batch [%d:%d]: %w", start, end, err)
		}
	}
	return nil
}

func collect(iter *firestore.DocumentIterator, what string) ([]model.Listing, error) {
	defer iter.Stop()
	var result []model.Listing
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate %s: %w", what, err)
		}
		l, err := decodeListing(doc)
		if err != nil {
			return nil, err
		}
		result = append(result, l)
	}
	return result, nil
}

func decodeListing(doc *firestore.DocumentSnapshot) (model.Listing, error) {
	var l model.Listing
	if err := doc.DataTo(&l); err != nil {
		return model.Listing{}, fmt.Errorf("decode listing %s: %w", doc.Ref.ID, err)
	}
	if l.ID == "" {
		l.ID = doc.Ref.ID
	}
	return l, nil
}
