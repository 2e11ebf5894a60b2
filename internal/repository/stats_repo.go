package repository

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/pgstay/api/pkg/model"
)

// StatsRepository manages the system/stats singleton document.
type StatsRepository struct {
	client *firestore.Client
}

func NewStatsRepository(client *firestore.Client) *StatsRepository {
	return &StatsRepository{client: client}
}

func (r *StatsRepository) SaveCatalogStats(ctx context.Context, stats model.CatalogStats) error {
	stats.LastUpdated = time.Now().UTC()
	ref := r.client.Collection("system").Doc("stats")
	if _, err := ref.Set(ctx, stats); err != nil {
		return fmt.Errorf("save catalog stats: %w", err)
	}
	return nil
}

func (r *StatsRepository) GetCatalogStats(ctx context.Context) (model.CatalogStats, error) {
	ref := r.client.Collection("system").Doc("stats")
	snap, err := ref.Get(ctx)
	if isNotFound(err) {
		return model.CatalogStats{}, fmt.Errorf("catalog stats: %w", ErrNotFound)
	}
	if err != nil {
		return model.CatalogStats{}, fmt.Errorf("get catalog stats: %w", err)
	}
	var stats model.CatalogStats
	if err := snap.DataTo(&stats); err != nil {
		return model.CatalogStats{}, fmt.Errorf("decode catalog stats: %w", err)
	}
	return stats, nil
}
