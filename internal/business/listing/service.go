package listing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/pgstay/api/internal/business/query"
	"github.com/pgstay/api/internal/business/session"
	"github.com/pgstay/api/internal/repository"
	"github.com/pgstay/api/pkg/model"
	"github.com/pgstay/api/pkg/util"
)

var (
	// ErrNotFound is returned for unknown listing ids.
	ErrNotFound = repository.ErrNotFound
	// ErrForbidden is returned when a user acts on a listing they do not own,
	// or a student tries an owner-only action.
	ErrForbidden = errors.New("forbidden")
)

// ListingStore abstracts the persistence layer for listings.
type ListingStore interface {
	FetchAll(ctx context.Context) ([]model.Listing, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Listing, error)
	Get(ctx context.Context, id string) (model.Listing, error)
	Create(ctx context.Context, l model.Listing) (model.Listing, error)
	Delete(ctx context.Context, id string) error
}

// StatsStore persists the catalog stats singleton.
type StatsStore interface {
	SaveCatalogStats(ctx context.Context, stats model.CatalogStats) error
	GetCatalogStats(ctx context.Context) (model.CatalogStats, error)
}

// MediaHost stores uploaded files and returns permanent URLs.
type MediaHost interface {
	Upload(ctx context.Context, folder string, f File) (string, error)
}

// Service serves the browse view, the owner dashboard and listing submission.
type Service struct {
	listings ListingStore
	stats    StatsStore
	media    MediaHost
	cache    *query.Cache
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(listings ListingStore, stats StatsStore, media MediaHost, cache *query.Cache, logger *slog.Logger) *Service {
	if cache == nil {
		cache = query.NewCache(0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		listings: listings,
		stats:    stats,
		media:    media,
		cache:    cache,
		logger:   logger,
		now:      time.Now,
	}
}

// Browse loads the current catalog and runs the query for state. The page
// stored in state is replaced by the clamped page actually served.
func (s *Service) Browse(ctx context.Context, state *query.State) (query.Result, error) {
	all, err := s.listings.FetchAll(ctx)
	if err != nil {
		return query.Result{}, fmt.Errorf("fetch listings: %w", err)
	}
	snap := query.NewSnapshot(all)
	res := s.cache.Query(snap, state.Criteria(), state.Sort(), state.Page())
	state.SetPage(res.Page)

	s.logger.Debug("browse query served",
		"snapshot", snap.Version,
		"total", res.Total,
		"page", res.Page,
		"sort", string(state.Sort()),
	)
	return res, nil
}

// Get returns one listing.
func (s *Service) Get(ctx context.Context, id string) (model.Listing, error) {
	return s.listings.Get(ctx, id)
}

// ListByOwner returns the owner's listings, newest first.
func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]model.Listing, error) {
	items, err := s.listings.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(items, func(a, b model.Listing) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return items, nil
}

// Delete removes a listing owned by user.
func (s *Service) Delete(ctx context.Context, user session.User, id string) error {
	l, err := s.listings.Get(ctx, id)
	if err != nil {
		return err
	}
	if l.OwnerID != user.UID {
		return fmt.Errorf("delete listing %s: %w", id, ErrForbidden)
	}
	if err := s.listings.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("listing deleted", "listing_id", id, "owner_id", user.UID)
	return nil
}

// Submit validates a draft, uploads its photos one by one followed by the
// ownership proof, and stores the listing as unverified. The first failed
// upload aborts the submission.
func (s *Service) Submit(ctx context.Context, owner session.User, d Draft, photos []File, proof *File) (model.Listing, error) {
	if owner.Role != model.RoleOwner {
		return model.Listing{}, fmt.Errorf("submit listing: %w", ErrForbidden)
	}
	if err := d.Validate(len(photos), proof != nil); err != nil {
		return model.Listing{}, err
	}

	folder := "listings/" + owner.UID
	images := make([]string, 0, len(photos))
	for i, p := range photos {
		p.Kind = FilePhoto
		u, err := s.media.Upload(ctx, folder+"/photos", p)
		if err != nil {
			return model.Listing{}, fmt.Errorf("upload photo %d of %d: %w", i+1, len(photos), err)
		}
		images = append(images, u)
	}

	doc := *proof
	doc.Kind = FileDocument
	docURL, err := s.media.Upload(ctx, folder+"/verification", doc)
	if err != nil {
		return model.Listing{}, fmt.Errorf("upload ownership proof: %w", err)
	}

	now := s.now().UTC()
	l := model.Listing{
		OwnerID:            owner.UID,
		Title:              util.CleanText(d.Title),
		Address:            util.CleanText(d.Address),
		Description:        util.CleanMultiline(d.Description),
		PropertyType:       d.PropertyType,
		Price:              d.Rent,
		Deposit:            d.Deposit,
		Distance:           util.CleanText(d.Distance),
		Amenities:          d.amenities(),
		Rules:              util.CleanMultiline(d.Rules),
		GenderTag:          genderTags[d.Gender],
		Images:             images,
		View360URL:         d.View360URL,
		VerificationDocURL: docURL,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	created, err := s.listings.Create(ctx, l)
	if err != nil {
		return model.Listing{}, err
	}
	s.logger.Info("listing submitted", "listing_id", created.ID, "owner_id", owner.UID, "photos", len(images))
	return created, nil
}

// RefreshStats recomputes and stores the catalog stats.
func (s *Service) RefreshStats(ctx context.Context) (model.CatalogStats, error) {
	all, err := s.listings.FetchAll(ctx)
	if err != nil {
		return model.CatalogStats{}, fmt.Errorf("fetch listings: %w", err)
	}
	stats := AggregateCatalogStats(all)
	if err := s.stats.SaveCatalogStats(ctx, stats); err != nil {
		return model.CatalogStats{}, err
	}
	return stats, nil
}

// Stats returns the last stored catalog stats.
func (s *Service) Stats(ctx context.Context) (model.CatalogStats, error) {
	return s.stats.GetCatalogStats(ctx)
}

// CacheStats exposes the query cache counters.
func (s *Service) CacheStats() query.CacheStats {
	return s.cache.Stats()
}
