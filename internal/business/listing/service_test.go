package listing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pgstay/api/internal/business/query"
	"github.com/pgstay/api/internal/business/session"
	"github.com/pgstay/api/internal/repository"
	"github.com/pgstay/api/internal/seed"
	"github.com/pgstay/api/pkg/model"
)

type fakeListings struct {
	items     []model.Listing
	created   []model.Listing
	deleted   []string
	fetchErr  error
	createErr error
	fetches   int
}

func (f *fakeListings) FetchAll(ctx context.Context) ([]model.Listing, error) {
	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.items, nil
}

func (f *fakeListings) ListByOwner(ctx context.Context, ownerID string) ([]model.Listing, error) {
	var out []model.Listing
	for _, l := range f.items {
		if l.OwnerID == ownerID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeListings) Get(ctx context.Context, id string) (model.Listing, error) {
	for _, l := range f.items {
		if l.ID == id {
			return l, nil
		}
	}
	return model.Listing{}, fmt.Errorf("listing %s: %w", id, repository.ErrNotFound)
}

func (f *fakeListings) Create(ctx context.Context, l model.Listing) (model.Listing, error) {
	if f.createErr != nil {
		return model.Listing{}, f.createErr
	}
	l.ID = fmt.Sprintf("new-%d", len(f.created)+1)
	f.created = append(f.created, l)
	f.items = append(f.items, l)
	return l, nil
}

func (f *fakeListings) Delete(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeStats struct {
	saved model.CatalogStats
	saves int
}

func (f *fakeStats) SaveCatalogStats(ctx context.Context, stats model.CatalogStats) error {
	f.saved = stats
	f.saves++
	return nil
}

func (f *fakeStats) GetCatalogStats(ctx context.Context) (model.CatalogStats, error) {
	return f.saved, nil
}

type upload struct {
	folder string
	name   string
	kind   FileKind
	body   string
}

type fakeMedia struct {
	uploads []upload
	failOn  string
}

func (f *fakeMedia) Upload(ctx context.Context, folder string, file File) (string, error) {
	if file.Name == f.failOn {
		return "", errors.New("storage unavailable")
	}
	b, _ := io.ReadAll(file.Body)
	f.uploads = append(f.uploads, upload{folder: folder, name: file.Name, kind: file.Kind, body: string(b)})
	return "https://media.test/" + folder + "/" + file.Name, nil
}

func newTestService(store *fakeListings, media *fakeMedia) (*Service, *fakeStats) {
	stats := &fakeStats{}
	svc := NewService(store, stats, media, query.NewCache(16), slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC) }
	return svc, stats
}

var (
	owner   = session.User{Identity: session.Identity{UID: "owner-1", Name: "Asha"}, Role: model.RoleOwner}
	student = session.User{Identity: session.Identity{UID: "student-1", Name: "Ravi"}, Role: model.RoleStudent}
)

func validDraft() Draft {
	return Draft{
		Title:        "  Lakeview <b>PG</b>  ",
		Address:      "12 Lake Road,\n Sector 4",
		Description:  "Quiet rooms.\r\n\r\n\r\n\r\nNear campus.",
		PropertyType: "pg",
		Gender:       "girls",
		Rent:         7500,
		Deposit:      15000,
		Rules:        "No smoking",
		Facilities:   []string{"wifi", "power", "wifi", "food"},
		Distance:     "1.2 km",
		GovernmentID: "ABCDE1234F",
	}
}

func photo(name string) File {
	return File{Name: name, Size: 4, Body: strings.NewReader(name)}
}

func TestSubmitStoresUnverifiedListing(t *testing.T) {
	store := &fakeListings{}
	media := &fakeMedia{}
	svc, _ := newTestService(store, media)

	proof := photo("bill.pdf")
	got, err := svc.Submit(context.Background(), owner, validDraft(), []File{photo("a.jpg"), photo("b.jpg")}, &proof)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	want := model.Listing{
		ID:           "new-1",
		OwnerID:      "owner-1",
		Title:        "Lakeview PG",
		Address:      "12 Lake Road, Sector 4",
		Description:  "Quiet rooms.\n\nNear campus.",
		PropertyType: "pg",
		Price:        7500,
		Deposit:      15000,
		Distance:     "1.2 km",
		Amenities:    []string{"WiFi", "Power Backup", "Food"},
		Rules:        "No smoking",
		GenderTag:    model.GenderGirls,
		Images: []string{
			"https://media.test/listings/owner-1/photos/a.jpg",
			"https://media.test/listings/owner-1/photos/b.jpg",
		},
		VerificationDocURL: "https://media.test/listings/owner-1/verification/bill.pdf",
		CreatedAt:          time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		UpdatedAt:          time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("listing mismatch (-want +got):\n%s", diff)
	}
	if got.IsVerified || got.Rating != 0 {
		t.Fatalf("new listing must be unverified and unrated")
	}

	wantUploads := []upload{
		{folder: "listings/owner-1/photos", name: "a.jpg", kind: FilePhoto, body: "a.jpg"},
		{folder: "listings/owner-1/photos", name: "b.jpg", kind: FilePhoto, body: "b.jpg"},
		{folder: "listings/owner-1/verification", name: "bill.pdf", kind: FileDocument, body: "bill.pdf"},
	}
	if diff := cmp.Diff(wantUploads, media.uploads, cmp.AllowUnexported(upload{})); diff != "" {
		t.Fatalf("uploads mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitAbortsOnFirstFailedUpload(t *testing.T) {
	store := &fakeListings{}
	media := &fakeMedia{failOn: "b.jpg"}
	svc, _ := newTestService(store, media)

	proof := photo("bill.pdf")
	_, err := svc.Submit(context.Background(), owner, validDraft(), []File{photo("a.jpg"), photo("b.jpg"), photo("c.jpg")}, &proof)
	if err == nil || !strings.Contains(err.Error(), "upload photo 2 of 3") {
		t.Fatalf("expected failure on photo 2, got %v", err)
	}
	if len(media.uploads) != 1 {
		t.Fatalf("uploads after failure = %d, want 1", len(media.uploads))
	}
	if len(store.created) != 0 {
		t.Fatalf("listing must not be stored after a failed upload")
	}
}

func TestSubmitRejectsStudents(t *testing.T) {
	svc, _ := newTestService(&fakeListings{}, &fakeMedia{})
	proof := photo("bill.pdf")
	_, err := svc.Submit(context.Background(), student, validDraft(), []File{photo("a.jpg")}, &proof)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestSubmitValidatesBeforeUploading(t *testing.T) {
	media := &fakeMedia{}
	svc, _ := newTestService(&fakeListings{}, media)

	d := validDraft()
	d.Rent = 0
	proof := photo("bill.pdf")
	_, err := svc.Submit(context.Background(), owner, d, []File{photo("a.jpg")}, &proof)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Step != StepDetails {
		t.Fatalf("expected details validation error, got %v", err)
	}
	if len(media.uploads) != 0 {
		t.Fatalf("nothing should be uploaded for an invalid draft")
	}

	_, err = svc.Submit(context.Background(), owner, validDraft(), []File{photo("a.jpg")}, nil)
	if !errors.As(err, &verr) || verr.Step != StepVerification {
		t.Fatalf("expected verification error without proof, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	store := &fakeListings{items: []model.Listing{
		{ID: "a", OwnerID: "owner-1"},
		{ID: "b", OwnerID: "owner-2"},
	}}
	svc, _ := newTestService(store, &fakeMedia{})
	ctx := context.Background()

	if err := svc.Delete(ctx, owner, "b"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("deleting another owner's listing: got %v", err)
	}
	if err := svc.Delete(ctx, owner, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleting unknown listing: got %v", err)
	}
	if err := svc.Delete(ctx, owner, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if diff := cmp.Diff([]string{"a"}, store.deleted); diff != "" {
		t.Fatalf("deleted mismatch (-want +got):\n%s", diff)
	}
}

func TestListByOwnerNewestFirst(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC) }
	store := &fakeListings{items: []model.Listing{
		{ID: "old", OwnerID: "owner-1", CreatedAt: day(1)},
		{ID: "other", OwnerID: "owner-2", CreatedAt: day(5)},
		{ID: "new", OwnerID: "owner-1", CreatedAt: day(9)},
		{ID: "mid", OwnerID: "owner-1", CreatedAt: day(4)},
	}}
	svc, _ := newTestService(store, &fakeMedia{})

	items, err := svc.ListByOwner(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	var ids []string
	for _, l := range items {
		ids = append(ids, l.ID)
	}
	if diff := cmp.Diff([]string{"new", "mid", "old"}, ids); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestBrowseClampsStatePage(t *testing.T) {
	store := &fakeListings{items: seed.Listings()}
	svc, _ := newTestService(store, &fakeMedia{})

	state := query.NewState()
	state.SetSort(query.SortPriceLow)
	state.SetPage(9)

	res, err := svc.Browse(context.Background(), state)
	if err != nil {
		t.Fatalf("Browse: %v", err)
	}
	if res.Page != 2 || state.Page() != 2 {
		t.Fatalf("page = %d, state page = %d, want 2", res.Page, state.Page())
	}
	if len(res.Items) != 2 || res.Items[0].ID != "3" {
		t.Fatalf("unexpected second page: %+v", res.Items)
	}

	if _, err := svc.Browse(context.Background(), state); err != nil {
		t.Fatalf("Browse: %v", err)
	}
	if st := svc.CacheStats(); st.Hits != 1 || st.Misses != 1 {
		t.Fatalf("cache stats = %+v, want 1 hit 1 miss", st)
	}
}

func TestBrowsePropagatesStoreErrors(t *testing.T) {
	svc, _ := newTestService(&fakeListings{fetchErr: errors.New("deadline exceeded")}, &fakeMedia{})
	if _, err := svc.Browse(context.Background(), query.NewState()); err == nil {
		t.Fatal("expected error")
	}
}

func TestRefreshStats(t *testing.T) {
	svc, stats := newTestService(&fakeListings{items: seed.Listings()}, &fakeMedia{})

	got, err := svc.RefreshStats(context.Background())
	if err != nil {
		t.Fatalf("RefreshStats: %v", err)
	}
	if stats.saves != 1 {
		t.Fatalf("saves = %d, want 1", stats.saves)
	}
	if got.TotalListings != 8 || got.TotalVerified != 5 {
		t.Fatalf("totals = %d/%d, want 8/5", got.TotalListings, got.TotalVerified)
	}
	stored, _ := svc.Stats(context.Background())
	if diff := cmp.Diff(got, stored); diff != "" {
		t.Fatalf("stored stats mismatch (-want +got):\n%s", diff)
	}
}
