package http

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pgstay/api/internal/business/listing"
	"github.com/pgstay/api/internal/business/query"
	"github.com/pgstay/api/pkg/model"
)

// parseBrowseState builds the browse state for one request. Filters are applied
// before the sort and page so the page survives as requested.
func parseBrowseState(c *gin.Context) (*query.State, error) {
	criteria := query.DefaultCriteria()

	minRent, hasMin, err := intParam(c, "minRent")
	if err != nil {
		return nil, err
	}
	maxRent, hasMax, err := intParam(c, "maxRent")
	if err != nil {
		return nil, err
	}
	if hasMin && hasMax && minRent > maxRent-query.RentStep {
		return nil, fmt.Errorf("minRent must be at least %d below maxRent", query.RentStep)
	}
	// Each edit clamps against the other bound, so apply the one that stays
	// inside the current range first.
	switch {
	case hasMin && hasMax && minRent > criteria.Rent.Max-query.RentStep:
		criteria = criteria.WithMaxRent(maxRent).WithMinRent(minRent)
	default:
		if hasMin {
			criteria = criteria.WithMinRent(minRent)
		}
		if hasMax {
			criteria = criteria.WithMaxRent(maxRent)
		}
	}

	for _, raw := range c.QueryArray("amenities") {
		for _, part := range strings.Split(raw, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			k, err := query.ParseAmenityKey(part)
			if err != nil {
				return nil, err
			}
			criteria = criteria.WithAmenity(k, true)
		}
	}

	if raw := c.Query("verifiedOnly"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("verifiedOnly: %w", err)
		}
		criteria.VerifiedOnly = v
	}
	criteria.Gender = query.ParseGenderPreference(c.Query("gender"))
	if rooms := c.QueryArray("roomType"); len(rooms) > 0 {
		criteria.RoomTypes = rooms
	}

	page, hasPage, err := intParam(c, "page")
	if err != nil {
		return nil, err
	}
	if !hasPage {
		page = 1
	}

	state := query.NewState()
	state.SetCriteria(criteria)
	state.SetSort(query.SortMode(c.Query("sort")))
	state.SetPage(page)
	return state, nil
}

func intParam(c *gin.Context, name string) (int, bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", name, err)
	}
	return v, true, nil
}

func (r *Router) browseListings(c *gin.Context) {
	state, err := parseBrowseState(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := r.listings.Browse(c.Request.Context(), state)
	if err != nil {
		r.fail(c, err)
		return
	}
	items := res.Items
	if items == nil {
		items = []model.Listing{}
	}
	c.JSON(http.StatusOK, gin.H{
		"items":      items,
		"total":      res.Total,
		"totalPages": res.DisplayPages(),
		"page":       res.Page,
		"pageSize":   res.PageSize,
		"showing":    res.Showing(),
		"showPager":  res.ShowPager(),
		"sort":       state.Sort(),
		"criteria":   state.Criteria(),
	})
}

func (r *Router) getFilterOptions(c *gin.Context) {
	amenities := make([]gin.H, 0, len(query.AmenityKeys))
	for _, k := range query.AmenityKeys {
		amenities = append(amenities, gin.H{"key": k, "label": k.Label()})
	}
	c.JSON(http.StatusOK, gin.H{
		"sortOptions": query.SortOptions,
		"amenities":   amenities,
		"defaults":    query.DefaultCriteria(),
		"rentStep":    query.RentStep,
		"pageSize":    query.PageSize,
	})
}

func (r *Router) getListing(c *gin.Context) {
	l, err := r.listings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

func (r *Router) ownerListings(c *gin.Context) {
	user := currentUser(c)
	items, err := r.listings.ListByOwner(c.Request.Context(), user.UID)
	if err != nil {
		r.fail(c, err)
		return
	}
	if items == nil {
		items = []model.Listing{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

func (r *Router) deleteListing(c *gin.Context) {
	if err := r.listings.Delete(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		r.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (r *Router) submitListing(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expected multipart form"})
		return
	}

	var draft listing.Draft
	if err := json.Unmarshal([]byte(firstValue(form, "draft")), &draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid draft: " + err.Error()})
		return
	}

	photos, closePhotos, err := openFiles(form.File["photos"], listing.FilePhoto)
	defer closePhotos()
	if err != nil {
		r.fail(c, err)
		return
	}

	var proof *listing.File
	if headers := form.File["proof"]; len(headers) > 0 {
		files, closeProof, err := openFiles(headers[:1], listing.FileDocument)
		defer closeProof()
		if err != nil {
			r.fail(c, err)
			return
		}
		proof = &files[0]
	}

	created, err := r.listings.Submit(c.Request.Context(), currentUser(c), draft, photos, proof)
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func firstValue(form *multipart.Form, key string) string {
	if v := form.Value[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// openFiles opens every header. The returned func closes whatever was opened.
func openFiles(headers []*multipart.FileHeader, kind listing.FileKind) ([]listing.File, func(), error) {
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}
	files := make([]listing.File, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			return nil, closeAll, fmt.Errorf("open %s: %w", h.Filename, err)
		}
		opened = append(opened, f)
		files = append(files, listing.File{Name: h.Filename, Kind: kind, Size: h.Size, Body: f})
	}
	return files, closeAll, nil
}

func (r *Router) getStats(c *gin.Context) {
	stats, err := r.listings.Stats(c.Request.Context())
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"catalog":        stats,
		"queryCache":     r.listings.CacheStats(),
		"activeSessions": r.registry.Active(),
	})
}

func (r *Router) refreshStats(c *gin.Context) {
	stats, err := r.listings.RefreshStats(c.Request.Context())
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
