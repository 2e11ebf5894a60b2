// Package query implements the browse pipeline: filter a listing snapshot by
// the student's criteria, order it by the selected sort mode and cut one page.
// Everything here is pure and synchronous; callers fetch listings first and
// pass them in.
package query

import (
	"slices"
	"strings"

	"github.com/pgstay/api/pkg/model"
)

// PageSize is the number of listings shown per page.
const PageSize = 6

// Result is one page of the filtered and sorted listings plus the counts the
// browse view labels with ("Showing 6 of 42 results").
type Result struct {
	Items      []model.Listing `json:"items"`
	Total      int             `json:"total"`
	TotalPages int             `json:"totalPages"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
}

// Showing is the number of listings on the returned page.
func (r Result) Showing() int {
	return len(r.Items)
}

// DisplayPages is TotalPages with an empty result shown as a single page.
func (r Result) DisplayPages() int {
	return max(1, r.TotalPages)
}

// ShowPager reports whether pagination controls should be rendered.
func (r Result) ShowPager() bool {
	return r.TotalPages > 1
}

// Query filters, sorts and paginates listings. The input slice is not modified.
// A page outside [1, DisplayPages()] is clamped to the nearest valid page.
func Query(listings []model.Listing, criteria Criteria, mode SortMode, page int) Result {
	matched := Filter(listings, criteria)
	Sort(matched, ParseSortMode(string(mode)))
	return Paginate(matched, page)
}

// Filter returns the listings that pass every active criterion, in input order.
func Filter(listings []model.Listing, criteria Criteria) []model.Listing {
	out := make([]model.Listing, 0, len(listings))
	for _, l := range listings {
		if Passes(l, criteria) {
			out = append(out, l)
		}
	}
	return out
}

// Passes is the conjunction of all filter predicates.
func Passes(l model.Listing, c Criteria) bool {
	return PassesPrice(l, c) && PassesGender(l, c) && PassesVerified(l, c) && PassesAmenities(l, c)
}

// PassesPrice checks the closed rent interval.
func PassesPrice(l model.Listing, c Criteria) bool {
	return c.Rent.Contains(l.Price)
}

// PassesGender requires an exact tag match unless the preference is "any".
func PassesGender(l model.Listing, c Criteria) bool {
	tag, ok := ParseGenderPreference(string(c.Gender)).Tag()
	if !ok {
		return true
	}
	return l.GenderTag == tag
}

// PassesVerified rejects unverified listings when VerifiedOnly is set.
func PassesVerified(l model.Listing, c Criteria) bool {
	return !c.VerifiedOnly || l.IsVerified
}

// PassesAmenities requires every switched-on toggle to be present in the
// listing's amenities, compared case-insensitively. No active toggles passes.
func PassesAmenities(l model.Listing, c Criteria) bool {
	active := c.ActiveAmenities()
	if len(active) == 0 {
		return true
	}
	have := make([]string, len(l.Amenities))
	for i, a := range l.Amenities {
		have[i] = strings.ToLower(strings.TrimSpace(a))
	}
	for _, k := range active {
		if !slices.Contains(have, k.Label()) {
			return false
		}
	}
	return true
}

// Paginate cuts page out of an already sorted slice, clamping page into range.
func Paginate(sorted []model.Listing, page int) Result {
	total := len(sorted)
	totalPages := (total + PageSize - 1) / PageSize
	page = ClampPage(page, totalPages)

	start := min((page-1)*PageSize, total)
	end := min(page*PageSize, total)

	return Result{
		Items:      slices.Clone(sorted[start:end]),
		Total:      total,
		TotalPages: totalPages,
		Page:       page,
		PageSize:   PageSize,
	}
}

// ClampPage moves page into [1, max(1,totalPages)].
func ClampPage(page, totalPages int) int {
	return min(max(page, 1), max(totalPages, 1))
}
