package query

import (
	"cmp"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/pgstay/api/pkg/model"
)

// SortMode selects the display order of filtered listings.
type SortMode string

const (
	SortRecommended SortMode = "recommended"
	SortPriceLow    SortMode = "price-low"
	SortPriceHigh   SortMode = "price-high"
	SortDistance    SortMode = "distance"
	SortRating      SortMode = "rating"
)

// SortOption pairs a mode with the label shown in the sort dropdown.
type SortOption struct {
	Value SortMode `json:"value"`
	Label string   `json:"label"`
}

// SortOptions lists every mode in dropdown order.
var SortOptions = []SortOption{
	{Value: SortRecommended, Label: "Recommended"},
	{Value: SortPriceLow, Label: "Price: Low to High"},
	{Value: SortPriceHigh, Label: "Price: High to Low"},
	{Value: SortDistance, Label: "Distance: Nearest"},
	{Value: SortRating, Label: "Rating: Highest"},
}

// ParseSortMode falls back to SortRecommended for anything unrecognized.
func ParseSortMode(raw string) SortMode {
	m := SortMode(strings.ToLower(strings.TrimSpace(raw)))
	for _, o := range SortOptions {
		if o.Value == m {
			return m
		}
	}
	return SortRecommended
}

// distancePrefix matches the leading decimal number of a free-text distance such as "0.5 km".
var distancePrefix = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// ParseDistance returns the numeric prefix of a distance field. Blank, malformed
// or negative values yield +Inf so they sort after every well-formed distance.
func ParseDistance(raw string) float64 {
	m := distancePrefix.FindString(strings.TrimSpace(raw))
	if m == "" {
		return math.Inf(1)
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(v) || v < 0 {
		return math.Inf(1)
	}
	return v
}

// comparator returns the ordering for mode. Unknown modes use the recommended order.
func comparator(mode SortMode) func(a, b model.Listing) int {
	switch mode {
	case SortPriceLow:
		return func(a, b model.Listing) int { return cmp.Compare(a.Price, b.Price) }
	case SortPriceHigh:
		return func(a, b model.Listing) int { return cmp.Compare(b.Price, a.Price) }
	case SortDistance:
		return func(a, b model.Listing) int {
			return cmp.Compare(ParseDistance(a.Distance), ParseDistance(b.Distance))
		}
	case SortRating:
		return func(a, b model.Listing) int { return cmp.Compare(b.Rating, a.Rating) }
	default:
		return func(a, b model.Listing) int {
			if a.IsVerified != b.IsVerified {
				if a.IsVerified {
					return -1
				}
				return 1
			}
			return cmp.Compare(b.Rating, a.Rating)
		}
	}
}

// Sort orders listings in place. Listings equal under mode keep their input order.
func Sort(listings []model.Listing, mode SortMode) {
	slices.SortStableFunc(listings, comparator(mode))
}
