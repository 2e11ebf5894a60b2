package listing

import "github.com/pgstay/api/pkg/model"

// AggregateCatalogStats reduces listings into dashboard stats.
func AggregateCatalogStats(listings []model.Listing) model.CatalogStats {
	var total, verified int
	var priceSum int
	var ratingSum float64
	var rated int
	byGender := make(map[string]int)

	for _, l := range listings {
		total++
		priceSum += l.Price
		if l.IsVerified {
			verified++
		}
		if l.Rating > 0 {
			ratingSum += l.Rating
			rated++
		}
		byGender[string(l.GenderTag)]++
	}

	var avgPrice, avgRating float64
	if total > 0 {
		avgPrice = float64(priceSum) / float64(total)
	}
	if rated > 0 {
		avgRating = ratingSum / float64(rated)
	}

	return model.CatalogStats{
		TotalListings: total,
		TotalVerified: verified,
		AvgPrice:      avgPrice,
		AvgRating:     avgRating,
		ByGender:      byGender,
	}
}
