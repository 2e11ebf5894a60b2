// Package seed holds the sample catalog used to bootstrap an empty project
// and as a fixture in tests.
package seed

import "github.com/pgstay/api/pkg/model"

// SampleOwnerID owns every sample listing.
const SampleOwnerID = "sample-owner"

// Listings returns a fresh copy of the eight sample listings, ids "1".."8".
func Listings() []model.Listing {
	return []model.Listing{
		{
			ID:         "1",
			Title:      "Sunshine PG for Boys",
			Images:     []string{"/modern-student-pg-room-with-bed-and-desk.jpg"},
			Price:      8000,
			Distance:   "0.5 km",
			Amenities:  []string{"WiFi", "AC", "Food"},
			Rating:     4.5,
			GenderTag:  model.GenderBoys,
			IsVerified: true,
		},
		{
			ID:         "2",
			Title:      "Grace Girls Hostel",
			Images:     []string{"/cozy-girls-hostel-room-pink-theme.jpg"},
			Price:      9500,
			Distance:   "0.8 km",
			Amenities:  []string{"WiFi", "AC", "Food", "Laundry"},
			Rating:     4.8,
			GenderTag:  model.GenderGirls,
			IsVerified: true,
		},
		{
			ID:         "3",
			Title:      "Campus View Co-Living",
			Images:     []string{"/spacious-unisex-pg-common-area.jpg"},
			Price:      12000,
			Distance:   "0.3 km",
			Amenities:  []string{"WiFi", "AC", "Gym"},
			Rating:     4.6,
			GenderTag:  model.GenderUnisex,
			IsVerified: true,
		},
		{
			ID:         "4",
			Title:      "Scholar's Den PG",
			Images:     []string{"/modern-boys-pg-room-with-study-area.jpg"},
			Price:      7500,
			Distance:   "1.2 km",
			Amenities:  []string{"WiFi", "Food"},
			Rating:     4.2,
			GenderTag:  model.GenderBoys,
			IsVerified: false,
		},
		{
			ID:         "5",
			Title:      "Pearl Ladies PG",
			Images:     []string{"/premium-girls-hostel-room-with-balcony.jpg"},
			Price:      11000,
			Distance:   "0.6 km",
			Amenities:  []string{"WiFi", "AC", "Food", "Laundry"},
			Rating:     4.7,
			GenderTag:  model.GenderGirls,
			IsVerified: true,
		},
		{
			ID:         "6",
			Title:      "Budget Stay PG",
			Images:     []string{"/budget-friendly-shared-pg-room.jpg"},
			Price:      5500,
			Distance:   "1.5 km",
			Amenities:  []string{"WiFi", "Food"},
			Rating:     4.0,
			GenderTag:  model.GenderUnisex,
			IsVerified: false,
		},
		{
			ID:         "7",
			Title:      "Elite Student Living",
			Images:     []string{"/luxury-student-accommodation-with-amenities.jpg"},
			Price:      15000,
			Distance:   "0.4 km",
			Amenities:  []string{"WiFi", "AC", "Food", "Gym"},
			Rating:     4.9,
			GenderTag:  model.GenderUnisex,
			IsVerified: true,
		},
		{
			ID:         "8",
			Title:      "Metro Boys Hostel",
			Images:     []string{"/cozy-boys-hostel-single-room.jpg"},
			Price:      6500,
			Distance:   "2.0 km",
			Amenities:  []string{"WiFi", "Laundry"},
			Rating:     4.1,
			GenderTag:  model.GenderBoys,
			IsVerified: false,
		},
	}
}
