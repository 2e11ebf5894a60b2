package model

import "time"

// GenderTag is the occupancy restriction of a listing.
type GenderTag string

const (
	GenderBoys   GenderTag = "Boys Only"
	GenderGirls  GenderTag = "Girls Only"
	GenderUnisex GenderTag = "Unisex"
)

// Role distinguishes students browsing listings from owners publishing them.
type Role string

const (
	RoleStudent Role = "student"
	RoleOwner   Role = "owner"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleOwner
}

// Listing is the core document stored in the `properties` collection.
type Listing struct {
	ID                 string    `json:"id,omitempty" firestore:"id,omitempty"`
	OwnerID            string    `json:"ownerId,omitempty" firestore:"ownerId,omitempty"`
	Title              string    `json:"title,omitempty" firestore:"title,omitempty"`
	Address            string    `json:"address,omitempty" firestore:"address,omitempty"`
	Description        string    `json:"description,omitempty" firestore:"description,omitempty"`
	PropertyType       string    `json:"type,omitempty" firestore:"type,omitempty"`
	Price              int       `json:"price" firestore:"price"`
	Deposit            int       `json:"deposit,omitempty" firestore:"deposit,omitempty"`
	Distance           string    `json:"distance,omitempty" firestore:"distance,omitempty"` // free text, e.g. "0.5 km"
	Amenities          []string  `json:"amenities,omitempty" firestore:"amenities,omitempty"`
	Rules              string    `json:"rules,omitempty" firestore:"rules,omitempty"`
	GenderTag          GenderTag `json:"genderTag,omitempty" firestore:"genderTag,omitempty"`
	Rating             float64   `json:"rating" firestore:"rating"`
	IsVerified         bool      `json:"isVerified" firestore:"isVerified"`
	Images             []string  `json:"images,omitempty" firestore:"images,omitempty"`
	View360URL         string    `json:"view360,omitempty" firestore:"view360,omitempty"`
	VerificationDocURL string    `json:"-" firestore:"verificationDocUrl,omitempty"` // ownership proof, never exposed
	CreatedAt          time.Time `json:"createdAt,omitempty" firestore:"createdAt,omitempty"`
	UpdatedAt          time.Time `json:"updatedAt,omitempty" firestore:"updatedAt,omitempty"`
}

// UserProfile is stored in the `users` collection, keyed by identity provider uid.
type UserProfile struct {
	UID       string    `json:"uid" firestore:"uid"`
	Name      string    `json:"name,omitempty" firestore:"name,omitempty"`
	Email     string    `json:"email,omitempty" firestore:"email,omitempty"`
	Role      Role      `json:"role" firestore:"role"`
	UpdatedAt time.Time `json:"updatedAt,omitempty" firestore:"updatedAt,omitempty"`
}

// CatalogStats is a singleton document that pre-aggregates dashboard metrics.
type CatalogStats struct {
	LastUpdated   time.Time      `json:"lastUpdated,omitempty" firestore:"lastUpdated,omitempty"`
	TotalListings int            `json:"totalListings" firestore:"totalListings"`
	TotalVerified int            `json:"totalVerified" firestore:"totalVerified"`
	AvgPrice      float64        `json:"avgPrice" firestore:"avgPrice"`
	AvgRating     float64        `json:"avgRating" firestore:"avgRating"`
	ByGender      map[string]int `json:"byGender,omitempty" firestore:"byGender,omitempty"`
}
