package query

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pgstay/api/pkg/model"
)

const (
	// DefaultMinRent and DefaultMaxRent bound the rent slider before any edit.
	DefaultMinRent = 2000
	DefaultMaxRent = 20000
	// RentStep is the minimum gap kept between the two ends of the rent range.
	RentStep = 1000
)

// AmenityKey is one of the fixed amenity toggles offered by the filter panel.
type AmenityKey string

const (
	AmenityWiFi        AmenityKey = "wifi"
	AmenityAC          AmenityKey = "ac"
	AmenityFood        AmenityKey = "food"
	AmenityLaundry     AmenityKey = "laundry"
	AmenityGym         AmenityKey = "gym"
	AmenityPowerBackup AmenityKey = "powerBackup"
)

// AmenityKeys lists the known toggles in display order.
var AmenityKeys = []AmenityKey{AmenityWiFi, AmenityAC, AmenityFood, AmenityLaundry, AmenityGym, AmenityPowerBackup}

// Label returns the lowercase amenity label a listing must carry for the toggle to match.
func (k AmenityKey) Label() string {
	if k == AmenityPowerBackup {
		return "power backup"
	}
	return strings.ToLower(string(k))
}

// ParseAmenityKey matches raw case-insensitively against the known toggles.
func ParseAmenityKey(raw string) (AmenityKey, error) {
	raw = strings.TrimSpace(raw)
	for _, k := range AmenityKeys {
		if strings.EqualFold(raw, string(k)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown amenity %q", raw)
}

// GenderPreference is the occupancy filter chosen by the student.
type GenderPreference string

const (
	GenderAny    GenderPreference = "any"
	GenderBoys   GenderPreference = "boys"
	GenderGirls  GenderPreference = "girls"
	GenderUnisex GenderPreference = "unisex"
)

// ParseGenderPreference returns GenderAny for empty or unrecognized input.
func ParseGenderPreference(raw string) GenderPreference {
	switch p := GenderPreference(strings.ToLower(strings.TrimSpace(raw))); p {
	case GenderBoys, GenderGirls, GenderUnisex:
		return p
	default:
		return GenderAny
	}
}

// Tag maps the preference to the listing tag it requires. ok is false for GenderAny.
func (p GenderPreference) Tag() (tag model.GenderTag, ok bool) {
	switch p {
	case GenderBoys:
		return model.GenderBoys, true
	case GenderGirls:
		return model.GenderGirls, true
	case GenderUnisex:
		return model.GenderUnisex, true
	default:
		return "", false
	}
}

// RentRange is a closed interval of monthly rent. Min <= Max-RentStep holds for
// every range produced by DefaultRentRange, WithMin and WithMax.
type RentRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// DefaultRentRange returns the slider defaults.
func DefaultRentRange() RentRange {
	return RentRange{Min: DefaultMinRent, Max: DefaultMaxRent}
}

// WithMin moves the lower bound, clamping it so it stays at least RentStep below Max.
func (r RentRange) WithMin(v int) RentRange {
	r.Min = max(0, min(v, r.Max-RentStep))
	return r
}

// WithMax moves the upper bound, clamping it so it stays at least RentStep above Min.
func (r RentRange) WithMax(v int) RentRange {
	r.Max = max(v, r.Min+RentStep)
	return r
}

// Contains reports whether price lies inside the closed interval.
func (r RentRange) Contains(price int) bool {
	return price >= r.Min && price <= r.Max
}

// Criteria is the user-editable filter configuration. It is transient and never persisted.
type Criteria struct {
	Rent         RentRange           `json:"rentRange"`
	Amenities    map[AmenityKey]bool `json:"amenities"`
	VerifiedOnly bool                `json:"verifiedOnly"`
	Gender       GenderPreference    `json:"genderPreference"`

	// RoomTypes is collected from the filter panel but is not a filter predicate.
	RoomTypes []string `json:"roomType"`
}

// DefaultCriteria returns the "Clear All Filters" configuration.
func DefaultCriteria() Criteria {
	amenities := make(map[AmenityKey]bool, len(AmenityKeys))
	for _, k := range AmenityKeys {
		amenities[k] = false
	}
	return Criteria{
		Rent:      DefaultRentRange(),
		Amenities: amenities,
		Gender:    GenderAny,
		RoomTypes: []string{},
	}
}

// WithMinRent returns a copy with the lower rent bound edited.
func (c Criteria) WithMinRent(v int) Criteria {
	c.Rent = c.Rent.WithMin(v)
	return c
}

// WithMaxRent returns a copy with the upper rent bound edited.
func (c Criteria) WithMaxRent(v int) Criteria {
	c.Rent = c.Rent.WithMax(v)
	return c
}

// WithAmenity returns a copy with one toggle set. The receiver's map is not modified.
func (c Criteria) WithAmenity(k AmenityKey, on bool) Criteria {
	next := make(map[AmenityKey]bool, len(c.Amenities)+1)
	for key, v := range c.Amenities {
		next[key] = v
	}
	next[k] = on
	c.Amenities = next
	return c
}

// ActiveAmenities returns the toggles that are switched on, in AmenityKeys order.
func (c Criteria) ActiveAmenities() []AmenityKey {
	var active []AmenityKey
	for _, k := range AmenityKeys {
		if c.Amenities[k] {
			active = append(active, k)
		}
	}
	return active
}

// key is a canonical string form used for memoization. RoomTypes are left out
// because they never influence results.
func (c Criteria) key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d-%d|%t|%s|", c.Rent.Min, c.Rent.Max, c.VerifiedOnly, ParseGenderPreference(string(c.Gender)))
	for _, k := range c.ActiveAmenities() {
		b.WriteString(string(k))
		b.WriteString(",")
	}
	return b.String()
}

// Equal reports whether two criteria select the same configuration, including room types.
func (c Criteria) Equal(o Criteria) bool {
	return c.key() == o.key() && slices.Equal(c.RoomTypes, o.RoomTypes)
}
