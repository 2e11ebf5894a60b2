package util

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"

	"github.com/pgstay/api/pkg/model"
)

// HashListings creates an MD5 fingerprint of a listing collection, used to detect
// when a new snapshot differs from the one a cached query was computed on.
// Every stored field takes part, so any edit yields a new fingerprint.
// Order matters: the same listings in a different order hash differently.
func HashListings(listings []model.Listing) string {
	h := md5.New()
	enc := json.NewEncoder(h)
	for _, l := range listings {
		_ = enc.Encode(l)
		// Not serialized to JSON, but stored.
		_ = enc.Encode(l.VerificationDocURL)
	}
	return hex.EncodeToString(h.Sum(nil))
}
