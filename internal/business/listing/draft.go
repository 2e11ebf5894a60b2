package listing

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net/url"
	"slices"
	"sort"
	"strings"

	"github.com/pgstay/api/internal/business/query"
	"github.com/pgstay/api/pkg/model"
)

// ErrInvalidDraft is matched by every ValidationError.
var ErrInvalidDraft = errors.New("invalid listing draft")

// Wizard steps, in the order the owner fills them in.
const (
	StepDetails      = 1
	StepPhotos       = 2
	StepVerification = 3
)

// PropertyTypes accepted by the submission form.
var PropertyTypes = []string{"apartment", "independent", "hostel", "pg"}

// Facilities maps the form's facility ids to the amenity labels stored on a listing.
var Facilities = map[string]string{
	"wifi":    "WiFi",
	"ac":      "AC",
	"food":    "Food",
	"laundry": "Laundry",
	"gym":     "Gym",
	"power":   "Power Backup",
	"cctv":    "CCTV",
}

var genderTags = map[string]model.GenderTag{
	"boys":   model.GenderBoys,
	"girls":  model.GenderGirls,
	"unisex": model.GenderUnisex,
}

// FileKind says what an uploaded file is for.
type FileKind int

const (
	FilePhoto FileKind = iota
	FileDocument
)

// File is one upload attached to a submission.
type File struct {
	Name string
	Kind FileKind
	Size int64
	Body io.Reader
}

// Draft is the owner's unsaved submission.
type Draft struct {
	Title        string   `json:"title"`
	Address      string   `json:"address"`
	Description  string   `json:"description"`
	PropertyType string   `json:"propertyType"`
	Gender       string   `json:"gender"`
	Rent         int      `json:"rent"`
	Deposit      int      `json:"deposit"`
	Rules        string   `json:"rules"`
	Facilities   []string `json:"facilities"`
	Distance     string   `json:"distance"`
	View360URL   string   `json:"view360"`
	GovernmentID string   `json:"governmentId"`
}

// ValidationError lists the offending fields of one wizard step.
type ValidationError struct {
	Step   int               `json:"step"`
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return fmt.Sprintf("step %d: %s", e.Step, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidDraft }

type fieldErrors map[string]string

func (f fieldErrors) err(step int) error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Step: step, Fields: f}
}

// ValidateDetails checks the property details step.
func (d Draft) ValidateDetails() error {
	errs := fieldErrors{}
	if strings.TrimSpace(d.Title) == "" {
		errs["title"] = "required"
	}
	if strings.TrimSpace(d.Address) == "" {
		errs["address"] = "required"
	}
	if !slices.Contains(PropertyTypes, d.PropertyType) {
		errs["propertyType"] = "must be one of " + strings.Join(PropertyTypes, ", ")
	}
	if _, ok := genderTags[d.Gender]; !ok {
		errs["gender"] = "must be boys, girls or unisex"
	}
	if d.Rent <= 0 {
		errs["rent"] = "must be positive"
	}
	if d.Deposit < 0 {
		errs["deposit"] = "must not be negative"
	}
	for _, f := range d.Facilities {
		if _, ok := Facilities[f]; !ok {
			errs["facilities"] = fmt.Sprintf("unknown facility %q", f)
			break
		}
	}
	if d.Distance != "" && math.IsInf(query.ParseDistance(d.Distance), 1) {
		errs["distance"] = `must start with a number, e.g. "0.5 km"`
	}
	return errs.err(StepDetails)
}

// ValidatePhotos checks the photos and media step.
func (d Draft) ValidatePhotos(photos int) error {
	errs := fieldErrors{}
	if photos == 0 {
		errs["photos"] = "at least one photo is required"
	}
	if d.View360URL != "" {
		u, err := url.ParseRequestURI(d.View360URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs["view360"] = "must be an http(s) URL"
		}
	}
	return errs.err(StepPhotos)
}

// ValidateVerification checks the owner verification step.
func (d Draft) ValidateVerification(hasProof bool) error {
	errs := fieldErrors{}
	if !hasProof {
		errs["proof"] = "upload an electricity bill, rent agreement or property tax receipt"
	}
	if len(strings.TrimSpace(d.GovernmentID)) < 8 {
		errs["governmentId"] = "enter your Aadhaar or PAN number"
	}
	return errs.err(StepVerification)
}

// Validate runs every step and returns the first failing one.
func (d Draft) Validate(photos int, hasProof bool) error {
	if err := d.ValidateDetails(); err != nil {
		return err
	}
	if err := d.ValidatePhotos(photos); err != nil {
		return err
	}
	return d.ValidateVerification(hasProof)
}

// amenities converts facility ids to labels in form order, dropping duplicates.
func (d Draft) amenities() []string {
	var out []string
	for _, f := range d.Facilities {
		label := Facilities[f]
		if label != "" && !slices.Contains(out, label) {
			out = append(out, label)
		}
	}
	return out
}
