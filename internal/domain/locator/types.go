package locator

import (
	"strings"
	"time"
)

// FacilityType is the kind of medical facility a user is looking for.
type FacilityType string

const (
	FacilityHospital     FacilityType = "hospital"
	FacilityClinic       FacilityType = "clinic"
	FacilityPharmacy     FacilityType = "pharmacy"
	FacilityMedicalStore FacilityType = "medical_store"
)

// ParseFacilityType accepts the wire names; unknown values report false.
func ParseFacilityType(raw string) (FacilityType, bool) {
	switch t := FacilityType(strings.ToLower(strings.TrimSpace(raw))); t {
	case FacilityHospital, FacilityClinic, FacilityPharmacy, FacilityMedicalStore:
		return t, true
	default:
		return "", false
	}
}

// DisplayName is the plural label used in loading text.
func (t FacilityType) DisplayName() string {
	switch t {
	case FacilityHospital:
		return "hospitals"
	case FacilityClinic:
		return "clinics"
	case FacilityPharmacy:
		return "pharmacies"
	case FacilityMedicalStore:
		return "medical stores"
	default:
		return "facilities"
	}
}

// MarkerIcon is the map pin used for the type.
func (t FacilityType) MarkerIcon() string {
	switch t {
	case FacilityClinic:
		return "https://maps.google.com/mapfiles/ms/icons/green-dot.png"
	case FacilityPharmacy:
		return "https://maps.google.com/mapfiles/ms/icons/blue-dot.png"
	case FacilityMedicalStore:
		return "https://maps.google.com/mapfiles/ms/icons/purple-dot.png"
	default:
		return "https://maps.google.com/mapfiles/ms/icons/red-dot.png"
	}
}

// LatLng is a WGS84 coordinate.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the coordinate is on the globe.
func (l LatLng) Valid() bool {
	return l.Lat >= -90 && l.Lat <= 90 && l.Lng >= -180 && l.Lng <= 180
}

// Place is a facility returned by the nearby search.
type Place struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Address      string       `json:"address"`
	Phone        string       `json:"phone"`
	Rating       *float64     `json:"rating"`
	Location     LatLng       `json:"location"`
	Type         FacilityType `json:"type,omitempty"`
	OpeningHours []string     `json:"opening_hours"`
	Website      string       `json:"website,omitempty"`
}

// Query is one nearby-search request.
type Query struct {
	Location LatLng       `json:"location"`
	Type     FacilityType `json:"type"`
	Radius   int          `json:"radius"`
}

// Defaults used when a request leaves values out.
const (
	DefaultRadius  = 5000
	MaxResults     = 10
	AddressMissing = "Address not available"
	PhoneMissing   = "Phone not available"
)

// FallbackLocation is adopted when the device cannot report a position.
var FallbackLocation = LatLng{Lat: 20.5937, Lng: 78.9629}

// Config holds runtime knobs for the locator domain.
type Config struct {
	DefaultType       FacilityType
	DefaultRadius     int
	MaxRadius         int
	Fallback          *LatLng
	DisableFallback   bool
	LocatingTimeout   time.Duration
	HighlightDuration time.Duration
	SearchTimeout     time.Duration
	SessionTTL        time.Duration
	CacheTTL          time.Duration
	AsyncSearch       bool
}

func (c Config) withDefaults() Config {
	if c.DefaultType == "" {
		c.DefaultType = FacilityHospital
	}
	if c.DefaultRadius <= 0 {
		c.DefaultRadius = DefaultRadius
	}
	if c.MaxRadius <= 0 {
		c.MaxRadius = 50000
	}
	if c.Fallback == nil && !c.DisableFallback {
		fallback := FallbackLocation
		c.Fallback = &fallback
	}
	if c.DisableFallback {
		c.Fallback = nil
	}
	if c.LocatingTimeout <= 0 {
		c.LocatingTimeout = 5 * time.Second
	}
	if c.HighlightDuration <= 0 {
		c.HighlightDuration = 1500 * time.Millisecond
	}
	if c.SearchTimeout <= 0 {
		c.SearchTimeout = 15 * time.Second
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = 30 * time.Minute
	}
	return c
}
