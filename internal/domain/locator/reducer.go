package locator

import (
	"sort"
	"time"
)

// Phase is the locator state machine position.
type Phase string

const (
	PhaseUninitialized Phase = "uninitialized"
	PhaseLocating      Phase = "locating"
	PhaseSearching     Phase = "searching"
	PhaseDisplaying    Phase = "displaying"
	PhaseError         Phase = "error"
)

// Location sources.
const (
	SourceDevice   = "device"
	SourceFallback = "fallback"
)

// State is everything one locator page knows. It is only changed by Reduce.
type State struct {
	Phase            Phase
	Type             FacilityType
	Radius           int
	Location         *LatLng
	LocationSource   string
	Fallback         *LatLng
	LocatingDeadline time.Time
	LastQuery        *Query
	// Places holds the current results, already sorted for display.
	Places       []Place
	ErrorMessage string
	Modal        *Modal
	Highlight    *Highlight
	Focus        *LatLng
	InFlight     int
}

// Highlight marks a bouncing marker.
type Highlight struct {
	PlaceID string    `json:"placeId"`
	Until   time.Time `json:"until"`
}

// Event is an input to the state machine.
type Event interface{ isEvent() }

type (
	// PageLoaded starts geolocation.
	PageLoaded struct {
		At              time.Time
		LocatingTimeout time.Duration
	}
	// LocationResolved carries the device position.
	LocationResolved struct{ Location LatLng }
	// LocationFailed reports denied, unsupported or timed out geolocation.
	LocationFailed struct{ Reason string }
	// FacilityTypeChanged switches the facility filter.
	FacilityTypeChanged struct{ Type FacilityType }
	// RadiusChanged switches the search radius in meters.
	RadiusChanged struct{ Radius int }
	// UseMyLocation re-runs the search, optionally from a fresh position.
	UseMyLocation struct{ Location *LatLng }
	// SearchSucceeded delivers a nearby-search response.
	SearchSucceeded struct {
		Query  Query
		Places []Place
	}
	// SearchFailed delivers a nearby-search failure.
	SearchFailed struct {
		Query   Query
		Message string
	}
	// Retry re-issues the last search, or restarts geolocation when none was made.
	Retry struct {
		At              time.Time
		LocatingTimeout time.Duration
	}
	// SelectPlace opens the detail modal for a place.
	SelectPlace struct {
		PlaceID   string
		At        time.Time
		Highlight time.Duration
	}
	// CloseModal hides the detail modal.
	CloseModal struct{}
	// HighlightExpired stops a marker animation.
	HighlightExpired struct{ PlaceID string }
)

func (PageLoaded) isEvent()          {}
func (LocationResolved) isEvent()    {}
func (LocationFailed) isEvent()      {}
func (FacilityTypeChanged) isEvent() {}
func (RadiusChanged) isEvent()       {}
func (UseMyLocation) isEvent()       {}
func (SearchSucceeded) isEvent()     {}
func (SearchFailed) isEvent()        {}
func (Retry) isEvent()               {}
func (SelectPlace) isEvent()         {}
func (CloseModal) isEvent()          {}
func (HighlightExpired) isEvent()    {}

// Effect is work the reducer asks the session to perform.
type Effect interface{ isEffect() }

type (
	// RequestGeolocation asks the client for the device position.
	RequestGeolocation struct{ Timeout time.Duration }
	// SearchNearby runs a nearby search.
	SearchNearby struct{ Query Query }
	// ClearHighlight schedules HighlightExpired.
	ClearHighlight struct {
		PlaceID string
		After   time.Duration
	}
)

func (RequestGeolocation) isEffect() {}
func (SearchNearby) isEffect()       {}
func (ClearHighlight) isEffect()     {}

// Reduce applies one event. It never mutates the input state's slices.
func Reduce(s State, ev Event) (State, []Effect) {
	switch e := ev.(type) {
	case PageLoaded:
		if s.Phase != PhaseUninitialized {
			return s, nil
		}
		return startLocating(s, e.At, e.LocatingTimeout)

	case LocationResolved:
		if s.Phase == PhaseUninitialized {
			return s, nil
		}
		loc := e.Location
		s.Location = &loc
		s.LocationSource = SourceDevice
		return startSearch(s)

	case LocationFailed:
		if s.Phase != PhaseLocating {
			return s, nil
		}
		if s.Fallback == nil {
			s.Phase = PhaseError
			s.ErrorMessage = "Unable to determine your location"
			return s, nil
		}
		loc := *s.Fallback
		s.Location = &loc
		s.LocationSource = SourceFallback
		return startSearch(s)

	case FacilityTypeChanged:
		s.Type = e.Type
		if s.Location == nil {
			return s, nil
		}
		return startSearch(s)

	case RadiusChanged:
		if e.Radius <= 0 {
			return s, nil
		}
		s.Radius = e.Radius
		if s.Location == nil {
			return s, nil
		}
		return startSearch(s)

	case UseMyLocation:
		if e.Location != nil {
			loc := *e.Location
			s.Location = &loc
			s.LocationSource = SourceDevice
		}
		if s.Location == nil {
			return s, nil
		}
		return startSearch(s)

	case SearchSucceeded:
		s.InFlight = max(0, s.InFlight-1)
		s.Phase = PhaseDisplaying
		s.Places = SortByRating(e.Places)
		s.ErrorMessage = ""
		s.Highlight = nil
		return s, nil

	case SearchFailed:
		s.InFlight = max(0, s.InFlight-1)
		s.Phase = PhaseError
		s.Places = nil
		s.ErrorMessage = e.Message
		s.Highlight = nil
		return s, nil

	case Retry:
		if s.LastQuery != nil {
			return issueSearch(s, *s.LastQuery)
		}
		if s.Phase == PhaseError && s.Location == nil {
			return startLocating(s, e.At, e.LocatingTimeout)
		}
		return s, nil

	case SelectPlace:
		place, ok := findMarkedPlace(s.Places, e.PlaceID)
		if !ok {
			return s, nil
		}
		modal := BuildModal(place)
		s.Modal = &modal
		pos := place.Location
		s.Focus = &pos
		s.Highlight = &Highlight{PlaceID: place.ID, Until: e.At.Add(e.Highlight)}
		return s, []Effect{ClearHighlight{PlaceID: place.ID, After: e.Highlight}}

	case CloseModal:
		s.Modal = nil
		return s, nil

	case HighlightExpired:
		if s.Highlight != nil && s.Highlight.PlaceID == e.PlaceID {
			s.Highlight = nil
		}
		return s, nil
	}
	return s, nil
}

func startLocating(s State, at time.Time, timeout time.Duration) (State, []Effect) {
	s.Phase = PhaseLocating
	s.LocatingDeadline = at.Add(timeout)
	s.ErrorMessage = ""
	return s, []Effect{RequestGeolocation{Timeout: timeout}}
}

func startSearch(s State) (State, []Effect) {
	return issueSearch(s, Query{Location: *s.Location, Type: s.Type, Radius: s.Radius})
}

func issueSearch(s State, q Query) (State, []Effect) {
	s.Phase = PhaseSearching
	s.LastQuery = &q
	s.Places = nil
	s.Highlight = nil
	s.Focus = nil
	s.Modal = nil
	s.ErrorMessage = ""
	s.InFlight++
	return s, []Effect{SearchNearby{Query: q}}
}

// SortByRating orders places by descending rating. Missing ratings count as zero and ties keep input order.
func SortByRating(places []Place) []Place {
	sorted := make([]Place, len(places))
	copy(sorted, places)
	sort.SliceStable(sorted, func(i, j int) bool {
		return ratingOf(sorted[i]) > ratingOf(sorted[j])
	})
	return sorted
}

func ratingOf(p Place) float64 {
	if p.Rating == nil {
		return 0
	}
	return *p.Rating
}

// hasMarker mirrors the map layer, which cannot pin a place with a zero coordinate.
func hasMarker(p Place) bool {
	return p.Location.Lat != 0 && p.Location.Lng != 0
}

func findMarkedPlace(places []Place, id string) (Place, bool) {
	for _, p := range places {
		if p.ID == id && hasMarker(p) {
			return p, true
		}
	}
	return Place{}, false
}
