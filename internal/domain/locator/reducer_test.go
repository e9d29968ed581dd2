package locator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func rating(v float64) *float64 { return &v }

func newState() State {
	fallback := FallbackLocation
	return State{Phase: PhaseUninitialized, Type: FacilityHospital, Radius: DefaultRadius, Fallback: &fallback}
}

func TestPageLoadedRequestsGeolocation(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	s, effects := Reduce(newState(), PageLoaded{At: at, LocatingTimeout: 5 * time.Second})
	require.Equal(t, PhaseLocating, s.Phase)
	require.Equal(t, at.Add(5*time.Second), s.LocatingDeadline)
	require.Equal(t, []Effect{RequestGeolocation{Timeout: 5 * time.Second}}, effects)

	again, effects := Reduce(s, PageLoaded{At: at})
	require.Equal(t, s, again)
	require.Empty(t, effects)
}

func TestLocationFailedUsesFallback(t *testing.T) {
	s, _ := Reduce(newState(), PageLoaded{LocatingTimeout: time.Second})
	s, effects := Reduce(s, LocationFailed{Reason: "denied"})
	require.Equal(t, PhaseSearching, s.Phase)
	require.Equal(t, SourceFallback, s.LocationSource)
	require.Equal(t, FallbackLocation, *s.Location)
	require.Empty(t, s.ErrorMessage)
	require.Equal(t, []Effect{SearchNearby{Query: Query{Location: FallbackLocation, Type: FacilityHospital, Radius: DefaultRadius}}}, effects)
}

func TestLocationFailedWithoutFallbackErrors(t *testing.T) {
	st := newState()
	st.Fallback = nil
	s, _ := Reduce(st, PageLoaded{LocatingTimeout: time.Second})
	s, effects := Reduce(s, LocationFailed{Reason: "denied"})
	require.Equal(t, PhaseError, s.Phase)
	require.Empty(t, effects)

	s, effects = Reduce(s, Retry{LocatingTimeout: time.Second})
	require.Equal(t, PhaseLocating, s.Phase)
	require.Equal(t, []Effect{RequestGeolocation{Timeout: time.Second}}, effects)
}

func TestSearchSucceededSortsByRating(t *testing.T) {
	s, _ := Reduce(newState(), PageLoaded{})
	s, _ = Reduce(s, LocationResolved{Location: LatLng{Lat: 1.3, Lng: 103.8}})
	require.Equal(t, SourceDevice, s.LocationSource)

	places := []Place{
		{ID: "a", Rating: rating(3.9)},
		{ID: "b"},
		{ID: "c", Rating: rating(4.7)},
		{ID: "d", Rating: rating(3.9)},
		{ID: "e", Rating: rating(0)},
	}
	s, _ = Reduce(s, SearchSucceeded{Places: places})
	require.Equal(t, PhaseDisplaying, s.Phase)

	ids := make([]string, 0, len(s.Places))
	for _, p := range s.Places {
		ids = append(ids, p.ID)
	}
	require.Equal(t, []string{"c", "a", "d", "b", "e"}, ids)
	require.Equal(t, "a", places[0].ID)
}

func TestSearchFailedThenRetryReissuesSameQuery(t *testing.T) {
	s, _ := Reduce(newState(), PageLoaded{})
	s, _ = Reduce(s, LocationResolved{Location: LatLng{Lat: 1.3, Lng: 103.8}})
	s, _ = Reduce(s, RadiusChanged{Radius: 2000})
	issued := *s.LastQuery

	s, _ = Reduce(s, SearchSucceeded{Places: []Place{{ID: "x", Location: LatLng{Lat: 1, Lng: 1}}}})
	s, effects := Reduce(s, SearchFailed{Query: issued, Message: "HTTP 500"})
	require.Empty(t, effects)
	require.Equal(t, PhaseError, s.Phase)
	require.Empty(t, s.Places)

	s, effects = Reduce(s, Retry{})
	require.Equal(t, PhaseSearching, s.Phase)
	require.Equal(t, []Effect{SearchNearby{Query: issued}}, effects)
	require.Equal(t, 2000, issued.Radius)
}

func TestSearchResultsAreLastWriteWins(t *testing.T) {
	s, _ := Reduce(newState(), PageLoaded{})
	s, _ = Reduce(s, LocationResolved{Location: LatLng{Lat: 1.3, Lng: 103.8}})
	first := *s.LastQuery
	s, _ = Reduce(s, FacilityTypeChanged{Type: FacilityPharmacy})
	second := *s.LastQuery
	require.Equal(t, 2, s.InFlight)

	s, _ = Reduce(s, SearchSucceeded{Query: second, Places: []Place{{ID: "pharmacy"}}})
	s, _ = Reduce(s, SearchSucceeded{Query: first, Places: []Place{{ID: "hospital"}}})
	require.Equal(t, "hospital", s.Places[0].ID)
	require.Equal(t, 0, s.InFlight)
}

func TestFacilityChangeBeforeLocationOnlyStores(t *testing.T) {
	s, effects := Reduce(newState(), FacilityTypeChanged{Type: FacilityClinic})
	require.Equal(t, FacilityClinic, s.Type)
	require.Equal(t, PhaseUninitialized, s.Phase)
	require.Empty(t, effects)
}

func TestSelectPlaceHighlightsMarker(t *testing.T) {
	s, _ := Reduce(newState(), PageLoaded{})
	s, _ = Reduce(s, LocationResolved{Location: LatLng{Lat: 1.3, Lng: 103.8}})
	s, _ = Reduce(s, SearchSucceeded{Places: []Place{
		{ID: "p1", Name: "General", Location: LatLng{Lat: 1.31, Lng: 103.81}},
		{ID: "nopin", Name: "Somewhere", Location: LatLng{Lat: 0, Lng: 103.81}},
	}})

	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	next, effects := Reduce(s, SelectPlace{PlaceID: "p1", At: at, Highlight: 1500 * time.Millisecond})
	require.NotNil(t, next.Modal)
	require.Equal(t, "General", next.Modal.Title)
	require.Equal(t, LatLng{Lat: 1.31, Lng: 103.81}, *next.Focus)
	require.Equal(t, at.Add(1500*time.Millisecond), next.Highlight.Until)
	require.Equal(t, []Effect{ClearHighlight{PlaceID: "p1", After: 1500 * time.Millisecond}}, effects)

	cleared, _ := Reduce(next, HighlightExpired{PlaceID: "p1"})
	require.Nil(t, cleared.Highlight)
	require.NotNil(t, cleared.Modal)

	closed, _ := Reduce(cleared, CloseModal{})
	require.Nil(t, closed.Modal)
}

func TestSelectPlaceMissIsNoop(t *testing.T) {
	s, _ := Reduce(newState(), PageLoaded{})
	s, _ = Reduce(s, LocationResolved{Location: LatLng{Lat: 1.3, Lng: 103.8}})
	s, _ = Reduce(s, SearchSucceeded{Places: []Place{{ID: "nopin", Location: LatLng{Lat: 0, Lng: 0}}}})

	for _, id := range []string{"stale", "nopin"} {
		next, effects := Reduce(s, SelectPlace{PlaceID: id})
		require.Equal(t, s, next)
		require.Empty(t, effects)
	}
}

func TestNewSearchClosesOpenModal(t *testing.T) {
	s, _ := Reduce(newState(), PageLoaded{})
	s, _ = Reduce(s, LocationResolved{Location: LatLng{Lat: 1, Lng: 2}})
	s, _ = Reduce(s, SearchSucceeded{Places: []Place{{ID: "a", Location: LatLng{Lat: 1.2, Lng: 103.7}}}})
	s, _ = Reduce(s, SelectPlace{PlaceID: "a", At: time.Now(), Highlight: time.Second})
	require.NotNil(t, s.Modal)

	changed, effects := Reduce(s, FacilityTypeChanged{Type: FacilityPharmacy})
	require.Equal(t, PhaseSearching, changed.Phase)
	require.Len(t, effects, 1)
	require.Nil(t, changed.Modal)
	require.Empty(t, changed.Places)

	moved, _ := Reduce(s, UseMyLocation{Location: &LatLng{Lat: 1.5, Lng: 103.9}})
	require.Nil(t, moved.Modal)
}
