package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/cyclecare/internal/domain/locator"
	"github.com/yanqian/cyclecare/pkg/logger"
)

func newTestServer(t *testing.T, nearby map[string]any, details map[string]map[string]any) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var detailCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc(nearbyPath, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "REQUEST_DENIED"})
			return
		}
		_ = json.NewEncoder(w).Encode(nearby)
	})
	mux.HandleFunc(detailsPath, func(w http.ResponseWriter, r *http.Request) {
		detailCalls.Add(1)
		id := r.URL.Query().Get("place_id")
		result, ok := details[id]
		if !ok {
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "NOT_FOUND"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "OK", "result": result})
	})
	mux.HandleFunc(geocodePath, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") == "test-key" {
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "OK"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "REQUEST_DENIED", "error_message": "The provided API key is invalid."})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &detailCalls
}

func result(id, name string, rating float64, lat, lng float64) map[string]any {
	return map[string]any{
		"place_id": id,
		"name":     name,
		"rating":   rating,
		"geometry": map[string]any{"location": map[string]any{"lat": lat, "lng": lng}},
	}
}

func TestNearbyEnrichesWithDetails(t *testing.T) {
	srv, _ := newTestServer(t,
		map[string]any{"status": "OK", "results": []any{
			result("a", "City Hospital", 4.2, 1.30, 103.80),
			result("b", "Night Pharmacy", 3.1, 1.31, 103.81),
		}},
		map[string]map[string]any{
			"a": {
				"formatted_address":      "1 Hospital Dr",
				"formatted_phone_number": "+65 6000 0000",
				"website":                "https://www.city-hospital.example",
				"opening_hours":          map[string]any{"weekday_text": []string{"Monday: Open 24 hours"}},
			},
		},
	)
	client := NewClient("test-key", Options{BaseURL: srv.URL}, logger.Discard())

	places, err := client.Nearby(context.Background(), locator.Query{
		Location: locator.LatLng{Lat: 1.3, Lng: 103.8},
		Type:     locator.FacilityHospital,
		Radius:   5000,
	})
	require.NoError(t, err)
	require.Len(t, places, 2)

	require.Equal(t, "a", places[0].ID)
	require.Equal(t, "1 Hospital Dr", places[0].Address)
	require.Equal(t, "+65 6000 0000", places[0].Phone)
	require.Equal(t, []string{"Monday: Open 24 hours"}, places[0].OpeningHours)
	require.Equal(t, 4.2, *places[0].Rating)

	require.Equal(t, locator.AddressMissing, places[1].Address)
	require.Equal(t, locator.PhoneMissing, places[1].Phone)
	require.Empty(t, places[1].OpeningHours)
	require.Equal(t, locator.LatLng{Lat: 1.31, Lng: 103.81}, places[1].Location)
}

func TestNearbyLimitsResults(t *testing.T) {
	results := make([]any, 0, 14)
	for i := 0; i < 14; i++ {
		results = append(results, result(string(rune('a'+i)), "Place", 4, 1.3, 103.8))
	}
	srv, detailCalls := newTestServer(t, map[string]any{"status": "OK", "results": results}, nil)
	client := NewClient("test-key", Options{BaseURL: srv.URL}, logger.Discard())

	places, err := client.Nearby(context.Background(), locator.Query{Location: locator.LatLng{Lat: 1.3, Lng: 103.8}, Type: locator.FacilityPharmacy, Radius: 1000})
	require.NoError(t, err)
	require.Len(t, places, locator.MaxResults)
	require.EqualValues(t, locator.MaxResults, detailCalls.Load())
}

func TestNearbyStatusNotOK(t *testing.T) {
	srv, _ := newTestServer(t, map[string]any{"status": "OVER_QUERY_LIMIT"}, nil)
	client := NewClient("test-key", Options{BaseURL: srv.URL}, logger.Discard())

	_, err := client.Nearby(context.Background(), locator.Query{Location: locator.LatLng{Lat: 1.3, Lng: 103.8}, Radius: 1000})
	require.Error(t, err)
	require.Contains(t, err.Error(), "OVER_QUERY_LIMIT")
}

func TestNearbyWithoutKey(t *testing.T) {
	client := NewClient("", Options{}, logger.Discard())
	_, err := client.Nearby(context.Background(), locator.Query{})
	require.Error(t, err)
	require.Error(t, client.Ping(context.Background()))
}

func TestPing(t *testing.T) {
	srv, _ := newTestServer(t, nil, nil)
	require.NoError(t, NewClient("test-key", Options{BaseURL: srv.URL}, logger.Discard()).Ping(context.Background()))

	err := NewClient("bad-key", Options{BaseURL: srv.URL}, logger.Discard()).Ping(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "REQUEST_DENIED")
}

func TestProviderType(t *testing.T) {
	cases := map[locator.FacilityType][2]string{
		locator.FacilityHospital:     {"hospital", ""},
		locator.FacilityClinic:       {"doctor", "medical"},
		locator.FacilityPharmacy:     {"pharmacy", ""},
		locator.FacilityMedicalStore: {"pharmacy", ""},
		"unknown":                    {"hospital", ""},
	}
	for in, want := range cases {
		gotType, gotKeyword := providerType(in)
		require.Equal(t, want[0], gotType, in)
		require.Equal(t, want[1], gotKeyword, in)
	}
}
