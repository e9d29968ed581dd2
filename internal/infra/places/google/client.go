package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/yanqian/cyclecare/internal/domain/locator"
)

const (
	defaultBaseURL     = "https://maps.googleapis.com/maps/api"
	nearbyPath         = "/place/nearbysearch/json"
	detailsPath        = "/place/details/json"
	geocodePath        = "/geocode/json"
	detailsFields      = "formatted_phone_number,website,opening_hours,formatted_address"
	detailsConcurrency = 4
)

// Options tunes the Places client.
type Options struct {
	BaseURL        string
	Timeout        time.Duration
	RequestsPerSec float64
	Burst          int
}

// Client queries Google Places Nearby Search and Place Details.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient builds a Places API client.
func NewClient(apiKey string, opts Options, logger *slog.Logger) *Client {
	base := strings.TrimSpace(opts.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	limit := rate.Inf
	if opts.RequestsPerSec > 0 {
		limit = rate.Limit(opts.RequestsPerSec)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = detailsConcurrency
	}
	return &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    strings.TrimRight(base, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, burst),
		logger:     logger.With("component", "places.google"),
	}
}

// Nearby runs a nearby search and enriches up to locator.MaxResults places with their details.
func (c *Client) Nearby(ctx context.Context, q locator.Query) ([]locator.Place, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("places api key not configured")
	}
	placeType, keyword := providerType(q.Type)
	params := url.Values{}
	params.Set("location", formatLatLng(q.Location))
	params.Set("radius", strconv.Itoa(q.Radius))
	params.Set("type", placeType)
	if keyword != "" {
		params.Set("keyword", keyword)
	}

	var resp nearbyResponse
	if err := c.get(ctx, nearbyPath, params, &resp); err != nil {
		return nil, fmt.Errorf("nearby search: %w", err)
	}
	if resp.Status != statusOK {
		return nil, fmt.Errorf("nearby search status %s: %s", resp.Status, resp.ErrorMessage)
	}

	results := resp.Results
	if len(results) > locator.MaxResults {
		results = results[:locator.MaxResults]
	}

	places := make([]locator.Place, len(results))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(detailsConcurrency)
	for i, r := range results {
		places[i] = toPlace(r, q.Type)
		g.Go(func() error {
			d, err := c.details(gctx, r.PlaceID)
			if err != nil {
				// details are best effort
				c.logger.Warn("place details failed", "placeId", r.PlaceID, "error", err)
				return nil
			}
			applyDetails(&places[i], d)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	c.logger.Debug("places fetched", "type", placeType, "count", len(places))
	return places, nil
}

// Ping verifies the API key with a geocode lookup.
func (c *Client) Ping(ctx context.Context) error {
	if c.apiKey == "" {
		return fmt.Errorf("places api key not configured")
	}
	params := url.Values{}
	params.Set("address", "New York")
	var resp geocodeResponse
	if err := c.get(ctx, geocodePath, params, &resp); err != nil {
		return fmt.Errorf("geocode check: %w", err)
	}
	if resp.Status != statusOK {
		return fmt.Errorf("geocode check status %s: %s", resp.Status, resp.ErrorMessage)
	}
	return nil
}

func (c *Client) details(ctx context.Context, placeID string) (detailsResult, error) {
	if placeID == "" {
		return detailsResult{}, fmt.Errorf("missing place id")
	}
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", detailsFields)
	var resp detailsResponse
	if err := c.get(ctx, detailsPath, params, &resp); err != nil {
		return detailsResult{}, err
	}
	if resp.Status != statusOK {
		return detailsResult{}, fmt.Errorf("details status %s", resp.Status)
	}
	return resp.Result, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	params.Set("key", c.apiKey)
	endpoint := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("unexpected status=%d body=%s", resp.StatusCode, string(payload))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// providerType maps a facility type onto the Places type filter and optional keyword.
func providerType(t locator.FacilityType) (string, string) {
	switch t {
	case locator.FacilityClinic:
		return "doctor", "medical"
	case locator.FacilityPharmacy, locator.FacilityMedicalStore:
		return "pharmacy", ""
	default:
		return "hospital", ""
	}
}

func formatLatLng(l locator.LatLng) string {
	return strconv.FormatFloat(l.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(l.Lng, 'f', -1, 64)
}

func toPlace(r nearbyResult, t locator.FacilityType) locator.Place {
	return locator.Place{
		ID:           r.PlaceID,
		Name:         r.Name,
		Address:      locator.AddressMissing,
		Phone:        locator.PhoneMissing,
		Rating:       r.Rating,
		Location:     locator.LatLng{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng},
		Type:         t,
		OpeningHours: []string{},
	}
}

func applyDetails(p *locator.Place, d detailsResult) {
	if d.FormattedAddress != "" {
		p.Address = d.FormattedAddress
	}
	if d.FormattedPhoneNumber != "" {
		p.Phone = d.FormattedPhoneNumber
	}
	if d.OpeningHours != nil && len(d.OpeningHours.WeekdayText) > 0 {
		p.OpeningHours = d.OpeningHours.WeekdayText
	}
	p.Website = d.Website
}

var _ locator.PlacesProvider = (*Client)(nil)
