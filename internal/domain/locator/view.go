package locator

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	emptyListText  = "No places found in this area. Try adjusting your search radius."
	retryLabel     = "Try Again"
	unnamedPlace   = "No name available"
	markerIconSize = 32
	viewportPad    = 100
	defaultZoom    = 12
)

// View is the renderable projection of a session.
type View struct {
	SessionID      string       `json:"sessionId"`
	Phase          Phase        `json:"phase"`
	FacilityType   FacilityType `json:"facilityType"`
	Radius         int          `json:"radius"`
	Location       *LatLng      `json:"location,omitempty"`
	LocationSource string       `json:"locationSource,omitempty"`
	Geolocation    *GeoRequest  `json:"geolocation,omitempty"`
	List           ListView     `json:"list"`
	Markers        []Marker     `json:"markers"`
	Viewport       *Viewport    `json:"viewport,omitempty"`
	Modal          *Modal       `json:"modal,omitempty"`
	LastQuery      *Query       `json:"lastQuery,omitempty"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// GeoRequest tells the browser how to call the geolocation API.
type GeoRequest struct {
	EnableHighAccuracy bool `json:"enableHighAccuracy"`
	TimeoutMillis      int  `json:"timeout"`
	MaximumAge         int  `json:"maximumAge"`
}

// ListView is the result list panel.
type ListView struct {
	Loading     bool        `json:"loading"`
	LoadingText string      `json:"loadingText,omitempty"`
	Entries     []ListEntry `json:"entries"`
	EmptyText   string      `json:"emptyText,omitempty"`
	Error       *ErrorView  `json:"error,omitempty"`
}

// ListEntry is one row of the result list.
type ListEntry struct {
	PlaceID       string   `json:"placeId"`
	Name          string   `json:"name"`
	Rating        *float64 `json:"rating,omitempty"`
	Address       string   `json:"address"`
	Phone         string   `json:"phone,omitempty"`
	PhoneHref     string   `json:"phoneHref,omitempty"`
	DirectionsURL string   `json:"directionsUrl"`
	Selectable    bool     `json:"selectable"`
}

// ErrorView replaces the list after a failed search.
type ErrorView struct {
	Message    string `json:"message"`
	RetryLabel string `json:"retryLabel"`
}

// Marker is one map pin.
type Marker struct {
	PlaceID   string `json:"placeId"`
	Title     string `json:"title"`
	Position  LatLng `json:"position"`
	Icon      string `json:"icon"`
	IconSize  int    `json:"iconSize"`
	Animation string `json:"animation"`
}

// Viewport is where the map should look.
type Viewport struct {
	Center  LatLng  `json:"center"`
	Zoom    int     `json:"zoom,omitempty"`
	Bounds  *Bounds `json:"bounds,omitempty"`
	Padding int     `json:"padding,omitempty"`
}

// Bounds is a south-west/north-east rectangle.
type Bounds struct {
	SouthWest LatLng `json:"southWest"`
	NorthEast LatLng `json:"northEast"`
}

// Modal is the place detail dialog.
type Modal struct {
	PlaceID       string   `json:"placeId"`
	Title         string   `json:"title"`
	Address       string   `json:"address"`
	Phone         string   `json:"phone"`
	Website       *Link    `json:"website,omitempty"`
	OpeningHours  []string `json:"openingHours,omitempty"`
	DirectionsURL string   `json:"directionsUrl"`
}

// Link is an anchor with display text.
type Link struct {
	Href string `json:"href"`
	Text string `json:"text"`
}

// BuildModal fills the detail dialog for a place.
func BuildModal(p Place) Modal {
	m := Modal{
		PlaceID:       p.ID,
		Title:         p.Name,
		Address:       orDefault(p.Address, AddressMissing),
		Phone:         orDefault(p.Phone, PhoneMissing),
		DirectionsURL: DirectionsURL(p.Location),
	}
	if strings.TrimSpace(m.Title) == "" {
		m.Title = unnamedPlace
	}
	if link, ok := websiteLink(p.Website); ok {
		m.Website = &link
	}
	if len(p.OpeningHours) > 0 {
		m.OpeningHours = append([]string(nil), p.OpeningHours...)
	}
	return m
}

// DirectionsURL links to turn-by-turn directions to the coordinate.
func DirectionsURL(dest LatLng) string {
	return fmt.Sprintf("https://www.google.com/maps/dir/?api=1&destination=%g,%g", dest.Lat, dest.Lng)
}

// PhoneHref keeps digits and '+' for a tel: link.
func PhoneHref(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return "tel:" + b.String()
}

func websiteLink(raw string) (Link, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Link{}, false
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return Link{}, false
	}
	return Link{Href: raw, Text: strings.Replace(u.Hostname(), "www.", "", 1)}, true
}

// Project renders a state for the client.
func Project(id string, s State, cfg Config, now time.Time) View {
	v := View{
		SessionID:      id,
		Phase:          s.Phase,
		FacilityType:   s.Type,
		Radius:         s.Radius,
		LocationSource: s.LocationSource,
		Modal:          s.Modal,
		LastQuery:      s.LastQuery,
		Markers:        []Marker{},
		UpdatedAt:      now,
	}
	if s.Location != nil {
		loc := *s.Location
		v.Location = &loc
	}

	switch s.Phase {
	case PhaseLocating:
		v.Geolocation = &GeoRequest{
			EnableHighAccuracy: true,
			TimeoutMillis:      int(cfg.LocatingTimeout / time.Millisecond),
			MaximumAge:         0,
		}
	case PhaseSearching:
		v.List.Loading = true
		v.List.LoadingText = fmt.Sprintf("Searching for nearby %s...", s.Type.DisplayName())
	case PhaseError:
		v.List.Error = &ErrorView{Message: "Error: " + s.ErrorMessage, RetryLabel: retryLabel}
	case PhaseDisplaying:
		if len(s.Places) == 0 {
			v.List.EmptyText = emptyListText
		}
	}

	v.List.Entries = make([]ListEntry, 0, len(s.Places))
	for _, p := range s.Places {
		v.List.Entries = append(v.List.Entries, listEntry(p))
		if !hasMarker(p) {
			continue
		}
		animation := "drop"
		if s.Highlight != nil && s.Highlight.PlaceID == p.ID && now.Before(s.Highlight.Until) {
			animation = "bounce"
		}
		v.Markers = append(v.Markers, Marker{
			PlaceID:   p.ID,
			Title:     p.Name,
			Position:  p.Location,
			Icon:      s.Type.MarkerIcon(),
			IconSize:  markerIconSize,
			Animation: animation,
		})
	}
	v.Viewport = viewport(s, v.Markers)
	return v
}

func listEntry(p Place) ListEntry {
	e := ListEntry{
		PlaceID:       p.ID,
		Name:          orDefault(p.Name, unnamedPlace),
		Rating:        p.Rating,
		Address:       orDefault(p.Address, AddressMissing),
		DirectionsURL: DirectionsURL(p.Location),
		Selectable:    hasMarker(p),
	}
	if p.Phone != "" && p.Phone != PhoneMissing {
		e.Phone = p.Phone
		e.PhoneHref = PhoneHref(p.Phone)
	}
	return e
}

func viewport(s State, markers []Marker) *Viewport {
	if s.Focus != nil {
		return &Viewport{Center: *s.Focus}
	}
	if len(markers) > 0 {
		b := Bounds{SouthWest: markers[0].Position, NorthEast: markers[0].Position}
		for _, m := range markers[1:] {
			b.SouthWest.Lat = min(b.SouthWest.Lat, m.Position.Lat)
			b.SouthWest.Lng = min(b.SouthWest.Lng, m.Position.Lng)
			b.NorthEast.Lat = max(b.NorthEast.Lat, m.Position.Lat)
			b.NorthEast.Lng = max(b.NorthEast.Lng, m.Position.Lng)
		}
		center := LatLng{
			Lat: (b.SouthWest.Lat + b.NorthEast.Lat) / 2,
			Lng: (b.SouthWest.Lng + b.NorthEast.Lng) / 2,
		}
		return &Viewport{Center: center, Bounds: &b, Padding: viewportPad}
	}
	if s.Location != nil {
		return &Viewport{Center: *s.Location, Zoom: defaultZoom}
	}
	return nil
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
