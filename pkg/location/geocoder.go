package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/time/rate"

	"brightroots/internal/models"
)

// DefaultGeocoderURL is the public Nominatim search endpoint.
const DefaultGeocoderURL = "https://nominatim.openstreetmap.org/search"

var ErrNoResults = errors.New("no geocoding results")

// Place is a geocoded address.
type Place struct {
	Name        string
	Coordinates models.Coordinates
	City        string
	Country     string
	Type        string
}

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Type        string `json:"type"`
	DisplayName string `json:"display_name"`
	Address     struct {
		City     string `json:"city"`
		Town     string `json:"town"`
		Village  string `json:"village"`
		Suburb   string `json:"suburb"`
		Postcode string `json:"postcode"`
		Country  string `json:"country"`
	} `json:"address"`
}

// Geocoder resolves free-form addresses through Nominatim. Requests are
// spaced by a limiter because the public instance allows one per second.
type Geocoder struct {
	endpoint  string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
}

// NewGeocoder returns a Geocoder allowing perSecond requests. A non-positive
// rate disables limiting.
func NewGeocoder(endpoint string, perSecond float64) *Geocoder {
	if endpoint == "" {
		endpoint = DefaultGeocoderURL
	}
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &Geocoder{
		endpoint:  endpoint,
		userAgent: "brightroots-directory/1.0",
		client:    http.DefaultClient,
		limiter:   rate.NewLimiter(limit, 1),
	}
}

// Geocode looks up query and returns the best match.
func (g *Geocoder) Geocode(ctx context.Context, query string) (*Place, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("geocode %q: %w", query, err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("limit", "1")
	params.Set("accept-language", "en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode %q: unexpected status: %s", query, resp.Status)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("geocode %q: %w", query, err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoResults, query)
	}

	first := results[0]
	lat, err := strconv.ParseFloat(first.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("geocode %q: bad latitude %q", query, first.Lat)
	}
	lon, err := strconv.ParseFloat(first.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("geocode %q: bad longitude %q", query, first.Lon)
	}

	city := first.Address.City
	if city == "" {
		city = first.Address.Town
	}
	if city == "" {
		city = first.Address.Village
	}

	return &Place{
		Name:        query,
		Coordinates: models.Coordinates{Lat: lat, Lng: lon},
		City:        city,
		Country:     first.Address.Country,
		Type:        first.Type,
	}, nil
}
