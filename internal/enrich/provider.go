package enrich

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"brightroots/internal/models"
	"brightroots/pkg/geo"
	"brightroots/pkg/location"
)

// ErrUnknownCity marks a listing in a city the directory does not serve. The
// listing is kept; the failed step only flags it.
var ErrUnknownCity = errors.New("city not served by the directory")

// Geocoder resolves an address to a place.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*location.Place, error)
}

// NewProviderPipeline returns the stages a new listing goes through.
// geocoder may be nil, in which case coordinates are left as given.
func NewProviderPipeline(geocoder Geocoder, now func() time.Time) *Pipeline[models.ProviderRecord] {
	stages := []Stage[models.ProviderRecord]{
		NewStage(AssignID, StampCreated(now), NormalizeCategories, DefaultStatus),
		NewStage(NormalizeCity),
	}
	if geocoder != nil {
		stages = append(stages, NewStage(GeocodeStep(geocoder)))
	}
	return NewPipeline(stages...)
}

// AssignID gives records without an id a random one.
func AssignID(_ context.Context, r *models.ProviderRecord) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// StampCreated sets CreatedAt when it is missing.
func StampCreated(now func() time.Time) Step[models.ProviderRecord] {
	return func(_ context.Context, r *models.ProviderRecord) error {
		if r.CreatedAt.IsZero() {
			r.CreatedAt = now().UTC()
		}
		return nil
	}
}

// NormalizeCategories lowercases, trims and dedupes categories.
func NormalizeCategories(_ context.Context, r *models.ProviderRecord) error {
	seen := make(map[string]bool, len(r.Categories))
	out := r.Categories[:0]
	for _, c := range r.Categories {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	r.Categories = out
	return nil
}

// DefaultStatus marks new listings pending review.
func DefaultStatus(_ context.Context, r *models.ProviderRecord) error {
	if r.Status == "" {
		r.Status = models.StatusPending
	}
	return nil
}

// NormalizeCity fills the city from the area when missing and uses the
// directory's spelling of known cities. A city outside the served list is
// kept as entered and reported with ErrUnknownCity.
func NormalizeCity(_ context.Context, r *models.ProviderRecord) error {
	city := r.Location.City
	if city == "" {
		city = geo.ExtractCity(r.Location.Area)
	}
	r.Location.City = geo.CanonicalCity(city)
	if r.Location.City != "" && !geo.IsKnownCity(r.Location.City) {
		return fmt.Errorf("%s in %q: %w", r.BusinessName, r.Location.City, ErrUnknownCity)
	}
	return nil
}

// GeocodeStep looks up coordinates for records that have none. Online-only
// records are skipped.
func GeocodeStep(g Geocoder) Step[models.ProviderRecord] {
	return func(ctx context.Context, r *models.ProviderRecord) error {
		if r.Location.Coordinates != nil || r.Location.Online {
			return nil
		}
		query := addressQuery(r.Location)
		if query == "" {
			return fmt.Errorf("no address to geocode for %s", r.BusinessName)
		}
		place, err := g.Geocode(ctx, query)
		if err != nil {
			return err
		}
		c := place.Coordinates
		r.Location.Coordinates = &c
		if r.Location.City == "" {
			r.Location.City = geo.CanonicalCity(place.City)
		}
		return nil
	}
}

func addressQuery(l models.Location) string {
	var parts []string
	for _, p := range []string{l.Area, l.City, l.Pincode} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(append(parts, "India"), ", ")
}
