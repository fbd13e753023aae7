package directory

import (
	"sort"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"

	"brightroots/internal/models"
	"brightroots/pkg/geo"
)

// Query holds the filters a user can set on the directory.
type Query struct {
	// Category keeps providers tagged with it. Empty keeps all.
	Category string
	// Search keeps providers whose name or description contains it.
	Search string
	// AllLocations turns off distance ranking and the city narrowing.
	AllLocations bool
	// City is the user's saved city, used to narrow backend results.
	City string
	// Demo ranks the locally reconciled set instead of querying the backend.
	Demo bool
}

// RankedProvider is a provider with its distance from the ranking origin.
type RankedProvider struct {
	models.ProviderRecord
	// DistanceKm is rounded to one decimal. It is 0 when either end has no
	// coordinates and is not computed at all in all-locations mode.
	DistanceKm float64 `json:"distanceKm"`
}

// Label is the distance text shown next to a provider.
func (p RankedProvider) Label(allLocations bool) string {
	switch {
	case allLocations:
		return "All locations"
	case p.DistanceKm == 0 && p.Location.Online:
		return "Online"
	default:
		return strconv.FormatFloat(p.DistanceKm, 'f', -1, 64) + " km away"
	}
}

// Rank orders records by distance from origin (unless q.AllLocations is set)
// and then applies the search and category filters. Records are expected to
// be eligible already.
func Rank(origin models.Coordinates, records []models.ProviderRecord, q Query) []RankedProvider {
	ranked := make([]RankedProvider, len(records))
	for i, r := range records {
		ranked[i] = RankedProvider{ProviderRecord: r}
	}

	if !q.AllLocations {
		for i := range ranked {
			ranked[i].DistanceKm = geo.DistanceKm(&origin, ranked[i].Location.Coordinates)
		}
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].DistanceKm < ranked[j].DistanceKm
		})
		for i := range ranked {
			ranked[i].DistanceKm = geo.RoundKm(ranked[i].DistanceKm)
		}
	}

	return filter(ranked, q)
}

func filter(ranked []RankedProvider, q Query) []RankedProvider {
	search := strings.TrimSpace(q.Search)
	category := strings.TrimSpace(q.Category)
	if search == "" && category == "" {
		return ranked
	}

	keep := roaring.New()
	keep.AddRange(0, uint64(len(ranked)))
	if category != "" {
		keep = roaring.And(keep, buildCategoryIndex(ranked).lookup(category))
	}
	if search != "" {
		keep = roaring.And(keep, matchSearch(ranked, search))
	}

	out := make([]RankedProvider, 0, keep.GetCardinality())
	it := keep.Iterator()
	for it.HasNext() {
		out = append(out, ranked[it.Next()])
	}
	return out
}

func eligible(records []models.ProviderRecord) []models.ProviderRecord {
	out := make([]models.ProviderRecord, 0, len(records))
	for _, r := range records {
		if r.Eligible() {
			out = append(out, r)
		}
	}
	return out
}
