package directory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brightroots/internal/models"
)

var gurgaon = models.Coordinates{Lat: 28.4595, Lng: 77.0266}

func provider(id, name string, c *models.Coordinates, categories ...string) models.ProviderRecord {
	return models.ProviderRecord{
		ID:           id,
		BusinessName: name,
		Description:  name + " classes for children",
		Categories:   categories,
		Location:     models.Location{City: "Gurgaon", Coordinates: c},
		Status:       models.StatusApproved,
		Published:    true,
		CreatedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func rankedIDs(providers []RankedProvider) []string {
	out := make([]string, 0, len(providers))
	for _, p := range providers {
		out = append(out, p.ID)
	}
	return out
}

func TestRank_AscendingDistance(t *testing.T) {
	records := []models.ProviderRecord{
		provider("delhi", "Delhi Strings", &models.Coordinates{Lat: 28.7041, Lng: 77.1025}, "music"),
		provider("here", "Sector 29 Tutors", &models.Coordinates{Lat: 28.4595, Lng: 77.0266}, "tuition"),
	}

	got := Rank(gurgaon, records, Query{})
	require.Equal(t, []string{"here", "delhi"}, rankedIDs(got))
	assert.Equal(t, 0.0, got[0].DistanceKm)
	assert.InDelta(t, 28.2, got[1].DistanceKm, 0.1)
}

func TestRank_RoundsAfterSorting(t *testing.T) {
	records := []models.ProviderRecord{
		provider("far", "Far", &models.Coordinates{Lat: 28.4421, Lng: 77.0382}),
		provider("unknown", "Unknown", nil),
		provider("near", "Near", &models.Coordinates{Lat: 28.4600, Lng: 77.0270}),
	}

	got := Rank(gurgaon, records, Query{})
	assert.Equal(t, []string{"unknown", "near", "far"}, rankedIDs(got))
	assert.Equal(t, 2.2, got[2].DistanceKm)
	assert.Equal(t, 0.1, got[1].DistanceKm)
}

func TestRank_AllLocationsKeepsOrder(t *testing.T) {
	records := []models.ProviderRecord{
		provider("delhi", "Delhi Strings", &models.Coordinates{Lat: 28.7041, Lng: 77.1025}),
		provider("here", "Sector 29 Tutors", &gurgaon),
	}

	got := Rank(gurgaon, records, Query{AllLocations: true})
	assert.Equal(t, []string{"delhi", "here"}, rankedIDs(got))
	assert.Zero(t, got[0].DistanceKm)
}

func TestRank_Filters(t *testing.T) {
	records := []models.ProviderRecord{
		provider("a", "Rhythm Music School", &models.Coordinates{Lat: 28.5, Lng: 77.0}, "music", "dance"),
		provider("b", "CodeKids", &models.Coordinates{Lat: 28.46, Lng: 77.03}, "coding"),
		provider("c", "Little Mozart Music", &models.Coordinates{Lat: 28.47, Lng: 77.03}, "Music"),
	}

	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{"none", Query{}, []string{"b", "c", "a"}},
		{"category", Query{Category: "music"}, []string{"c", "a"}},
		{"category case", Query{Category: "DANCE"}, []string{"a"}},
		{"unknown category", Query{Category: "camps"}, []string{}},
		{"search name", Query{Search: "MUSIC"}, []string{"c", "a"}},
		{"search description", Query{Search: "children"}, []string{"b", "c", "a"}},
		{"search and category", Query{Search: "rhythm", Category: "music"}, []string{"a"}},
		{"all locations", Query{Category: "music", AllLocations: true}, []string{"a", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rankedIDs(Rank(gurgaon, records, tt.query)))
		})
	}
}

func TestLabel(t *testing.T) {
	online := RankedProvider{ProviderRecord: models.ProviderRecord{Location: models.Location{Online: true}}}
	colocated := RankedProvider{}
	near := RankedProvider{DistanceKm: 2.2}
	whole := RankedProvider{DistanceKm: 28}

	assert.Equal(t, "Online", online.Label(false))
	assert.Equal(t, "0 km away", colocated.Label(false))
	assert.Equal(t, "2.2 km away", near.Label(false))
	assert.Equal(t, "28 km away", whole.Label(false))
	assert.Equal(t, "All locations", near.Label(true))
	assert.Equal(t, "All locations", online.Label(true))
}
