package backend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brightroots/internal/models"
)

func staticRecords() []models.ProviderRecord {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	return []models.ProviderRecord{
		{ID: "old", Status: models.StatusApproved, Published: true, Categories: []string{"music"},
			Location: models.Location{City: "Gurgaon"}, CreatedAt: day(1)},
		{ID: "new", Status: models.StatusApproved, Published: true, Categories: []string{"coding"},
			Location: models.Location{City: "Delhi"}, CreatedAt: day(5)},
		{ID: "pending", Status: models.StatusPending, Categories: []string{"music"},
			Location: models.Location{City: "Gurgaon"}, CreatedAt: day(9)},
	}
}

func ids(records []models.ProviderRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func TestStatic_ListProviders(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"eligible newest first", Filter{}, []string{"new", "old"}},
		{"category", Filter{Category: "music"}, []string{"old"}},
		{"category ignores case", Filter{Category: "Music"}, []string{"old"}},
		{"city ignores case", Filter{City: "delhi"}, []string{"new"}},
		{"no match", Filter{City: "Mumbai"}, []string{}},
	}
	s := NewStatic(staticRecords())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListProviders(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestStatic_UpdateStatus(t *testing.T) {
	s := NewStatic(staticRecords())
	ctx := context.Background()

	require.NoError(t, s.UpdateStatus(ctx, "pending", models.StatusApproved))
	got, err := s.ListProviders(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"pending", "new", "old"}, ids(got))

	require.NoError(t, s.UpdateStatus(ctx, "new", models.StatusRejected))
	got, _ = s.ListProviders(ctx, Filter{})
	assert.Equal(t, []string{"pending", "old"}, ids(got))

	assert.ErrorIs(t, s.UpdateStatus(ctx, "missing", models.StatusApproved), ErrNotFound)
}

func TestStatic_Err(t *testing.T) {
	s := NewStatic(nil)
	s.Err = errors.New("offline")
	_, err := s.ListProviders(context.Background(), Filter{})
	assert.Error(t, err)
}
