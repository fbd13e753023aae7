package locate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brightroots/internal/channel"
	"brightroots/internal/models"
	"brightroots/pkg/location"
)

type recordingProvider struct {
	coords models.Coordinates
	err    error
	calls  int
	opts   location.PositionOptions
}

func (p *recordingProvider) RequestPosition(_ context.Context, opts location.PositionOptions) (models.Coordinates, error) {
	p.calls++
	p.opts = opts
	return p.coords, p.err
}

// hangingProvider never answers on its own; it only gives up when ctx does.
type hangingProvider struct{}

func (hangingProvider) RequestPosition(ctx context.Context, _ location.PositionOptions) (models.Coordinates, error) {
	<-ctx.Done()
	return models.Coordinates{}, ctx.Err()
}

type failingChannel struct{}

func (failingChannel) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("quota exceeded")
}

func (failingChannel) Set(context.Context, string, string) error {
	return errors.New("quota exceeded")
}

var (
	home   = models.Coordinates{Lat: 28.4421, Lng: 77.0382}
	device = models.Coordinates{Lat: 28.7041, Lng: 77.1025}
)

func savedProfile(t *testing.T, loc *models.UserLocation) *Profile {
	t.Helper()
	p := NewProfile(channel.NewMemory())
	if loc != nil {
		require.NoError(t, p.Save(context.Background(), *loc))
	}
	return p
}

// Every saved/provider combination resolves to some coordinate.
func TestResolve_NeverFails(t *testing.T) {
	saved := []struct {
		name string
		loc  *models.UserLocation
	}{
		{"no saved location", nil},
		{"saved city only", &models.UserLocation{City: "Gurgaon", Area: "Sector 29"}},
		{"saved coordinates", &models.UserLocation{City: "Gurgaon", Coordinates: &home}},
	}
	outcomes := []struct {
		name     string
		provider PositionProvider
	}{
		{"success", location.Static{Coordinates: device}},
		{"denied", location.Static{Err: location.ErrPermissionDenied}},
		{"unavailable", location.Static{Err: location.ErrPositionUnavailable}},
		{"timeout", location.Static{Err: location.ErrTimeout}},
		{"unsupported", location.Static{Err: location.ErrUnsupported}},
		{"no provider", nil},
	}

	for _, s := range saved {
		for _, o := range outcomes {
			t.Run(s.name+"/"+o.name, func(t *testing.T) {
				r := NewResolver(savedProfile(t, s.loc), o.provider)
				got := r.Resolve(context.Background())

				switch {
				case s.loc != nil && s.loc.Coordinates != nil:
					assert.Equal(t, SourceSaved, got.Source)
					assert.Equal(t, home, got.Coordinates)
				case o.name == "success":
					assert.Equal(t, SourceDevice, got.Source)
					assert.Equal(t, device, got.Coordinates)
				default:
					assert.Equal(t, SourceFallback, got.Source)
					assert.Equal(t, DefaultCoordinates, got.Coordinates)
				}
				if s.loc != nil {
					assert.Equal(t, s.loc.City, got.City)
				}
			})
		}
	}
}

func TestResolve_TimeoutFallsBackToDefault(t *testing.T) {
	p := &recordingProvider{err: location.ErrTimeout}
	got := NewResolver(savedProfile(t, nil), p).Resolve(context.Background())

	assert.Equal(t, models.Coordinates{Lat: 28.4595, Lng: 77.0266}, got.Coordinates)
	assert.Equal(t, SourceFallback, got.Source)
	assert.Equal(t, DiscoveryOptions, p.opts)
}

func TestResolve_SavedSkipsProvider(t *testing.T) {
	p := &recordingProvider{coords: device}
	NewResolver(savedProfile(t, &models.UserLocation{Coordinates: &home}), p).Resolve(context.Background())
	assert.Zero(t, p.calls)
}

func TestResolve_Remember(t *testing.T) {
	profile := savedProfile(t, &models.UserLocation{City: "Delhi", Area: "Saket"})
	r := NewResolver(profile, &recordingProvider{coords: device}, WithRemember(true), WithOptions(SetupOptions))

	got := r.Resolve(context.Background())
	assert.Equal(t, SourceDevice, got.Source)

	stored, ok := profile.Saved(context.Background())
	require.True(t, ok)
	assert.Equal(t, "Saket", stored.Area)
	require.NotNil(t, stored.Coordinates)
	assert.Equal(t, device, *stored.Coordinates)

	again := r.Resolve(context.Background())
	assert.Equal(t, SourceSaved, again.Source)
}

func TestResolve_BrokenProfile(t *testing.T) {
	r := NewResolver(NewProfile(failingChannel{}), &recordingProvider{coords: device},
		WithRemember(true), WithFallback(home))

	got := r.Resolve(context.Background())
	assert.Equal(t, SourceDevice, got.Source)
	assert.Equal(t, device, got.Coordinates)
}

func TestProfile_Malformed(t *testing.T) {
	ch := channel.NewMemory()
	require.NoError(t, ch.Set(context.Background(), ProfileKey, "{not json"))

	_, ok := NewProfile(ch).Saved(context.Background())
	assert.False(t, ok)
}

func TestResolve_EnforcesTimeout(t *testing.T) {
	opts := DiscoveryOptions
	opts.Timeout = 20 * time.Millisecond
	r := NewResolver(savedProfile(t, nil), hangingProvider{}, WithOptions(opts))

	done := make(chan Resolved, 1)
	go func() { done <- r.Resolve(context.Background()) }()

	select {
	case got := <-done:
		assert.Equal(t, SourceFallback, got.Source)
		assert.Equal(t, DefaultCoordinates, got.Coordinates)
	case <-time.After(2 * time.Second):
		t.Fatal("Resolve did not give up after the position timeout")
	}
}

func TestResolver_RequestPositionWrapsTimeout(t *testing.T) {
	opts := DiscoveryOptions
	opts.Timeout = 10 * time.Millisecond
	r := NewResolver(nil, hangingProvider{}, WithOptions(opts))

	_, err := r.requestPosition(context.Background())
	assert.ErrorIs(t, err, location.ErrTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
