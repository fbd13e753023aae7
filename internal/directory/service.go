// Package directory produces the distance-ranked provider list a parent
// browses.
package directory

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"brightroots/internal/backend"
	"brightroots/internal/locate"
	"brightroots/internal/models"
	"brightroots/pkg/geo"
)

// ErrDegraded wraps the backend failure when results come from local data.
var ErrDegraded = errors.New("directory: backend unavailable, showing local data")

// Source says where a Result's providers came from.
type Source string

const (
	SourceBackend Source = "backend"
	SourceLocal   Source = "local"
)

// Backend lists providers from the hosted database.
type Backend interface {
	ListProviders(ctx context.Context, f backend.Filter) ([]models.ProviderRecord, error)
}

// LocalSet is the reconciled provider set.
type LocalSet interface {
	Load(ctx context.Context) []models.ProviderRecord
}

// Resolver produces the ranking origin.
type Resolver interface {
	Resolve(ctx context.Context) locate.Resolved
}

// Result is one rendering of the directory.
type Result struct {
	Providers []RankedProvider
	Origin    locate.Resolved
	Source    Source
	// Warning is set, wrapping ErrDegraded, when the backend failed and the
	// providers are local. Ranking again retries the backend.
	Warning error
}

// Service ranks providers for a user.
type Service struct {
	local    LocalSet
	backend  Backend
	resolver Resolver
}

// NewService returns a Service. A nil backend always uses local data.
func NewService(local LocalSet, b Backend, resolver Resolver) *Service {
	return &Service{local: local, backend: b, resolver: resolver}
}

// Discover resolves the user's location and fetches providers concurrently,
// then ranks them.
func (s *Service) Discover(ctx context.Context, q Query) Result {
	var (
		origin   locate.Resolved
		records  []models.ProviderRecord
		source   Source
		warning  error
		g        errgroup.Group
	)
	g.Go(func() error {
		origin = s.resolver.Resolve(ctx)
		return nil
	})
	g.Go(func() error {
		records, source, warning = s.collect(ctx, q)
		return nil
	})
	_ = g.Wait()

	return Result{
		Providers: Rank(origin.Coordinates, records, q),
		Origin:    origin,
		Source:    source,
		Warning:   warning,
	}
}

// Rank ranks providers from a known origin.
func (s *Service) Rank(ctx context.Context, origin locate.Resolved, q Query) Result {
	records, source, warning := s.collect(ctx, q)
	return Result{
		Providers: Rank(origin.Coordinates, records, q),
		Origin:    origin,
		Source:    source,
		Warning:   warning,
	}
}

func (s *Service) collect(ctx context.Context, q Query) ([]models.ProviderRecord, Source, error) {
	if q.Demo || s.backend == nil {
		return s.localRecords(ctx), SourceLocal, nil
	}

	f := backend.Filter{Category: q.Category}
	if !q.AllLocations && q.City != "" {
		f.City = geo.CanonicalCity(q.City)
	}

	records, err := s.backend.ListProviders(ctx, f)
	if err != nil {
		log.Printf("Provider query failed, falling back to local data: %v", err)
		return s.localRecords(ctx), SourceLocal, fmt.Errorf("%w: %v", ErrDegraded, err)
	}
	return records, SourceBackend, nil
}

func (s *Service) localRecords(ctx context.Context) []models.ProviderRecord {
	if s.local == nil {
		return nil
	}
	return eligible(s.local.Load(ctx))
}
