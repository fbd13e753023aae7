// Package locate picks the coordinate the directory is ranked from.
//
// Resolution walks a fixed chain and never fails: the saved location, then a
// device fix, then a default coordinate.
package locate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"brightroots/internal/models"
	"brightroots/pkg/location"
)

// DefaultCoordinates is used when nothing better is known (Gurgaon).
var DefaultCoordinates = models.Coordinates{Lat: 28.4595, Lng: 77.0266}

// DiscoveryOptions are used on the directory view.
var DiscoveryOptions = location.PositionOptions{
	HighAccuracy: true,
	Timeout:      10 * time.Second,
	MaxAge:       5 * time.Minute,
}

// SetupOptions are used while the user sets up their location and always ask
// for a fresh fix.
var SetupOptions = location.PositionOptions{
	HighAccuracy: true,
	Timeout:      10 * time.Second,
}

// Source says which step of the chain produced a Resolved.
type Source string

const (
	SourceSaved    Source = "saved"
	SourceDevice   Source = "device"
	SourceFallback Source = "fallback"
)

// PositionProvider asks the platform for the current position.
type PositionProvider interface {
	RequestPosition(ctx context.Context, opts location.PositionOptions) (models.Coordinates, error)
}

// SavedLocations reads and writes the user's saved location.
type SavedLocations interface {
	Saved(ctx context.Context) (models.UserLocation, bool)
	Save(ctx context.Context, loc models.UserLocation) error
}

// Resolved is a ranking origin.
type Resolved struct {
	Coordinates models.Coordinates
	Source      Source
	// City is the saved city, if any; the backend narrows results by it.
	City string
}

// Resolver runs the fallback chain.
type Resolver struct {
	saved     SavedLocations
	positions PositionProvider
	opts      location.PositionOptions
	fallback  models.Coordinates
	remember  bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithOptions replaces DiscoveryOptions.
func WithOptions(opts location.PositionOptions) Option {
	return func(r *Resolver) { r.opts = opts }
}

// WithFallback replaces DefaultCoordinates.
func WithFallback(c models.Coordinates) Option {
	return func(r *Resolver) { r.fallback = c }
}

// WithRemember stores device fixes as the saved location.
func WithRemember(remember bool) Option {
	return func(r *Resolver) { r.remember = remember }
}

// NewResolver returns a Resolver. Either collaborator may be nil: a nil
// saved store means no saved location, a nil provider means positioning is
// unsupported.
func NewResolver(saved SavedLocations, positions PositionProvider, opts ...Option) *Resolver {
	r := &Resolver{
		saved:     saved,
		positions: positions,
		opts:      DiscoveryOptions,
		fallback:  DefaultCoordinates,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the ranking origin.
func (r *Resolver) Resolve(ctx context.Context) Resolved {
	var saved models.UserLocation
	var hasSaved bool
	if r.saved != nil {
		saved, hasSaved = r.saved.Saved(ctx)
	}
	if hasSaved && saved.Coordinates != nil {
		return Resolved{Coordinates: *saved.Coordinates, Source: SourceSaved, City: saved.City}
	}

	if r.positions == nil {
		log.Println("Positioning unsupported, using fallback location")
		return Resolved{Coordinates: r.fallback, Source: SourceFallback, City: saved.City}
	}

	c, err := r.requestPosition(ctx)
	if err != nil {
		log.Printf("Position request failed, using fallback location: %v", err)
		return Resolved{Coordinates: r.fallback, Source: SourceFallback, City: saved.City}
	}

	if r.remember && r.saved != nil {
		saved.Coordinates = &c
		if err := r.saved.Save(ctx, saved); err != nil {
			log.Printf("Failed to remember device location: %v", err)
		}
	}
	return Resolved{Coordinates: c, Source: SourceDevice, City: saved.City}
}

// requestPosition holds the provider to the configured timeout even when it
// does not enforce one itself.
func (r *Resolver) requestPosition(ctx context.Context) (models.Coordinates, error) {
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}
	c, err := r.positions.RequestPosition(ctx, r.opts)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return c, fmt.Errorf("%w after %s: %w", location.ErrTimeout, r.opts.Timeout, err)
	}
	return c, err
}
