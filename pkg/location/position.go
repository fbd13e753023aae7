package location

import (
	"context"
	"errors"
	"time"

	"brightroots/internal/models"
)

// Reasons a position request can fail.
var (
	ErrPermissionDenied    = errors.New("location permission denied")
	ErrPositionUnavailable = errors.New("position unavailable")
	ErrTimeout             = errors.New("position request timed out")
	ErrUnsupported         = errors.New("positioning unsupported")
)

// PositionOptions tunes a single position request.
type PositionOptions struct {
	HighAccuracy bool
	// Timeout bounds the request; zero means no deadline beyond ctx.
	Timeout time.Duration
	// MaxAge is how old a cached fix may be and still be returned.
	MaxAge time.Duration
}

// Permission mirrors the states a user can leave the location permission in.
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionPrompt  Permission = "prompt"
	PermissionDenied  Permission = "denied"
)

// Static always answers with the same fix, or the same error when Err is set.
type Static struct {
	Coordinates models.Coordinates
	Err         error
}

func (s Static) RequestPosition(_ context.Context, _ PositionOptions) (models.Coordinates, error) {
	if s.Err != nil {
		return models.Coordinates{}, s.Err
	}
	return s.Coordinates, nil
}
