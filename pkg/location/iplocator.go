package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"brightroots/internal/models"
)

// ipResponse is the subset of an ip-api style answer we use.
type ipResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// IPLocator approximates the device position from its public address.
type IPLocator struct {
	endpoint   string
	permission Permission
	client     *http.Client
	now        func() time.Time

	mu     sync.Mutex
	last   *models.Coordinates
	lastAt time.Time
}

// NewIPLocator returns a locator querying endpoint. An empty endpoint makes
// every request fail with ErrUnsupported.
func NewIPLocator(endpoint string, permission Permission) *IPLocator {
	if permission == "" {
		permission = PermissionPrompt
	}
	return &IPLocator{
		endpoint:   endpoint,
		permission: permission,
		client:     http.DefaultClient,
		now:        time.Now,
	}
}

// RequestPosition returns a cached fix younger than opts.MaxAge, otherwise
// asks the endpoint within opts.Timeout.
func (l *IPLocator) RequestPosition(ctx context.Context, opts PositionOptions) (models.Coordinates, error) {
	if l.endpoint == "" {
		return models.Coordinates{}, ErrUnsupported
	}
	if l.permission == PermissionDenied {
		return models.Coordinates{}, ErrPermissionDenied
	}
	if c, ok := l.cached(opts.MaxAge); ok {
		return c, nil
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	c, err := l.fetch(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return models.Coordinates{}, ErrTimeout
		}
		return models.Coordinates{}, fmt.Errorf("%w: %v", ErrPositionUnavailable, err)
	}

	l.mu.Lock()
	l.last = &c
	l.lastAt = l.now()
	l.mu.Unlock()
	return c, nil
}

func (l *IPLocator) cached(maxAge time.Duration) (models.Coordinates, bool) {
	if maxAge <= 0 {
		return models.Coordinates{}, false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.last == nil || l.now().Sub(l.lastAt) > maxAge {
		return models.Coordinates{}, false
	}
	return *l.last, true
}

func (l *IPLocator) fetch(ctx context.Context) (models.Coordinates, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.endpoint, nil)
	if err != nil {
		return models.Coordinates{}, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return models.Coordinates{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Coordinates{}, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	var body ipResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.Coordinates{}, err
	}
	if body.Status != "success" {
		return models.Coordinates{}, fmt.Errorf("lookup failed: %s", body.Message)
	}
	return models.Coordinates{Lat: body.Lat, Lng: body.Lon}, nil
}
