// Package backend is the hosted provider database the directory queries when
// it is not running on local data.
package backend

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"brightroots/internal/models"
)

// ErrNotFound is returned by UpdateStatus for an unknown provider id.
var ErrNotFound = errors.New("backend: provider not found")

// Filter narrows ListProviders. Empty fields do not filter.
type Filter struct {
	Category string
	City     string
}

// Static serves a fixed provider list with the same filtering rules as the
// database. It backs demo and offline runs.
type Static struct {
	mu      sync.Mutex
	records []models.ProviderRecord
	// Err, when set, fails every call.
	Err error
}

func NewStatic(records []models.ProviderRecord) *Static {
	return &Static{records: append([]models.ProviderRecord(nil), records...)}
}

func (s *Static) ListProviders(_ context.Context, f Filter) ([]models.ProviderRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	var out []models.ProviderRecord
	for _, r := range s.records {
		if !r.Eligible() {
			continue
		}
		if f.Category != "" && !r.HasCategory(f.Category) {
			continue
		}
		if f.City != "" && !strings.EqualFold(r.Location.City, f.City) {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Static) UpdateStatus(_ context.Context, id string, status models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for i := range s.records {
		if s.records[i].ID == id {
			s.records[i].Status = status
			s.records[i].Published = status.Publishes()
			return nil
		}
	}
	return ErrNotFound
}
