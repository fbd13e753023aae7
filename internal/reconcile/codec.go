package reconcile

import (
	"encoding/json"
	"fmt"
	"time"

	"brightroots/internal/models"
)

// projection is the size-bounded form written to the shared-state channel.
type projection struct {
	ID           string        `json:"id"`
	BusinessName string        `json:"businessName"`
	Status       models.Status `json:"status"`
	CreatedAt    time.Time     `json:"createdAt"`
}

func encodeRecords(records []models.ProviderRecord) (string, error) {
	if records == nil {
		records = []models.ProviderRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("encoding providers: %w", err)
	}
	return string(data), nil
}

func decodeRecords(raw string) ([]models.ProviderRecord, error) {
	var records []models.ProviderRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("decoding providers: %w", err)
	}
	return records, nil
}

func encodeProjection(records []models.ProviderRecord) (string, error) {
	out := make([]projection, 0, len(records))
	for _, p := range records {
		out = append(out, projection{
			ID:           p.ID,
			BusinessName: p.BusinessName,
			Status:       p.Status,
			CreatedAt:    p.CreatedAt,
		})
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encoding projection: %w", err)
	}
	return string(data), nil
}

func decodeProjection(raw string) ([]models.ProviderRecord, error) {
	var in []projection
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return nil, fmt.Errorf("decoding projection: %w", err)
	}
	records := make([]models.ProviderRecord, 0, len(in))
	for _, p := range in {
		records = append(records, models.ProviderRecord{
			ID:           p.ID,
			BusinessName: p.BusinessName,
			Status:       p.Status,
			CreatedAt:    p.CreatedAt,
			Partial:      true,
		})
	}
	return records, nil
}
