package locate

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"brightroots/internal/channel"
	"brightroots/internal/models"
)

// ProfileKey is where the saved location lives in the persistent channel.
const ProfileKey = "user_location"

// Profile is the signed in user's saved location, kept in a channel.
type Profile struct {
	ch  channel.Channel
	key string
}

func NewProfile(ch channel.Channel) *Profile {
	return &Profile{ch: ch, key: ProfileKey}
}

// Saved returns the stored location. Unreadable content counts as nothing saved.
func (p *Profile) Saved(ctx context.Context) (models.UserLocation, bool) {
	raw, ok, err := p.ch.Get(ctx, p.key)
	if err != nil {
		log.Printf("Failed to read saved location: %v", err)
		return models.UserLocation{}, false
	}
	if !ok || raw == "" {
		return models.UserLocation{}, false
	}
	var loc models.UserLocation
	if err := json.Unmarshal([]byte(raw), &loc); err != nil {
		log.Printf("Ignoring malformed saved location: %v", err)
		return models.UserLocation{}, false
	}
	return loc, true
}

func (p *Profile) Save(ctx context.Context, loc models.UserLocation) error {
	data, err := json.Marshal(loc)
	if err != nil {
		return fmt.Errorf("encode saved location: %w", err)
	}
	if err := p.ch.Set(ctx, p.key, string(data)); err != nil {
		return fmt.Errorf("save location: %w", err)
	}
	return nil
}
