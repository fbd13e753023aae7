package models

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a provider listing.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ParseStatus validates a user supplied status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusApproved, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown provider status %q", s)
}

// Publishes reports the publication flag that goes with s: approving a
// listing publishes it and any other status takes it down.
func (s Status) Publishes() bool {
	return s == StatusApproved
}

// ProviderRecord is a single directory entry.
type ProviderRecord struct {
	ID           string    `json:"id"`
	BusinessName string    `json:"businessName"`
	OwnerName    string    `json:"ownerName,omitempty"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	WhatsApp     string    `json:"whatsapp,omitempty"`
	Website      string    `json:"website,omitempty"`
	Description  string    `json:"description,omitempty"`
	Categories   []string  `json:"categories,omitempty"`
	Location     Location  `json:"location"`
	Status       Status    `json:"status"`
	Published    bool      `json:"isPublished"`
	CreatedAt    time.Time `json:"createdAt"`

	// Partial is set on records decoded from a size-bounded projection; only
	// ID, BusinessName, Status and CreatedAt are meaningful on them.
	Partial bool `json:"-"`
}

// Eligible reports whether the record may be shown to parents.
func (p ProviderRecord) Eligible() bool {
	return p.Status == StatusApproved && p.Published
}

// HasCategory is a membership test on the record's tags, ignoring case.
func (p ProviderRecord) HasCategory(category string) bool {
	for _, c := range p.Categories {
		if strings.EqualFold(c, category) {
			return true
		}
	}
	return false
}
