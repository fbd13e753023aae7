// Package reconcile keeps the provider directory consistent across the
// persistent, session and shared-state channels.
//
// Every Load reads all three channels, merges them with a last-writer-wins
// rule on CreatedAt and writes the result back, so each read repairs drift.
// Nothing in here returns an error for unreadable or unwritable channels:
// a bad read counts as an empty channel and a failed write is logged.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"brightroots/internal/channel"
	"brightroots/internal/models"
	"brightroots/internal/signal"
)

const (
	// DefaultKey holds full provider snapshots in the persistent and session channels.
	DefaultKey = "adminProviders"
	// DefaultSharedKey holds the projection in the shared-state channel.
	DefaultSharedKey = "sync"
)

// ErrNotFound is returned by UpdateStatus for an unknown provider id.
var ErrNotFound = errors.New("provider not found")

// Channels are the three places provider snapshots live.
type Channels struct {
	// Persistent survives across sessions and is shared by every context.
	Persistent channel.Channel
	// Session is cleared when the browsing context ends.
	Session channel.Channel
	// Shared is the capacity-bounded address channel.
	Shared channel.Channel
}

// DataChange is delivered to in-process listeners after every Save.
type DataChange struct {
	Action  string
	Records []models.ProviderRecord
	At      time.Time
}

// Store merges and persists the reconciled provider set.
type Store struct {
	channels  Channels
	key       string
	sharedKey string
	notifier  signal.Notifier
	now       func() time.Time

	mu        sync.Mutex
	current   []models.ProviderRecord
	listeners map[int]func(DataChange)
	nextID    int
}

// Option configures a Store.
type Option func(*Store)

// WithKeys overrides the channel keys.
func WithKeys(key, sharedKey string) Option {
	return func(s *Store) {
		s.key = key
		s.sharedKey = sharedKey
	}
}

// WithNotifier sets where the cross-context "storage changed" signal goes.
func WithNotifier(n signal.Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore builds a Store over the given channels. A nil channel is treated
// as one that is always empty and rejects writes.
func NewStore(channels Channels, opts ...Option) *Store {
	s := &Store{
		channels:  channels,
		key:       DefaultKey,
		sharedKey: DefaultSharedKey,
		now:       time.Now,
		listeners: make(map[int]func(DataChange)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key is the persistent channel key the store writes to.
func (s *Store) Key() string { return s.key }

// SharedKey is the shared-state channel key the store writes to.
func (s *Store) SharedKey() string { return s.sharedKey }

// Load reads and merges all channels, writes the result back to the
// persistent and session channels and returns it.
//
// Merge order is persistent, shared, session. When no channel yields
// anything, the set from the last successful Load or Save is returned so the
// process keeps its view even if persistence is gone.
func (s *Store) Load(ctx context.Context) []models.ProviderRecord {
	persistent := s.read(ctx, "persistent", s.channels.Persistent, s.key, decodeRecords)
	shared := s.read(ctx, "shared", s.channels.Shared, s.sharedKey, decodeProjection)
	session := s.read(ctx, "session", s.channels.Session, s.key, decodeRecords)

	merged := Merge(persistent, shared)
	merged = Merge(merged, session)
	for i := range merged {
		merged[i].Partial = false
	}

	s.mu.Lock()
	if len(merged) == 0 {
		merged = clone(s.current)
	} else {
		s.current = clone(merged)
	}
	s.mu.Unlock()

	if len(merged) > 0 {
		if data, err := encodeRecords(merged); err != nil {
			log.Printf("Skipping write-back: %v", err)
		} else {
			s.write(ctx, "persistent", s.channels.Persistent, s.key, data)
			s.write(ctx, "session", s.channels.Session, s.key, data)
		}
	}
	return merged
}

// Save replaces the reconciled set in every channel and raises both change
// notifications.
func (s *Store) Save(ctx context.Context, records []models.ProviderRecord) {
	records = clone(records)

	s.mu.Lock()
	s.current = clone(records)
	s.mu.Unlock()

	if data, err := encodeRecords(records); err != nil {
		log.Printf("Skipping save: %v", err)
	} else {
		s.write(ctx, "persistent", s.channels.Persistent, s.key, data)
		s.write(ctx, "session", s.channels.Session, s.key, data)
	}

	if data, err := encodeProjection(records); err != nil {
		log.Printf("Skipping shared-state write: %v", err)
	} else {
		s.write(ctx, "shared", s.channels.Shared, s.sharedKey, data)
	}

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, s.key); err != nil {
			log.Printf("Failed to signal storage change for %q: %v", s.key, err)
		}
	}
	s.emit(DataChange{Action: "dataSync", Records: records, At: s.now()})
}

// UpdateStatus sets the status of one provider and saves the whole set.
// Approving a provider publishes it; any other status unpublishes it.
//
// Concurrent callers are not serialized: the last Save wins.
func (s *Store) UpdateStatus(ctx context.Context, id string, status models.Status) error {
	records := s.Load(ctx)

	found := false
	for i := range records {
		if records[i].ID == id {
			records[i].Status = status
			records[i].Published = status.Publishes()
			found = true
		}
	}
	if !found {
		return fmt.Errorf("updating status of %q: %w", id, ErrNotFound)
	}

	s.Save(ctx, records)
	log.Printf("Provider status updated: %s to %s", id, status)
	return nil
}

// AddRecord appends record and saves the whole set.
//
// The id is not checked against existing records, so adding an id twice
// stores it twice. Load keeps both entries: the first occurrence absorbs
// newer variants from the other channels, so after one Load both entries
// hold the newer record. The pair persists until a Save without it.
func (s *Store) AddRecord(ctx context.Context, record models.ProviderRecord) {
	records := append(s.Load(ctx), record)
	s.Save(ctx, records)
	log.Printf("New provider added: %s", record.BusinessName)
}

// OnDataChanged registers fn for local "data changed" notifications.
func (s *Store) OnDataChanged(fn func(DataChange)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) emit(change DataChange) {
	s.mu.Lock()
	fns := make([]func(DataChange), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(change)
	}
}

func (s *Store) read(
	ctx context.Context,
	name string,
	ch channel.Channel,
	key string,
	decode func(string) ([]models.ProviderRecord, error),
) []models.ProviderRecord {
	if ch == nil {
		return nil
	}
	raw, ok, err := ch.Get(ctx, key)
	if err != nil {
		log.Printf("Treating %s channel as empty: %v", name, err)
		return nil
	}
	if !ok || raw == "" {
		return nil
	}
	records, err := decode(raw)
	if err != nil {
		log.Printf("Treating %s channel as empty: %v", name, err)
		return nil
	}
	return records
}

func (s *Store) write(ctx context.Context, name string, ch channel.Channel, key, value string) {
	if ch == nil {
		return
	}
	if err := ch.Set(ctx, key, value); err != nil {
		log.Printf("Failed to write %s channel: %v", name, err)
	}
}

func clone(records []models.ProviderRecord) []models.ProviderRecord {
	if records == nil {
		return nil
	}
	out := make([]models.ProviderRecord, len(records))
	copy(out, records)
	return out
}
