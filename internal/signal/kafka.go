package signal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Publisher writes a keyed message. *kafkaclient.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, key, value []byte) error
}

// Change is the payload of a change signal on the wire.
type Change struct {
	Key    string    `json:"key"`
	Origin string    `json:"origin"`
	At     time.Time `json:"at"`
}

// KafkaBus is a Bus for contexts in different processes: Notify publishes a
// Change and Run fans incoming Changes out to local watchers.
type KafkaBus struct {
	publisher Publisher
	messages  MessageIterator
	origin    string
	now       func() time.Time
	hub       *Hub
}

// NewKafkaBus wires a publisher and a consumer. origin identifies this
// context in published changes.
func NewKafkaBus(publisher Publisher, messages MessageIterator, origin string) *KafkaBus {
	return &KafkaBus{
		publisher: publisher,
		messages:  messages,
		origin:    origin,
		now:       time.Now,
		hub:       NewHub(),
	}
}

func (b *KafkaBus) Notify(ctx context.Context, key string) error {
	payload, err := json.Marshal(Change{Key: key, Origin: b.origin, At: b.now().UTC()})
	if err != nil {
		return fmt.Errorf("encoding change signal: %w", err)
	}
	return b.publisher.Publish(ctx, []byte(key), payload)
}

func (b *KafkaBus) Watch(fn func(key string)) func() {
	return b.hub.Watch(fn)
}

// Run delivers incoming changes to watchers until the message source closes
// or ctx is done. Changes raised by this context are delivered too.
func (b *KafkaBus) Run(ctx context.Context) {
	changes := NewIterator(b.messages, decodeChange).Objects(ctx)
	for c := range changes {
		_ = b.hub.Notify(ctx, c.Key)
	}
}

func decodeChange(msg kafka.Message) (Change, error) {
	var c Change
	if err := json.Unmarshal(msg.Value, &c); err != nil {
		return Change{}, fmt.Errorf("decoding change signal: %w", err)
	}
	if c.Key == "" {
		c.Key = string(msg.Key)
	}
	return c, nil
}
