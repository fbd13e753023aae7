package signal

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub(t *testing.T) {
	hub := NewHub()

	var a, b []string
	cancelA := hub.Watch(func(k string) { a = append(a, k) })
	cancelB := hub.Watch(func(k string) { b = append(b, k) })
	defer cancelB()

	require.NoError(t, hub.Notify(context.Background(), "adminProviders"))
	cancelA()
	cancelA()
	require.NoError(t, hub.Notify(context.Background(), "user_location"))

	assert.Equal(t, []string{"adminProviders"}, a)
	assert.Equal(t, []string{"adminProviders", "user_location"}, b)
}

type fakeMessages struct {
	ch chan kafka.Message

	mu        sync.Mutex
	committed []int64
}

func (f *fakeMessages) Messages() <-chan kafka.Message { return f.ch }

func (f *fakeMessages) CommitOffset(_ context.Context, msg kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.committed = append(f.committed, msg.Offset)
	return nil
}

type recordingPublisher struct {
	keys   []string
	values [][]byte
}

func (p *recordingPublisher) Publish(_ context.Context, key, value []byte) error {
	p.keys = append(p.keys, string(key))
	p.values = append(p.values, value)
	return nil
}

func TestKafkaBus_Notify(t *testing.T) {
	pub := &recordingPublisher{}
	bus := NewKafkaBus(pub, &fakeMessages{ch: make(chan kafka.Message)}, "tab-1")
	bus.now = func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) }

	require.NoError(t, bus.Notify(context.Background(), "adminProviders"))
	require.Len(t, pub.values, 1)
	assert.Equal(t, "adminProviders", pub.keys[0])

	var c Change
	require.NoError(t, json.Unmarshal(pub.values[0], &c))
	assert.Equal(t, Change{Key: "adminProviders", Origin: "tab-1", At: bus.now()}, c)
}

func TestKafkaBus_Run(t *testing.T) {
	msgs := &fakeMessages{ch: make(chan kafka.Message, 3)}
	msgs.ch <- kafka.Message{Offset: 1, Value: []byte(`{"key":"adminProviders","origin":"tab-2"}`)}
	msgs.ch <- kafka.Message{Offset: 2, Value: []byte(`not json`)}
	msgs.ch <- kafka.Message{Offset: 3, Key: []byte("user_location"), Value: []byte(`{"origin":"tab-2"}`)}
	close(msgs.ch)

	bus := NewKafkaBus(&recordingPublisher{}, msgs, "tab-1")
	var got []string
	bus.Watch(func(k string) { got = append(got, k) })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	bus.Run(ctx)

	assert.Equal(t, []string{"adminProviders", "user_location"}, got)
	assert.Equal(t, []int64{1, 3}, msgs.committed, "undecodable messages are not committed")
}
