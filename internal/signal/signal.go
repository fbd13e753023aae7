// Package signal carries "storage changed" notifications between contexts
// that share the persistent channel.
package signal

import (
	"context"
	"sync"
)

// Notifier raises a "value changed" signal for key.
type Notifier interface {
	Notify(ctx context.Context, key string) error
}

// Bus both raises and delivers change signals.
type Bus interface {
	Notifier
	Watch(fn func(key string)) (cancel func())
}

// Hub is an in-process Bus. Every context in the process that shares a Hub
// sees the signals the others raise, including its own.
type Hub struct {
	mu       sync.RWMutex
	watchers map[int]func(string)
	nextID   int
}

// NewHub returns a Hub with no watchers.
func NewHub() *Hub {
	return &Hub{watchers: make(map[int]func(string))}
}

func (h *Hub) Notify(_ context.Context, key string) error {
	h.mu.RLock()
	fns := make([]func(string), 0, len(h.watchers))
	for _, fn := range h.watchers {
		fns = append(fns, fn)
	}
	h.mu.RUnlock()

	for _, fn := range fns {
		fn(key)
	}
	return nil
}

func (h *Hub) Watch(fn func(key string)) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.watchers[id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.watchers, id)
			h.mu.Unlock()
		})
	}
}
