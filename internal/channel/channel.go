// Package channel defines the storage channels provider snapshots are kept in
// and the in-process implementations of them.
//
// A channel is a plain key/value store. None of the channels is
// authoritative; the reconcile package merges whatever they hold.
package channel

import (
	"context"
	"errors"
)

// ErrCapacityExceeded is returned by size-bounded channels when a value does
// not fit.
var ErrCapacityExceeded = errors.New("channel: capacity exceeded")

// Channel is a key/value store holding serialized snapshots.
type Channel interface {
	// Get returns the stored value. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set replaces the stored value.
	Set(ctx context.Context, key, value string) error
}

// Watcher delivers "value changed" signals raised by other contexts.
type Watcher interface {
	// Watch registers fn and returns a function that detaches it. The
	// returned cancel func is safe to call more than once.
	Watch(fn func(key string)) (cancel func())
}
