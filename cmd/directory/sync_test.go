package main

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brightroots/internal/channel"
	"brightroots/internal/reconcile"
	"brightroots/internal/scheduler"
	"brightroots/internal/signal"
)

func TestStartSync_FollowsAddressFile(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr, err := channel.NewAddress("https://app.example/home", 0)
	require.NoError(t, err)
	hub := signal.NewHub()
	a := &app{
		address: addr,
		bus:     hub,
		store: reconcile.NewStore(reconcile.Channels{
			Persistent: channel.NewMemory(),
			Session:    channel.NewMemory(),
			Shared:     addr,
		}, reconcile.WithNotifier(hub)),
	}

	// The link another context would hand over, carrying one listing in
	// its fragment.
	other, err := channel.NewAddress("https://app.example/home", 0)
	require.NoError(t, err)
	require.NoError(t, other.Set(ctx, reconcile.DefaultSharedKey,
		`[{"id":"p7","businessName":"Lotus Yoga for Kids","status":"approved","createdAt":"2024-05-01T00:00:00Z"}]`))

	path := filepath.Join(t.TempDir(), "address")
	require.NoError(t, os.WriteFile(path, []byte("https://app.example/home"), 0o600))

	var mu sync.Mutex
	var names []string
	s := a.startSync(ctx, time.Hour, path, func(e scheduler.Synced) {
		mu.Lock()
		defer mu.Unlock()
		for _, p := range e.Providers {
			names = append(names, p.BusinessName)
		}
	})
	defer s.Stop()

	require.NoError(t, os.WriteFile(path, []byte(other.String()+"\n"), 0o600))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, n := range names {
			if n == "Lotus Yoga for Kids" {
				return true
			}
		}
		return false
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, other.String(), addr.String())
}
