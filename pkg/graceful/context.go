// Package graceful ties process shutdown to SIGINT/SIGTERM and releases
// resources in reverse order of acquisition.
package graceful

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Context returns a context canceled on SIGINT or SIGTERM. Calling stop
// cancels it too and unregisters the signal handler.
func Context(parent context.Context) (ctx context.Context, stop context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Printf("Received %s, shutting down...", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// Stack collects cleanup functions.
type Stack struct {
	mu  sync.Mutex
	fns []closer
}

type closer struct {
	name string
	fn   func() error
}

// Defer registers fn to run on Close.
func (s *Stack) Defer(name string, fn func() error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fns = append(s.fns, closer{name: name, fn: fn})
}

// Close runs the registered functions last first, once each, and joins
// their errors.
func (s *Stack) Close() error {
	s.mu.Lock()
	fns := s.fns
	s.fns = nil
	s.mu.Unlock()

	var errs []error
	for i := len(fns) - 1; i >= 0; i-- {
		if err := fns[i].fn(); err != nil {
			log.Printf("Failed to close %s: %v", fns[i].name, err)
			errs = append(errs, fmt.Errorf("%s: %w", fns[i].name, err))
		}
	}
	return errors.Join(errs...)
}
