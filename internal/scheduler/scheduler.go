// Package scheduler keeps the reconciled provider set fresh: it reconciles on
// a fixed interval and whenever another context signals a change, and
// broadcasts each result to observers.
package scheduler

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"brightroots/internal/channel"
	"brightroots/internal/models"
)

// DefaultInterval is the period between timer-driven reconciliations.
const DefaultInterval = 3 * time.Second

// Loader is the part of the reconciliation store the scheduler drives.
type Loader interface {
	Load(ctx context.Context) []models.ProviderRecord
	Key() string
}

// Synced is broadcast after every reconciliation pass.
type Synced struct {
	Providers []models.ProviderRecord
	Timestamp time.Time
}

// Trigger says what started a pass; it is only used for logging.
type Trigger string

const (
	TriggerInit    Trigger = "init"
	TriggerTimer   Trigger = "timer"
	TriggerStorage Trigger = "storage"
	TriggerAddress Trigger = "address"
	TriggerManual  Trigger = "manual"
)

// Scheduler moves between two states. Idle: nothing armed. Active: the timer
// runs and both watchers are attached. Init moves Idle to Active and Stop
// moves back.
//
// Watchers never run a pass themselves: they queue a request that the timer
// goroutine picks up, so a Save made from inside an observer cannot block on
// the pass that is calling it. Requests arriving while one is already queued
// are coalesced, since the queued pass loads the latest state anyway.
// Loads never overlap; observers are called after the load lock is released.
type Scheduler struct {
	store    Loader
	storage  channel.Watcher
	address  channel.Watcher
	interval time.Duration
	now      func() time.Time

	mu        sync.Mutex
	active    bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	detach    []func()
	observers map[int]func(Synced)
	nextID    int

	loadMu sync.Mutex
	// inRun is set while the timer goroutine is calling observers.
	inRun atomic.Bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithInterval overrides DefaultInterval.
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithClock replaces time.Now for Synced timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// New returns an idle Scheduler. storage delivers signals from other contexts
// sharing the persistent channel; address delivers shared-state address
// changes. Either may be nil.
func New(store Loader, storage, address channel.Watcher, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:     store,
		storage:   storage,
		address:   address,
		interval:  DefaultInterval,
		now:       time.Now,
		observers: make(map[int]func(Synced)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn for Synced broadcasts.
func (s *Scheduler) Subscribe(fn func(Synced)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

// Active reports whether Init has been called without a matching Stop.
func (s *Scheduler) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Init reconciles once, then arms the timer and attaches both watchers.
// Calling Init on an active scheduler does nothing.
func (s *Scheduler) Init(ctx context.Context) {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return
	}
	s.active = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()
	requests := make(chan Trigger, 1)

	log.Println("Initializing provider sync...")
	s.Tick(ctx, TriggerInit)

	var detach []func()
	if s.storage != nil {
		key := s.store.Key()
		detach = append(detach, s.storage.Watch(func(changed string) {
			if changed == key {
				request(requests, TriggerStorage)
			}
		}))
	}
	if s.address != nil {
		detach = append(detach, s.address.Watch(func(string) {
			request(requests, TriggerAddress)
		}))
	}

	s.mu.Lock()
	if !s.active {
		// Stop ran during the first pass.
		s.mu.Unlock()
		for _, d := range detach {
			d()
		}
		return
	}
	s.detach = detach
	s.wg.Add(1)
	s.mu.Unlock()

	go s.run(ctx, requests)
}

// request queues a pass without waiting for it.
func request(requests chan<- Trigger, trigger Trigger) {
	select {
	case requests <- trigger:
	default:
	}
}

func (s *Scheduler) run(ctx context.Context, requests <-chan Trigger) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pass(ctx, TriggerTimer, true)
		case trigger := <-requests:
			s.pass(ctx, trigger, true)
		}
	}
}

// Stop disarms the timer and detaches the watchers. It is idempotent and
// safe to call on a scheduler that was never initialized. While the timer
// goroutine is calling observers, including when an observer calls Stop, it
// returns without waiting for them; the goroutine exits once they return and
// no further pass is broadcast.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	cancel := s.cancel
	detach := s.detach
	s.detach = nil
	s.mu.Unlock()

	for _, d := range detach {
		d()
	}
	cancel()
	if !s.inRun.Load() {
		s.wg.Wait()
	}
	log.Println("Provider sync stopped.")
}

// Tick runs one reconciliation pass on the calling goroutine and broadcasts
// the result. It does nothing while the scheduler is idle, so a signal that
// races with Stop is dropped rather than broadcast.
func (s *Scheduler) Tick(ctx context.Context, trigger Trigger) {
	s.pass(ctx, trigger, false)
}

func (s *Scheduler) pass(ctx context.Context, trigger Trigger, inRun bool) {
	s.loadMu.Lock()
	if !s.Active() {
		s.loadMu.Unlock()
		return
	}
	providers := s.store.Load(ctx)
	event := Synced{Providers: providers, Timestamp: s.now()}
	s.loadMu.Unlock()

	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	fns := make([]func(Synced), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	if inRun {
		s.inRun.Store(true)
		defer s.inRun.Store(false)
	}
	if trigger != TriggerTimer {
		log.Printf("Provider sync (%s): %d providers", trigger, len(providers))
	}
	for _, fn := range fns {
		fn(event)
	}
}
