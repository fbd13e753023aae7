package channel

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DefaultAddressCapacity bounds the full address length, fragment included.
const DefaultAddressCapacity = 8 * 1024

// stampKey is written next to every value so that two writes of the same
// payload still produce different addresses.
const stampKey = "t"

// Address is the shared-state channel: values are carried base64 encoded in
// the fragment of a navigable address, e.g.
//
//	https://app.example/home#sync=W3siaWQiOi...&t=1718000000000
//
// Set rewrites the fragment in place and does not notify watchers. Navigate
// models another context loading a different address and does notify them.
type Address struct {
	mu       sync.Mutex
	base     string
	fragment string
	capacity int
	now      func() time.Time

	watchers map[int]func(string)
	nextID   int
}

// NewAddress parses raw into an address channel. A capacity <= 0 selects
// DefaultAddressCapacity.
func NewAddress(raw string, capacity int) (*Address, error) {
	base, fragment, _ := strings.Cut(raw, "#")
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("parsing address %q: %w", raw, err)
	}
	if capacity <= 0 {
		capacity = DefaultAddressCapacity
	}
	return &Address{
		base:     base,
		fragment: fragment,
		capacity: capacity,
		now:      time.Now,
		watchers: make(map[int]func(string)),
	}, nil
}

// String returns the current address.
func (a *Address) String() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.compose(a.fragment)
}

func (a *Address) compose(fragment string) string {
	if fragment == "" {
		return a.base
	}
	return a.base + "#" + fragment
}

func (a *Address) Get(_ context.Context, key string) (string, bool, error) {
	a.mu.Lock()
	fragment := a.fragment
	a.mu.Unlock()

	values, err := url.ParseQuery(fragment)
	if err != nil {
		return "", false, fmt.Errorf("parsing address fragment: %w", err)
	}
	encoded := values.Get(key)
	if encoded == "" {
		return "", false, nil
	}
	decoded, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", false, fmt.Errorf("decoding %q from address: %w", key, err)
	}
	return string(decoded), true, nil
}

func (a *Address) Set(_ context.Context, key, value string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	values, err := url.ParseQuery(a.fragment)
	if err != nil {
		// A foreign fragment is replaced rather than merged into.
		values = url.Values{}
	}
	values.Set(key, base64.RawURLEncoding.EncodeToString([]byte(value)))
	values.Set(stampKey, strconv.FormatInt(a.now().UnixMilli(), 10))

	fragment := values.Encode()
	if n := len(a.compose(fragment)); n > a.capacity {
		return fmt.Errorf("address would be %d bytes, limit %d: %w", n, a.capacity, ErrCapacityExceeded)
	}
	a.fragment = fragment
	return nil
}

// Navigate replaces the whole address, as when another context hands this
// one a new link. Watchers fire once per key in the new fragment when the
// fragment changed.
func (a *Address) Navigate(raw string) error {
	base, fragment, _ := strings.Cut(raw, "#")
	if _, err := url.Parse(base); err != nil {
		return fmt.Errorf("parsing address %q: %w", raw, err)
	}

	a.mu.Lock()
	changed := fragment != a.fragment
	a.base = base
	a.fragment = fragment
	fns := make([]func(string), 0, len(a.watchers))
	for _, fn := range a.watchers {
		fns = append(fns, fn)
	}
	a.mu.Unlock()

	if !changed {
		return nil
	}
	for _, key := range fragmentKeys(fragment) {
		for _, fn := range fns {
			fn(key)
		}
	}
	return nil
}

func fragmentKeys(fragment string) []string {
	values, err := url.ParseQuery(fragment)
	if err != nil || len(values) == 0 {
		return []string{""}
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		if k != stampKey {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return []string{""}
	}
	sort.Strings(keys)
	return keys
}

func (a *Address) Watch(fn func(key string)) func() {
	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.watchers[id] = fn
	a.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			a.mu.Lock()
			delete(a.watchers, id)
			a.mu.Unlock()
		})
	}
}
