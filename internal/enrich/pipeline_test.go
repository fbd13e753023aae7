package enrich

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
)

type draft struct {
	mu     sync.Mutex
	fields map[string]any
}

func newDraft() *draft {
	return &draft{fields: make(map[string]any)}
}

func setField(key string, val any) Step[draft] {
	return func(_ context.Context, d *draft) error {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.fields[key] = val
		return nil
	}
}

// copyField reads a field an earlier stage must already have written.
func copyField(from, to string) Step[draft] {
	return func(_ context.Context, d *draft) error {
		d.mu.Lock()
		defer d.mu.Unlock()
		v, ok := d.fields[from]
		if !ok {
			return errors.New("missing " + from)
		}
		d.fields[to] = v
		return nil
	}
}

func failStep(_ context.Context, _ *draft) error {
	return errors.New("mock step failed")
}

func TestPipeline_Apply(t *testing.T) {
	tests := []struct {
		name       string
		stages     []Stage[draft]
		expected   map[string]any
		wantFailed int
	}{
		{
			name:     "single step",
			stages:   []Stage[draft]{NewStage(setField("city", "Gurgaon"))},
			expected: map[string]any{"city": "Gurgaon"},
		},
		{
			name: "parallel steps in one stage",
			stages: []Stage[draft]{
				NewStage(setField("x", 1), setField("y", 2)),
			},
			expected: map[string]any{"x": 1, "y": 2},
		},
		{
			name: "later stage sees earlier stage",
			stages: []Stage[draft]{
				NewStage(setField("a", "first")),
				NewStage(copyField("a", "b")),
			},
			expected: map[string]any{"a": "first", "b": "first"},
		},
		{
			name: "failed step does not stop the item",
			stages: []Stage[draft]{
				NewStage(failStep),
				NewStage(setField("ok", true)),
			},
			expected:   map[string]any{"ok": true},
			wantFailed: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := newDraft()
			failed := NewPipeline(tt.stages...).Apply(context.Background(), item)

			if failed != tt.wantFailed {
				t.Errorf("failed = %d, want %d", failed, tt.wantFailed)
			}
			if !reflect.DeepEqual(item.fields, tt.expected) {
				t.Errorf("got %+v, expected %+v", item.fields, tt.expected)
			}
		})
	}
}

func TestPipeline_Process(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	in := make(chan *draft, 2)
	in <- newDraft()
	in <- newDraft()
	close(in)

	p := NewPipeline(NewStage(setField("seen", true)))
	var n int
	for item := range p.Process(ctx, in) {
		if item.fields["seen"] != true {
			t.Errorf("item not processed: %+v", item.fields)
		}
		n++
	}
	if n != 2 {
		t.Errorf("processed %d items, want 2", n)
	}
}
