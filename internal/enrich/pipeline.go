package enrich

import (
	"context"
	"log"
	"sync"
)

// Pipeline runs stages over items. Steps within a stage run in parallel on
// the same item; stages run one after another. A failing step is logged and
// the item carries on.
type Pipeline[T any] struct {
	stages []Stage[T]
}

// NewPipeline returns a Pipeline applying stages in order.
func NewPipeline[T any](stages ...Stage[T]) *Pipeline[T] {
	return &Pipeline[T]{stages: stages}
}

// Apply runs every stage on item and returns the number of failed steps.
func (p *Pipeline[T]) Apply(ctx context.Context, item *T) int {
	var failed int
	var mu sync.Mutex
	for _, stage := range p.stages {
		var wg sync.WaitGroup
		for _, step := range stage.steps {
			wg.Add(1)
			go func(step Step[T]) {
				defer wg.Done()
				if err := step(ctx, item); err != nil {
					log.Printf("Step failed: %v", err)
					mu.Lock()
					failed++
					mu.Unlock()
				}
			}(step)
		}
		wg.Wait()
	}
	return failed
}

// Process applies the pipeline to every item from in and emits it on the
// returned channel, which is closed once in is drained or ctx is done.
func (p *Pipeline[T]) Process(ctx context.Context, in <-chan *T) <-chan *T {
	out := make(chan *T)
	go func() {
		defer close(out)
		for item := range in {
			p.Apply(ctx, item)
			select {
			case out <- item:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
