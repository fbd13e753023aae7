// Package enrich fills in and normalizes provider records before they are
// added to the directory.
package enrich

import "context"

// Step mutates item in place. Steps sharing a stage run concurrently on the
// same item and must write disjoint fields.
type Step[T any] func(ctx context.Context, item *T) error

// Stage is a set of steps run together; the next stage starts once all of
// them have returned.
type Stage[T any] struct {
	steps []Step[T]
}

func NewStage[T any](steps ...Step[T]) Stage[T] {
	return Stage[T]{steps: steps}
}
