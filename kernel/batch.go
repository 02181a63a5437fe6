package kernel

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tailored-agentic-units/router/observability"
)

// BatchItem pairs one batch input with its outcome.
type BatchItem struct {
	Index  int
	Input  string
	Result *Result
	Err    error
}

// InvokeBatch runs inputs concurrently, at most Config.Concurrency at a
// time. Artifacts go to per-run directories so concurrent runs never write
// the same path. Items are returned in input order; a failing input does not
// stop the others.
func (k *Kernel) InvokeBatch(ctx context.Context, inputs []string) []BatchItem {
	items := make([]BatchItem, len(inputs))
	begin := time.Now()

	var g errgroup.Group
	g.SetLimit(max(k.cfg.Concurrency, 1))

	for i, input := range inputs {
		items[i] = BatchItem{Index: i, Input: input}
		g.Go(func() error {
			items[i].Result, items[i].Err = k.invoke(ctx, k.batchGraph, input)
			return nil
		})
	}
	g.Wait()

	failed := 0
	for _, item := range items {
		if item.Err != nil {
			failed++
		}
	}

	observability.Emit(ctx, k.observer, EventBatchComplete, observability.LevelInfo, "kernel.InvokeBatch", map[string]any{
		"inputs":   len(inputs),
		"failed":   failed,
		"duration": time.Since(begin),
	})

	return items
}
