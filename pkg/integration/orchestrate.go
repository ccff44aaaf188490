// integration/orchestrate.go
package integration

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Task is one branch of an orchestration fan-out.
type Task func(ctx context.Context) (any, error)

// Gather runs all tasks concurrently and merges their results under the
// task's key. The first failing branch cancels the rest and fails the
// whole call; no partial result is ever returned.
func Gather(ctx context.Context, tasks map[string]Task) (map[string]any, error) {
	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	out := make(map[string]any, len(tasks))

	for key, task := range tasks {
		g.Go(func() error {
			v, err := task(gctx)
			if err != nil {
				return err
			}
			mu.Lock()
			out[key] = v
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
