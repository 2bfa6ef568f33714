package ops

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// DefaultWorkers bounds concurrent document fetches.
const DefaultWorkers = 4

// FetchFunc retrieves one document.
type FetchFunc func(ctx context.Context, path string) ([]byte, error)

// FetchAll fetches every path on a bounded worker pool. Results come back in
// the order of paths. The first failure cancels the remaining fetches and all
// failures are joined into the returned error.
func FetchAll(ctx context.Context, paths []string, workers int, fetch FetchFunc, onProgress func(completed, total int)) ([][]byte, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	if workers < 1 {
		workers = DefaultWorkers
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create fetch pool: %w", err)
	}
	defer pool.Release()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([][]byte, len(paths))
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		errs      []error
		completed int
	)

	for i, p := range paths {
		i, p := i, p
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			data, err := fetch(ctx, p)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", p, err))
				cancel()
				return
			}
			results[i] = data
			completed++
			if onProgress != nil {
				onProgress(completed, len(paths))
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			errs = append(errs, fmt.Errorf("submit %s: %w", p, submitErr))
			mu.Unlock()
			cancel()
			break
		}
	}
	wg.Wait()

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if err := ctx.Err(); err != nil && completed < len(paths) {
		return nil, err
	}
	return results, nil
}
