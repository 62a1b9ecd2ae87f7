// internal/common/database/health.go
package database

import (
	"context"
	"sync"
	"time"
)

// Pinger is a dependency the readiness probe can check.
type Pinger interface {
	Name() string
	Ping(ctx context.Context) error
}

// CheckAll pings every dependency concurrently and returns the failures keyed by name.
func CheckAll(ctx context.Context, timeout time.Duration, deps ...Pinger) map[string]error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		failures = make(map[string]error)
	)
	for _, dep := range deps {
		if dep == nil {
			continue
		}
		wg.Add(1)
		go func(dep Pinger) {
			defer wg.Done()
			if err := dep.Ping(ctx); err != nil {
				mu.Lock()
				failures[dep.Name()] = err
				mu.Unlock()
			}
		}(dep)
	}
	wg.Wait()
	return failures
}
