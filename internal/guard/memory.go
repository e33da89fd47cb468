package guard

import (
	"context"
	"fmt"
	"sync"

	"carrental-backend/internal/domain"
)

// MemoryGuard serves a single server process when Redis is not configured.
type MemoryGuard struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{held: make(map[string]struct{})}
}

func (g *MemoryGuard) Acquire(_ context.Context, key string) (Lease, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.held[key]; ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSubmissionInFlight, key)
	}
	g.held[key] = struct{}{}
	return &memoryLease{guard: g, key: key}, nil
}

type memoryLease struct {
	guard *MemoryGuard
	key   string
	once  sync.Once
}

func (l *memoryLease) Release(context.Context) error {
	l.once.Do(func() {
		l.guard.mu.Lock()
		delete(l.guard.held, l.key)
		l.guard.mu.Unlock()
	})
	return nil
}
