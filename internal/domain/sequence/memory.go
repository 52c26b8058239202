package sequence

import (
	"context"
	"sync"
)

// MemoryIssuer is an in-process issuer for tests and local development.
type MemoryIssuer struct {
	mu       sync.Mutex
	counters map[string]int64
}

// NewMemoryIssuer creates an empty in-memory issuer
func NewMemoryIssuer() *MemoryIssuer {
	return &MemoryIssuer{counters: make(map[string]int64)}
}

// Next increments and returns the named counter
func (m *MemoryIssuer) Next(ctx context.Context, name string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.counters[name]++
	return m.counters[name], nil
}
