package app

import (
	"context"
	"sync"

	"github.com/predmarkets/arbscan/internal/domain"
)

// LatestHolder keeps the most recent completed cycle in memory for the HTTP
// handlers. It is registered as an ordinary cycle sink, so it stays current
// without the server knowing anything about the scanner.
type LatestHolder struct {
	mu     sync.RWMutex
	result domain.CycleResult
	set    bool
}

// PublishCycle implements domain.CyclePublisher.
func (l *LatestHolder) PublishCycle(_ context.Context, result domain.CycleResult) error {
	l.mu.Lock()
	l.result = result
	l.set = true
	l.mu.Unlock()
	return nil
}

// Latest returns the most recent cycle, if any has completed.
func (l *LatestHolder) Latest() (domain.CycleResult, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.result, l.set
}
