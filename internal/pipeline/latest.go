package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
)

// Snapshot is the state held by Latest.
type Snapshot struct {
	Invocation  domain.Invocation    `json:"invocation"`
	Result      *domain.UpdateResult `json:"result,omitempty"`
	LastFailure string               `json:"last_failure,omitempty"`
	FailedAt    *time.Time           `json:"failed_at,omitempty"`
}

// Latest is a Sink that keeps the most recent accepted result in memory. A
// failure is recorded next to the last good result without replacing it.
type Latest struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewLatest creates an empty Latest sink.
func NewLatest() *Latest {
	return &Latest{}
}

func (l *Latest) Name() string { return "latest" }

func (l *Latest) Deliver(_ context.Context, inv domain.Invocation, result domain.UpdateResult) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.snap = Snapshot{Invocation: inv, Result: &result}
	return nil
}

func (l *Latest) ReportFailure(_ context.Context, _ domain.Invocation, err error) {
	now := domain.Now()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.snap.LastFailure = err.Error()
	l.snap.FailedAt = &now
}

// Snapshot returns a copy of the current state. Result is nil until the
// first successful delivery.
func (l *Latest) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snap
}
