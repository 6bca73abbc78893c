package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"spendlog/internal/amqp"
	"spendlog/internal/core"
	"spendlog/internal/storage"

	"github.com/stretchr/testify/require"
)

// fixedNow is the clock used by every service under test.
var fixedNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func newTestStore(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*amqp.ChangeEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev *amqp.ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []amqp.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]amqp.EventType, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

type recordingEvents struct {
	observed map[string]int
	failed   int
}

func (r *recordingEvents) ObserveEvent(eventType string, err error) {
	if r.observed == nil {
		r.observed = make(map[string]int)
	}
	r.observed[eventType]++
	if err != nil {
		r.failed++
	}
}

func newExpenseService(store ExpenseStore, events *EventPublisher) *ExpenseService {
	s := NewExpenseService(store, events)
	s.now = func() time.Time { return fixedNow }
	return s
}

func newDashboardService(store DashboardStore) *DashboardService {
	s := NewDashboardService(store, nil, nil)
	s.now = func() time.Time { return fixedNow }
	return s
}

func validationFields(t *testing.T, err error) map[string][]string {
	t.Helper()
	var ve *core.ValidationError
	require.True(t, errors.As(err, &ve), "expected a validation error, got %v", err)
	return ve.Fields
}
