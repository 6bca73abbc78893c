package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"spendlog/internal/amqp"
	ports "spendlog/internal/sheets"
)

var _ ports.ChangeLogWriter = (*Store)(nil)

// Store keeps change-log rows in memory. It backs the worker when no
// spreadsheet is configured and is used by tests.
type Store struct {
	mu   sync.Mutex
	rows [][]any
}

func New() *Store {
	return &Store{}
}

// AppendChange stores the rendered row and returns a synthetic row reference.
func (s *Store) AppendChange(_ context.Context, ev *amqp.ChangeEvent) (string, error) {
	if ev == nil {
		return "", errors.New("nil event")
	}
	row := ports.Row(ev)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns a copy of the stored rows in append order.
func (s *Store) Rows() [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]any, len(s.rows))
	copy(out, s.rows)
	return out
}
