package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendlog/internal/amqp"
	"spendlog/internal/sheets/memory"
)

type failingWriter struct{ err error }

func (f failingWriter) AppendChange(context.Context, *amqp.ChangeEvent) (string, error) {
	return "", f.err
}

type deadlineWriter struct{ hasDeadline bool }

func (d *deadlineWriter) AppendChange(ctx context.Context, _ *amqp.ChangeEvent) (string, error) {
	_, d.hasDeadline = ctx.Deadline()
	return "ok", nil
}

func TestChangeLogWorker_HandleChange(t *testing.T) {
	store := memory.New()
	w := NewChangeLogWorker(store)

	var handler amqp.Handler = w.HandleChange
	ev := &amqp.ChangeEvent{Type: amqp.CategoryCreated, ID: 5, RequestID: "r1", Timestamp: time.Now()}
	require.NoError(t, handler(context.Background(), ev))

	rows := store.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "category.created", rows[0][1])
	assert.Equal(t, "5", rows[0][4])
	assert.Equal(t, Stats{Processed: 1}, w.Stats())
}

func TestChangeLogWorker_HandleChangeError(t *testing.T) {
	boom := errors.New("quota exceeded")
	w := NewChangeLogWorker(failingWriter{err: boom})

	err := w.HandleChange(context.Background(), &amqp.ChangeEvent{Type: amqp.ExpenseDeleted, ID: 9})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, Stats{Failed: 1}, w.Stats())
}

func TestChangeLogWorker_AppliesTimeout(t *testing.T) {
	dw := &deadlineWriter{}
	w := NewChangeLogWorker(dw)

	require.NoError(t, w.HandleChange(context.Background(), &amqp.ChangeEvent{Type: amqp.ExpenseCreated, ID: 1}))
	assert.True(t, dw.hasDeadline)
}
