package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"spendlog/internal/amqp"
	"spendlog/internal/log"
	"spendlog/internal/sheets"
)

const defaultAppendTimeout = 30 * time.Second

// ChangeLogWorker mirrors ledger change events into an append-only change log.
type ChangeLogWorker struct {
	writer        sheets.ChangeLogWriter
	appendTimeout time.Duration
	logger        *log.Logger

	processed atomic.Int64
	failed    atomic.Int64
}

// Stats summarizes what the worker has handled since it started.
type Stats struct {
	Processed int64
	Failed    int64
}

func NewChangeLogWorker(writer sheets.ChangeLogWriter) *ChangeLogWorker {
	return &ChangeLogWorker{
		writer:        writer,
		appendTimeout: defaultAppendTimeout,
		logger:        log.WithComponent(log.ComponentWorker),
	}
}

// HandleChange appends ev to the change log. It satisfies amqp.Handler; an
// error makes the broker redeliver the event.
func (w *ChangeLogWorker) HandleChange(ctx context.Context, ev *amqp.ChangeEvent) error {
	w.logger.InfoContext(ctx, "Processing change event",
		log.FieldOperation, string(ev.Type),
		log.FieldID, ev.ID,
		log.FieldRequestID, ev.RequestID)

	ctx, cancel := context.WithTimeout(ctx, w.appendTimeout)
	defer cancel()

	ref, err := w.writer.AppendChange(ctx, ev)
	if err != nil {
		w.failed.Add(1)
		return fmt.Errorf("append change to log: %w", err)
	}
	w.processed.Add(1)

	w.logger.InfoContext(ctx, "Change recorded",
		log.FieldOperation, string(ev.Type),
		log.FieldID, ev.ID,
		"row_ref", ref)
	return nil
}

func (w *ChangeLogWorker) Stats() Stats {
	return Stats{Processed: w.processed.Load(), Failed: w.failed.Load()}
}
