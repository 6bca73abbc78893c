package sheets

import (
	"context"
	"strconv"
	"time"

	"spendlog/internal/amqp"
)

// Header is the first row of a change-log sheet.
var Header = []any{"Timestamp", "Type", "Entity", "Action", "ID", "Request ID", "Data"}

// Ports for outbound adapters.
type (
	// ChangeLogWriter appends one row per ledger change.
	ChangeLogWriter interface {
		AppendChange(ctx context.Context, ev *amqp.ChangeEvent) (rowRef string, err error)
	}
)

// Row renders ev as the cells of a change-log row, in Header order.
func Row(ev *amqp.ChangeEvent) []any {
	data := ""
	if len(ev.Data) > 0 {
		data = string(ev.Data)
	}
	return []any{
		ev.Timestamp.UTC().Format(time.RFC3339),
		string(ev.Type),
		ev.Type.Entity(),
		ev.Type.Action(),
		strconv.FormatInt(ev.ID, 10),
		ev.RequestID,
		data,
	}
}
