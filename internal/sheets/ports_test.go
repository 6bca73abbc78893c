package sheets

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"spendlog/internal/amqp"
)

func TestRow(t *testing.T) {
	ev := &amqp.ChangeEvent{
		Type:      amqp.ExpenseCreated,
		ID:        42,
		Data:      json.RawMessage(`{"id":42,"title":"Lunch"}`),
		RequestID: "req-1",
		Timestamp: time.Date(2024, 1, 15, 12, 30, 0, 0, time.FixedZone("CET", 3600)),
	}

	row := Row(ev)
	assert.Len(t, row, len(Header))
	assert.Equal(t, []any{
		"2024-01-15T11:30:00Z",
		"expense.created",
		"expense",
		"created",
		"42",
		"req-1",
		`{"id":42,"title":"Lunch"}`,
	}, row)
}

func TestRow_Deletion(t *testing.T) {
	row := Row(&amqp.ChangeEvent{Type: amqp.CategoryDeleted, ID: 3, Timestamp: time.Unix(0, 0)})
	assert.Equal(t, "category", row[2])
	assert.Equal(t, "deleted", row[3])
	assert.Equal(t, "", row[6])
}
