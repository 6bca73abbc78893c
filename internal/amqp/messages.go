package amqp

import (
	"encoding/json"
	"time"
)

// EventType names a change to the ledger.
type EventType string

const (
	ExpenseCreated  EventType = "expense.created"
	ExpenseUpdated  EventType = "expense.updated"
	ExpenseDeleted  EventType = "expense.deleted"
	CategoryCreated EventType = "category.created"
	CategoryUpdated EventType = "category.updated"
	CategoryDeleted EventType = "category.deleted"
)

// Entity returns the kind of record the event is about ("expense" or "category").
func (t EventType) Entity() string {
	for i := 0; i < len(t); i++ {
		if t[i] == '.' {
			return string(t[:i])
		}
	}
	return string(t)
}

// Action returns the verb part of the event type.
func (t EventType) Action() string {
	for i := 0; i < len(t); i++ {
		if t[i] == '.' {
			return string(t[i+1:])
		}
	}
	return ""
}

// ChangeEvent is published after every successful write. Data carries the
// record as returned by the API; it is empty for deletions.
type ChangeEvent struct {
	Type      EventType       `json:"type"`
	ID        int64           `json:"id"`
	Data      json.RawMessage `json:"data,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewChangeEvent builds an event for record id. data is marshaled as-is;
// pass nil for deletions.
func NewChangeEvent(t EventType, id int64, data any) (*ChangeEvent, error) {
	ev := &ChangeEvent{
		Type:      t,
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		ev.Data = raw
	}
	return ev, nil
}

// ToJSON converts the event to JSON bytes
func (e *ChangeEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ChangeEventFromJSON decodes an event and rejects ones without a type.
func ChangeEventFromJSON(data []byte) (*ChangeEvent, error) {
	var ev ChangeEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	if ev.Type == "" {
		return nil, errMissingType
	}
	return &ev, nil
}
