// Package feed implements the remote change feed: every row insert or update
// the backend performs is published as an Event, and subscribers receive the
// events matching their Topic (table, event types, and an optional equality
// predicate on one column).
//
// A Broker fans events out in-process. A RedisRelay mirrors them across
// backend instances. The HTTP layer streams them to clients over WebSocket.
package feed

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// EventType is the kind of row change.
type EventType string

const (
	Insert EventType = "insert"
	Update EventType = "update"
)

// ParseEventType accepts "insert"/"update" in any case.
func ParseEventType(s string) (EventType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "insert":
		return Insert, nil
	case "update":
		return Update, nil
	}
	return "", fmt.Errorf("feed: unknown event type %q", s)
}

// Table names carried by events.
const (
	TableChatMessages = "chat_messages"
	TableOrders       = "orders"
	TableReviews      = "reviews"
	TableVisitors     = "visitors"
	TableContent      = "content_sections"
)

// Event is one row change. Row holds the full row after the change.
type Event struct {
	Table     string          `json:"table"`
	Type      EventType       `json:"type"`
	Partition string          `json:"partition,omitempty"`
	Row       json.RawMessage `json:"row"`
	At        time.Time       `json:"at"`

	// Origin identifies the instance that produced the event; set only
	// while the event travels through the relay.
	Origin string `json:"origin,omitempty"`
}

// NewEvent builds an event for row, which is encoded as JSON.
func NewEvent(table string, typ EventType, partition string, row any) (Event, error) {
	raw, err := json.Marshal(row)
	if err != nil {
		return Event{}, fmt.Errorf("feed: encode %s row: %w", table, err)
	}
	return Event{
		Table:     table,
		Type:      typ,
		Partition: partition,
		Row:       raw,
		At:        time.Now().UTC(),
	}, nil
}

// Decode unmarshals the event row into T.
func Decode[T any](ev Event) (T, error) {
	var out T
	if err := json.Unmarshal(ev.Row, &out); err != nil {
		return out, fmt.Errorf("feed: decode %s row: %w", ev.Table, err)
	}
	return out, nil
}
