package feed

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrBadTopic is returned by ParseTopic for unusable subscription requests.
var ErrBadTopic = errors.New("feed: invalid topic")

// Filter is an equality predicate on one column of the row.
type Filter struct {
	Column string `json:"column"`
	Value  string `json:"value"`
}

// Topic selects the events a subscriber wants. An empty Types slice means
// every event type. A nil Filter matches every row.
type Topic struct {
	Table  string      `json:"table"`
	Types  []EventType `json:"types,omitempty"`
	Filter *Filter     `json:"filter,omitempty"`
}

// ParseTopic builds a topic from string parameters as they arrive on the
// wire. event may be "", "*", "insert" or "update". column and value must
// be given together.
func ParseTopic(table, event, column, value string) (Topic, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return Topic{}, ErrBadTopic
	}
	t := Topic{Table: table}

	switch ev := strings.TrimSpace(event); ev {
	case "", "*":
	default:
		typ, err := ParseEventType(ev)
		if err != nil {
			return Topic{}, ErrBadTopic
		}
		t.Types = []EventType{typ}
	}

	column = strings.TrimSpace(column)
	switch {
	case column == "" && value == "":
	case column == "":
		return Topic{}, ErrBadTopic
	default:
		t.Filter = &Filter{Column: column, Value: value}
	}
	return t, nil
}

// Matches reports whether ev belongs to the topic.
func (t Topic) Matches(ev Event) bool {
	if ev.Table != t.Table {
		return false
	}
	if len(t.Types) > 0 {
		ok := false
		for _, typ := range t.Types {
			if typ == ev.Type {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if t.Filter == nil {
		return true
	}
	return t.Filter.matches(ev.Row)
}

func (f *Filter) matches(row json.RawMessage) bool {
	var cols map[string]json.RawMessage
	if err := json.Unmarshal(row, &cols); err != nil {
		return false
	}
	raw, ok := cols[f.Column]
	if !ok {
		return false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s == f.Value
	}
	// numbers and booleans compare by their JSON text
	return string(raw) == f.Value
}
