package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
	EventAll    EventType = "*"
)

// Tables clients may subscribe to.
const (
	TableChatMessages    = "chat_messages"
	TableConversations   = "conversations"
	TableUserPresence    = "user_presence"
	TableNotifications   = "notifications"
	TableBookings        = "bookings"
	TableCleanerProfiles = "cleaner_profiles"
)

var subscribable = []string{
	TableChatMessages,
	TableConversations,
	TableUserPresence,
	TableNotifications,
	TableBookings,
	TableCleanerProfiles,
}

var (
	ErrUnknownTable  = errors.New("table is not available for subscription")
	ErrUnknownEvent  = errors.New("event must be INSERT, UPDATE, DELETE or *")
	ErrInvalidFilter = errors.New("filter must look like column=eq.value")
)

// Change is one row-level change. Audience lists the users allowed to see
// the row; an empty audience means any authenticated user.
type Change struct {
	Table           string         `json:"table"`
	Type            EventType      `json:"type"`
	Record          map[string]any `json:"record,omitempty"`
	OldRecord       map[string]any `json:"old_record,omitempty"`
	CommitTimestamp time.Time      `json:"commit_timestamp"`
	Audience        []int64        `json:"audience,omitempty"`
}

// Publisher is what domain services depend on.
type Publisher interface {
	Publish(ctx context.Context, ch Change) error
}

// NewChange converts record (any json-serializable row) into a Change.
func NewChange(table string, typ EventType, record any, audience ...int64) Change {
	return Change{
		Table:           table,
		Type:            typ,
		Record:          toRecord(record),
		CommitTimestamp: time.Now().UTC(),
		Audience:        audience,
	}
}

func (c Change) WithOld(old any) Change {
	c.OldRecord = toRecord(old)
	return c
}

// VisibleTo applies the row-level policy.
func (c Change) VisibleTo(userID int64) bool {
	return len(c.Audience) == 0 || slices.Contains(c.Audience, userID)
}

// forClient strips server-only fields before the change leaves the process.
func (c Change) forClient() Change {
	c.Audience = nil
	return c
}

func toRecord(v any) map[string]any {
	if v == nil {
		return nil
	}
	if m, ok := v.(map[string]any); ok {
		return m
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}

// Topic selects changes by table, event and an optional filter.
type Topic struct {
	Table  string
	Event  EventType
	Filter *Filter
}

func ParseTopic(table, event, filter string) (Topic, error) {
	table = strings.TrimSpace(table)
	if !slices.Contains(subscribable, table) {
		return Topic{}, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}

	ev := EventType(strings.ToUpper(strings.TrimSpace(event)))
	if ev == "" {
		ev = EventAll
	}
	switch ev {
	case EventInsert, EventUpdate, EventDelete, EventAll:
	default:
		return Topic{}, ErrUnknownEvent
	}

	t := Topic{Table: table, Event: ev}
	if strings.TrimSpace(filter) != "" {
		f, err := ParseFilter(filter)
		if err != nil {
			return Topic{}, err
		}
		t.Filter = &f
	}
	return t, nil
}

func (t Topic) Matches(c Change) bool {
	if t.Table != c.Table {
		return false
	}
	if t.Event != EventAll && t.Event != c.Type {
		return false
	}
	if t.Filter == nil {
		return true
	}
	rec := c.Record
	if c.Type == EventDelete && rec == nil {
		rec = c.OldRecord
	}
	return t.Filter.Match(rec)
}

// Filter is a single equality predicate written as column=eq.value.
type Filter struct {
	Column string
	Value  string
}

func ParseFilter(raw string) (Filter, error) {
	column, rest, ok := strings.Cut(strings.TrimSpace(raw), "=")
	if !ok || column == "" {
		return Filter{}, ErrInvalidFilter
	}
	value, ok := strings.CutPrefix(rest, "eq.")
	if !ok || value == "" {
		return Filter{}, ErrInvalidFilter
	}
	return Filter{Column: column, Value: value}, nil
}

// Match compares the textual form of the column, so numeric ids decoded as
// float64 still match "eq.42".
func (f Filter) Match(record map[string]any) bool {
	v, ok := record[f.Column]
	if !ok || v == nil {
		return false
	}
	if n, isNum := v.(float64); isNum && n == float64(int64(n)) {
		return fmt.Sprint(int64(n)) == f.Value
	}
	return fmt.Sprint(v) == f.Value
}
