package taskwarrior

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Status is the state of a task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusDeleted   Status = "deleted"
	StatusCompleted Status = "completed"
	StatusWaiting   Status = "waiting"
	StatusRecurring Status = "recurring"
)

// Valid reports whether s is one of the statuses Taskwarrior knows.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusDeleted, StatusCompleted, StatusWaiting, StatusRecurring:
		return true
	default:
		return false
	}
}

func (s *Status) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if !Status(raw).Valid() {
		return fmt.Errorf("unknown status %q", raw)
	}
	*s = Status(raw)
	return nil
}

const taskwarriorTimeLayout = "20060102T150405Z" // YYYYMMDDTHHMMSSZ, 'Z' indicates UTC

// Timestamp is a UTC instant in Taskwarrior's compact wire format.
type Timestamp struct {
	time.Time
}

// NewTimestamp truncates t to whole seconds in UTC, the precision the wire format keeps.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC().Truncate(time.Second)}
}

// ParseTimestamp parses s strictly: it must be exactly the compact layout,
// without fractional seconds or any other decoration.
func ParseTimestamp(s string) (Timestamp, error) {
	t, err := time.Parse(taskwarriorTimeLayout, s)
	if err != nil {
		return Timestamp{}, fmt.Errorf("failed to parse Taskwarrior time string '%s': %w", s, err)
	}
	// time.Parse tolerates fractional seconds the layout does not ask for.
	if t.Format(taskwarriorTimeLayout) != s {
		return Timestamp{}, fmt.Errorf("failed to parse Taskwarrior time string '%s': not in %s form", s, taskwarriorTimeLayout)
	}
	return Timestamp{Time: t}, nil
}

func (ts Timestamp) String() string {
	return ts.Time.UTC().Format(taskwarriorTimeLayout)
}

// UnmarshalJSON implements the json.Unmarshaler interface for Timestamp.
func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*ts = parsed
	return nil
}

// MarshalJSON implements the json.Marshaler interface for Timestamp.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + ts.String() + `"`), nil
}

// Annotation is a timestamped note attached to a task.
type Annotation struct {
	Entry       Timestamp `json:"entry"`
	Description string    `json:"description"`
}

// MarshalJSON leaves out an entry the annotation never had.
func (a Annotation) MarshalJSON() ([]byte, error) {
	type wire struct {
		Entry       *Timestamp `json:"entry,omitempty"`
		Description string     `json:"description"`
	}
	w := wire{Description: a.Description}
	if !a.Entry.IsZero() {
		w.Entry = &a.Entry
	}
	return marshal(w)
}

// NewAnnotation stamps description with the current time.
func NewAnnotation(description string) Annotation {
	return Annotation{
		Entry:       NewTimestamp(time.Now()),
		Description: description,
	}
}

// TagSet holds the tags of a task. Order carries no meaning.
type TagSet map[string]struct{}

// Task is a Taskwarrior task as exchanged with hooks.
type Task struct {
	Status      Status
	UUID        uuid.UUID
	Entry       Timestamp
	Description string
	// Project is opaque here; Taskwarrior gives dots a hierarchical meaning.
	Project     *string
	Tags        TagSet
	Annotations []Annotation
	// Modified is the zero Timestamp when the payload had no modified field.
	Modified Timestamp

	// UnknownFields keeps every attribute not named above (UDAs, due, end,
	// urgency...) verbatim, so that re-encoding loses nothing.
	UnknownFields map[string]json.RawMessage

	// emptyFields holds optional attributes that arrived as "", [] or null.
	emptyFields map[string]json.RawMessage
}

// NewTask returns a pending task with a fresh uuid, created now.
func NewTask(description string) Task {
	now := NewTimestamp(time.Now())
	return Task{
		Status:      StatusPending,
		UUID:        uuid.New(),
		Entry:       now,
		Description: description,
		Tags:        TagSet{},
		Modified:    now,
	}
}

// HasTag is an exact membership test.
func (t *Task) HasTag(tag string) bool {
	_, ok := t.Tags[tag]
	return ok
}

func (t *Task) AddTag(tag string) {
	if t.Tags == nil {
		t.Tags = TagSet{}
	}
	t.Tags[tag] = struct{}{}
}

func (t *Task) RemoveTag(tag string) {
	delete(t.Tags, tag)
}

// SortedTags returns the tags in lexical order.
func (t *Task) SortedTags() []string {
	tags := make([]string, 0, len(t.Tags))
	for tag := range t.Tags {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags
}

// Clone returns a copy that shares no mutable state with t.
func (t Task) Clone() Task {
	c := t
	if t.Project != nil {
		p := *t.Project
		c.Project = &p
	}
	if t.Tags != nil {
		c.Tags = make(TagSet, len(t.Tags))
		for tag := range t.Tags {
			c.Tags[tag] = struct{}{}
		}
	}
	c.Annotations = slices.Clone(t.Annotations)
	if t.UnknownFields != nil {
		c.UnknownFields = make(map[string]json.RawMessage, len(t.UnknownFields))
		for k, v := range t.UnknownFields {
			c.UnknownFields[k] = slices.Clone(v)
		}
	}
	if t.emptyFields != nil {
		c.emptyFields = make(map[string]json.RawMessage, len(t.emptyFields))
		for k, v := range t.emptyFields {
			c.emptyFields[k] = slices.Clone(v)
		}
	}
	return c
}

func (t Task) String() string {
	b, err := Encode(t)
	if err != nil {
		return fmt.Sprintf("<invalid task %s: %v>", t.UUID, err)
	}
	return string(b)
}
