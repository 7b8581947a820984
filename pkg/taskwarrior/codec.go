package taskwarrior

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Wire keys of the attributes Task models explicitly. Everything else lands
// in Task.UnknownFields.
const (
	keyStatus      = "status"
	keyUUID        = "uuid"
	keyEntry       = "entry"
	keyDescription = "description"
	keyProject     = "project"
	keyTags        = "tags"
	keyAnnotations = "annotations"
	keyModified    = "modified"
)

var errMissing = errors.New("missing required field")

// DecodeError reports a task payload that is not valid JSON or carries an
// invalid status, uuid or timestamp.
type DecodeError struct {
	Field string // empty when the payload as a whole is malformed
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("failed to decode task json: %v", e.Err)
	}
	return fmt.Sprintf("failed to decode task json: field %q: %v", e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decode parses a single task object. Known attributes are validated
// strictly; unrecognized ones are kept as raw JSON.
func Decode(data []byte) (Task, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Task{}, &DecodeError{Err: err}
	}
	if fields == nil {
		return Task{}, &DecodeError{Err: errors.New("task is not a JSON object")}
	}

	var t Task
	seen := make(map[string]json.RawMessage, 8)
	take := func(key string, required bool, v any) error {
		raw, ok := fields[key]
		if !ok {
			if required {
				return &DecodeError{Field: key, Err: errMissing}
			}
			return nil
		}
		delete(fields, key)
		seen[key] = raw
		if err := json.Unmarshal(raw, v); err != nil {
			return &DecodeError{Field: key, Err: err}
		}
		return nil
	}

	var rawUUID string
	var tags []string
	steps := []struct {
		key      string
		required bool
		v        any
	}{
		{keyStatus, true, &t.Status},
		{keyUUID, true, &rawUUID},
		{keyEntry, true, &t.Entry},
		{keyDescription, false, &t.Description},
		{keyProject, false, &t.Project},
		{keyTags, false, &tags},
		{keyAnnotations, false, &t.Annotations},
		{keyModified, false, &t.Modified},
	}
	for _, s := range steps {
		if err := take(s.key, s.required, s.v); err != nil {
			return Task{}, err
		}
	}

	id, err := parseCanonicalUUID(rawUUID)
	if err != nil {
		return Task{}, &DecodeError{Field: keyUUID, Err: err}
	}
	t.UUID = id

	t.Tags = make(TagSet, len(tags))
	for _, tag := range tags {
		t.Tags[tag] = struct{}{}
	}

	for _, key := range []string{keyDescription, keyProject, keyTags, keyAnnotations} {
		if raw, ok := seen[key]; ok && t.isEmpty(key) {
			if t.emptyFields == nil {
				t.emptyFields = make(map[string]json.RawMessage)
			}
			t.emptyFields[key] = raw
		}
	}

	if len(fields) > 0 {
		t.UnknownFields = fields
	}
	return t, nil
}

// parseCanonicalUUID accepts only the 36 character hyphenated form;
// uuid.Parse alone would also take urn:uuid:, braced and unhyphenated ids.
func parseCanonicalUUID(s string) (uuid.UUID, error) {
	if len(s) != 36 {
		return uuid.Nil, fmt.Errorf("invalid uuid %q: not in canonical form", s)
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid uuid %q: %w", s, err)
	}
	return id, nil
}

// Encode renders t as a single-line JSON object with sorted keys. Optional
// attributes that are empty are left out unless the decoded payload carried
// them that way (an empty string or array, or null), in which case the
// original value is written back. A decoded task therefore re-encodes to
// the same set of attributes it arrived with.
func Encode(t Task) ([]byte, error) {
	out := make(map[string]json.RawMessage, len(t.UnknownFields)+8)
	for k, v := range t.UnknownFields {
		out[k] = v
	}

	set := func(key string, v any) error {
		b, err := marshal(v)
		if err != nil {
			return fmt.Errorf("encode task %s: field %q: %w", t.UUID, key, err)
		}
		out[key] = b
		return nil
	}

	if err := set(keyStatus, t.Status); err != nil {
		return nil, err
	}
	if err := set(keyUUID, t.UUID.String()); err != nil {
		return nil, err
	}
	if err := set(keyEntry, t.Entry); err != nil {
		return nil, err
	}
	if t.Description != "" {
		if err := set(keyDescription, t.Description); err != nil {
			return nil, err
		}
	}
	if t.Project != nil {
		if err := set(keyProject, *t.Project); err != nil {
			return nil, err
		}
	}
	if len(t.Tags) > 0 {
		if err := set(keyTags, t.SortedTags()); err != nil {
			return nil, err
		}
	}
	if len(t.Annotations) > 0 {
		if err := set(keyAnnotations, t.Annotations); err != nil {
			return nil, err
		}
	}
	for key, raw := range t.emptyFields {
		if t.isEmpty(key) {
			out[key] = raw
		}
	}
	if !t.Modified.IsZero() {
		if err := set(keyModified, t.Modified); err != nil {
			return nil, err
		}
	}

	b, err := marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode task %s: %w", t.UUID, err)
	}
	return b, nil
}

// isEmpty reports whether the optional attribute key holds no value.
func (t *Task) isEmpty(key string) bool {
	switch key {
	case keyDescription:
		return t.Description == ""
	case keyProject:
		return t.Project == nil
	case keyTags:
		return len(t.Tags) == 0
	case keyAnnotations:
		return len(t.Annotations) == 0
	}
	return false
}

// marshal is json.Marshal without HTML escaping; Taskwarrior never renders
// this output in a browser and descriptions commonly contain '&' or '<'.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// MarshalJSON implements the json.Marshaler interface for Task.
func (t Task) MarshalJSON() ([]byte, error) {
	return Encode(t)
}

// UnmarshalJSON implements the json.Unmarshaler interface for Task.
func (t *Task) UnmarshalJSON(b []byte) error {
	decoded, err := Decode(b)
	if err != nil {
		return err
	}
	*t = decoded
	return nil
}
