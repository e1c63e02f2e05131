package ir

import (
	"bytes"
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// CORSRuntimePrefix prefixes the runtime key that identifies a route's CORS
// policy. The group ID completes it.
const CORSRuntimePrefix = "routing.cors_enabled."

const corsFilterEnabled = "filter_enabled"

// Field is one member of an Object.
type Field struct {
	Key   string
	Value json.RawMessage
}

// Object is a pre-built JSON object carried through unchanged. Member order
// follows the snapshot document.
type Object []Field

// Get returns the raw value stored under key.
func (o Object) Get(key string) (json.RawMessage, bool) {
	for _, field := range o {
		if field.Key == key {
			return field.Value, true
		}
	}

	return nil, false
}

// With returns a copy of o with key set to value. An existing member keeps its
// position; a new one is appended.
func (o Object) With(key string, value json.RawMessage) Object {
	out := o.Dup()

	for i := range out {
		if out[i].Key == key {
			out[i].Value = value

			return out
		}
	}

	return append(out, Field{Key: key, Value: value})
}

// Dup returns a deep copy of o.
func (o Object) Dup() Object {
	if o == nil {
		return nil
	}

	out := make(Object, len(o))
	for i, field := range o {
		out[i] = Field{Key: field.Key, Value: bytes.Clone(field.Value)}
	}

	return out
}

// UnmarshalJSON reads a JSON object keeping its member order. Values are kept
// as raw JSON.
func (o *Object) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return errors.Wrap(err, "failed to read object")
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.Newf("expected an object, got %v", tok)
	}

	fields := Object{}

	for dec.More() {
		keyTok, keyErr := dec.Token()
		if keyErr != nil {
			return errors.Wrap(keyErr, "failed to read object key")
		}

		key, ok := keyTok.(string)
		if !ok {
			return errors.Newf("object key must be a string, got %v", keyTok)
		}

		var value json.RawMessage

		decodeErr := dec.Decode(&value)
		if decodeErr != nil {
			return errors.Wrapf(decodeErr, "member %q", key)
		}

		fields = append(fields, Field{Key: key, Value: value})
	}

	_, err = dec.Token()
	if err != nil {
		return errors.Wrap(err, "failed to close object")
	}

	*o = fields

	return nil
}

// MarshalJSON writes o as a JSON object in member order.
func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, field := range o {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(field.Key)
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode object key")
		}

		buf.Write(key)
		buf.WriteByte(':')

		if len(field.Value) == 0 {
			buf.WriteString("null")

			continue
		}

		buf.Write(field.Value)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// CORS is a pre-built CORS policy. It is shared by every route of a group
// (or by every group, when it comes from the module), so it must be
// duplicated before it is stamped with a route-specific ID.
type CORS struct {
	Fields Object

	id string
}

// ID returns the group ID c was stamped with, or "".
func (c *CORS) ID() string {
	return c.id
}

// Dup returns a deep copy of c.
func (c *CORS) Dup() *CORS {
	if c == nil {
		return nil
	}

	return &CORS{Fields: c.Fields.Dup(), id: c.id}
}

// SetID stamps c with the identifier of the group that owns it. The identity
// is written as the filter_enabled fraction, whose runtime key names the
// group; any filter_enabled value from the snapshot is replaced.
func (c *CORS) SetID(groupID string) {
	enabled, _ := json.Marshal(corsEnabled{ //nolint:errchkjson // plain struct
		DefaultValue: corsFraction{Numerator: 100, Denominator: "HUNDRED"},
		RuntimeKey:   CORSRuntimePrefix + groupID,
	})

	c.id = groupID
	c.Fields = c.Fields.With(corsFilterEnabled, enabled)
}

type corsEnabled struct {
	DefaultValue corsFraction `json:"default_value"`
	RuntimeKey   string       `json:"runtime_key"`
}

type corsFraction struct {
	Numerator   int    `json:"numerator"`
	Denominator string `json:"denominator"`
}

// UnmarshalJSON accepts any JSON object.
func (c *CORS) UnmarshalJSON(data []byte) error {
	return c.Fields.UnmarshalJSON(data)
}

// MarshalJSON writes the policy members in snapshot order.
func (c CORS) MarshalJSON() ([]byte, error) {
	return c.Fields.MarshalJSON()
}

// RetryPolicy is a pre-built retry policy, passed through unchanged.
type RetryPolicy struct {
	Fields Object
}

// UnmarshalJSON accepts any JSON object.
func (r *RetryPolicy) UnmarshalJSON(data []byte) error {
	return r.Fields.UnmarshalJSON(data)
}

// MarshalJSON writes the policy members in snapshot order.
func (r RetryPolicy) MarshalJSON() ([]byte, error) {
	return r.Fields.MarshalJSON()
}
