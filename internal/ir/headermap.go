package ir

import (
	"bytes"
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// HeaderValue is the value of an add-header directive. In the snapshot it is
// either a bare scalar or an object with "value" and an optional "append".
type HeaderValue struct {
	Value string

	// Append is nil when the directive did not say; the data plane default
	// for that case is to append.
	Append *bool
}

// UnmarshalJSON accepts both the scalar and the structured form.
func (v *HeaderValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var structured struct {
			Value  json.RawMessage `json:"value"`
			Append *bool           `json:"append"`
		}

		err := json.Unmarshal(trimmed, &structured)
		if err != nil {
			return errors.Wrap(err, "failed to decode structured header value")
		}

		value, err := scalarString(structured.Value)
		if err != nil {
			return err
		}

		v.Value = value
		v.Append = structured.Append

		return nil
	}

	value, err := scalarString(trimmed)
	if err != nil {
		return err
	}

	v.Value = value
	v.Append = nil

	return nil
}

// MarshalJSON writes the scalar form when Append is unset.
func (v HeaderValue) MarshalJSON() ([]byte, error) {
	if v.Append == nil {
		return json.Marshal(v.Value) //nolint:wrapcheck // plain string
	}

	return json.Marshal(struct { //nolint:wrapcheck // plain struct
		Value  string `json:"value"`
		Append bool   `json:"append"`
	}{Value: v.Value, Append: *v.Append})
}

// scalarString renders a JSON string, number or boolean as header text.
func scalarString(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", errors.New("header value is missing")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var scalar any

	err := dec.Decode(&scalar)
	if err != nil {
		return "", errors.Wrap(err, "failed to decode header value")
	}

	switch typed := scalar.(type) {
	case string:
		return typed, nil
	case json.Number:
		return typed.String(), nil
	case bool:
		if typed {
			return "true", nil
		}

		return "false", nil
	default:
		return "", errors.Newf("header value must be a scalar, got %s", string(raw))
	}
}

// HeaderEntry is one add-header directive.
type HeaderEntry struct {
	Name  string
	Value HeaderValue
}

// HeaderMap is an ordered header-name to value mapping. Order follows the
// snapshot document, which keeps the generated mutation list stable.
type HeaderMap []HeaderEntry

// UnmarshalJSON reads a JSON object keeping its key order.
func (m *HeaderMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return errors.Wrap(err, "failed to read header map")
	}

	if tok == nil {
		*m = nil

		return nil
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.Newf("header map must be an object, got %v", tok)
	}

	var entries HeaderMap

	for dec.More() {
		keyTok, keyErr := dec.Token()
		if keyErr != nil {
			return errors.Wrap(keyErr, "failed to read header name")
		}

		name, ok := keyTok.(string)
		if !ok {
			return errors.Newf("header name must be a string, got %v", keyTok)
		}

		var value HeaderValue

		decodeErr := dec.Decode(&value)
		if decodeErr != nil {
			return errors.Wrapf(decodeErr, "header %q", name)
		}

		entries = append(entries, HeaderEntry{Name: name, Value: value})
	}

	_, err = dec.Token()
	if err != nil {
		return errors.Wrap(err, "failed to close header map")
	}

	*m = entries

	return nil
}

// MarshalJSON writes m as a JSON object in entry order.
func (m HeaderMap) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, entry := range m {
		if i > 0 {
			buf.WriteByte(',')
		}

		name, err := json.Marshal(entry.Name)
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode header name")
		}

		value, err := json.Marshal(entry.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to encode header %q", entry.Name)
		}

		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}
