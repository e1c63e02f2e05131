package envoy_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexfrei/routegen/internal/envoy"
)

func raw(routes ...string) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(routes))
	for _, route := range routes {
		out = append(out, json.RawMessage(route))
	}

	return out
}

func TestDiffRoutes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		current  []json.RawMessage
		desired  []json.RawMessage
		toAdd    []json.RawMessage
		toRemove []json.RawMessage
	}{
		{
			name:    "identical",
			current: raw(`{"a":1}`, `{"b":2}`),
			desired: raw(`{"a":1}`, `{"b":2}`),
		},
		{
			name:    "whitespace is ignored",
			current: raw(`{"a": 1}`),
			desired: raw(`{"a":1}`),
		},
		{
			name:    "reorder only",
			current: raw(`{"a":1}`, `{"b":2}`),
			desired: raw(`{"b":2}`, `{"a":1}`),
		},
		{
			name:     "add and remove",
			current:  raw(`{"a":1}`, `{"b":2}`),
			desired:  raw(`{"b":2}`, `{"c":3}`),
			toAdd:    raw(`{"c":3}`),
			toRemove: raw(`{"a":1}`),
		},
		{
			name:    "duplicates count",
			current: raw(`{"a":1}`),
			desired: raw(`{"a":1}`, `{"a":1}`),
			toAdd:   raw(`{"a":1}`),
		},
		{
			name:     "empty desired",
			current:  raw(`{"a":1}`),
			toRemove: raw(`{"a":1}`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			toAdd, toRemove, err := envoy.DiffRoutes(tt.current, tt.desired)
			require.NoError(t, err)

			assert.Equal(t, tt.toAdd, toAdd)
			assert.Equal(t, tt.toRemove, toRemove)
		})
	}
}

func TestDiffRoutes_InvalidJSON(t *testing.T) {
	t.Parallel()

	_, _, err := envoy.DiffRoutes(raw(`{"a":`), nil)

	require.Error(t, err)
}

func TestSameOrder(t *testing.T) {
	t.Parallel()

	same, err := envoy.SameOrder(raw(`{"a":1}`, `{"b":2}`), raw(`{"a": 1}`, `{"b": 2}`))
	require.NoError(t, err)
	assert.True(t, same)

	same, err = envoy.SameOrder(raw(`{"a":1}`, `{"b":2}`), raw(`{"b":2}`, `{"a":1}`))
	require.NoError(t, err)
	assert.False(t, same)

	same, err = envoy.SameOrder(raw(`{"a":1}`), raw(`{"a":1}`, `{"a":1}`))
	require.NoError(t, err)
	assert.False(t, same)
}

func TestParseDocument(t *testing.T) {
	t.Parallel()

	doc, err := envoy.ParseDocument([]byte(`
routes:
  - match:
      prefix: /foo
    route:
      cluster: c1
sni_routes: []
`))
	require.NoError(t, err)

	require.Len(t, doc.Routes, 1)
	assert.Empty(t, doc.SNIRoutes)
	assert.JSONEq(t, `{"match": {"prefix": "/foo"}, "route": {"cluster": "c1"}}`, string(doc.Routes[0]))
}
