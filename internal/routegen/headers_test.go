package routegen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lexfrei/routegen/internal/envoy"
	"github.com/lexfrei/routegen/internal/ir"
	"github.com/lexfrei/routegen/internal/routegen"
)

func TestBuildHeaderMatchers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		headers  []ir.HeaderMatch
		expected []envoy.HeaderMatcher
	}{
		{name: "none"},
		{
			name:     "exact",
			headers:  []ir.HeaderMatch{{Name: "x-env", Value: "prod"}},
			expected: []envoy.HeaderMatcher{{Name: "x-env", ExactMatch: ptr("prod")}},
		},
		{
			name:     "regex",
			headers:  []ir.HeaderMatch{{Name: "x-env", Value: "^pr.*$", Regex: true}},
			expected: []envoy.HeaderMatcher{{Name: "x-env", RegexMatch: ptr("^pr.*$")}},
		},
		{
			name:     "empty value matches the empty string",
			headers:  []ir.HeaderMatch{{Name: "x-env"}},
			expected: []envoy.HeaderMatcher{{Name: "x-env", ExactMatch: ptr("")}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, routegen.BuildHeaderMatchers(tt.headers))
		})
	}
}

func TestBuildHeadersToAdd(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		headers  ir.HeaderMap
		expected []envoy.HeaderValueOption
	}{
		{name: "none"},
		{
			name:    "append defaults to true",
			headers: ir.HeaderMap{{Name: "x-a", Value: ir.HeaderValue{Value: "1"}}},
			expected: []envoy.HeaderValueOption{
				{Header: envoy.HeaderValue{Key: "x-a", Value: "1"}, Append: true},
			},
		},
		{
			name: "explicit append keeps order",
			headers: ir.HeaderMap{
				{Name: "x-z", Value: ir.HeaderValue{Value: "1", Append: ptr(false)}},
				{Name: "x-a", Value: ir.HeaderValue{Value: "2", Append: ptr(true)}},
			},
			expected: []envoy.HeaderValueOption{
				{Header: envoy.HeaderValue{Key: "x-z", Value: "1"}, Append: false},
				{Header: envoy.HeaderValue{Key: "x-a", Value: "2"}, Append: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, routegen.BuildHeadersToAdd(tt.headers))
		})
	}
}
