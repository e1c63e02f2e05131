package routegen

import (
	"github.com/lexfrei/routegen/internal/envoy"
	"github.com/lexfrei/routegen/internal/ir"
)

// BuildHeaderMatchers converts header specs to match predicates, keeping
// their order. Returns nil for no headers so the match omits the field.
func BuildHeaderMatchers(headers []ir.HeaderMatch) []envoy.HeaderMatcher {
	if len(headers) == 0 {
		return nil
	}

	matchers := make([]envoy.HeaderMatcher, 0, len(headers))

	for _, header := range headers {
		value := header.Value
		matcher := envoy.HeaderMatcher{Name: header.Name}

		if header.Regex {
			matcher.RegexMatch = &value
		} else {
			matcher.ExactMatch = &value
		}

		matchers = append(matchers, matcher)
	}

	return matchers
}

// BuildHeadersToAdd converts add-header directives to header mutations.
// A directive that does not say otherwise appends.
func BuildHeadersToAdd(headers ir.HeaderMap) []envoy.HeaderValueOption {
	if len(headers) == 0 {
		return nil
	}

	options := make([]envoy.HeaderValueOption, 0, len(headers))

	for _, entry := range headers {
		appendHeader := true
		if entry.Value.Append != nil {
			appendHeader = *entry.Value.Append
		}

		options = append(options, envoy.HeaderValueOption{
			Header: envoy.HeaderValue{
				Key:   entry.Name,
				Value: entry.Value.Value,
			},
			Append: appendHeader,
		})
	}

	return options
}

// buildHeadersToRemove copies a header-removal list, nil when empty.
func buildHeadersToRemove(headers []string) []string {
	if len(headers) == 0 {
		return nil
	}

	out := make([]string, len(headers))
	copy(out, headers)

	return out
}

// buildPerFilterConfig returns the filter overrides of a mapping, nil when
// there are none.
func buildPerFilterConfig(mapping *ir.Mapping) envoy.PerFilterConfig {
	if mapping.BypassAuth == nil || !*mapping.BypassAuth {
		return nil
	}

	return envoy.PerFilterConfig{
		envoy.ExtAuthzFilter: {Disabled: true},
	}
}
