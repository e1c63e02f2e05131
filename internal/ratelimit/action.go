// Package ratelimit translates rate-limit label groups into data-plane
// rate-limit actions.
package ratelimit

import (
	"sort"

	"github.com/lexfrei/routegen/internal/envoy"
	"github.com/lexfrei/routegen/internal/ir"
)

// Well-known label entries that map to a data-plane action with no settings.
const (
	EntryRemoteAddress      = "remote_address"
	EntrySourceCluster      = "source_cluster"
	EntryDestinationCluster = "destination_cluster"
)

// Action is the result of translating one label group. Only valid actions
// are attached to a route.
type Action struct {
	Valid     bool
	RateLimit envoy.RateLimit
}

// ActionBuilder turns one label group into an Action.
type ActionBuilder interface {
	Build(label ir.RateLimitLabel) Action
}

// ActionBuilderFunc adapts a function to ActionBuilder.
type ActionBuilderFunc func(label ir.RateLimitLabel) Action

// Build calls f.
func (f ActionBuilderFunc) Build(label ir.RateLimitLabel) Action {
	return f(label)
}

// DefaultBuilder understands the label entry forms of the snapshot format:
//
//   - "remote_address", "source_cluster", "destination_cluster"
//   - any other string, used as a generic key
//   - {name: "value"}, a generic key with that value
//   - {name: {header: "x-h", omit_if_not_present: true}}, a request header
//
// Any other entry, or a label group with no entries, is invalid.
type DefaultBuilder struct{}

// Build translates label. Multiple names in one label group are processed in
// name order.
func (DefaultBuilder) Build(label ir.RateLimitLabel) Action {
	names := make([]string, 0, len(label))
	for name := range label {
		names = append(names, name)
	}

	sort.Strings(names)

	var actions []map[string]any

	for _, name := range names {
		for _, entry := range label[name] {
			action, ok := translateEntry(entry)
			if !ok {
				return Action{}
			}

			actions = append(actions, action)
		}
	}

	if len(actions) == 0 {
		return Action{}
	}

	return Action{
		Valid:     true,
		RateLimit: envoy.RateLimit{Actions: actions},
	}
}

func translateEntry(entry any) (map[string]any, bool) {
	switch typed := entry.(type) {
	case string:
		return translateString(typed)
	case map[string]any:
		return translateObject(typed)
	default:
		return nil, false
	}
}

func translateString(entry string) (map[string]any, bool) {
	switch entry {
	case "":
		return nil, false
	case EntryRemoteAddress, EntrySourceCluster, EntryDestinationCluster:
		return map[string]any{entry: map[string]any{}}, true
	default:
		return genericKey(entry), true
	}
}

func translateObject(entry map[string]any) (map[string]any, bool) {
	if len(entry) != 1 {
		return nil, false
	}

	for key, value := range entry {
		switch typed := value.(type) {
		case string:
			if typed == "" {
				return nil, false
			}

			return genericKey(typed), true
		case map[string]any:
			return requestHeader(key, typed)
		}
	}

	return nil, false
}

func genericKey(value string) map[string]any {
	return map[string]any{
		"generic_key": map[string]any{"descriptor_value": value},
	}
}

func requestHeader(descriptorKey string, options map[string]any) (map[string]any, bool) {
	header, ok := options["header"].(string)
	if !ok || header == "" {
		return nil, false
	}

	body := map[string]any{
		"header_name":    header,
		"descriptor_key": descriptorKey,
	}

	if omit, present := options["omit_if_not_present"]; present {
		omitBool, isBool := omit.(bool)
		if !isBool {
			return nil, false
		}

		body["skip_if_absent"] = omitBool
	}

	return map[string]any{"request_headers": body}, true
}
