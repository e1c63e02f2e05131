package envoy

import (
	"bytes"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-yaml"
)

// Document is a generated route configuration read back from disk. Routes are
// kept as raw JSON so documents from different runs compare byte for byte.
type Document struct {
	Routes    []json.RawMessage `json:"routes"`
	SNIRoutes []json.RawMessage `json:"sni_routes"`
}

// ParseDocument reads a JSON or YAML route configuration.
func ParseDocument(data []byte) (*Document, error) {
	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to convert document to JSON")
	}

	doc := &Document{}

	err = json.Unmarshal(jsonData, doc)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode document")
	}

	return doc, nil
}

// DiffRoutes computes the difference between current and desired routes.
// Returns routes to add (in desired but not in current) and routes to remove
// (in current but not in desired). Order within each result follows the input.
func DiffRoutes(current, desired []json.RawMessage) (toAdd, toRemove []json.RawMessage, err error) {
	currentKeys, err := canonicalKeys(current)
	if err != nil {
		return nil, nil, errors.Wrap(err, "current routes")
	}

	desiredKeys, err := canonicalKeys(desired)
	if err != nil {
		return nil, nil, errors.Wrap(err, "desired routes")
	}

	currentSet := make(map[string]int, len(currentKeys))
	for _, key := range currentKeys {
		currentSet[key]++
	}

	desiredSet := make(map[string]int, len(desiredKeys))
	for _, key := range desiredKeys {
		desiredSet[key]++
	}

	// Find routes to add (in desired but not in current)
	for idx, key := range desiredKeys {
		if currentSet[key] > 0 {
			currentSet[key]--

			continue
		}

		toAdd = append(toAdd, desired[idx])
	}

	// Find routes to remove (in current but not in desired)
	for idx, key := range currentKeys {
		if desiredSet[key] > 0 {
			desiredSet[key]--

			continue
		}

		toRemove = append(toRemove, current[idx])
	}

	return toAdd, toRemove, nil
}

// SameOrder reports whether two route lists are identical including order.
// Order is observable because the data plane picks the first matching route.
func SameOrder(current, desired []json.RawMessage) (bool, error) {
	if len(current) != len(desired) {
		return false, nil
	}

	currentKeys, err := canonicalKeys(current)
	if err != nil {
		return false, err
	}

	desiredKeys, err := canonicalKeys(desired)
	if err != nil {
		return false, err
	}

	for idx := range currentKeys {
		if currentKeys[idx] != desiredKeys[idx] {
			return false, nil
		}
	}

	return true, nil
}

func canonicalKeys(routes []json.RawMessage) ([]string, error) {
	keys := make([]string, 0, len(routes))

	for idx, route := range routes {
		var buf bytes.Buffer

		err := json.Compact(&buf, route)
		if err != nil {
			return nil, errors.Wrapf(err, "route %d is not valid JSON", idx)
		}

		keys = append(keys, buf.String())
	}

	return keys, nil
}
