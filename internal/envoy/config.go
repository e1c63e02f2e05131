package envoy

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-yaml"
)

// Output formats understood by Encode.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// SNIInfo is the listener metadata of an SNI-qualified route.
type SNIInfo struct {
	Hosts      []string       `json:"hosts"`
	SecretInfo map[string]any `json:"secret_info"`
}

// SNIRoute is a route that is selected by TLS server name as well as by its
// match. It is consumed by the listener configuration, not the route table.
type SNIRoute struct {
	Route Route   `json:"route"`
	Info  SNIInfo `json:"info"`
}

// Config accumulates the routes of one generation pass. A route is in
// exactly one of Routes and SNIRoutes.
type Config struct {
	Routes    []Route    `json:"routes"`
	SNIRoutes []SNIRoute `json:"sni_routes"`
}

// NewConfig returns an empty accumulator.
func NewConfig() *Config {
	return &Config{
		Routes:    []Route{},
		SNIRoutes: []SNIRoute{},
	}
}

// Encode writes cfg to w as indented JSON or as YAML.
func Encode(w io.Writer, cfg *Config, format string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode route configuration")
	}

	switch format {
	case FormatJSON, "":
		data = append(data, '\n')
	case FormatYAML:
		data, err = yaml.JSONToYAML(data)
		if err != nil {
			return errors.Wrap(err, "failed to convert route configuration to YAML")
		}
	default:
		return errors.Newf("unsupported output format %q", format)
	}

	_, err = io.Copy(w, bytes.NewReader(data))
	if err != nil {
		return errors.Wrap(err, "failed to write route configuration")
	}

	return nil
}
