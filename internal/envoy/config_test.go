package envoy_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexfrei/routegen/internal/envoy"
)

func sampleConfig() *envoy.Config {
	cfg := envoy.NewConfig()
	cfg.Routes = append(cfg.Routes, envoy.Route{
		Match:  envoy.Match{Prefix: ptr("/foo"), CaseSensitive: true, RuntimeFraction: envoy.NewRuntimeFraction(100)},
		Action: &envoy.RouteAction{Timeout: "3.000s", Cluster: "c1"},
	})
	cfg.SNIRoutes = append(cfg.SNIRoutes, envoy.SNIRoute{
		Route: envoy.Route{
			Match:  envoy.Match{Prefix: ptr("/"), CaseSensitive: true, RuntimeFraction: envoy.NewRuntimeFraction(100)},
			Action: &envoy.RedirectAction{HostRedirect: "example.com"},
		},
		Info: envoy.SNIInfo{Hosts: []string{"tls.example.com"}, SecretInfo: map[string]any{}},
	})

	return cfg
}

func TestEncode_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, envoy.Encode(&buf, sampleConfig(), envoy.FormatJSON))

	assert.JSONEq(t, `{
		"routes": [{
			"match": {"prefix": "/foo", "case_sensitive": true, "runtime_fraction": {"default_value": {"numerator": 100, "denominator": "HUNDRED"}}},
			"route": {"priority": null, "timeout": "3.000s", "cluster": "c1"}
		}],
		"sni_routes": [{
			"route": {
				"match": {"prefix": "/", "case_sensitive": true, "runtime_fraction": {"default_value": {"numerator": 100, "denominator": "HUNDRED"}}},
				"redirect": {"host_redirect": "example.com"}
			},
			"info": {"hosts": ["tls.example.com"], "secret_info": {}}
		}]
	}`, buf.String())
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("}\n")))
}

func TestEncode_YAMLRoundTrip(t *testing.T) {
	t.Parallel()

	var jsonBuf, yamlBuf bytes.Buffer

	require.NoError(t, envoy.Encode(&jsonBuf, sampleConfig(), envoy.FormatJSON))
	require.NoError(t, envoy.Encode(&yamlBuf, sampleConfig(), envoy.FormatYAML))

	assert.Contains(t, yamlBuf.String(), "cluster: c1")

	fromJSON, err := envoy.ParseDocument(jsonBuf.Bytes())
	require.NoError(t, err)

	fromYAML, err := envoy.ParseDocument(yamlBuf.Bytes())
	require.NoError(t, err)

	require.Len(t, fromYAML.Routes, len(fromJSON.Routes))
	require.Len(t, fromYAML.SNIRoutes, len(fromJSON.SNIRoutes))

	for i := range fromJSON.Routes {
		assert.JSONEq(t, string(fromJSON.Routes[i]), string(fromYAML.Routes[i]))
	}

	for i := range fromJSON.SNIRoutes {
		assert.JSONEq(t, string(fromJSON.SNIRoutes[i]), string(fromYAML.SNIRoutes[i]))
	}
}

func TestEncode_UnknownFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	err := envoy.Encode(&buf, sampleConfig(), "toml")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "toml")
	assert.Empty(t, buf.String())
}

func TestNewConfig_EmptyLists(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, envoy.Encode(&buf, envoy.NewConfig(), envoy.FormatJSON))

	assert.JSONEq(t, `{"routes": [], "sni_routes": []}`, buf.String())
}
