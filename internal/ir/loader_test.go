package ir_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexfrei/routegen/internal/ir"
)

const sampleYAML = `
version: 1.4.0
ambassador_module:
  retry_policy:
    retry_on: 5xx
    num_retries: 2
ratelimit:
  domain: ambassador
  service: ratelimit:5000
groups:
  - group_id: api
    kind: IRHTTPMappingGroup
    prefix: /api/
    case_sensitive: false
    headers:
      - name: x-env
        value: prod
    add_request_headers:
      x-b: "1"
      x-a: 2
    mappings:
      - cluster:
          name: api-v1
        weight: 90
      - cluster:
          name: api-v2
        weight: 10
        timeout_ms: 500
  - group_id: legacy
    prefix: /legacy/
    host_redirect:
      service: new.example.com
`

func TestParse_YAML(t *testing.T) {
	t.Parallel()

	snapshot, err := ir.Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "1.4.0", snapshot.Version)
	require.NotNil(t, snapshot.Module)
	require.NotNil(t, snapshot.Module.RetryPolicy)

	retryOn, ok := snapshot.Module.RetryPolicy.Fields.Get("retry_on")
	require.True(t, ok)
	assert.JSONEq(t, `"5xx"`, string(retryOn))
	assert.Equal(t, &ir.RateLimitService{Domain: "ambassador", Service: "ratelimit:5000"}, snapshot.RateLimit)

	require.Len(t, snapshot.Groups, 2)

	api := snapshot.Groups[0]
	assert.Equal(t, "api", api.GroupID)
	assert.False(t, *api.CaseSensitive)
	assert.Equal(t, []ir.HeaderMatch{{Name: "x-env", Value: "prod"}}, api.Headers)
	assert.Equal(t, ir.HeaderMap{
		{Name: "x-b", Value: ir.HeaderValue{Value: "1"}},
		{Name: "x-a", Value: ir.HeaderValue{Value: "2"}},
	}, api.AddRequestHeaders)
	require.Len(t, api.Mappings, 2)
	assert.Equal(t, "api-v2", api.Mappings[1].Cluster.Name)
	assert.Equal(t, 500, *api.Mappings[1].TimeoutMS)

	legacy := snapshot.Groups[1]
	assert.True(t, legacy.IsRedirectOnly())
	assert.True(t, legacy.IsHTTPMappingGroup())
}

func TestParse_JSON(t *testing.T) {
	t.Parallel()

	snapshot, err := ir.Parse([]byte(`{
		"groups": [
			{"group_id": "g1", "prefix": "/", "mappings": [{"cluster": {"name": "c1"}}]}
		]
	}`))
	require.NoError(t, err)

	require.Len(t, snapshot.Groups, 1)
	assert.Equal(t, "c1", snapshot.Groups[0].Mappings[0].Cluster.Name)
}

func TestParse_Empty(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "   \n", "null"} {
		snapshot, err := ir.Parse([]byte(input))
		require.NoError(t, err)
		assert.Empty(t, snapshot.Groups)
	}
}

func TestParse_UnknownField(t *testing.T) {
	t.Parallel()

	_, err := ir.Parse([]byte(`
groups:
  - group_id: g1
    prefx: /typo
`))

	require.Error(t, err)
	assert.True(t, errors.Is(err, ir.ErrDecode))
}

func TestParse_PrebuiltPolicies(t *testing.T) {
	t.Parallel()

	snapshot, err := ir.Parse([]byte(`
groups:
  - group_id: g1
    prefix: /
    priority: 10
    cors:
      allow_methods: GET
      filter_enabled:
        default_value:
          numerator: 50
          denominator: HUNDRED
    retry_policy:
      retry_on: 5xx
      retry_host_predicate:
        - name: envoy.retry_host_predicates.previous_hosts
    mappings:
      - cluster:
          name: c1
`))
	require.NoError(t, err)
	require.Len(t, snapshot.Groups, 1)

	group := snapshot.Groups[0]
	assert.JSONEq(t, `10`, string(group.Priority))

	require.NotNil(t, group.CORS)

	_, ok := group.CORS.Fields.Get("filter_enabled")
	assert.True(t, ok)

	require.NotNil(t, group.RetryPolicy)

	predicate, ok := group.RetryPolicy.Fields.Get("retry_host_predicate")
	require.True(t, ok)
	assert.JSONEq(t, `[{"name": "envoy.retry_host_predicates.previous_hosts"}]`, string(predicate))
}

func TestParse_Version(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		version     string
		wantErr     bool
		unsupported bool
	}{
		{name: "absent", version: ""},
		{name: "lowest supported", version: "1.0.0"},
		{name: "highest supported major", version: "2.9.1"},
		{name: "too old", version: "0.9.0", wantErr: true, unsupported: true},
		{name: "too new", version: "3.0.0", wantErr: true, unsupported: true},
		{name: "not semver", version: "banana", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ir.CheckVersion(tt.version)

			if !tt.wantErr {
				require.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Equal(t, tt.unsupported, errors.Is(err, ir.ErrUnsupportedVersion))
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	snapshot, err := ir.Load(path)
	require.NoError(t, err)
	assert.Len(t, snapshot.Groups, 2)
}

func TestLoad_Missing(t *testing.T) {
	t.Parallel()

	_, err := ir.Load(filepath.Join(t.TempDir(), "missing.yaml"))

	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOrderedGroups(t *testing.T) {
	t.Parallel()

	snapshot := &ir.IR{Groups: []ir.Group{{GroupID: "z"}, {GroupID: "a"}, {GroupID: "m"}}}

	groups := snapshot.OrderedGroups()

	require.Len(t, groups, 3)
	assert.Equal(t, "z", groups[0].GroupID)
	assert.Equal(t, "a", groups[1].GroupID)
	assert.Equal(t, "m", groups[2].GroupID)
	assert.Same(t, &snapshot.Groups[1], groups[1])
}
