package ir

import "encoding/json"

// KindHTTPMappingGroup is the only group kind the route generator consumes.
const KindHTTPMappingGroup = "IRHTTPMappingGroup"

// IR is one snapshot of the intermediate representation.
type IR struct {
	// Version is the snapshot schema version (semver). Empty means current.
	Version string `json:"version,omitempty"`

	// Module carries global defaults shared by every group.
	Module *Module `json:"ambassador_module,omitempty"`

	// RateLimit is the configured rate-limit service, nil when none.
	RateLimit *RateLimitService `json:"ratelimit,omitempty"`

	// Groups are already sorted by the upstream builder.
	Groups []Group `json:"groups,omitempty"`
}

// Module holds the global defaults a group falls back to.
type Module struct {
	CORS        *CORS        `json:"cors,omitempty"`
	RetryPolicy *RetryPolicy `json:"retry_policy,omitempty"`
}

// RateLimitService describes the rate-limit service the data plane talks to.
// The data plane filter supports a single domain.
type RateLimitService struct {
	Domain  string `json:"domain"`
	Service string `json:"service,omitempty"`
}

// Group is a named bundle of mappings sharing a prefix and host.
type Group struct {
	GroupID string `json:"group_id"`
	Kind    string `json:"kind,omitempty"`

	Prefix        string `json:"prefix,omitempty"`
	PrefixRegex   bool   `json:"prefix_regex,omitempty"`
	CaseSensitive *bool  `json:"case_sensitive,omitempty"`

	// Priority is any JSON scalar and is passed through as is.
	Priority json.RawMessage `json:"priority,omitempty"`

	Headers               []HeaderMatch `json:"headers,omitempty"`
	AddRequestHeaders     HeaderMap     `json:"add_request_headers,omitempty"`
	AddResponseHeaders    HeaderMap     `json:"add_response_headers,omitempty"`
	RemoveRequestHeaders  []string      `json:"remove_request_headers,omitempty"`
	RemoveResponseHeaders []string      `json:"remove_response_headers,omitempty"`

	HostRedirect *HostRedirect `json:"host_redirect,omitempty"`
	CORS         *CORS         `json:"cors,omitempty"`
	RetryPolicy  *RetryPolicy  `json:"retry_policy,omitempty"`
	Shadows      []Shadow      `json:"shadows,omitempty"`
	LoadBalancer *LoadBalancer `json:"load_balancer,omitempty"`

	// Labels maps a rate-limit domain to its label groups.
	Labels map[string][]RateLimitLabel `json:"labels,omitempty"`

	SNI        bool        `json:"sni,omitempty"`
	TLSContext *TLSContext `json:"tls_context,omitempty"`

	Mappings []Mapping `json:"mappings,omitempty"`
}

// IsHTTPMappingGroup reports whether the walker should build routes for g.
// An empty kind is treated as an HTTP mapping group.
func (g *Group) IsHTTPMappingGroup() bool {
	return g.Kind == "" || g.Kind == KindHTTPMappingGroup
}

// IsRedirectOnly reports whether g yields a single redirect route and no
// per-mapping routes.
func (g *Group) IsRedirectOnly() bool {
	return g.HostRedirect != nil && len(g.Mappings) == 0
}

// Mapping is one weighted routing target within a group. Every field except
// Cluster is an override of a group value or of a built-in default.
type Mapping struct {
	Cluster *Cluster `json:"cluster,omitempty"`

	Prefix          *string       `json:"prefix,omitempty"`
	CaseSensitive   *bool         `json:"case_sensitive,omitempty"`
	Weight          *int          `json:"weight,omitempty"`
	TimeoutMS       *int          `json:"timeout_ms,omitempty"`
	IdleTimeoutMS   *int          `json:"idle_timeout_ms,omitempty"`
	Rewrite         *string       `json:"rewrite,omitempty"`
	HostRewrite     *string       `json:"host_rewrite,omitempty"`
	AutoHostRewrite *bool         `json:"auto_host_rewrite,omitempty"`
	BypassAuth      *bool         `json:"bypass_auth,omitempty"`
	HostRedirect    *HostRedirect `json:"host_redirect,omitempty"`
}

// HasOverrides reports whether any field other than the cluster reference is
// set. A mapping with overrides is part of an explicit traffic split and gets
// a runtime key on its fraction.
func (m *Mapping) HasOverrides() bool {
	return m.Prefix != nil ||
		m.CaseSensitive != nil ||
		m.Weight != nil ||
		m.TimeoutMS != nil ||
		m.IdleTimeoutMS != nil ||
		m.Rewrite != nil ||
		m.HostRewrite != nil ||
		m.AutoHostRewrite != nil ||
		m.BypassAuth != nil ||
		m.HostRedirect != nil
}

// Cluster is the opaque reference to an upstream cluster. Only its stable
// name is consumed.
type Cluster struct {
	Name string `json:"name"`
}

// HeaderMatch is one header predicate on a group.
type HeaderMatch struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
	Regex bool   `json:"regex,omitempty"`
}

// HostRedirect sends matching requests to another host.
type HostRedirect struct {
	Service      string `json:"service"`
	PathRedirect string `json:"path_redirect,omitempty"`
}

// Shadow is a mirror target. Weight defaults to DefaultWeight.
type Shadow struct {
	Cluster *Cluster `json:"cluster,omitempty"`
	Weight  *int     `json:"weight,omitempty"`
}

// LoadBalancer configures the upstream load-balancing policy.
// At most one of Cookie, Header and SourceIP is honored.
type LoadBalancer struct {
	Policy   string  `json:"policy"`
	Cookie   *Cookie `json:"cookie,omitempty"`
	Header   *string `json:"header,omitempty"`
	SourceIP *bool   `json:"source_ip,omitempty"`
}

// Cookie is a hash-on-cookie load-balancer source.
type Cookie struct {
	Name string  `json:"name"`
	Path *string `json:"path,omitempty"`
	TTL  *string `json:"ttl,omitempty"`
}

// TLSContext is the TLS information of an SNI-qualified group.
type TLSContext struct {
	Hosts      []string       `json:"hosts,omitempty"`
	SecretInfo map[string]any `json:"secret_info,omitempty"`
}

// RateLimitLabel is one label group: a single name mapped to its entries.
// Entries are either strings or single-key objects and are interpreted by
// the rate-limit action builder.
type RateLimitLabel map[string][]any
