package envoy

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/lexfrei/routegen/internal/ir"
)

const (
	// DenominatorHundred is the only fraction denominator this system emits.
	DenominatorHundred = "HUNDRED"

	// TrafficShiftKeyPrefix prefixes the runtime key of a split mapping.
	TrafficShiftKeyPrefix = "routing.traffic_shift."

	// ExtAuthzFilter is the authentication filter a mapping may bypass.
	ExtAuthzFilter = "envoy.ext_authz"
)

// FormatDuration renders milliseconds as "<seconds>.<3-digit-ms>s".
func FormatDuration(ms int) string {
	return fmt.Sprintf("%d.%03ds", ms/1000, ms%1000)
}

// TrafficShiftKey returns the runtime key that overrides the fraction of
// traffic sent to cluster.
func TrafficShiftKey(cluster string) string {
	return TrafficShiftKeyPrefix + cluster
}

// FractionalPercent is a numerator over a fixed denominator.
type FractionalPercent struct {
	Numerator   int    `json:"numerator"`
	Denominator string `json:"denominator"`
}

// RuntimeFraction is a weighted traffic fraction, optionally overridable at
// runtime through RuntimeKey.
type RuntimeFraction struct {
	DefaultValue FractionalPercent `json:"default_value"`
	RuntimeKey   string            `json:"runtime_key,omitempty"`
}

// NewRuntimeFraction returns weight percent with no runtime key.
func NewRuntimeFraction(weight int) RuntimeFraction {
	return RuntimeFraction{
		DefaultValue: FractionalPercent{
			Numerator:   weight,
			Denominator: DenominatorHundred,
		},
	}
}

// HeaderMatcher is one header predicate. Exactly one of ExactMatch and
// RegexMatch is set.
type HeaderMatcher struct {
	Name       string  `json:"name"`
	ExactMatch *string `json:"exact_match,omitempty"`
	RegexMatch *string `json:"regex_match,omitempty"`
}

// Match selects the requests a route applies to. Exactly one of Prefix and
// Regex is set.
type Match struct {
	Prefix          *string         `json:"prefix,omitempty"`
	Regex           *string         `json:"regex,omitempty"`
	CaseSensitive   bool            `json:"case_sensitive"`
	RuntimeFraction RuntimeFraction `json:"runtime_fraction"`
	Headers         []HeaderMatcher `json:"headers,omitempty"`
}

// HeaderValue is a header key and value.
type HeaderValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// HeaderValueOption is one header mutation.
type HeaderValueOption struct {
	Header HeaderValue `json:"header"`
	Append bool        `json:"append"`
}

// FilterOverride is a per-route override of an HTTP filter.
type FilterOverride struct {
	Disabled bool `json:"disabled"`
}

// PerFilterConfig maps filter names to their per-route overrides.
type PerFilterConfig map[string]FilterOverride

// CookieHash hashes on a cookie, generating it when TTL is set.
type CookieHash struct {
	Name string  `json:"name"`
	Path *string `json:"path,omitempty"`
	TTL  *string `json:"ttl,omitempty"`
}

// HeaderHash hashes on a request header.
type HeaderHash struct {
	HeaderName string `json:"header_name"`
}

// ConnectionPropertiesHash hashes on properties of the downstream connection.
type ConnectionPropertiesHash struct {
	SourceIP bool `json:"source_ip"`
}

// HashPolicy names the request attribute to hash on. Exactly one field is set.
type HashPolicy struct {
	Cookie               *CookieHash               `json:"cookie,omitempty"`
	Header               *HeaderHash               `json:"header,omitempty"`
	ConnectionProperties *ConnectionPropertiesHash `json:"connection_properties,omitempty"`
}

// MirrorPolicy sends a fraction of traffic to a shadow cluster.
type MirrorPolicy struct {
	Cluster         string          `json:"cluster"`
	RuntimeFraction RuntimeFraction `json:"runtime_fraction"`
}

// RateLimit is one set of rate-limit actions.
type RateLimit struct {
	Actions []map[string]any `json:"actions"`
}

// Action is either a *RouteAction or a *RedirectAction.
type Action interface {
	isAction()
}

// RouteAction forwards matching requests to a cluster.
type RouteAction struct {
	// Priority is passed through from the group and rendered as null when absent.
	Priority            json.RawMessage `json:"priority"`
	Timeout             string          `json:"timeout"`
	Cluster             string          `json:"cluster"`
	IdleTimeout         string          `json:"idle_timeout,omitempty"`
	PrefixRewrite       string          `json:"prefix_rewrite,omitempty"`
	HostRewrite         *string         `json:"host_rewrite,omitempty"`
	AutoHostRewrite     *bool           `json:"auto_host_rewrite,omitempty"`
	HashPolicy          []HashPolicy    `json:"hash_policy,omitempty"`
	CORS                *ir.CORS        `json:"cors,omitempty"`
	RetryPolicy         *ir.RetryPolicy `json:"retry_policy,omitempty"`
	RequestMirrorPolicy *MirrorPolicy   `json:"request_mirror_policy,omitempty"`
	RateLimits          []RateLimit     `json:"rate_limits,omitempty"`
}

func (*RouteAction) isAction() {}

// RedirectAction answers matching requests with a redirect.
type RedirectAction struct {
	HostRedirect string `json:"host_redirect"`
	PathRedirect string `json:"path_redirect,omitempty"`
}

func (*RedirectAction) isAction() {}

// Route is one route entry.
type Route struct {
	Match  Match
	Action Action

	PerFilterConfig         PerFilterConfig
	RequestHeadersToAdd     []HeaderValueOption
	ResponseHeadersToAdd    []HeaderValueOption
	RequestHeadersToRemove  []string
	ResponseHeadersToRemove []string
}

// Forward returns the route action when r forwards traffic.
func (r *Route) Forward() (*RouteAction, bool) {
	action, ok := r.Action.(*RouteAction)

	return action, ok
}

// Redirect returns the redirect action when r redirects traffic.
func (r *Route) Redirect() (*RedirectAction, bool) {
	action, ok := r.Action.(*RedirectAction)

	return action, ok
}

type wireRoute struct {
	Match                   Match               `json:"match"`
	PerFilterConfig         PerFilterConfig     `json:"per_filter_config,omitempty"`
	RequestHeadersToAdd     []HeaderValueOption `json:"request_headers_to_add,omitempty"`
	ResponseHeadersToAdd    []HeaderValueOption `json:"response_headers_to_add,omitempty"`
	RequestHeadersToRemove  []string            `json:"request_headers_to_remove,omitempty"`
	ResponseHeadersToRemove []string            `json:"response_headers_to_remove,omitempty"`
	Redirect                *RedirectAction     `json:"redirect,omitempty"`
	Route                   *RouteAction        `json:"route,omitempty"`
}

// MarshalJSON writes the route entry with "route" or "redirect" depending on
// the action.
func (r Route) MarshalJSON() ([]byte, error) {
	wire := wireRoute{
		Match:                   r.Match,
		PerFilterConfig:         r.PerFilterConfig,
		RequestHeadersToAdd:     r.RequestHeadersToAdd,
		ResponseHeadersToAdd:    r.ResponseHeadersToAdd,
		RequestHeadersToRemove:  r.RequestHeadersToRemove,
		ResponseHeadersToRemove: r.ResponseHeadersToRemove,
	}

	switch action := r.Action.(type) {
	case *RouteAction:
		wire.Route = action
	case *RedirectAction:
		wire.Redirect = action
	default:
		return nil, errors.AssertionFailedf("route has no action (%T)", r.Action)
	}

	data, err := json.Marshal(wire)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode route")
	}

	return data, nil
}
