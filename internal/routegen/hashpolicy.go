package routegen

import (
	"github.com/lexfrei/routegen/internal/envoy"
	"github.com/lexfrei/routegen/internal/ir"
)

// Load-balancer policies that take a hash policy.
const (
	PolicyRingHash = "ring_hash"
	PolicyMaglev   = "maglev"
)

// BuildHashPolicy derives the consistent-hash key of a group's load balancer.
// Only ring_hash and maglev use one. When several sources are set the first
// of cookie, header and source IP wins.
func BuildHashPolicy(lb *ir.LoadBalancer) []envoy.HashPolicy {
	if lb == nil {
		return nil
	}

	if lb.Policy != PolicyRingHash && lb.Policy != PolicyMaglev {
		return nil
	}

	switch {
	case lb.Cookie != nil:
		return []envoy.HashPolicy{{
			Cookie: &envoy.CookieHash{
				Name: lb.Cookie.Name,
				Path: clone(lb.Cookie.Path),
				TTL:  clone(lb.Cookie.TTL),
			},
		}}
	case lb.Header != nil:
		return []envoy.HashPolicy{{
			Header: &envoy.HeaderHash{HeaderName: *lb.Header},
		}}
	case lb.SourceIP != nil:
		return []envoy.HashPolicy{{
			ConnectionProperties: &envoy.ConnectionPropertiesHash{SourceIP: *lb.SourceIP},
		}}
	}

	return nil
}
