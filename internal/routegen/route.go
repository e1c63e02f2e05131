package routegen

import (
	"bytes"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/lexfrei/routegen/internal/envoy"
	"github.com/lexfrei/routegen/internal/ir"
)

// buildRoute assembles the route of one mapping. The group and mapping must
// already be validated.
func (p *pass) buildRoute(group *ir.Group, mapping *ir.Mapping) (envoy.Route, error) {
	match := buildMatch(group, mapping)

	if redirect := group.RouteHostRedirect(mapping); redirect != nil {
		return envoy.Route{
			Match: match,
			Action: &envoy.RedirectAction{
				HostRedirect: redirect.Service,
				PathRedirect: redirect.PathRedirect,
			},
		}, nil
	}

	action, err := p.buildRouteAction(group, mapping)
	if err != nil {
		return envoy.Route{}, err
	}

	return envoy.Route{
		Match:                   match,
		Action:                  action,
		PerFilterConfig:         buildPerFilterConfig(mapping),
		RequestHeadersToAdd:     BuildHeadersToAdd(group.AddRequestHeaders),
		ResponseHeadersToAdd:    BuildHeadersToAdd(group.AddResponseHeaders),
		RequestHeadersToRemove:  buildHeadersToRemove(group.RemoveRequestHeaders),
		ResponseHeadersToRemove: buildHeadersToRemove(group.RemoveResponseHeaders),
	}, nil
}

func (p *pass) buildRouteAction(group *ir.Group, mapping *ir.Mapping) (*envoy.RouteAction, error) {
	if mapping.Cluster == nil || mapping.Cluster.Name == "" {
		return nil, errors.Mark(
			errors.Newf("group %s: forward mapping has no cluster", group.GroupID),
			ir.ErrContractViolation,
		)
	}

	return &envoy.RouteAction{
		Priority:            bytes.Clone(group.Priority),
		Timeout:             envoy.FormatDuration(mapping.EffectiveTimeoutMS()),
		Cluster:             mapping.Cluster.Name,
		IdleTimeout:         optionalDuration(mapping.IdleTimeoutMS),
		PrefixRewrite:       optionalString(mapping.Rewrite),
		HostRewrite:         clone(mapping.HostRewrite),
		AutoHostRewrite:     clone(mapping.AutoHostRewrite),
		HashPolicy:          BuildHashPolicy(group.LoadBalancer),
		CORS:                p.cors(group),
		RetryPolicy:         resolve(group.RetryPolicy, p.moduleRetryPolicy()),
		RequestMirrorPolicy: p.mirrorPolicy(group),
		RateLimits:          p.rateLimits(group),
	}, nil
}

func buildMatch(group *ir.Group, mapping *ir.Mapping) envoy.Match {
	prefix, regex := pathMatch(group, group.RoutePrefix(mapping))

	return envoy.Match{
		Prefix:          prefix,
		Regex:           regex,
		CaseSensitive:   group.RouteCaseSensitive(mapping),
		RuntimeFraction: trafficFraction(mapping),
		Headers:         BuildHeaderMatchers(group.Headers),
	}
}

// pathMatch places the route prefix under the regex key when the group asks
// for regex matching, under the prefix key otherwise.
func pathMatch(group *ir.Group, path string) (prefix, regex *string) {
	if group.PrefixRegex {
		return nil, &path
	}

	return &path, nil
}

// trafficFraction is the share of matching traffic the mapping receives.
// Mappings with overrides are part of an explicit split and get a runtime key
// named after their cluster.
func trafficFraction(mapping *ir.Mapping) envoy.RuntimeFraction {
	fraction := envoy.NewRuntimeFraction(mapping.EffectiveWeight())

	if mapping.HasOverrides() && mapping.Cluster != nil {
		fraction.RuntimeKey = envoy.TrafficShiftKey(mapping.Cluster.Name)
	}

	return fraction
}

// cors resolves the CORS policy of a group and stamps a copy with the group ID.
func (p *pass) cors(group *ir.Group) *ir.CORS {
	policy := resolve(group.CORS, p.moduleCORS())
	if policy == nil {
		return nil
	}

	dup := policy.Dup()
	dup.SetID(group.GroupID)

	return dup
}

// mirrorPolicy mirrors to the first shadow of the group.
func (p *pass) mirrorPolicy(group *ir.Group) *envoy.MirrorPolicy {
	if len(group.Shadows) == 0 {
		return nil
	}

	if extra := len(group.Shadows) - 1; extra > 0 {
		p.notices.add(Notice{
			GroupID: group.GroupID,
			Reason:  NoticeShadow,
			Count:   extra,
			Detail:  "mirroring to " + group.Shadows[0].Cluster.Name + " only",
		})
	}

	shadow := group.Shadows[0]

	return &envoy.MirrorPolicy{
		Cluster:         shadow.Cluster.Name,
		RuntimeFraction: envoy.NewRuntimeFraction(shadow.EffectiveWeight()),
	}
}

func (p *pass) moduleCORS() *ir.CORS {
	if p.module == nil {
		return nil
	}

	return p.module.CORS
}

func (p *pass) moduleRetryPolicy() *ir.RetryPolicy {
	if p.module == nil {
		return nil
	}

	return p.module.RetryPolicy
}

func optionalDuration(ms *int) string {
	if ms == nil {
		return ""
	}

	return envoy.FormatDuration(*ms)
}

// optionalString treats an empty rewrite like an absent one.
func optionalString(value *string) string {
	if value == nil {
		return ""
	}

	return *value
}

// routeName identifies a route in logs and errors.
func routeName(group *ir.Group, index int) string {
	return group.GroupID + "/" + strconv.Itoa(index)
}
