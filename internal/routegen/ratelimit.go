package routegen

import (
	"sort"
	"strings"

	"github.com/lexfrei/routegen/internal/envoy"
	"github.com/lexfrei/routegen/internal/ir"
)

// rateLimits translates the group's labels for the configured rate-limit
// domain into actions. Returns nil when no rate-limit service is configured,
// the group has no labels, or no action is valid.
func (p *pass) rateLimits(group *ir.Group) []envoy.RateLimit {
	if p.rateLimit == nil || group.Labels == nil {
		return nil
	}

	domain := p.rateLimit.Domain

	if foreign := foreignDomains(group.Labels, domain); len(foreign) > 0 {
		p.notices.add(Notice{
			GroupID: group.GroupID,
			Reason:  NoticeRateLimitDomain,
			Count:   len(foreign),
			Detail:  strings.Join(foreign, ","),
		})
	}

	var limits []envoy.RateLimit

	invalid := 0

	for _, label := range group.Labels[domain] {
		action := p.actions.Build(label)
		if !action.Valid {
			invalid++

			continue
		}

		limits = append(limits, action.RateLimit)
	}

	if invalid > 0 {
		p.notices.add(Notice{
			GroupID: group.GroupID,
			Reason:  NoticeRateLimitInvalid,
			Count:   invalid,
			Detail:  domain,
		})
	}

	return limits
}

// foreignDomains lists the label domains other than domain, sorted.
func foreignDomains(labels map[string][]ir.RateLimitLabel, domain string) []string {
	var foreign []string

	for name := range labels {
		if name != domain {
			foreign = append(foreign, name)
		}
	}

	sort.Strings(foreign)

	return foreign
}
