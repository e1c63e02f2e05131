package ir

const (
	// DefaultWeight is the weight of a mapping or shadow that does not set one.
	DefaultWeight = 100

	// MinWeight is the lowest valid weight. A weight of 0 sends no traffic.
	MinWeight = 0

	// MaxWeight is the highest valid weight. Weights are percentages.
	MaxWeight = 100

	// DefaultTimeoutMS is the upstream timeout of a mapping that does not set one.
	DefaultTimeoutMS = 3000
)

// EffectiveWeight returns the mapping weight or DefaultWeight.
func (m *Mapping) EffectiveWeight() int {
	if m.Weight == nil {
		return DefaultWeight
	}

	return *m.Weight
}

// EffectiveTimeoutMS returns the mapping timeout or DefaultTimeoutMS.
func (m *Mapping) EffectiveTimeoutMS() int {
	if m.TimeoutMS == nil {
		return DefaultTimeoutMS
	}

	return *m.TimeoutMS
}

// EffectiveWeight returns the shadow weight or DefaultWeight.
func (s *Shadow) EffectiveWeight() int {
	if s.Weight == nil {
		return DefaultWeight
	}

	return *s.Weight
}

// RoutePrefix returns the mapping prefix, falling back to the group prefix.
func (g *Group) RoutePrefix(m *Mapping) string {
	if m.Prefix != nil {
		return *m.Prefix
	}

	return g.Prefix
}

// RouteCaseSensitive returns the mapping case sensitivity, falling back to
// the group, then to true.
func (g *Group) RouteCaseSensitive(m *Mapping) bool {
	if m.CaseSensitive != nil {
		return *m.CaseSensitive
	}

	if g.CaseSensitive != nil {
		return *g.CaseSensitive
	}

	return true
}

// RouteHostRedirect returns the host redirect that applies to m, if any.
// A mapping-level redirect wins over the group's.
func (g *Group) RouteHostRedirect(m *Mapping) *HostRedirect {
	if m.HostRedirect != nil {
		return m.HostRedirect
	}

	return g.HostRedirect
}
