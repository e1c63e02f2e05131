package routegen

import (
	"context"
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"
	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/lexfrei/routegen/internal/envoy"
	"github.com/lexfrei/routegen/internal/ir"
	"github.com/lexfrei/routegen/internal/metrics"
	"github.com/lexfrei/routegen/internal/ratelimit"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Generator turns IR snapshots into route configuration.
type Generator struct {
	// Actions translates rate-limit labels into actions.
	Actions ratelimit.ActionBuilder

	// Metrics records pass duration, route counts and dropped input.
	Metrics metrics.Collector

	logger *slog.Logger
}

// NewGenerator creates a Generator. Nil arguments fall back to the default
// rate-limit action builder, a no-op collector and the default logger.
func NewGenerator(actions ratelimit.ActionBuilder, m metrics.Collector, logger *slog.Logger) *Generator {
	if actions == nil {
		actions = ratelimit.DefaultBuilder{}
	}

	if m == nil {
		m = &metrics.NoopCollector{}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Generator{
		Actions: actions,
		Metrics: m,
		logger:  logger.With("component", "routegen"),
	}
}

// Result is the output of one generation pass.
type Result struct {
	Config *envoy.Config

	// Notices lists the input that was left out of Config on purpose.
	Notices []Notice
}

// pass holds the state of one generation pass. Nothing outlives it.
type pass struct {
	module    *ir.Module
	rateLimit *ir.RateLimitService
	actions   ratelimit.ActionBuilder
	notices   noticeLog
}

func (g *Generator) newPass(snapshot *ir.IR) *pass {
	return &pass{
		module:    snapshot.Module,
		rateLimit: snapshot.RateLimit,
		actions:   g.Actions,
	}
}

// Generate walks the groups of snapshot in order and builds one route per
// mapping, or a single redirect route for a group with a host redirect and no
// mappings. Routes of SNI groups go to Config.SNIRoutes.
//
// The snapshot is validated first. Any violation aborts the pass with an
// error marked ir.ErrContractViolation and no partial output. The pass does no
// I/O and runs to completion; ctx is only handed to the metrics collector.
func (g *Generator) Generate(ctx context.Context, snapshot *ir.IR) (*Result, error) {
	startTime := time.Now()

	result, err := g.generate(ctx, snapshot)
	if err != nil {
		g.Metrics.RecordGenerateDuration(ctx, statusError, time.Since(startTime))

		return nil, err
	}

	g.Metrics.RecordGenerateDuration(ctx, statusSuccess, time.Since(startTime))
	g.recordResult(ctx, result)

	return result, nil
}

func (g *Generator) generate(ctx context.Context, snapshot *ir.IR) (*Result, error) {
	if snapshot == nil {
		return nil, errors.AssertionFailedf("nil snapshot")
	}

	if errs := ir.Validate(snapshot); len(errs) > 0 {
		g.Metrics.RecordContractViolations(ctx, len(errs))

		return nil, errors.Wrap(ir.AsError(errs), "invalid snapshot")
	}

	state := g.newPass(snapshot)
	cfg := envoy.NewConfig()

	groups := snapshot.OrderedGroups()
	walked := 0

	for _, group := range groups {
		if !group.IsHTTPMappingGroup() {
			g.logger.Debug("skipping group",
				"group", group.GroupID,
				"kind", group.Kind,
			)

			continue
		}

		walked++

		routes, err := state.buildGroupRoutes(group)
		if err != nil {
			return nil, err
		}

		addRoutes(cfg, group, routes)
	}

	for _, notice := range state.notices.notices {
		g.logger.Debug("input dropped",
			"group", notice.GroupID,
			"reason", notice.Reason,
			"count", notice.Count,
			"detail", notice.Detail,
		)
	}

	g.Metrics.RecordGroups(ctx, walked)

	return &Result{
		Config:  cfg,
		Notices: state.notices.notices,
	}, nil
}

// buildGroupRoutes builds the routes of one group, in mapping order.
func (p *pass) buildGroupRoutes(group *ir.Group) ([]envoy.Route, error) {
	if group.IsRedirectOnly() {
		route, err := p.buildRoute(group, &ir.Mapping{})
		if err != nil {
			return nil, errors.Wrapf(err, "route %s", routeName(group, 0))
		}

		return []envoy.Route{route}, nil
	}

	routes := make([]envoy.Route, 0, len(group.Mappings))

	for i := range group.Mappings {
		route, err := p.buildRoute(group, &group.Mappings[i])
		if err != nil {
			return nil, errors.Wrapf(err, "route %s", routeName(group, i))
		}

		routes = append(routes, route)
	}

	return routes, nil
}

// addRoutes appends the routes of group to the list they belong in. Every
// route of an SNI group goes to SNIRoutes, a redirect-only route included.
func addRoutes(cfg *envoy.Config, group *ir.Group, routes []envoy.Route) {
	if !group.SNI {
		cfg.Routes = append(cfg.Routes, routes...)

		return
	}

	info := sniInfo(group.TLSContext)

	for _, route := range routes {
		cfg.SNIRoutes = append(cfg.SNIRoutes, envoy.SNIRoute{
			Route: route,
			Info:  info,
		})
	}
}

func sniInfo(tls *ir.TLSContext) envoy.SNIInfo {
	info := envoy.SNIInfo{
		Hosts:      []string{},
		SecretInfo: map[string]any{},
	}

	if tls == nil {
		return info
	}

	if tls.Hosts != nil {
		info.Hosts = append(info.Hosts, tls.Hosts...)
	}

	for key, value := range tls.SecretInfo {
		info.SecretInfo[key] = value
	}

	return info
}

func (g *Generator) recordResult(ctx context.Context, result *Result) {
	forward, redirect := 0, 0

	for i := range result.Config.Routes {
		if _, ok := result.Config.Routes[i].Redirect(); ok {
			redirect++
		} else {
			forward++
		}
	}

	g.Metrics.RecordRoutes(ctx, metrics.RouteKindForward, forward)
	g.Metrics.RecordRoutes(ctx, metrics.RouteKindRedirect, redirect)
	g.Metrics.RecordRoutes(ctx, metrics.RouteKindSNI, len(result.Config.SNIRoutes))

	for _, notice := range result.Notices {
		g.Metrics.RecordDroppedInput(ctx, notice.Reason)
	}
}

// BuildRoute assembles the route of a single mapping of group, using the
// global defaults and rate-limit service of snapshot. Pass an empty mapping
// for a redirect-only group. The group is validated first.
func (g *Generator) BuildRoute(snapshot *ir.IR, group *ir.Group, mapping *ir.Mapping) (envoy.Route, []Notice, error) {
	if errs := ir.ValidateGroup(group, field.NewPath("group")); len(errs) > 0 {
		return envoy.Route{}, nil, errors.Wrap(ir.AsError(errs), "invalid group")
	}

	if snapshot == nil {
		snapshot = &ir.IR{}
	}

	state := g.newPass(snapshot)

	route, err := state.buildRoute(group, mapping)
	if err != nil {
		return envoy.Route{}, nil, err
	}

	return route, state.notices.notices, nil
}
