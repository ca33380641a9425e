// Package plugin implements the change-expansion chain the filesystem
// consults whenever a raw change is recorded. Plugins rewrite routes before
// they reach the change log: a build step can map a source file onto its
// outputs, and noise like editor swap files can be dropped entirely.
package plugin

import (
	"path"

	"github.com/imacodr/rojo/internal/logging"
	"github.com/imacodr/rojo/internal/vfs"

	"go.uber.org/zap"
)

var pluginLogger = logging.Named("plugin")

// Plugin inspects one raw changed route. A plugin that handles the route
// returns the expanded routes (possibly none, which suppresses the change)
// together with true. Returning false passes the route to the next plugin.
type Plugin interface {
	// Name identifies the plugin in logs.
	Name() string

	HandleFileChange(route vfs.Route) ([]vfs.Route, bool)
}

// Chain consults plugins in order; the first plugin claiming a route decides
// its expansion. Routes nobody claims pass through unchanged, so an empty
// chain behaves as if plugins did not exist.
//
// Chain implements vfs.ChangeHandler.
type Chain struct {
	plugins []Plugin
}

// NewChain builds a chain running plugins in the given order.
func NewChain(plugins ...Plugin) *Chain {
	return &Chain{plugins: plugins}
}

// HandleFileChange implements vfs.ChangeHandler.
func (c *Chain) HandleFileChange(route vfs.Route) []vfs.Route {
	for _, p := range c.plugins {
		routes, ok := p.HandleFileChange(route)
		if !ok {
			continue
		}
		pluginLogger.Debug("change handled",
			zap.String("plugin", p.Name()),
			zap.Stringer("route", route),
			zap.Int("routes", len(routes)))
		return routes
	}
	return []vfs.Route{route}
}

// DefaultIgnorePatterns cover the artifacts editors and tooling scatter next
// to real files.
var DefaultIgnorePatterns = []string{".*", "*~", "*.swp", "*.tmp"}

// Ignore suppresses changes whose route contains a segment matching any of
// its patterns. Patterns use path.Match syntax and are checked against every
// segment below the partition name, so "site/.git/config" is caught by ".*"
// no matter how deep it sits.
type Ignore struct {
	patterns []string
}

// NewIgnore builds an ignore plugin from patterns.
func NewIgnore(patterns ...string) *Ignore {
	return &Ignore{patterns: patterns}
}

// Name implements Plugin.
func (ig *Ignore) Name() string { return "ignore" }

// HandleFileChange implements Plugin. Matching routes are claimed with an
// empty expansion; everything else is left for the rest of the chain.
func (ig *Ignore) HandleFileChange(route vfs.Route) ([]vfs.Route, bool) {
	for _, segment := range route.Rest() {
		for _, pattern := range ig.patterns {
			matched, err := path.Match(pattern, segment)
			if err != nil {
				pluginLogger.Warn("bad ignore pattern", zap.String("pattern", pattern), zap.Error(err))
				continue
			}
			if matched {
				return nil, true
			}
		}
	}
	return nil, false
}
