package plugin

import (
	"testing"

	"github.com/imacodr/rojo/internal/vfs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fake claims routes whose last segment equals trigger and expands them to
// out.
type fake struct {
	name    string
	trigger string
	out     []vfs.Route
}

func (f *fake) Name() string { return f.name }

func (f *fake) HandleFileChange(route vfs.Route) ([]vfs.Route, bool) {
	if route.Name() != f.trigger {
		return nil, false
	}
	return f.out, true
}

func TestChainFirstClaimWins(t *testing.T) {
	first := &fake{name: "first", trigger: "both.txt", out: []vfs.Route{vfs.NewRoute("site", "from-first")}}
	second := &fake{name: "second", trigger: "both.txt", out: []vfs.Route{vfs.NewRoute("site", "from-second")}}
	chain := NewChain(first, second)

	routes := chain.HandleFileChange(vfs.NewRoute("site", "both.txt"))
	require.Len(t, routes, 1)
	assert.True(t, routes[0].Equal(vfs.NewRoute("site", "from-first")))
}

func TestChainFallsThroughToLaterPlugins(t *testing.T) {
	first := &fake{name: "first", trigger: "never"}
	second := &fake{name: "second", trigger: "hit.txt", out: []vfs.Route{
		vfs.NewRoute("site", "a"),
		vfs.NewRoute("site", "b"),
	}}
	chain := NewChain(first, second)

	routes := chain.HandleFileChange(vfs.NewRoute("site", "hit.txt"))
	require.Len(t, routes, 2)
	assert.True(t, routes[0].Equal(vfs.NewRoute("site", "a")))
	assert.True(t, routes[1].Equal(vfs.NewRoute("site", "b")))
}

func TestChainUnclaimedRoutePassesThrough(t *testing.T) {
	chain := NewChain(&fake{name: "first", trigger: "never"})

	route := vfs.NewRoute("site", "plain.txt")
	routes := chain.HandleFileChange(route)
	require.Len(t, routes, 1)
	assert.True(t, routes[0].Equal(route))
}

func TestEmptyChainIsIdentity(t *testing.T) {
	chain := NewChain()

	route := vfs.NewRoute("site", "anything")
	routes := chain.HandleFileChange(route)
	require.Len(t, routes, 1)
	assert.True(t, routes[0].Equal(route))
}

func TestIgnore(t *testing.T) {
	ignore := NewIgnore(DefaultIgnorePatterns...)

	tests := []struct {
		name    string
		route   vfs.Route
		ignored bool
	}{
		{"dotfile", vfs.NewRoute("site", ".DS_Store"), true},
		{"nested dot directory", vfs.NewRoute("site", ".git", "config"), true},
		{"swap file", vfs.NewRoute("site", "posts", "first.md.swp"), true},
		{"backup file", vfs.NewRoute("site", "notes.txt~"), true},
		{"regular file", vfs.NewRoute("site", "index.html"), false},
		{"dot partition name is not filtered", vfs.NewRoute(".site", "index.html"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			routes, claimed := ignore.HandleFileChange(tt.route)
			assert.Equal(t, tt.ignored, claimed)
			assert.Empty(t, routes)
		})
	}
}

func TestIgnoreInsideChainSuppressesChange(t *testing.T) {
	chain := NewChain(NewIgnore(DefaultIgnorePatterns...))

	assert.Empty(t, chain.HandleFileChange(vfs.NewRoute("site", ".hidden")))

	routes := chain.HandleFileChange(vfs.NewRoute("site", "visible.txt"))
	assert.Len(t, routes, 1)
}
