package vfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouteAccessors(t *testing.T) {
	tests := []struct {
		name      string
		route     Route
		partition string
		rest      []string
		last      string
		rendered  string
	}{
		{
			name:      "empty route",
			route:     NewRoute(),
			partition: "",
			rest:      nil,
			last:      "",
			rendered:  "",
		},
		{
			name:      "partition only",
			route:     NewRoute("site"),
			partition: "site",
			rest:      []string{},
			last:      "site",
			rendered:  "site",
		},
		{
			name:      "nested file",
			route:     NewRoute("site", "posts", "first.md"),
			partition: "site",
			rest:      []string{"posts", "first.md"},
			last:      "first.md",
			rendered:  "site/posts/first.md",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)
			assert.Equal(tt.partition, tt.route.Partition())
			assert.Equal(tt.rest, tt.route.Rest())
			assert.Equal(tt.last, tt.route.Name())
			assert.Equal(tt.rendered, tt.route.String())
		})
	}
}

func TestRouteChildDoesNotAliasParent(t *testing.T) {
	assert := assert.New(t)

	// Give the parent spare capacity so a naive append would share memory.
	parent := make(Route, 2, 8)
	parent[0] = "site"
	parent[1] = "posts"

	first := parent.Child("first.md")
	second := parent.Child("second.md")

	assert.Equal(Route{"site", "posts", "first.md"}, first)
	assert.Equal(Route{"site", "posts", "second.md"}, second)
	assert.Equal(Route{"site", "posts"}, parent)
}

func TestRouteClone(t *testing.T) {
	assert := assert.New(t)

	original := NewRoute("site", "index.html")
	clone := original.Clone()
	clone[1] = "other.html"

	assert.Equal("index.html", original[1])
	assert.Equal("other.html", clone[1])
}

func TestRouteEqual(t *testing.T) {
	tests := []struct {
		name  string
		a, b  Route
		equal bool
	}{
		{"both empty", NewRoute(), NewRoute(), true},
		{"same segments", NewRoute("a", "b"), NewRoute("a", "b"), true},
		{"different length", NewRoute("a"), NewRoute("a", "b"), false},
		{"different segment", NewRoute("a", "b"), NewRoute("a", "c"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, tt.a.Equal(tt.b))
		})
	}
}
