package vfs

import "strings"

// Route addresses an item in the virtual filesystem. The first segment names
// a partition; the remaining segments walk down from that partition's root.
// A route holding only a partition name addresses the partition root itself.
//
// Routes are plain segment slices so callers can range over them, but the
// methods below cover the common questions and never mutate the receiver.
type Route []string

// NewRoute builds a route from its segments.
func NewRoute(segments ...string) Route {
	route := make(Route, len(segments))
	copy(route, segments)
	return route
}

// Partition returns the partition name, or "" for an empty route.
func (r Route) Partition() string {
	if len(r) == 0 {
		return ""
	}
	return r[0]
}

// Rest returns the segments below the partition name.
func (r Route) Rest() []string {
	if len(r) == 0 {
		return nil
	}
	return r[1:]
}

// Name returns the final segment, which is the name of the item the route
// addresses. Empty routes have no name.
func (r Route) Name() string {
	if len(r) == 0 {
		return ""
	}
	return r[len(r)-1]
}

// Child returns a new route addressing name under r. The receiver's backing
// array is never shared with the result.
func (r Route) Child(name string) Route {
	child := make(Route, len(r), len(r)+1)
	copy(child, r)
	return append(child, name)
}

// Clone returns an independent copy of r.
func (r Route) Clone() Route {
	return NewRoute(r...)
}

// Equal reports whether r and other hold identical segments.
func (r Route) Equal(other Route) bool {
	if len(r) != len(other) {
		return false
	}
	for i, segment := range r {
		if other[i] != segment {
			return false
		}
	}
	return true
}

// String renders the route for logs and error messages.
func (r Route) String() string {
	return strings.Join(r, "/")
}
