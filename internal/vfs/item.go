package vfs

import (
	"encoding/json"
	"fmt"
)

// Wire discriminator values for serialized items.
const (
	typeFile = "file"
	typeDir  = "dir"
)

// Item is one node of a materialized snapshot, either a *File or a *Dir.
// The set of implementations is closed; consumers type switch over the two.
//
// Items are immutable once read. An item's Name is always the last segment
// of its Route, and a directory's children are keyed by their names.
type Item interface {
	// Route returns the route the item was read from.
	Route() Route

	// Name returns the item's final route segment.
	Name() string

	sealed()
}

// File is a snapshot of a text file's full contents.
type File struct {
	route    Route
	contents string
}

// NewFile builds a file snapshot.
func NewFile(route Route, contents string) *File {
	return &File{route: route, contents: contents}
}

// Route returns the route the file was read from.
func (f *File) Route() Route { return f.route }

// Name returns the file's name.
func (f *File) Name() string { return f.route.Name() }

// Contents returns the file's text.
func (f *File) Contents() string { return f.contents }

func (f *File) sealed() {}

// MarshalJSON implements json.Marshaler.
func (f *File) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Type     string `json:"type"`
		Route    Route  `json:"route"`
		Contents string `json:"contents"`
	}{typeFile, f.route, f.contents})
}

// Dir is a snapshot of a directory and, recursively, everything under it.
type Dir struct {
	route    Route
	children map[string]Item
}

// NewDir builds a directory snapshot. A nil children map is normalized to an
// empty one so serialization always yields an object.
func NewDir(route Route, children map[string]Item) *Dir {
	if children == nil {
		children = make(map[string]Item)
	}
	return &Dir{route: route, children: children}
}

// Route returns the route the directory was read from.
func (d *Dir) Route() Route { return d.route }

// Name returns the directory's name.
func (d *Dir) Name() string { return d.route.Name() }

// Children returns the directory's children keyed by name. The map is the
// snapshot's own; callers must not mutate it.
func (d *Dir) Children() map[string]Item { return d.children }

// Child returns the named child, if present.
func (d *Dir) Child(name string) (Item, bool) {
	child, ok := d.children[name]
	return child, ok
}

func (d *Dir) sealed() {}

// MarshalJSON implements json.Marshaler.
func (d *Dir) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Type     string          `json:"type"`
		Route    Route           `json:"route"`
		Children map[string]Item `json:"children"`
	}{typeDir, d.route, d.children})
}

// UnmarshalItem decodes one serialized item, dispatching on its "type" tag.
// Child items are decoded recursively.
func UnmarshalItem(data []byte) (Item, error) {
	var probe struct {
		Type     string                     `json:"type"`
		Route    Route                      `json:"route"`
		Contents string                     `json:"contents"`
		Children map[string]json.RawMessage `json:"children"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}

	switch probe.Type {
	case typeFile:
		return NewFile(probe.Route, probe.Contents), nil
	case typeDir:
		children := make(map[string]Item, len(probe.Children))
		for name, raw := range probe.Children {
			child, err := UnmarshalItem(raw)
			if err != nil {
				return nil, err
			}
			children[name] = child
		}
		return NewDir(probe.Route, children), nil
	default:
		return nil, fmt.Errorf("unknown item type %q", probe.Type)
	}
}
