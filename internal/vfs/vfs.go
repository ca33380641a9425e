// Package vfs maps symbolic routes onto physical directory trees and keeps a
// time-ordered log of change events.
//
// A VFS holds a partition table (name to absolute root directory), reads
// eager snapshots of files and directories through it, and timestamps
// changes on a clock that starts at construction. Every change is run
// through an injected ChangeHandler before it is logged, so higher layers
// can rewrite or suppress raw filesystem events.
//
// The VFS itself performs no locking. Read, Resolve, CurrentTime and
// ChangesSince need shared access; AddPartition and AddChange need exclusive
// access. Callers sharing one instance across goroutines serialize them
// externally (see internal/session).
package vfs

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/imacodr/rojo/internal/logging"

	"go.uber.org/zap"
)

var vfsLogger = logging.Named("vfs")

// ChangeHandler expands one raw changed route into the logical routes that
// should be recorded for it. Returning no routes suppresses the change.
// Implementations must be safe for repeated calls and must not retain the
// route.
type ChangeHandler interface {
	HandleFileChange(route Route) []Route
}

// Options configures a VFS.
type Options struct {
	// Verbose enables per-change diagnostics while processing AddChange.
	Verbose bool
}

// VFS is the virtual filesystem overlay. Construct with New.
type VFS struct {
	partitions map[string]string
	changes    []Change
	handler    ChangeHandler
	startTime  time.Time
	verbose    bool
}

// New creates an empty VFS whose clock starts now. handler is consulted on
// every AddChange and must not be nil.
func New(handler ChangeHandler, opts Options) *VFS {
	return &VFS{
		partitions: make(map[string]string),
		handler:    handler,
		startTime:  time.Now(),
		verbose:    opts.Verbose,
	}
}

// AddPartition registers root as the physical directory behind name. root
// must be absolute so resolved paths never depend on the process working
// directory. Registering a name again replaces its root.
func (v *VFS) AddPartition(name, root string) error {
	if !filepath.IsAbs(root) {
		return fmt.Errorf("partition %q: root %q is not absolute", name, root)
	}
	if old, ok := v.partitions[name]; ok && old != root {
		vfsLogger.Warn("replacing partition root",
			zap.String("partition", name),
			zap.String("old", old),
			zap.String("new", root))
	}
	v.partitions[name] = root
	vfsLogger.Debug("partition registered", zap.String("partition", name), zap.String("root", root))
	return nil
}

// Partitions returns a copy of the partition table.
func (v *VFS) Partitions() map[string]string {
	partitions := make(map[string]string, len(v.partitions))
	for name, root := range v.partitions {
		partitions[name] = root
	}
	return partitions
}

// Resolve translates route into a physical path. The first segment selects a
// partition; the rest join onto its root. A route holding only a partition
// name resolves to the root itself, with no trailing separator appended.
func (v *VFS) Resolve(route Route) (string, error) {
	if len(route) == 0 {
		return "", newError(OpResolve, route, ErrUnknownPartition)
	}
	root, ok := v.partitions[route.Partition()]
	if !ok {
		return "", newError(OpResolve, route, ErrUnknownPartition)
	}
	rest := route.Rest()
	if len(rest) == 0 {
		return root, nil
	}
	parts := append([]string{root}, rest...)
	return filepath.Join(parts...), nil
}

// Read materializes the item at route into a fully populated snapshot.
// Directories are read recursively; files are read in full and must be
// UTF-8 text. Failures on the addressed item itself are returned, while
// failures on entries nested inside a directory omit just that entry.
func (v *VFS) Read(route Route) (Item, error) {
	path, err := v.Resolve(route)
	if err != nil {
		return nil, err
	}
	return v.readPath(route, path)
}

// readPath dispatches on the entry type at path. Lstat keeps symlinks from
// being followed, so anything but a plain file or directory is refused.
func (v *VFS) readPath(route Route, path string) (Item, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return nil, newError(OpRead, route, err)
	}
	switch {
	case info.IsDir():
		return v.readDir(route, path)
	case info.Mode().IsRegular():
		return v.readFile(route, path)
	default:
		return nil, newError(OpRead, route, ErrUnsupportedType)
	}
}

func (v *VFS) readDir(route Route, path string) (Item, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, newError(OpRead, route, err)
	}
	children := make(map[string]Item, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		childRoute := route.Child(name)
		child, err := v.readPath(childRoute, filepath.Join(path, name))
		if err != nil {
			// One broken entry must not take the whole directory down.
			vfsLogger.Debug("skipping unreadable entry",
				zap.Stringer("route", childRoute),
				zap.Error(err))
			continue
		}
		children[name] = child
	}
	return NewDir(route.Clone(), children), nil
}

func (v *VFS) readFile(route Route, path string) (Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newError(OpRead, route, err)
	}
	if !utf8.Valid(data) {
		return nil, newError(OpRead, route, ErrNotText)
	}
	return NewFile(route.Clone(), string(data)), nil
}

// CurrentTime returns the fractional seconds elapsed since the VFS was
// constructed. The reading is monotonic; successive calls never go back.
func (v *VFS) CurrentTime() float64 {
	return time.Since(v.startTime).Seconds()
}

// AddChange runs rawRoute through the change handler and appends one log
// entry per returned route, every entry stamped with timestamp. A handler
// returning no routes suppresses the change entirely.
//
// Callers must supply non-decreasing timestamps across calls; ChangesSince
// relies on the log being ordered by time.
func (v *VFS) AddChange(timestamp float64, rawRoute Route) {
	if v.verbose {
		vfsLogger.Info("received change, sending through plugins", zap.Stringer("route", rawRoute))
	}
	routes := v.handler.HandleFileChange(rawRoute)
	if len(routes) == 0 {
		if v.verbose {
			vfsLogger.Info("change suppressed by plugins", zap.Stringer("route", rawRoute))
		}
		return
	}
	if v.verbose {
		vfsLogger.Info("recording changes", zap.Int("count", len(routes)))
	}
	for _, route := range routes {
		v.changes = append(v.changes, Change{Timestamp: timestamp, Route: route.Clone()})
	}
}

// ChangesSince returns every logged change with a timestamp at or after
// since, oldest first. The log is scanned backwards from its newest entry,
// so recent queries cost only as much as they return. The returned slice
// aliases the log and is valid until the next AddChange.
func (v *VFS) ChangesSince(since float64) []Change {
	marker := len(v.changes)
	for i := len(v.changes) - 1; i >= 0; i-- {
		if v.changes[i].Timestamp < since {
			break
		}
		marker = i
	}
	return v.changes[marker:]
}

// Write always fails with ErrUnsupportedOperation. The virtual tree is a
// read-only view; nothing is written before the error is returned.
func (v *VFS) Write(route Route, _ Item) error {
	return newError(OpWrite, route, ErrUnsupportedOperation)
}

// Delete always fails with ErrUnsupportedOperation, matching Write.
func (v *VFS) Delete(route Route) error {
	return newError(OpDelete, route, ErrUnsupportedOperation)
}
