// Package watch feeds raw filesystem change notifications into the change
// log. It translates absolute paths under registered partition roots back
// into routes before handing them off.
package watch

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/imacodr/rojo/internal/logging"
	"github.com/imacodr/rojo/internal/vfs"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var watchLogger = logging.Named("watch")

// Watcher converts fsnotify events under registered partition roots into
// routes and delivers them to a callback. fsnotify does not watch trees
// recursively, so every subdirectory is registered up front and directories
// created later are registered as their create events arrive.
type Watcher struct {
	notify   *fsnotify.Watcher
	onChange func(vfs.Route)
	roots    map[string]string
	done     chan struct{}
}

// New creates a watcher delivering routes to onChange. Register partitions
// with WatchPartition, then call Start. onChange is called from the event
// goroutine and should return quickly.
func New(onChange func(vfs.Route)) (*Watcher, error) {
	notify, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating filesystem watcher")
	}
	return &Watcher{
		notify:   notify,
		onChange: onChange,
		roots:    make(map[string]string),
		done:     make(chan struct{}),
	}, nil
}

// WatchPartition watches root and everything under it as partition name.
// root must exist.
func (w *Watcher) WatchPartition(name, root string) error {
	if err := w.addRecursive(root); err != nil {
		return errors.Wrapf(err, "watching partition %q", name)
	}
	w.roots[name] = root
	watchLogger.Debug("watching partition", zap.String("partition", name), zap.String("root", root))
	return nil
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			watchLogger.Warn("skipping unwalkable path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !entry.IsDir() {
			return nil
		}
		if err := w.notify.Add(path); err != nil {
			return errors.Wrapf(err, "watching %q", path)
		}
		return nil
	})
}

// Start begins event delivery. Stop with Close.
func (w *Watcher) Start() {
	go w.run()
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.notify.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.notify.Errors:
			if !ok {
				return
			}
			watchLogger.Error("watcher error", zap.Error(err))
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// Attribute-only events carry no content change worth logging.
	if event.Op&fsnotify.Chmod != 0 &&
		event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	route, ok := w.routeFor(event.Name)
	if !ok {
		watchLogger.Debug("event outside every partition", zap.String("path", event.Name))
		return
	}

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Lstat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				watchLogger.Warn("cannot watch new directory",
					zap.String("path", event.Name), zap.Error(err))
			}
		}
	}

	watchLogger.Debug("filesystem change",
		zap.Stringer("route", route),
		zap.String("op", event.Op.String()))
	w.onChange(route)
}

// routeFor maps an absolute path back onto a route through the partition
// containing it.
func (w *Watcher) routeFor(path string) (vfs.Route, bool) {
	sep := string(filepath.Separator)
	for name, root := range w.roots {
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+sep) {
			continue
		}
		if rel == "." {
			return vfs.NewRoute(name), true
		}
		route := vfs.Route{name}
		return append(route, strings.Split(rel, sep)...), true
	}
	return nil, false
}

// Close stops event delivery and releases the underlying watches.
func (w *Watcher) Close() error {
	close(w.done)
	return w.notify.Close()
}
