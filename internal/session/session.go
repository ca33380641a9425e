// Package session wires a loaded project into a live filesystem: it builds
// the partition table, owns the lock serializing readers against the change
// writer, and runs the watcher that feeds raw changes through the plugin
// chain into the change log.
package session

import (
	"sync"

	"github.com/imacodr/rojo/internal/logging"
	"github.com/imacodr/rojo/internal/plugin"
	"github.com/imacodr/rojo/internal/project"
	"github.com/imacodr/rojo/internal/vfs"
	"github.com/imacodr/rojo/internal/watch"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var sessionLogger = logging.Named("session")

// Session serves one project. Its ID is fresh per construction so consumers
// polling across a restart can tell their timestamps no longer apply.
//
// All filesystem access goes through the session's lock: snapshot reads and
// change queries share it, recording a change takes it exclusively. Taking
// the clock reading inside the exclusive section keeps log timestamps
// non-decreasing, which the change log's time-window queries depend on.
type Session struct {
	mu      sync.RWMutex
	fs      *vfs.VFS
	proj    *project.Project
	watcher *watch.Watcher
	id      string
}

// New builds the filesystem for proj and registers every declared partition
// with it and with the watcher. The watcher does not deliver events until
// Start is called.
func New(proj *project.Project, verbose bool) (*Session, error) {
	chain := plugin.NewChain(plugin.NewIgnore(plugin.DefaultIgnorePatterns...))

	s := &Session{
		fs:   vfs.New(chain, vfs.Options{Verbose: verbose}),
		proj: proj,
		id:   uuid.New().String(),
	}

	watcher, err := watch.New(s.RecordChange)
	if err != nil {
		return nil, err
	}
	s.watcher = watcher

	for name, part := range proj.Partitions {
		root := proj.PartitionRoot(part)
		if err := s.fs.AddPartition(name, root); err != nil {
			_ = watcher.Close()
			return nil, errors.Wrapf(err, "registering partition %q", name)
		}
		if err := watcher.WatchPartition(name, root); err != nil {
			_ = watcher.Close()
			return nil, err
		}
	}

	sessionLogger.Info("session created",
		zap.String("id", s.id),
		zap.String("project", proj.Name),
		zap.Int("partitions", len(proj.Partitions)))
	return s, nil
}

// Start begins watching for filesystem changes.
func (s *Session) Start() {
	s.watcher.Start()
}

// Stop halts change delivery.
func (s *Session) Stop() error {
	return s.watcher.Close()
}

// ID identifies this session.
func (s *Session) ID() string {
	return s.id
}

// Project returns the project this session serves.
func (s *Session) Project() *project.Project {
	return s.proj
}

// Partitions returns the live partition table.
func (s *Session) Partitions() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fs.Partitions()
}

// Resolve translates a route to its physical path.
func (s *Session) Resolve(route vfs.Route) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fs.Resolve(route)
}

// ReadItem materializes a snapshot of the item at route.
func (s *Session) ReadItem(route vfs.Route) (vfs.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fs.Read(route)
}

// ReadAll reads every partition root. A partition that fails to read is
// omitted from the result, the same resilience the snapshot reader applies
// to entries inside a directory.
func (s *Session) ReadAll() map[string]vfs.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	partitions := s.fs.Partitions()
	items := make(map[string]vfs.Item, len(partitions))
	for name := range partitions {
		item, err := s.fs.Read(vfs.NewRoute(name))
		if err != nil {
			sessionLogger.Warn("partition omitted from snapshot",
				zap.String("partition", name), zap.Error(err))
			continue
		}
		items[name] = item
	}
	return items
}

// Now returns the session clock reading.
func (s *Session) Now() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fs.CurrentTime()
}

// ChangesSince returns every change at or after since, oldest first. The
// result is a copy, safe to hold after the lock is released.
func (s *Session) ChangesSince(since float64) []vfs.Change {
	s.mu.RLock()
	defer s.mu.RUnlock()

	changes := s.fs.ChangesSince(since)
	out := make([]vfs.Change, len(changes))
	copy(out, changes)
	return out
}

// RecordChange stamps route with the current clock reading and appends its
// plugin expansion to the change log. The watcher calls this for every raw
// event it sees.
func (s *Session) RecordChange(route vfs.Route) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fs.AddChange(s.fs.CurrentTime(), route)
}
