// Package fusefs exposes a session's virtual tree as a read-only FUSE
// filesystem. The mount root lists one entry per partition, and everything
// below resolves through the same routes the web API serves, so a shell and
// a polling consumer always see the same tree.
package fusefs

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"syscall"
	"time"

	"github.com/imacodr/rojo/internal/logging"
	"github.com/imacodr/rojo/internal/session"
	"github.com/imacodr/rojo/internal/vfs"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
	"go.uber.org/zap"
)

var fuseLogger = logging.Named("fuse")

// FS is the FUSE filesystem over one session.
type FS struct {
	session *session.Session
	conn    *fuse.Conn
	uid     uint32
	gid     uint32
}

// New builds a filesystem for s. Ownership of every node defaults to the
// current process and can be pinned with the PUID and PGID environment
// variables for container setups.
func New(s *session.Session) *FS {
	uid := safeIntToUint32(os.Getuid())
	gid := safeIntToUint32(os.Getgid())

	if puid := os.Getenv("PUID"); puid != "" {
		if parsed, err := strconv.ParseUint(puid, 10, 32); err == nil {
			uid = uint32(parsed)
		}
	}
	if pgid := os.Getenv("PGID"); pgid != "" {
		if parsed, err := strconv.ParseUint(pgid, 10, 32); err == nil {
			gid = uint32(parsed)
		}
	}

	return &FS{session: s, uid: uid, gid: gid}
}

// Root implements fusefs.FS.
func (f *FS) Root() (fusefs.Node, error) {
	return &Root{fs: f}, nil
}

// nodeFor stats the resolved physical path to pick the node type. Contents
// are not materialized until the file is opened.
func (f *FS) nodeFor(route vfs.Route) (fusefs.Node, error) {
	path, err := f.session.Resolve(route)
	if err != nil {
		return nil, toErrno(err)
	}
	info, err := os.Lstat(path)
	if err != nil {
		return nil, toErrno(err)
	}
	switch {
	case info.IsDir():
		return &Dir{fs: f, route: route}, nil
	case info.Mode().IsRegular():
		return &File{fs: f, route: route}, nil
	default:
		// Only plain files and directories exist in the virtual tree.
		return nil, syscall.ENOENT
	}
}

// Mount mounts the filesystem at mountPoint and starts serving it in the
// background. It returns once the kernel reports the mount is live.
func (f *FS) Mount(mountPoint string) error {
	fuseLogger.Info("mounting", zap.String("mountpoint", mountPoint))

	for name, root := range f.session.Partitions() {
		if _, err := os.ReadDir(root); err != nil {
			fuseLogger.Warn("partition root not readable",
				zap.String("partition", name), zap.Error(err))
		}
	}

	conn, err := fuse.Mount(mountPoint,
		fuse.FSName("rojo"),
		fuse.Subtype("rojofs"),
		fuse.ReadOnly(),
		fuse.DefaultPermissions(),
		fuse.AsyncRead(),
		fuse.AllowNonEmptyMount(),
	)
	if err != nil {
		return fmt.Errorf("mount failed: %w", err)
	}
	f.conn = conn

	go func() {
		if err := fusefs.Serve(conn, f); err != nil {
			fuseLogger.Error("fuse server stopped", zap.Error(err))
		}
	}()

	if err := waitForMount(mountPoint); err != nil {
		conn.Close()
		return err
	}

	fuseLogger.Info("mounted", zap.String("mountpoint", mountPoint))
	return nil
}

// Unmount detaches the filesystem.
func (f *FS) Unmount(mountPoint string) error {
	if f.conn == nil {
		return nil
	}
	if err := fuse.Unmount(mountPoint); err != nil {
		fuseLogger.Error("unmount failed", zap.Error(err))
		return err
	}
	err := f.conn.Close()
	f.conn = nil
	fuseLogger.Info("unmounted", zap.String("mountpoint", mountPoint))
	return err
}

func waitForMount(mountPoint string) error {
	for i := 0; i < 30; i++ {
		info, err := os.Stat(mountPoint)
		if err == nil && info.IsDir() {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("mount point %q not available after 3 seconds", mountPoint)
}

// toErrno maps read errors onto the errnos FUSE expects. Entries the
// virtual tree refuses to serve look nonexistent rather than broken.
func toErrno(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, vfs.ErrUnknownPartition), errors.Is(err, os.ErrNotExist):
		return syscall.ENOENT
	case errors.Is(err, vfs.ErrUnsupportedType):
		return syscall.ENOENT
	case errors.Is(err, os.ErrPermission):
		return syscall.EACCES
	case errors.Is(err, vfs.ErrUnsupportedOperation):
		return syscall.EROFS
	default:
		return syscall.EIO
	}
}
