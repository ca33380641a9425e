package fusefs

import (
	"context"
	"os"
	"sort"
	"syscall"

	"github.com/imacodr/rojo/internal/vfs"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
)

// Root is the mount root. Its entries are the registered partitions.
type Root struct {
	fs *FS
}

// Attr implements the Node interface.
func (r *Root) Attr(_ context.Context, a *fuse.Attr) error {
	a.Mode = os.ModeDir | 0555
	a.Uid = r.fs.uid
	a.Gid = r.fs.gid
	return nil
}

// Lookup implements the NodeStringLookuper interface.
func (r *Root) Lookup(_ context.Context, name string) (fusefs.Node, error) {
	if _, ok := r.fs.session.Partitions()[name]; !ok {
		return nil, syscall.ENOENT
	}
	return r.fs.nodeFor(vfs.NewRoute(name))
}

// ReadDirAll implements the HandleReadDirAller interface. A partition whose
// root cannot be statted is left out of the listing rather than failing it.
func (r *Root) ReadDirAll(_ context.Context) ([]fuse.Dirent, error) {
	table := r.fs.session.Partitions()
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]fuse.Dirent, 0, len(names)+2)
	entries = append(entries,
		fuse.Dirent{Name: ".", Type: fuse.DT_Dir},
		fuse.Dirent{Name: "..", Type: fuse.DT_Dir})

	for _, name := range names {
		info, err := os.Lstat(table[name])
		if err != nil {
			continue
		}
		entryType := fuse.DT_Dir
		if info.Mode().IsRegular() {
			// A partition may point straight at a file.
			entryType = fuse.DT_File
		}
		entries = append(entries, fuse.Dirent{Name: name, Type: entryType})
	}
	return entries, nil
}

// Dir is a directory inside a partition.
type Dir struct {
	fs    *FS
	route vfs.Route
}

// Attr implements the Node interface.
func (d *Dir) Attr(_ context.Context, a *fuse.Attr) error {
	a.Mode = os.ModeDir | 0555
	a.Uid = d.fs.uid
	a.Gid = d.fs.gid
	return nil
}

// Lookup implements the NodeStringLookuper interface.
func (d *Dir) Lookup(_ context.Context, name string) (fusefs.Node, error) {
	return d.fs.nodeFor(d.route.Child(name))
}

// ReadDirAll implements the HandleReadDirAller interface. Entries that are
// neither plain files nor directories are invisible, matching what snapshot
// reads return for this directory.
func (d *Dir) ReadDirAll(_ context.Context) ([]fuse.Dirent, error) {
	path, err := d.fs.session.Resolve(d.route)
	if err != nil {
		return nil, toErrno(err)
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, toErrno(err)
	}

	dirents := make([]fuse.Dirent, 0, len(entries)+2)
	dirents = append(dirents,
		fuse.Dirent{Name: ".", Type: fuse.DT_Dir},
		fuse.Dirent{Name: "..", Type: fuse.DT_Dir})

	for _, entry := range entries {
		switch {
		case entry.IsDir():
			dirents = append(dirents, fuse.Dirent{Name: entry.Name(), Type: fuse.DT_Dir})
		case entry.Type().IsRegular():
			dirents = append(dirents, fuse.Dirent{Name: entry.Name(), Type: fuse.DT_File})
		}
	}
	return dirents, nil
}

// Mkdir implements the NodeMkdirer interface. The tree is read-only.
func (d *Dir) Mkdir(_ context.Context, _ *fuse.MkdirRequest) (fusefs.Node, error) {
	return nil, syscall.EROFS
}

// Create implements the NodeCreater interface. The tree is read-only.
func (d *Dir) Create(_ context.Context, _ *fuse.CreateRequest, _ *fuse.CreateResponse) (fusefs.Node, fusefs.Handle, error) {
	return nil, nil, syscall.EROFS
}

// Remove implements the NodeRemover interface. The tree is read-only.
func (d *Dir) Remove(_ context.Context, _ *fuse.RemoveRequest) error {
	return syscall.EROFS
}

// Rename implements the NodeRenamer interface. The tree is read-only.
func (d *Dir) Rename(_ context.Context, _ *fuse.RenameRequest, _ fusefs.Node) error {
	return syscall.EROFS
}
