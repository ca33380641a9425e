package fusefs

import (
	"context"
	"os"
	"syscall"

	"github.com/imacodr/rojo/internal/vfs"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
	"go.uber.org/zap"
)

// File is a regular file inside a partition.
type File struct {
	fs    *FS
	route vfs.Route
}

// Attr implements the Node interface. Size and times come from the physical
// file; write bits are stripped so the read-only contract shows in listings.
func (f *File) Attr(_ context.Context, a *fuse.Attr) error {
	path, err := f.fs.session.Resolve(f.route)
	if err != nil {
		return toErrno(err)
	}
	info, err := os.Lstat(path)
	if err != nil {
		return toErrno(err)
	}

	a.Mode = info.Mode() &^ 0222
	a.Size = safeInt64ToUint64(info.Size())
	a.Mtime = info.ModTime()
	a.Atime = info.ModTime()
	a.Ctime = info.ModTime()
	a.Uid = f.fs.uid
	a.Gid = f.fs.gid
	a.BlockSize = 4096
	a.Blocks = safeInt64ToUint64((info.Size() + 511) / 512)
	return nil
}

// Open implements the NodeOpener interface. Contents are materialized
// through a snapshot read, so FUSE readers get exactly what the web API
// serves, UTF-8 validation included.
func (f *File) Open(_ context.Context, req *fuse.OpenRequest, resp *fuse.OpenResponse) (fusefs.Handle, error) {
	flags := int(req.Flags)
	if flags&(os.O_WRONLY|os.O_RDWR) != 0 {
		fuseLogger.Debug("write open refused", zap.Stringer("route", f.route))
		return nil, syscall.EROFS
	}

	item, err := f.fs.session.ReadItem(f.route)
	if err != nil {
		return nil, toErrno(err)
	}
	file, ok := item.(*vfs.File)
	if !ok {
		return nil, syscall.EISDIR
	}

	// The handle serves a snapshot that can drift from the Attr size, so
	// keep the kernel from caching by size.
	resp.Flags |= fuse.OpenDirectIO

	return &FileHandle{route: f.route, contents: []byte(file.Contents())}, nil
}

// Setattr implements the NodeSetattrer interface. The tree is read-only.
func (f *File) Setattr(_ context.Context, _ *fuse.SetattrRequest, _ *fuse.SetattrResponse) error {
	return syscall.EROFS
}

// FileHandle serves reads out of one materialized snapshot.
type FileHandle struct {
	route    vfs.Route
	contents []byte
}

// Read implements the HandleReader interface.
func (fh *FileHandle) Read(_ context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	if req.Offset < 0 || req.Offset >= int64(len(fh.contents)) {
		resp.Data = nil
		return nil
	}
	end := req.Offset + int64(req.Size)
	if end > int64(len(fh.contents)) {
		end = int64(len(fh.contents))
	}
	resp.Data = fh.contents[req.Offset:end]
	return nil
}

// Release implements the HandleReleaser interface.
func (fh *FileHandle) Release(_ context.Context, _ *fuse.ReleaseRequest) error {
	fh.contents = nil
	return nil
}
