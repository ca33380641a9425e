package fusefs

import (
	"bazil.org/fuse/fs"
)

// Directory is the surface a directory node provides. Mutating methods are
// present but always refuse with EROFS.
type Directory interface {
	fs.Node
	fs.NodeStringLookuper
	fs.HandleReadDirAller
}

// RegularFile is the surface a file node provides.
type RegularFile interface {
	fs.Node
	fs.NodeOpener
}

// Handle is an open read-only file handle.
type Handle interface {
	fs.Handle
	fs.HandleReader
	fs.HandleReleaser
}

var (
	_ fs.FS            = (*FS)(nil)
	_ Directory        = (*Root)(nil)
	_ Directory        = (*Dir)(nil)
	_ fs.NodeMkdirer   = (*Dir)(nil)
	_ fs.NodeCreater   = (*Dir)(nil)
	_ fs.NodeRemover   = (*Dir)(nil)
	_ fs.NodeRenamer   = (*Dir)(nil)
	_ RegularFile      = (*File)(nil)
	_ fs.NodeSetattrer = (*File)(nil)
	_ Handle           = (*FileHandle)(nil)
)
