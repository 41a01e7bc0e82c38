package fd

import (
	"fmt"
	"sync"
)

const (
	Read  = 0x1
	Write = 0x2
)

// File is an open file shared by every descriptor that duplicates it.
type File struct {
	mux   sync.Mutex
	name  string
	perms int
	refs  int
}

// Open returns a file holding one reference.
func Open(name string, perms int) *File {
	return &File{name: name, perms: perms, refs: 1}
}

// Name returns the path the file was opened with.
func (f *File) Name() string { return f.name }

// Perms returns the access mode.
func (f *File) Perms() int { return f.perms }

// Dup adds a reference.
func (f *File) Dup() *File {
	f.mux.Lock()
	defer f.mux.Unlock()
	if f.refs < 1 {
		panic(fmt.Sprintf("filedup: %s is closed", f.name))
	}
	f.refs++
	return f
}

// Close drops a reference and reports whether it was the last one.
func (f *File) Close() bool {
	f.mux.Lock()
	defer f.mux.Unlock()
	if f.refs < 1 {
		panic(fmt.Sprintf("fileclose: %s is closed", f.name))
	}
	f.refs--
	return f.refs == 0
}

// Refs returns the number of references.
func (f *File) Refs() int {
	f.mux.Lock()
	defer f.mux.Unlock()
	return f.refs
}

// Inode is an in-memory directory reference used as a working directory.
type Inode struct {
	mux  sync.Mutex
	path string
	refs int
}

// NewInode returns an inode holding one reference.
func NewInode(path string) *Inode {
	return &Inode{path: path, refs: 1}
}

// Path returns the inode path.
func (i *Inode) Path() string { return i.path }

// Dup adds a reference.
func (i *Inode) Dup() *Inode {
	i.mux.Lock()
	defer i.mux.Unlock()
	i.refs++
	return i
}

// Put drops a reference.
func (i *Inode) Put() {
	i.mux.Lock()
	defer i.mux.Unlock()
	if i.refs < 1 {
		panic(fmt.Sprintf("iput: %s has no references", i.path))
	}
	i.refs--
}

// Refs returns the number of references.
func (i *Inode) Refs() int {
	i.mux.Lock()
	defer i.mux.Unlock()
	return i.refs
}
