// Package vfs abstracts the filesystem the snapshot middleware reads and
// writes through, per spec.md §4.1. It wraps a github.com/go-git/go-billy/v5
// filesystem — the same library internal/nfsmount/graphfs.go and
// internal/nfsmount/file.go use to expose a graph as a POSIX filesystem,
// here used in the opposite direction as the engine's read/write boundary —
// so the core can run against a real OS filesystem in production and an
// in-memory billy/memfs filesystem in tests, with identical semantics.
package vfs

import (
	"errors"
	"fmt"
)

// ErrIO is the sentinel error kind for filesystem operation failures
// (spec.md §7's IoError). Concrete errors wrap it with fmt.Errorf("%w").
var ErrIO = errors.New("vfs: io error")

// EventKind tags an FsEvent (spec.md §4.1).
type EventKind int

const (
	Created EventKind = iota
	Modified
	Removed
)

func (k EventKind) String() string {
	switch k {
	case Created:
		return "Created"
	case Modified:
		return "Modified"
	case Removed:
		return "Removed"
	default:
		return "Unknown"
	}
}

// FsEvent is a single filesystem change notification (spec.md §4.1).
type FsEvent struct {
	Kind EventKind
	Path string
}

// Vfs is the capability set spec.md §4.1 requires: read, write, directory
// listing, existence checks, and a channel of watch events with
// write-echo suppression.
type Vfs interface {
	Read(path string) ([]byte, error)
	ReadText(path string) (string, error)
	Write(path string, data []byte) error
	List(path string) ([]string, error)
	Exists(path string) bool
	IsDir(path string) bool

	// Watch starts (if not already started) the background watcher and
	// returns the channel of FsEvents. Safe to call more than once; returns
	// the same channel every time.
	Watch() <-chan FsEvent

	// Close stops the watcher and releases any held resources.
	Close() error
}

func ioErr(op, path string, err error) error {
	return fmt.Errorf("%w: %s %s: %v", ErrIO, op, path, err)
}
