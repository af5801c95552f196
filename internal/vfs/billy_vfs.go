package vfs

import (
	"fmt"
	"io"
	"os"
	"sync"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/helper/chroot"
	"github.com/go-git/go-billy/v5/osfs"
)

// billyVfs implements Vfs on top of a billy.Filesystem rooted (via
// helper/chroot, the same wrapper internal/nfsmount/graphfs.go uses) at the
// project's root path.
type billyVfs struct {
	fs billy.Filesystem

	watchOnce sync.Once
	watcher   *watcher // nil until Watch() is first called
	watch     bool     // whether watching was requested at construction
}

// New returns a Vfs rooted at root (an absolute or relative OS path). When
// watch is true, Watch() starts an fsnotify-backed background watcher;
// when false, Watch() returns an already-closed channel (matching
// original_source/src/core/mod.rs's `Vfs::new(watch)` constructor, which
// takes the same boolean).
func New(root string, watch bool) (Vfs, error) {
	abs, err := osAbs(root)
	if err != nil {
		return nil, ioErr("resolve", root, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, ioErr("mkdir", abs, err)
	}

	// osfs.New already chroots at its argument, so the base is the OS root
	// and the single chroot to abs is applied here.
	base := osfs.New("/")
	rooted := chroot.New(base, abs)

	return &billyVfs{fs: rooted, watch: watch}, nil
}

// NewFromFilesystem wraps an already-constructed billy.Filesystem (e.g. an
// in-memory memfs.New() for tests) without chrooting it further.
func NewFromFilesystem(fs billy.Filesystem, watch bool) Vfs {
	return &billyVfs{fs: fs, watch: watch}
}

func (v *billyVfs) Read(path string) ([]byte, error) {
	f, err := v.fs.Open(path)
	if err != nil {
		return nil, ioErr("read", path, err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, ioErr("read", path, err)
	}
	return data, nil
}

func (v *billyVfs) ReadText(path string) (string, error) {
	data, err := v.Read(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (v *billyVfs) Write(path string, data []byte) error {
	if v.watcher != nil {
		v.watcher.suppress(path, data)
	}

	f, err := v.fs.Create(path)
	if err != nil {
		return ioErr("write", path, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return ioErr("write", path, err)
	}
	if err := f.Close(); err != nil {
		return ioErr("write", path, err)
	}
	return nil
}

func (v *billyVfs) List(path string) ([]string, error) {
	entries, err := v.fs.ReadDir(path)
	if err != nil {
		return nil, ioErr("list", path, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, v.fs.Join(path, e.Name()))
	}
	return names, nil
}

func (v *billyVfs) Exists(path string) bool {
	_, err := v.fs.Stat(path)
	return err == nil
}

func (v *billyVfs) IsDir(path string) bool {
	info, err := v.fs.Stat(path)
	return err == nil && info.IsDir()
}

func (v *billyVfs) Watch() <-chan FsEvent {
	v.watchOnce.Do(func() {
		root := v.fs.Root()
		w, err := newWatcher(root, v.watch)
		if err != nil {
			// A watcher that failed to start still yields a (closed, empty)
			// channel rather than a nil one, so callers can range over it
			// unconditionally; the failure is not fatal to the rest of the
			// engine (spec.md §7: VFS errors are logged, not propagated as
			// a crash of the whole process).
			w = newNoopWatcher()
		}
		v.watcher = w
	})
	return v.watcher.events
}

func (v *billyVfs) Close() error {
	if v.watcher != nil {
		return v.watcher.Close()
	}
	return nil
}

func osAbs(path string) (string, error) {
	if path == "" {
		return ".", nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if path[0] == '/' {
		return path, nil
	}
	return fmt.Sprintf("%s/%s", wd, path), nil
}
