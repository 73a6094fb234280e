// Package conf resolves the project root every file adapter works against
// and owns the project settings document.
package conf

import (
	"path/filepath"
	"sync/atomic"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/rs/zerolog"
)

// Workspace is a project root. Adapters resolve their file names against
// its filesystem, so a Workspace built over memfs never touches disk.
type Workspace struct {
	path string
	fs   billy.Filesystem
	log  zerolog.Logger
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithFilesystem replaces the default OS filesystem rooted at the path.
func WithFilesystem(fsys billy.Filesystem) Option {
	return func(w *Workspace) { w.fs = fsys }
}

// WithLogger sets the logger adapters report commits to. The default
// discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(w *Workspace) { w.log = l }
}

// NewWorkspace returns a Workspace rooted at path ("" means ".").
func NewWorkspace(path string, opts ...Option) *Workspace {
	if path == "" {
		path = "."
	}
	w := &Workspace{path: path, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(w)
	}
	if w.fs == nil {
		w.fs = osfs.New(path)
	}
	return w
}

// Path returns the root directory.
func (w *Workspace) Path() string { return w.path }

// FS returns the filesystem rooted at Path.
func (w *Workspace) FS() billy.Filesystem { return w.fs }

// Logger returns the workspace logger.
func (w *Workspace) Logger() zerolog.Logger { return w.log }

// Join returns name as seen from outside the workspace, for messages.
func (w *Workspace) Join(name string) string {
	return filepath.Join(w.path, filepath.FromSlash(name))
}

var current atomic.Pointer[Workspace]

func init() {
	current.Store(NewWorkspace("."))
}

// Default returns the process-wide workspace.
func Default() *Workspace { return current.Load() }

// SetDefault replaces the process-wide workspace.
func SetDefault(w *Workspace) { current.Store(w) }

// SetPath points the process-wide workspace at dir, keeping its logger.
func SetPath(dir string) {
	SetDefault(NewWorkspace(dir, WithLogger(Default().Logger())))
}

// GetPath returns the process-wide project root.
func GetPath() string { return Default().Path() }

// Resolve returns w, or the process-wide workspace when w is nil.
func Resolve(w *Workspace) *Workspace {
	if w == nil {
		return Default()
	}
	return w
}
