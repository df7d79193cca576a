// Package bridge is the plugin's view of the launcher host: file writes,
// notifications, and window control.
package bridge

import (
	"github.com/starford/quickseq/internal/apperr"
	"github.com/starford/quickseq/internal/storage"
)

// Host is the set of launcher capabilities the plugin relies on.
type Host interface {
	// WriteFile and CopyFile store under root; path is relative to it.
	WriteFile(root storage.Provider, path string, data []byte) error
	CopyFile(root storage.Provider, src, path string) error
	Notify(msg string)
	OpenURL(url string)
	HideWindow()
	ExitPlugin()
}

// Emitter forwards UI requests to whatever is displaying the plugin.
type Emitter interface {
	Notify(msg string)
	OpenURL(url string)
	HideWindow()
	ExitPlugin()
}

// Local implements Host on the local file system.
type Local struct {
	Emitter
}

// NewLocal returns a Host that writes files atomically and forwards UI
// requests to e.
func NewLocal(e Emitter) *Local {
	return &Local{Emitter: e}
}

// WriteFile atomically writes data to path under root.
func (l *Local) WriteFile(root storage.Provider, path string, data []byte) error {
	if err := root.Write(path, data); err != nil {
		return &apperr.FileSystemError{Op: "write", Path: absPath(root, path), Err: err}
	}
	return nil
}

// CopyFile atomically copies the absolute file src to path under root.
func (l *Local) CopyFile(root storage.Provider, src, path string) error {
	if err := root.Copy(src, path); err != nil {
		return &apperr.FileSystemError{Op: "copy", Path: absPath(root, path), Err: err}
	}
	return nil
}

// absPath is path under root for error reports; an escaping path is kept as given.
func absPath(root storage.Provider, path string) string {
	if abs, err := root.Resolve(path); err == nil {
		return abs
	}
	return path
}
