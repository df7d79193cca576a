// Package storage writes and copies files atomically under a root directory.
package storage

// Provider is the set of file operations scoped to one root directory.
// Every path is relative to the root and may not escape it.
type Provider interface {
	// Resolve maps path to an absolute path under root.
	Resolve(path string) (string, error)
	// Exists reports whether something is already stored at path.
	Exists(path string) (bool, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Copy atomically copies the absolute file src to path.
	Copy(src, path string) error
}

var _ Provider = (*FS)(nil)
