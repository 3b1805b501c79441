// Package vault defines the document-store port consumed by the engine
// and provides an in-memory implementation for tests and a disk-backed
// implementation for the CLI. Paths are vault-relative, use forward
// slashes and never start or end with a slash; the vault root is "".
package vault

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a file or folder does not exist.
var ErrNotFound = errors.New("vault: not found")

// Children lists the direct folders and files beneath a folder.
type Children struct {
	Folders []string
	Files   []string
}

// Vault is the narrow read/write interface the engine consumes. The
// underlying tree is externally shared and mutable at any time, so
// callers never assume it is stable between an Exists check and a
// subsequent write.
type Vault interface {
	// Files returns the paths of every loaded file, sorted.
	Files(ctx context.Context) ([]string, error)
	// ReadFile returns the content of the file at path.
	ReadFile(ctx context.Context, path string) (string, error)
	// WriteFile creates or overwrites the file at path, creating parent
	// folders as needed.
	WriteFile(ctx context.Context, path, content string) error
	// CreateFolder creates the folder at path and any missing parents.
	// Creating an existing folder is a no-op.
	CreateFolder(ctx context.Context, path string) error
	// Exists reports whether a file or folder exists at path.
	Exists(ctx context.Context, path string) (bool, error)
	// List returns the direct children of the folder at path, sorted.
	List(ctx context.Context, path string) (Children, error)
	// Rename moves a file or folder, carrying its subtree along.
	Rename(ctx context.Context, oldPath, newPath string) error
}

// EventKind classifies a change notification.
type EventKind int

const (
	EventCreate EventKind = iota
	EventModify
	EventDelete
	EventRename
)

// Event is a single change notification from the store.
type Event struct {
	Kind EventKind
	// Path of the changed file or folder, vault-relative.
	Path string
	// OldPath is set for renames.
	OldPath string
	// Folder reports whether the event concerns a folder.
	Folder bool
}

// Watcher streams change events until closed.
type Watcher interface {
	Events() <-chan Event
	Close() error
}

// Watchable is implemented by vaults that can emit change notifications.
type Watchable interface {
	Watch(ctx context.Context) (Watcher, error)
}
