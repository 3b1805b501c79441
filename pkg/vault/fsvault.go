package vault

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// FSVault is a Vault backed by a directory on disk. Hidden entries
// (dot-prefixed) are skipped during enumeration; the host application's
// own state directories live there.
type FSVault struct {
	root   string
	logger *slog.Logger
}

// NewFSVault opens the vault rooted at dir. The directory must exist.
func NewFSVault(dir string, logger *slog.Logger) (*FSVault, error) {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving vault root %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("opening vault root %q: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault root %q is not a directory", dir)
	}
	return &FSVault{root: abs, logger: logger}, nil
}

// Root returns the absolute on-disk root of the vault.
func (v *FSVault) Root() string { return v.root }

func (v *FSVault) abs(p string) string {
	return filepath.Join(v.root, filepath.FromSlash(normalize(p)))
}

func (v *FSVault) rel(abs string) string {
	rel, err := filepath.Rel(v.root, abs)
	if err != nil {
		return ""
	}
	return filepath.ToSlash(rel)
}

func hiddenSegment(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}

func (v *FSVault) Files(ctx context.Context) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(v.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		name := d.Name()
		if d.IsDir() {
			if p != v.root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		paths = append(paths, v.rel(p))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking vault: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

func (v *FSVault) ReadFile(ctx context.Context, p string) (string, error) {
	data, err := os.ReadFile(v.abs(p))
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %q", ErrNotFound, p)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (v *FSVault) WriteFile(ctx context.Context, p, content string) error {
	target := v.abs(p)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	return os.WriteFile(target, []byte(content), 0o644)
}

func (v *FSVault) CreateFolder(ctx context.Context, p string) error {
	return os.MkdirAll(v.abs(p), 0o755)
}

func (v *FSVault) Exists(ctx context.Context, p string) (bool, error) {
	_, err := os.Stat(v.abs(p))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (v *FSVault) List(ctx context.Context, p string) (Children, error) {
	entries, err := os.ReadDir(v.abs(p))
	if errors.Is(err, os.ErrNotExist) {
		return Children{}, fmt.Errorf("%w: %q", ErrNotFound, p)
	}
	if err != nil {
		return Children{}, err
	}
	var out Children
	base := normalize(p)
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		child := name
		if base != "" {
			child = base + "/" + name
		}
		if entry.IsDir() {
			out.Folders = append(out.Folders, child)
		} else {
			out.Files = append(out.Files, child)
		}
	}
	sort.Strings(out.Folders)
	sort.Strings(out.Files)
	return out, nil
}

func (v *FSVault) Rename(ctx context.Context, oldPath, newPath string) error {
	target := v.abs(newPath)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	return os.Rename(v.abs(oldPath), target)
}

// fsWatcher adapts fsnotify to the Watcher interface. fsnotify watches a
// single directory at a time, so every folder in the tree is registered
// up front and newly created folders are registered as their create
// events arrive.
type fsWatcher struct {
	vault   *FSVault
	watcher *fsnotify.Watcher
	events  chan Event
	done    chan struct{}
}

// Watch starts watching the whole vault tree for changes.
func (v *FSVault) Watch(ctx context.Context) (Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	w := &fsWatcher{
		vault:   v,
		watcher: fsw,
		events:  make(chan Event, 64),
		done:    make(chan struct{}),
	}
	err = filepath.WalkDir(v.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != v.root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return fsw.Add(p)
	})
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("registering vault folders: %w", err)
	}
	go w.loop(ctx)
	return w, nil
}

func (w *fsWatcher) Events() <-chan Event { return w.events }

func (w *fsWatcher) Close() error {
	select {
	case <-w.done:
		return nil
	default:
	}
	close(w.done)
	return w.watcher.Close()
}

func (w *fsWatcher) loop(ctx context.Context) {
	defer close(w.events)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.vault.logger.Warn("vault watcher error", "error", err)
		}
	}
}

func (w *fsWatcher) handle(ev fsnotify.Event) {
	rel := w.vault.rel(ev.Name)
	if rel == "" || rel == "." {
		return
	}
	isFolder := false
	if info, err := os.Stat(ev.Name); err == nil {
		isFolder = info.IsDir()
	} else {
		// The entry is already gone; folders in this vault carry no
		// extension, files do.
		isFolder = path.Ext(rel) == ""
	}
	if isFolder && ev.Op.Has(fsnotify.Create) && !hiddenSegment(rel) {
		if err := w.watcher.Add(ev.Name); err != nil {
			w.vault.logger.Warn("watching new folder", "path", rel, "error", err)
		}
	}
	out := Event{Path: rel, Folder: isFolder}
	switch {
	case ev.Op.Has(fsnotify.Create):
		out.Kind = EventCreate
	case ev.Op.Has(fsnotify.Write):
		out.Kind = EventModify
	case ev.Op.Has(fsnotify.Remove):
		out.Kind = EventDelete
	case ev.Op.Has(fsnotify.Rename):
		out.Kind = EventRename
	default:
		return
	}
	select {
	case w.events <- out:
	case <-w.done:
	}
}
