package vault

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
)

// MemVault is an in-memory Vault used in tests and by embedders that
// manage their own file tree. It is safe for concurrent use and emits
// change events to watchers created with Watch.
type MemVault struct {
	mu       sync.RWMutex
	files    map[string]string
	folders  map[string]bool
	watchers []*memWatcher
}

// NewMemVault returns an empty in-memory vault.
func NewMemVault() *MemVault {
	return &MemVault{
		files:   make(map[string]string),
		folders: make(map[string]bool),
	}
}

func normalize(p string) string {
	return strings.Trim(path.Clean("/"+p), "/")
}

func (v *MemVault) Files(ctx context.Context) ([]string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	paths := make([]string, 0, len(v.files))
	for p := range v.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}

func (v *MemVault) ReadFile(ctx context.Context, p string) (string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	content, ok := v.files[normalize(p)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNotFound, p)
	}
	return content, nil
}

func (v *MemVault) WriteFile(ctx context.Context, p, content string) error {
	p = normalize(p)
	if p == "" {
		return fmt.Errorf("vault: empty file path")
	}
	v.mu.Lock()
	_, existed := v.files[p]
	v.files[p] = content
	v.addParents(p)
	v.mu.Unlock()
	kind := EventCreate
	if existed {
		kind = EventModify
	}
	v.emit(Event{Kind: kind, Path: p})
	return nil
}

func (v *MemVault) CreateFolder(ctx context.Context, p string) error {
	p = normalize(p)
	if p == "" {
		return nil
	}
	v.mu.Lock()
	existed := v.folders[p]
	v.folders[p] = true
	v.addParents(p)
	v.mu.Unlock()
	if !existed {
		v.emit(Event{Kind: EventCreate, Path: p, Folder: true})
	}
	return nil
}

// addParents records every ancestor folder of p. Caller holds the lock.
func (v *MemVault) addParents(p string) {
	for dir := path.Dir(p); dir != "." && dir != "/"; dir = path.Dir(dir) {
		v.folders[dir] = true
	}
}

func (v *MemVault) Exists(ctx context.Context, p string) (bool, error) {
	p = normalize(p)
	v.mu.RLock()
	defer v.mu.RUnlock()
	if p == "" {
		return true, nil
	}
	if _, ok := v.files[p]; ok {
		return true, nil
	}
	return v.folders[p], nil
}

func (v *MemVault) List(ctx context.Context, p string) (Children, error) {
	p = normalize(p)
	v.mu.RLock()
	defer v.mu.RUnlock()
	if p != "" && !v.folders[p] {
		return Children{}, fmt.Errorf("%w: %q", ErrNotFound, p)
	}
	var out Children
	for folder := range v.folders {
		if isDirectChild(p, folder) {
			out.Folders = append(out.Folders, folder)
		}
	}
	for file := range v.files {
		if isDirectChild(p, file) {
			out.Files = append(out.Files, file)
		}
	}
	sort.Strings(out.Folders)
	sort.Strings(out.Files)
	return out, nil
}

func isDirectChild(parent, child string) bool {
	if parent == "" {
		return child != "" && !strings.Contains(child, "/")
	}
	rest, ok := strings.CutPrefix(child, parent+"/")
	return ok && rest != "" && !strings.Contains(rest, "/")
}

func (v *MemVault) Rename(ctx context.Context, oldPath, newPath string) error {
	oldPath, newPath = normalize(oldPath), normalize(newPath)
	if oldPath == "" || newPath == "" {
		return fmt.Errorf("vault: empty rename path")
	}
	v.mu.Lock()
	var isFolder bool
	if content, ok := v.files[oldPath]; ok {
		delete(v.files, oldPath)
		v.files[newPath] = content
		v.addParents(newPath)
	} else if v.folders[oldPath] {
		isFolder = true
		delete(v.folders, oldPath)
		v.folders[newPath] = true
		v.addParents(newPath)
		for p, content := range v.files {
			if rest, ok := strings.CutPrefix(p, oldPath+"/"); ok {
				delete(v.files, p)
				v.files[newPath+"/"+rest] = content
			}
		}
		for p := range v.folders {
			if rest, ok := strings.CutPrefix(p, oldPath+"/"); ok {
				delete(v.folders, p)
				v.folders[newPath+"/"+rest] = true
			}
		}
	} else {
		v.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrNotFound, oldPath)
	}
	v.mu.Unlock()
	v.emit(Event{Kind: EventRename, Path: newPath, OldPath: oldPath, Folder: isFolder})
	return nil
}

// Delete removes a file or folder subtree. Not part of the Vault port;
// tests use it to simulate external edits.
func (v *MemVault) Delete(p string) {
	p = normalize(p)
	v.mu.Lock()
	var isFolder bool
	delete(v.files, p)
	if v.folders[p] {
		isFolder = true
		delete(v.folders, p)
		for child := range v.files {
			if strings.HasPrefix(child, p+"/") {
				delete(v.files, child)
			}
		}
		for child := range v.folders {
			if strings.HasPrefix(child, p+"/") {
				delete(v.folders, child)
			}
		}
	}
	v.mu.Unlock()
	v.emit(Event{Kind: EventDelete, Path: p, Folder: isFolder})
}

type memWatcher struct {
	vault  *MemVault
	events chan Event
	once   sync.Once
}

func (w *memWatcher) Events() <-chan Event { return w.events }

func (w *memWatcher) Close() error {
	w.once.Do(func() {
		w.vault.mu.Lock()
		for i, other := range w.vault.watchers {
			if other == w {
				w.vault.watchers = append(w.vault.watchers[:i], w.vault.watchers[i+1:]...)
				break
			}
		}
		w.vault.mu.Unlock()
		close(w.events)
	})
	return nil
}

// Watch returns a watcher fed by subsequent mutations of the vault.
func (v *MemVault) Watch(ctx context.Context) (Watcher, error) {
	w := &memWatcher{vault: v, events: make(chan Event, 64)}
	v.mu.Lock()
	v.watchers = append(v.watchers, w)
	v.mu.Unlock()
	return w, nil
}

func (v *MemVault) emit(ev Event) {
	v.mu.RLock()
	watchers := append([]*memWatcher(nil), v.watchers...)
	v.mu.RUnlock()
	for _, w := range watchers {
		select {
		case w.events <- ev:
		default:
			// slow consumer, drop; the next rebuild re-scans everything
		}
	}
}
