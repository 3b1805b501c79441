package structure

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/orgvault/orgvault/pkg/vault"
)

// DefaultDebounce is the trailing quiet period before a rebuild fires.
const DefaultDebounce = 300 * time.Millisecond

// Rebuilder coalesces vault change notifications into single rebuild
// calls. Qualifying events rearm a trailing debounce timer, so a burst of
// edits produces exactly one rebuild after the quiet period. At most one
// rebuild is pending at a time; a new event supersedes the pending timer
// rather than stacking another.
type Rebuilder struct {
	debounce time.Duration
	rebuild  func()
	logger   *slog.Logger

	mu     sync.Mutex
	timer  *time.Timer
	closed bool
}

// NewRebuilder creates a rebuilder invoking rebuild after each debounced
// burst. A zero debounce uses DefaultDebounce; a nil logger discards.
func NewRebuilder(rebuild func(), debounce time.Duration, logger *slog.Logger) *Rebuilder {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Rebuilder{debounce: debounce, rebuild: rebuild, logger: logger}
}

// Notify feeds one change event into the debounce window. Irrelevant
// events (non-markdown files, hidden paths) are dropped.
func (r *Rebuilder) Notify(ev vault.Event) {
	if !Relevant(ev) {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	if r.timer == nil {
		r.timer = time.AfterFunc(r.debounce, r.fire)
		return
	}
	r.timer.Reset(r.debounce)
}

func (r *Rebuilder) fire() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.timer = nil
	r.mu.Unlock()
	r.logger.Debug("rebuilding after vault changes")
	r.rebuild()
}

// Run consumes events until ctx is done or the channel closes.
func (r *Rebuilder) Run(ctx context.Context, events <-chan vault.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			r.Notify(ev)
		}
	}
}

// Close cancels any pending rebuild permanently.
func (r *Rebuilder) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

// Relevant reports whether an event can change detection: any folder
// change (folder renames change the grammar) or a markdown file change.
// Hidden and system paths are ignored.
func Relevant(ev vault.Event) bool {
	if hiddenPath(ev.Path) && (ev.OldPath == "" || hiddenPath(ev.OldPath)) {
		return false
	}
	if ev.Folder {
		return true
	}
	return strings.HasSuffix(strings.ToLower(ev.Path), ".md")
}

func hiddenPath(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}
