// Package orgvault recovers team and organization structure from the
// naming conventions of a markdown document vault and keeps a canonical
// record set reconciled against what the folders actually say.
package orgvault

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/orgvault/orgvault/pkg/discovery"
	"github.com/orgvault/orgvault/pkg/model"
	"github.com/orgvault/orgvault/pkg/reconcile"
	"github.com/orgvault/orgvault/pkg/settings"
	"github.com/orgvault/orgvault/pkg/slug"
	"github.com/orgvault/orgvault/pkg/structure"
	"github.com/orgvault/orgvault/pkg/vault"
)

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used by the service and its scanner.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithDebounce sets the quiet period for watch-triggered rebuilds.
func WithDebounce(d time.Duration) Option {
	return func(s *Service) { s.debounce = d }
}

// Service ties discovery, reconciliation and persistence together. All
// methods are safe for concurrent use.
type Service struct {
	vault    vault.Vault
	store    settings.Store
	scanner  *discovery.Scanner
	logger   *slog.Logger
	debounce time.Duration

	mu        sync.RWMutex
	records   []model.TeamRecord
	structure model.OrgStructure
}

// New builds a Service over the given vault and record store.
func New(v vault.Vault, store settings.Store, opts ...Option) *Service {
	s := &Service{
		vault:    v,
		store:    store,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		debounce: structure.DefaultDebounce,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.scanner = discovery.NewScanner(v, s.logger)
	return s
}

// Load seeds the in-memory state from the record store without
// touching the vault. Call it once before the first Refresh so stored
// root path overrides survive the reconciliation pass.
func (s *Service) Load(ctx context.Context) error {
	records, err := s.store.LoadRecords(ctx)
	if err != nil {
		return fmt.Errorf("loading stored records: %w", err)
	}
	s.mu.Lock()
	s.records = records
	s.structure = structure.Compose(records)
	s.mu.Unlock()
	return nil
}

// Refresh runs a full discovery pass, reconciles the result against the
// current records and persists the outcome. A failed scan keeps the
// previous state and is not an error, so a transient read failure never
// wipes the structure.
func (s *Service) Refresh(ctx context.Context) error {
	snap := s.scanner.SafeScan(ctx, nil)
	if snap == nil {
		s.logger.Warn("scan failed, keeping previous structure")
		return nil
	}

	s.mu.RLock()
	previous := s.records
	s.mu.RUnlock()

	records := reconcile.Merge(ctx, s.vault, snap.Teams, previous)
	if err := s.store.SaveRecords(ctx, records); err != nil {
		return fmt.Errorf("persisting records: %w", err)
	}

	s.mu.Lock()
	s.records = records
	s.structure = structure.Compose(records)
	s.mu.Unlock()
	return nil
}

// OrgStructure returns the composed tree from the last Load or Refresh.
func (s *Service) OrgStructure() model.OrgStructure {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.structure
}

// Records returns the canonical record set from the last Load or Refresh.
func (s *Service) Records() []model.TeamRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.TeamRecord, len(s.records))
	copy(out, s.records)
	return out
}

// TeamForPath resolves the team owning the given vault path. The
// deepest team whose root path contains the path wins. When no root
// path contains it, a path segment starting with a team's display name
// is accepted as a fallback, so files in a renamed-but-unreconciled
// folder still resolve.
func (s *Service) TeamForPath(p string) (model.TeamRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p = strings.Trim(p, "/")
	var best model.TeamRecord
	bestLen := -1
	for _, rec := range s.records {
		root := strings.Trim(rec.RootPath, "/")
		if root == "" {
			continue
		}
		if (p == root || strings.HasPrefix(p, root+"/")) && len(root) > bestLen {
			best, bestLen = rec, len(root)
		}
	}
	if bestLen >= 0 {
		return best, true
	}

	for _, seg := range strings.Split(p, "/") {
		for _, rec := range s.records {
			if rec.DisplayName != "" && strings.HasPrefix(seg, rec.DisplayName) {
				return rec, true
			}
		}
	}
	return model.TeamRecord{}, false
}

// TeamMembersForPath returns the members of the team owning the path,
// already grouped into buckets.
func (s *Service) TeamMembersForPath(p string) ([]model.MemberRecord, model.MemberBuckets, bool) {
	rec, ok := s.TeamForPath(p)
	if !ok {
		return nil, model.MemberBuckets{}, false
	}
	return rec.Members, structure.BucketizeMembers(rec.Members), true
}

// Watch subscribes to vault events and keeps the structure current,
// coalescing bursts of changes into single refreshes. It blocks until
// the context is cancelled. The vault must implement vault.Watchable.
func (s *Service) Watch(ctx context.Context) error {
	w, ok := s.vault.(vault.Watchable)
	if !ok {
		return fmt.Errorf("vault %T does not support watching", s.vault)
	}
	watcher, err := w.Watch(ctx)
	if err != nil {
		return fmt.Errorf("starting vault watcher: %w", err)
	}
	defer watcher.Close()

	rebuilder := structure.NewRebuilder(func() {
		if err := s.Refresh(context.WithoutCancel(ctx)); err != nil {
			s.logger.Error("refresh failed", "error", err)
		}
	}, s.debounce, s.logger)
	defer rebuilder.Close()

	rebuilder.Run(ctx, watcher.Events())
	return ctx.Err()
}

// DisplayPath renders a vault path with the slug suffixes stripped from
// each team folder segment, for human-facing output.
func DisplayPath(p string) string {
	segs := strings.Split(strings.Trim(p, "/"), "/")
	for i, seg := range segs {
		if name, _, ok := slug.ParseTeamFolderName(seg); ok {
			segs[i] = name
		}
	}
	return path.Join(segs...)
}
