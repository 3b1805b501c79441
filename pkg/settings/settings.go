// Package settings persists the canonical team record set between runs.
// The engine recomputes records on every pass; the store only retains the
// last merged set so root-path overrides survive restarts.
package settings

import (
	"context"

	"github.com/orgvault/orgvault/pkg/model"
)

// Store abstracts canonical-record persistence (can be swapped for
// persistent implementations).
type Store interface {
	LoadRecords(ctx context.Context) ([]model.TeamRecord, error)
	SaveRecords(ctx context.Context, records []model.TeamRecord) error
}
