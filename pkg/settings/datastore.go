package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"cloud.google.com/go/datastore"

	"github.com/orgvault/orgvault/pkg/model"
)

const teamRecordKind = "TeamRecord"

// DataStore persists canonical records in Google Cloud Datastore, for
// hosted deployments that share one vault's structure across machines.
// Records are stored as opaque JSON payloads keyed by lowercase slug.
type DataStore struct {
	client *datastore.Client
	logger *slog.Logger
}

type teamRecordEntity struct {
	Data []byte `datastore:",noindex"`
}

// NewDataStore returns a datastore-backed settings store.
func NewDataStore(client *datastore.Client, logger *slog.Logger) *DataStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataStore{client: client, logger: logger}
}

func (s *DataStore) recordKey(slug string) *datastore.Key {
	return datastore.NameKey(teamRecordKind, strings.ToLower(slug), nil)
}

func (s *DataStore) LoadRecords(ctx context.Context) ([]model.TeamRecord, error) {
	var entities []teamRecordEntity
	q := datastore.NewQuery(teamRecordKind)
	if _, err := s.client.GetAll(ctx, q, &entities); err != nil {
		return nil, fmt.Errorf("loading team records: %w", err)
	}
	records := make([]model.TeamRecord, 0, len(entities))
	for _, entity := range entities {
		var record model.TeamRecord
		if err := json.Unmarshal(entity.Data, &record); err != nil {
			return nil, fmt.Errorf("decoding team record: %w", err)
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *DataStore) SaveRecords(ctx context.Context, records []model.TeamRecord) error {
	keep := make(map[string]bool, len(records))
	keys := make([]*datastore.Key, 0, len(records))
	entities := make([]*teamRecordEntity, 0, len(records))
	for _, record := range records {
		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		keep[strings.ToLower(record.Slug)] = true
		keys = append(keys, s.recordKey(record.Slug))
		entities = append(entities, &teamRecordEntity{Data: data})
	}
	if len(keys) > 0 {
		if _, err := s.client.PutMulti(ctx, keys, entities); err != nil {
			return fmt.Errorf("saving team records: %w", err)
		}
	}

	// Drop records whose slugs are gone from the canonical set.
	q := datastore.NewQuery(teamRecordKind).KeysOnly()
	existing, err := s.client.GetAll(ctx, q, nil)
	if err != nil {
		return fmt.Errorf("listing team record keys: %w", err)
	}
	var stale []*datastore.Key
	for _, key := range existing {
		if !keep[key.Name] {
			stale = append(stale, key)
		}
	}
	if len(stale) > 0 {
		if err := s.client.DeleteMulti(ctx, stale); err != nil {
			return fmt.Errorf("deleting stale team records: %w", err)
		}
		s.logger.Debug("dropped stale team records", "count", len(stale))
	}
	return nil
}
