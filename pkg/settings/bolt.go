package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.etcd.io/bbolt"

	"github.com/orgvault/orgvault/pkg/model"
)

// BoltStore persists canonical records in a BoltDB file.
// Bucket: "teams" -> key: lowercase slug, value: JSON-encoded TeamRecord.
type BoltStore struct {
	db *bbolt.DB
}

var teamsBucket = []byte("teams")

// NewBoltStore opens (or creates) the database at path.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("opening settings db %q: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(teamsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

// Close releases the underlying database file.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) LoadRecords(ctx context.Context) ([]model.TeamRecord, error) {
	var records []model.TeamRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(teamsBucket)
		return bucket.ForEach(func(k, v []byte) error {
			var record model.TeamRecord
			if err := json.Unmarshal(v, &record); err != nil {
				return fmt.Errorf("decoding record %q: %w", k, err)
			}
			records = append(records, record)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// SaveRecords replaces the stored set wholesale: the canonical records
// are owned by the merge pass, so stale slugs are deleted rather than
// retained.
func (s *BoltStore) SaveRecords(ctx context.Context, records []model.TeamRecord) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(teamsBucket)
		keep := make(map[string]bool, len(records))
		for _, record := range records {
			key := strings.ToLower(record.Slug)
			keep[key] = true
			data, err := json.Marshal(record)
			if err != nil {
				return err
			}
			if err := bucket.Put([]byte(key), data); err != nil {
				return err
			}
		}
		var stale [][]byte
		err := bucket.ForEach(func(k, v []byte) error {
			if !keep[string(k)] {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}
