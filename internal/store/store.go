package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/reelkeep/reelkeep/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket layout: one top-level bucket per concern, with a nested bucket per
// user scope under bucketRecords. Record keys are zero-padded sequence
// numbers so cursor order is insertion order.
var bucketRecords = []byte("records")

// RecordStore implements domain.RecordStore using BoltDB.
type RecordStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects the memory-mode state

	// Memory-only mode (no persistence) when db is nil. Used by tests and
	// when no data dir is configured.
	mem    map[string]map[string][]byte // scope -> key -> record JSON
	memSeq map[string]uint64            // scope -> last sequence
}

// NewRecordStore opens (or creates) the record database under dataDir.
// An empty dataDir selects memory-only mode.
func NewRecordStore(dataDir string) (*RecordStore, error) {
	if dataDir == "" {
		return &RecordStore{
			mem:    make(map[string]map[string][]byte),
			memSeq: make(map[string]uint64),
		}, nil
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dataDir, "reelkeep.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketRecords)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &RecordStore{db: db}, nil
}

func (s *RecordStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// ListAll returns every record in the scope in insertion order.
func (s *RecordStore) ListAll(ctx context.Context, scope string) ([]domain.MovieRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Always a non-nil slice so callers can tell "empty" from "not loaded"
	records := make([]domain.MovieRecord, 0)

	if s.db == nil {
		s.mu.RLock()
		defer s.mu.RUnlock()
		keys := make([]string, 0, len(s.mem[scope]))
		for k := range s.mem[scope] {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			var rec domain.MovieRecord
			if err := json.Unmarshal(s.mem[scope][k], &rec); err != nil {
				return nil, err
			}
			records = append(records, rec)
		}
		return records, nil
	}

	err := s.db.View(func(tx *bolt.Tx) error {
		b := scopeBucket(tx, scope)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var rec domain.MovieRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			records = append(records, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Create persists a new record and returns its assigned key. Timestamps are
// set here; a caller-supplied ID is ignored.
func (s *RecordStore) Create(ctx context.Context, scope string, record domain.MovieRecord) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	now := time.Now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = now
	}

	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.memSeq[scope]++
		record.ID = recordKey(s.memSeq[scope])
		data, err := json.Marshal(record)
		if err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrStoreWriteFailed, err)
		}
		if s.mem[scope] == nil {
			s.mem[scope] = make(map[string][]byte)
		}
		s.mem[scope][record.ID] = data
		return record.ID, nil
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.Bucket(bucketRecords).CreateBucketIfNotExists([]byte(scope))
		if err != nil {
			return err
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		record.ID = recordKey(seq)
		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		return b.Put([]byte(record.ID), data)
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrStoreWriteFailed, err)
	}
	return record.ID, nil
}

// Update applies a status change to an existing record, bumping UpdatedAt.
// The write is atomic: either the full change lands or nothing does.
func (s *RecordStore) Update(ctx context.Context, scope, id string, change domain.StatusChange) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	apply := func(data []byte) ([]byte, error) {
		var rec domain.MovieRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, err
		}
		rec.Watched = change.Watched
		rec.WantToWatch = change.WantToWatch
		rec.UpdatedAt = time.Now()
		return json.Marshal(rec)
	}

	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		data, ok := s.mem[scope][id]
		if !ok {
			return domain.ErrRecordNotFound
		}
		updated, err := apply(data)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrStoreWriteFailed, err)
		}
		s.mem[scope][id] = updated
		return nil
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := scopeBucket(tx, scope)
		if b == nil {
			return domain.ErrRecordNotFound
		}
		data := b.Get([]byte(id))
		if data == nil {
			return domain.ErrRecordNotFound
		}
		updated, err := apply(data)
		if err != nil {
			return err
		}
		return b.Put([]byte(id), updated)
	})
	if err == domain.ErrRecordNotFound {
		return err
	}
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreWriteFailed, err)
	}
	return nil
}

// DeleteByID removes a record, reporting whether it existed.
func (s *RecordStore) DeleteByID(ctx context.Context, scope, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.mem[scope][id]; !ok {
			return false, nil
		}
		delete(s.mem[scope], id)
		return true, nil
	}

	found := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := scopeBucket(tx, scope)
		if b == nil {
			return nil
		}
		if b.Get([]byte(id)) == nil {
			return nil
		}
		found = true
		return b.Delete([]byte(id))
	})
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrStoreWriteFailed, err)
	}
	return found, nil
}

// FindByTitle returns the record whose title matches exactly. Titles are the
// de-duplication key, so at most one record per title exists per scope.
func (s *RecordStore) FindByTitle(ctx context.Context, scope, title string) (domain.MovieRecord, error) {
	records, err := s.ListAll(ctx, scope)
	if err != nil {
		return domain.MovieRecord{}, err
	}
	for _, rec := range records {
		if rec.Title == title {
			return rec, nil
		}
	}
	return domain.MovieRecord{}, domain.ErrRecordNotFound
}

func scopeBucket(tx *bolt.Tx, scope string) *bolt.Bucket {
	root := tx.Bucket(bucketRecords)
	if root == nil {
		return nil
	}
	return root.Bucket([]byte(scope))
}

func recordKey(seq uint64) string {
	return fmt.Sprintf("m%012d", seq)
}
