package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"rta-sync/internal/extraction/domain/model"
	"rta-sync/internal/extraction/domain/repository"
	apperrors "rta-sync/internal/shared/errors"
)

// FakeRecordStore is an in-memory RecordStore. Documents get sequential
// integer ids. Failures can be injected per operation.
type FakeRecordStore struct {
	mu      sync.Mutex
	nextID  int
	docs    map[string]map[interface{}]model.Record
	indexes map[string]map[string]model.IndexSpec

	// FailInsert is consulted before every insert; returning true fails it.
	FailInsert func(partition string, record model.Record) bool
	// FailDelete is consulted before every delete.
	FailDelete func(partition string, id interface{}) bool
	// ScanErr, when set, is returned by ScanDates.
	ScanErr error
	// IndexErr, when set, is returned by EnsureIndex.
	IndexErr error

	Inserts     int
	IndexCalls  int
	DeleteCalls int
}

var _ repository.RecordStore = (*FakeRecordStore)(nil)

// NewFakeRecordStore returns an empty store
func NewFakeRecordStore() *FakeRecordStore {
	return &FakeRecordStore{
		docs:    make(map[string]map[interface{}]model.Record),
		indexes: make(map[string]map[string]model.IndexSpec),
	}
}

// Seed stores records directly, bypassing failure injection, and returns their ids.
func (s *FakeRecordStore) Seed(partition string, records ...model.Record) []interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]interface{}, 0, len(records))
	for _, r := range records {
		ids = append(ids, s.put(partition, r))
	}
	return ids
}

func (s *FakeRecordStore) put(partition string, record model.Record) interface{} {
	if s.docs[partition] == nil {
		s.docs[partition] = make(map[interface{}]model.Record)
	}
	s.nextID++
	id := s.nextID
	doc := record.Document()
	doc["_id"] = id
	s.docs[partition][id] = doc
	return id
}

func (s *FakeRecordStore) InsertOne(ctx context.Context, partition string, record model.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailInsert != nil && s.FailInsert(partition, record) {
		return apperrors.NewStoreWriteError("insert rejected")
	}
	s.put(partition, record)
	s.Inserts++
	return nil
}

func (s *FakeRecordStore) EnsureIndex(ctx context.Context, partition string, spec model.IndexSpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.IndexCalls++
	if s.IndexErr != nil {
		return s.IndexErr
	}
	if s.indexes[partition] == nil {
		s.indexes[partition] = make(map[string]model.IndexSpec)
	}
	s.indexes[partition][spec.Name()] = spec
	return nil
}

func (s *FakeRecordStore) ScanDates(ctx context.Context, partition, dateField string) ([]repository.DatedID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ScanErr != nil {
		return nil, s.ScanErr
	}
	out := make([]repository.DatedID, 0, len(s.docs[partition]))
	for id, doc := range s.docs[partition] {
		out = append(out, repository.DatedID{ID: id, Date: doc[dateField]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.(int) < out[j].ID.(int) })
	return out, nil
}

func (s *FakeRecordStore) DeleteByID(ctx context.Context, partition string, id interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.DeleteCalls++
	if s.FailDelete != nil && s.FailDelete(partition, id) {
		return apperrors.NewStoreWriteError(fmt.Sprintf("delete %v rejected", id))
	}
	delete(s.docs[partition], id)
	return nil
}

func (s *FakeRecordStore) Sample(ctx context.Context, partition string, limit int64) ([]model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.sortedIDs(partition)
	if int64(len(ids)) > limit {
		ids = ids[:limit]
	}
	out := make([]model.Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.docs[partition][id])
	}
	return out, nil
}

func (s *FakeRecordStore) Count(ctx context.Context, partition string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.docs[partition])), nil
}

func (s *FakeRecordStore) Ping(ctx context.Context) error {
	return nil
}

// Records returns the partition's documents ordered by id
func (s *FakeRecordStore) Records(partition string) []model.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Record, 0, len(s.docs[partition]))
	for _, id := range s.sortedIDs(partition) {
		out = append(out, s.docs[partition][id])
	}
	return out
}

// Indexes returns the index specs created on partition, keyed by name
func (s *FakeRecordStore) Indexes(partition string) map[string]model.IndexSpec {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]model.IndexSpec, len(s.indexes[partition]))
	for k, v := range s.indexes[partition] {
		out[k] = v
	}
	return out
}

func (s *FakeRecordStore) sortedIDs(partition string) []interface{} {
	ids := make([]interface{}, 0, len(s.docs[partition]))
	for id := range s.docs[partition] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].(int) < ids[j].(int) })
	return ids
}
