package mongodb

import (
	"context"
	"fmt"

	"rta-sync/internal/extraction/domain/model"
	"rta-sync/internal/extraction/domain/repository"
	apperrors "rta-sync/internal/shared/errors"
	"rta-sync/internal/shared/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// RecordStore keeps each partition in its own collection of one database.
type RecordStore struct {
	db     *mongo.Database
	logger logger.Logger
}

var _ repository.RecordStore = (*RecordStore)(nil)

// NewRecordStore creates a RecordStore over db
func NewRecordStore(db *mongo.Database, log logger.Logger) *RecordStore {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &RecordStore{db: db, logger: log.WithComponent("record_store")}
}

func (s *RecordStore) collection(partition string) (*mongo.Collection, error) {
	if partition == "" {
		return nil, apperrors.NewValidationError("partition name is required").WithCause(apperrors.ErrPartitionEmpty)
	}
	return s.db.Collection(partition), nil
}

// InsertOne stores record as a new document. MongoDB assigns the _id; an
// incoming one is kept under model.SourceIDField.
func (s *RecordStore) InsertOne(ctx context.Context, partition string, record model.Record) error {
	col, err := s.collection(partition)
	if err != nil {
		return err
	}
	if _, err := col.InsertOne(ctx, bson.M(record.Document())); err != nil {
		return apperrors.NewStoreWriteError(fmt.Sprintf("insert into %s failed", partition)).
			WithCause(err).
			WithComponent("record_store")
	}
	return nil
}

// EnsureIndex creates the ascending (date, id) index under its default name.
// The server treats an identical existing index as success.
func (s *RecordStore) EnsureIndex(ctx context.Context, partition string, spec model.IndexSpec) error {
	col, err := s.collection(partition)
	if err != nil {
		return err
	}
	if err := spec.Validate(); err != nil {
		return err
	}

	idx := mongo.IndexModel{
		Keys: bson.D{
			{Key: spec.DateField, Value: 1},
			{Key: spec.IDField, Value: 1},
		},
		Options: options.Index().SetName(spec.Name()),
	}
	if _, err := col.Indexes().CreateOne(ctx, idx); err != nil {
		return apperrors.NewStoreWriteError(fmt.Sprintf("create index %s on %s failed", spec.Name(), partition)).
			WithCause(err).
			WithComponent("record_store")
	}
	return nil
}

// ScanDates projects _id and dateField from every document. The cursor is
// drained and closed before returning.
func (s *RecordStore) ScanDates(ctx context.Context, partition, dateField string) ([]repository.DatedID, error) {
	col, err := s.collection(partition)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetProjection(bson.D{{Key: "_id", Value: 1}, {Key: dateField, Value: 1}})
	cursor, err := col.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", partition, err)
	}
	defer cursor.Close(ctx)

	var out []repository.DatedID
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			s.logger.Warnf("Skipping undecodable document in %s: %v", partition, err)
			continue
		}
		out = append(out, repository.DatedID{ID: doc["_id"], Date: doc[dateField]})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", partition, err)
	}
	return out, nil
}

// DeleteByID removes one document. A document that is already gone is not an error.
func (s *RecordStore) DeleteByID(ctx context.Context, partition string, id interface{}) error {
	col, err := s.collection(partition)
	if err != nil {
		return err
	}
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperrors.NewStoreWriteError(fmt.Sprintf("delete from %s failed", partition)).
			WithCause(err).
			WithComponent("record_store").
			WithDetail("id", id)
	}
	if res.DeletedCount == 0 {
		s.logger.Debugf("Document %v was already gone from %s", id, partition)
	}
	return nil
}

func (s *RecordStore) Sample(ctx context.Context, partition string, limit int64) ([]model.Record, error) {
	col, err := s.collection(partition)
	if err != nil {
		return nil, err
	}
	cursor, err := col.Find(ctx, bson.D{}, options.Find().SetLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("sample %s: %w", partition, err)
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("sample %s: %w", partition, err)
	}
	out := make([]model.Record, 0, len(docs))
	for _, d := range docs {
		out = append(out, model.Record(d))
	}
	return out, nil
}

func (s *RecordStore) Count(ctx context.Context, partition string) (int64, error) {
	col, err := s.collection(partition)
	if err != nil {
		return 0, err
	}
	n, err := col.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", partition, err)
	}
	return n, nil
}

// Ping checks the primary is reachable
func (s *RecordStore) Ping(ctx context.Context) error {
	if err := s.db.Client().Ping(ctx, readpref.Primary()); err != nil {
		return apperrors.NewConnectionError("mongodb ping failed").WithCause(err)
	}
	return nil
}
