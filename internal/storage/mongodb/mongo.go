package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fdg312/fuel-planner/internal/storage"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	plansCollection   = "plans"
	exportsCollection = "exports"
)

// MongoStorage keeps plan documents as native BSON documents keyed by owner.
type MongoStorage struct {
	client  *mongo.Client
	plans   *mongo.Collection
	exports *mongo.Collection
}

type planRecord struct {
	OwnerUserID string    `bson:"_id"`
	Payload     bson.Raw  `bson:"payload"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

type exportRecord struct {
	ID          string    `bson:"_id"`
	OwnerUserID string    `bson:"owner_user_id"`
	Format      string    `bson:"format"`
	WeekStart   string    `bson:"week_start"`
	ObjectKey   string    `bson:"object_key"`
	ContentType string    `bson:"content_type"`
	SizeBytes   int64     `bson:"size_bytes"`
	Status      string    `bson:"status"`
	Error       *string   `bson:"error,omitempty"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func New(ctx context.Context, uri, database string) (*MongoStorage, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	s := &MongoStorage{
		client:  client,
		plans:   db.Collection(plansCollection),
		exports: db.Collection(exportsCollection),
	}

	_, err = s.exports.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner_user_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create exports index: %w", err)
	}

	return s, nil
}

func (s *MongoStorage) Backend() string { return "mongo" }

func (s *MongoStorage) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *MongoStorage) GetPlan(ctx context.Context, ownerUserID string) (storage.PlanDocument, bool, error) {
	var rec planRecord
	err := s.plans.FindOne(ctx, bson.M{"_id": ownerUserID}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return storage.PlanDocument{}, false, nil
	}
	if err != nil {
		return storage.PlanDocument{}, false, fmt.Errorf("failed to get plan document: %w", err)
	}
	return rec.toDocument()
}

func (s *MongoStorage) PutPlan(ctx context.Context, ownerUserID string, payload []byte) (storage.PlanDocument, error) {
	var doc bson.Raw
	if err := bson.UnmarshalExtJSON(payload, false, &doc); err != nil {
		return storage.PlanDocument{}, fmt.Errorf("plan payload is not a JSON object: %w", err)
	}

	now := time.Now().UTC()
	update := bson.M{
		"$set":         bson.M{"payload": doc, "updated_at": now},
		"$setOnInsert": bson.M{"created_at": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var rec planRecord
	err := s.plans.FindOneAndUpdate(ctx, bson.M{"_id": ownerUserID}, update, opts).Decode(&rec)
	if err != nil {
		return storage.PlanDocument{}, fmt.Errorf("failed to upsert plan document: %w", err)
	}
	return rec.toDocument()
}

func (r planRecord) toDocument() (storage.PlanDocument, error) {
	payload, err := bson.MarshalExtJSON(r.Payload, false, false)
	if err != nil {
		return storage.PlanDocument{}, fmt.Errorf("encode plan payload: %w", err)
	}
	return storage.PlanDocument{
		OwnerUserID: r.OwnerUserID,
		Payload:     payload,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, nil
}

func (s *MongoStorage) CreateExport(ctx context.Context, meta *storage.ExportMeta) error {
	if meta.ID == uuid.Nil {
		meta.ID = uuid.New()
	}
	now := time.Now().UTC()
	meta.CreatedAt = now
	meta.UpdatedAt = now

	if _, err := s.exports.InsertOne(ctx, fromExportMeta(*meta)); err != nil {
		return fmt.Errorf("failed to create export: %w", err)
	}
	return nil
}

func (s *MongoStorage) GetExport(ctx context.Context, id uuid.UUID) (*storage.ExportMeta, error) {
	var rec exportRecord
	err := s.exports.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get export: %w", err)
	}
	meta, err := rec.toMeta()
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *MongoStorage) ListExports(ctx context.Context, ownerUserID string, limit, offset int) ([]storage.ExportMeta, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(offset))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := s.exports.Find(ctx, bson.M{"owner_user_id": ownerUserID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	defer cur.Close(ctx)

	out := []storage.ExportMeta{}
	for cur.Next(ctx) {
		var rec exportRecord
		if err := cur.Decode(&rec); err != nil {
			return nil, fmt.Errorf("failed to decode export: %w", err)
		}
		meta, err := rec.toMeta()
		if err != nil {
			return nil, err
		}
		out = append(out, meta)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exports: %w", err)
	}
	return out, nil
}

func (s *MongoStorage) DeleteExport(ctx context.Context, id uuid.UUID) error {
	res, err := s.exports.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("failed to delete export: %w", err)
	}
	if res.DeletedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func fromExportMeta(m storage.ExportMeta) exportRecord {
	return exportRecord{
		ID:          m.ID.String(),
		OwnerUserID: m.OwnerUserID,
		Format:      m.Format,
		WeekStart:   m.WeekStart,
		ObjectKey:   m.ObjectKey,
		ContentType: m.ContentType,
		SizeBytes:   m.SizeBytes,
		Status:      m.Status,
		Error:       m.Error,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func (r exportRecord) toMeta() (storage.ExportMeta, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return storage.ExportMeta{}, fmt.Errorf("invalid export id %q: %w", r.ID, err)
	}
	return storage.ExportMeta{
		ID:          id,
		OwnerUserID: r.OwnerUserID,
		Format:      r.Format,
		WeekStart:   r.WeekStart,
		ObjectKey:   r.ObjectKey,
		ContentType: r.ContentType,
		SizeBytes:   r.SizeBytes,
		Status:      r.Status,
		Error:       r.Error,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, nil
}
