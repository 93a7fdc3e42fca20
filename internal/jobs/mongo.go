package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/resumepilot/resumepilot/backend/go-services/internal/models"
	"github.com/resumepilot/resumepilot/backend/go-services/pkg/logger"
)

// MongoStore keeps jobs in the generation_jobs collection.
type MongoStore struct {
	col *mongo.Collection
}

func NewMongoStore(col *mongo.Collection) *MongoStore {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}}}
	if _, err := col.Indexes().CreateOne(context.Background(), idx); err != nil {
		logger.Warnf("generation_jobs: create index: %v", err)
	}
	return &MongoStore{col: col}
}

func (m *MongoStore) Save(ctx context.Context, j *models.GenerationJob) error {
	now := time.Now().UTC()
	if j.CreatedAt.IsZero() {
		j.CreatedAt = now
	}
	j.UpdatedAt = now
	raw, err := bson.Marshal(j)
	if err != nil {
		return fmt.Errorf("encode generation job: %w", err)
	}
	var set bson.M
	if err := bson.Unmarshal(raw, &set); err != nil {
		return fmt.Errorf("encode generation job: %w", err)
	}
	delete(set, "_id")
	delete(set, "createdAt")
	update := bson.M{"$set": set, "$setOnInsert": bson.M{"createdAt": j.CreatedAt}}
	opts := options.Update().SetUpsert(true)
	if _, err := m.col.UpdateOne(ctx, bson.M{"_id": j.ID}, update, opts); err != nil {
		return fmt.Errorf("save generation job: %w", err)
	}
	return nil
}

func (m *MongoStore) Get(ctx context.Context, id string) (*models.GenerationJob, error) {
	return m.find(ctx, bson.M{"_id": id})
}

func (m *MongoStore) GetForUser(ctx context.Context, id, userID string) (*models.GenerationJob, error) {
	return m.find(ctx, bson.M{"_id": id, "userId": userID})
}

func (m *MongoStore) find(ctx context.Context, filter bson.M) (*models.GenerationJob, error) {
	var j models.GenerationJob
	if err := m.col.FindOne(ctx, filter).Decode(&j); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &j, nil
}
