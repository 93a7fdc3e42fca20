package documents

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/resumepilot/resumepilot/backend/go-services/internal/models"
	"github.com/resumepilot/resumepilot/backend/go-services/pkg/logger"
)

// MongoRepo stores SourceDocument records in the files collection.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}}
	if _, err := col.Indexes().CreateOne(context.Background(), idx); err != nil {
		logger.Warnf("files: create index: %v", err)
	}
	return &MongoRepo{col: col}
}

func (m *MongoRepo) Create(ctx context.Context, d *models.SourceDocument) error {
	if d.ID == "" {
		d.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now().UTC()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = d.CreatedAt
	_, err := m.col.InsertOne(ctx, d)
	return err
}

func (m *MongoRepo) Get(ctx context.Context, id, userID string) (*models.SourceDocument, error) {
	var d models.SourceDocument
	err := m.col.FindOne(ctx, bson.M{"_id": id, "userId": userID}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (m *MongoRepo) List(ctx context.Context, userID string, tags []string) ([]*models.SourceDocument, error) {
	filter := bson.M{"userId": userID}
	if len(tags) > 0 {
		filter["tags"] = bson.M{"$all": tags}
	}
	cur, err := m.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.SourceDocument{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *MongoRepo) UpdateTags(ctx context.Context, id, userID string, tags []string) (*models.SourceDocument, error) {
	var d models.SourceDocument
	err := m.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "userId": userID},
		bson.M{"$set": bson.M{"tags": tags, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (m *MongoRepo) Delete(ctx context.Context, id, userID string) error {
	res, err := m.col.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
