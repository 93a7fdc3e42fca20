package templates

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/resumepilot/resumepilot/backend/go-services/internal/models"
)

type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	return &MongoRepo{col: col}
}

func (m *MongoRepo) Create(ctx context.Context, t *models.Template) error {
	if t.ID == "" {
		t.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now
	_, err := m.col.InsertOne(ctx, t)
	return err
}

func (m *MongoRepo) Get(ctx context.Context, id string) (*models.Template, error) {
	var t models.Template
	if err := m.col.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (m *MongoRepo) List(ctx context.Context, tags []string, activeOnly bool) ([]*models.Template, error) {
	filter := bson.M{}
	if activeOnly {
		filter["active"] = true
	}
	if len(tags) > 0 {
		filter["tags"] = bson.M{"$in": tags}
	}
	cur, err := m.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.Template{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *MongoRepo) Count(ctx context.Context) (int64, error) {
	return m.col.CountDocuments(ctx, bson.M{})
}

func (m *MongoRepo) SetActive(ctx context.Context, id string, active bool) (*models.Template, error) {
	var t models.Template
	err := m.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"active": active, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}
