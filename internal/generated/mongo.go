package generated

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/resumepilot/resumepilot/backend/go-services/internal/models"
	"github.com/resumepilot/resumepilot/backend/go-services/pkg/logger"
)

type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "updatedAt", Value: -1}}}
	if _, err := col.Indexes().CreateOne(context.Background(), idx); err != nil {
		logger.Warnf("generated_documents: create index: %v", err)
	}
	return &MongoRepo{col: col}
}

func (m *MongoRepo) Create(ctx context.Context, d *models.GeneratedDocument) error {
	if d.ID == "" {
		d.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now().UTC()
	d.CreatedAt, d.UpdatedAt = now, now
	_, err := m.col.InsertOne(ctx, d)
	return err
}

func (m *MongoRepo) Get(ctx context.Context, id, userID string) (*models.GeneratedDocument, error) {
	var d models.GeneratedDocument
	if err := m.col.FindOne(ctx, bson.M{"_id": id, "userId": userID}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (m *MongoRepo) List(ctx context.Context, userID, search string) ([]*models.GeneratedDocument, error) {
	filter := bson.M{"userId": userID}
	if search != "" {
		// user input is matched literally
		filter["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
	}
	cur, err := m.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.GeneratedDocument{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
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
