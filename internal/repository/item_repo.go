package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"qualiobra/internal/model"
)

// ItemRepo reads and imports questionnaire items
type ItemRepo interface {
	// GetActive returns every active item ordered by display order
	GetActive(ctx context.Context) ([]model.QuestionnaireItem, error)
	GetByID(ctx context.Context, id string) (*model.QuestionnaireItem, error)
	Upsert(ctx context.Context, items []model.QuestionnaireItem) error
}

type itemRepo struct {
	collection *mongo.Collection
}

// NewItemRepo creates a MongoDB-backed item repository
func NewItemRepo(db *mongo.Database) ItemRepo {
	return &itemRepo{
		collection: db.Collection("diagnostic_items"),
	}
}

func (r *itemRepo) GetActive(ctx context.Context) ([]model.QuestionnaireItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "displayOrder", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"active": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := []model.QuestionnaireItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *itemRepo) GetByID(ctx context.Context, id string) (*model.QuestionnaireItem, error) {
	var item model.QuestionnaireItem
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepo) Upsert(ctx context.Context, items []model.QuestionnaireItem) error {
	if len(items) == 0 {
		return nil
	}
	writes := make([]mongo.WriteModel, 0, len(items))
	for _, item := range items {
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": item.ID}).
			SetReplacement(item).
			SetUpsert(true))
	}
	_, err := r.collection.BulkWrite(ctx, writes)
	return err
}
