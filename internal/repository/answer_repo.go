package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"qualiobra/internal/model"
)

// AnswerRepo stores committed diagnostic answers
type AnswerRepo interface {
	// InsertAnswers writes one commit's records as a single batch. A record
	// for a (session, item) pair that is already stored replaces it, so a
	// commit that failed halfway can be sent again.
	InsertAnswers(ctx context.Context, records []model.AnswerRecord) error
	GetBySessionID(ctx context.Context, sessionID string) ([]model.AnswerRecord, error)
	ListSessionsByUser(ctx context.Context, userID string) ([]model.SessionSummary, error)
}

type answerRepo struct {
	collection *mongo.Collection
}

// NewAnswerRepo creates a MongoDB-backed answer repository
func NewAnswerRepo(db *mongo.Database) AnswerRepo {
	return &answerRepo{
		collection: db.Collection("diagnostic_answers"),
	}
}

// EnsureAnswerIndexes creates the lookup indexes used by the answer repository
func EnsureAnswerIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("diagnostic_answers").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "sessionId", Value: 1}, {Key: "itemId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	return err
}

func (r *answerRepo) InsertAnswers(ctx context.Context, records []model.AnswerRecord) error {
	if len(records) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, len(records))
	for i := range records {
		models[i] = answerUpsert(records[i])
	}
	_, err := r.collection.BulkWrite(ctx, models)
	return err
}

// answerUpsert keys the write on (sessionId, itemId). The first write of a
// pair keeps its _id; later writes only replace the answer fields.
func answerUpsert(rec model.AnswerRecord) mongo.WriteModel {
	set := bson.M{
		"userId":     rec.UserID,
		"level":      rec.Level,
		"answeredAt": rec.AnsweredAt,
		"createdAt":  rec.CreatedAt,
	}
	unset := bson.M{}
	if rec.Score > 0 {
		set["score"] = rec.Score
	} else {
		unset["score"] = ""
	}
	if rec.Note != "" {
		set["note"] = rec.Note
	} else {
		unset["note"] = ""
	}

	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"_id": rec.ID},
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	return mongo.NewUpdateOneModel().
		SetFilter(bson.M{"sessionId": rec.SessionID, "itemId": rec.ItemID}).
		SetUpdate(update).
		SetUpsert(true)
}

func (r *answerRepo) GetBySessionID(ctx context.Context, sessionID string) ([]model.AnswerRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "itemId", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"sessionId": sessionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := []model.AnswerRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *answerRepo) ListSessionsByUser(ctx context.Context, userID string) ([]model.SessionSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userId": userID}}},
		{{Key: "$group", Value: bson.M{
			"_id":         "$sessionId",
			"level":       bson.M{"$first": "$level"},
			"answerCount": bson.M{"$sum": 1},
			"committedAt": bson.M{"$max": "$createdAt"},
		}}},
		{{Key: "$sort", Value: bson.M{"committedAt": -1}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	summaries := []model.SessionSummary{}
	if err := cursor.All(ctx, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}
