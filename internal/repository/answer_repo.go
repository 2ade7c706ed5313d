package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"interview-engine/internal/model"
)

type AnswerRepo interface {
	Create(ctx context.Context, answer *model.Answer) error
	GetBySessionID(ctx context.Context, sessionID string) ([]model.Answer, error)
}

type answerRepo struct {
	collection *mongo.Collection
}

func NewAnswerRepo(client *mongo.Client, database string) AnswerRepo {
	return &answerRepo{
		collection: client.Database(database).Collection("answers"),
	}
}

func (r *answerRepo) Create(ctx context.Context, answer *model.Answer) error {
	if _, err := r.collection.InsertOne(ctx, answer); err != nil {
		return fmt.Errorf("insert answer: %w", err)
	}
	return nil
}

// GetBySessionID returns a session's answers in submission order. The
// question writer reads these to rebuild the conversation so far.
func (r *answerRepo) GetBySessionID(ctx context.Context, sessionID string) ([]model.Answer, error) {
	opts := options.Find().SetSort(bson.M{"submittedAt": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"sessionId": sessionID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find answers: %w", err)
	}
	defer cursor.Close(ctx)

	var answers []model.Answer
	if err := cursor.All(ctx, &answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	return answers, nil
}
