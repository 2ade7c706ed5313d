package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"interview-engine/internal/model"
)

type EvaluationRepo interface {
	Create(ctx context.Context, eval *model.Evaluation) error
	GetBySessionID(ctx context.Context, sessionID string) ([]model.Evaluation, error)
}

type evaluationRepo struct {
	collection *mongo.Collection
}

func NewEvaluationRepo(client *mongo.Client, database string) EvaluationRepo {
	return &evaluationRepo{
		collection: client.Database(database).Collection("evaluations"),
	}
}

func (r *evaluationRepo) Create(ctx context.Context, eval *model.Evaluation) error {
	if eval.CreatedAt.IsZero() {
		eval.CreatedAt = time.Now().UTC()
	}
	if _, err := r.collection.InsertOne(ctx, eval); err != nil {
		return fmt.Errorf("insert evaluation: %w", err)
	}
	return nil
}

// GetBySessionID returns a session's evaluations in submission order.
func (r *evaluationRepo) GetBySessionID(ctx context.Context, sessionID string) ([]model.Evaluation, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"sessionId": sessionID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find evaluations: %w", err)
	}
	defer cursor.Close(ctx)

	var evals []model.Evaluation
	if err := cursor.All(ctx, &evals); err != nil {
		return nil, fmt.Errorf("decode evaluations: %w", err)
	}
	return evals, nil
}
