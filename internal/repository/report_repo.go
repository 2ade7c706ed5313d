package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"interview-engine/internal/model"
)

type ReportRepo interface {
	Upsert(ctx context.Context, report *model.SessionReport) error
	GetBySessionID(ctx context.Context, sessionID string) (*model.SessionReport, error)
}

type reportRepo struct {
	collection *mongo.Collection
}

func NewReportRepo(client *mongo.Client, database string) ReportRepo {
	return &reportRepo{
		collection: client.Database(database).Collection("reports"),
	}
}

func (r *reportRepo) Upsert(ctx context.Context, report *model.SessionReport) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": report.SessionID}, report, opts)
	if err != nil {
		return fmt.Errorf("upsert report: %w", err)
	}
	return nil
}

func (r *reportRepo) GetBySessionID(ctx context.Context, sessionID string) (*model.SessionReport, error) {
	var report model.SessionReport
	err := r.collection.FindOne(ctx, bson.M{"_id": sessionID}).Decode(&report)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find report: %w", err)
	}
	return &report, nil
}
