package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"interview-engine/internal/model"
)

// ReportCache fronts the report store for finished sessions.
type ReportCache interface {
	Set(ctx context.Context, report *model.SessionReport) error
	Get(ctx context.Context, sessionID string) (*model.SessionReport, error)
}

type reportCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewReportCache(client *redis.Client) ReportCache {
	return &reportCache{
		client: client,
		ttl:    24 * time.Hour,
	}
}

func (c *reportCache) key(sessionID string) string {
	return "session:" + sessionID + ":report"
}

func (c *reportCache) Set(ctx context.Context, report *model.SessionReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(report.SessionID), data, c.ttl).Err()
}

func (c *reportCache) Get(ctx context.Context, sessionID string) (*model.SessionReport, error) {
	data, err := c.client.Get(ctx, c.key(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var report model.SessionReport
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		return nil, err
	}
	return &report, nil
}
