package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"interview-engine/internal/model"
)

// StageCache keeps the hot per-session stage state so the stage controller
// does not hit Mongo on every turn.
type StageCache interface {
	Set(ctx context.Context, sessionID string, state model.StageState) error
	Get(ctx context.Context, sessionID string) (*model.StageState, error)
	Delete(ctx context.Context, sessionID string) error
}

type stageCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStageCache(client *redis.Client) StageCache {
	return &stageCache{
		client: client,
		ttl:    2 * time.Hour,
	}
}

func (c *stageCache) key(sessionID string) string {
	return "session:" + sessionID + ":stage"
}

func (c *stageCache) Set(ctx context.Context, sessionID string, state model.StageState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(sessionID), data, c.ttl).Err()
}

func (c *stageCache) Get(ctx context.Context, sessionID string) (*model.StageState, error) {
	data, err := c.client.Get(ctx, c.key(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var state model.StageState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *stageCache) Delete(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, c.key(sessionID)).Err()
}
