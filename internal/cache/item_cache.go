package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"qualiobra/internal/model"
)

const activeItemsKey = "diagnostic:items:active"

// ItemCache holds the active questionnaire so sessions don't hit the store on every request
type ItemCache interface {
	SetItems(ctx context.Context, items []model.QuestionnaireItem) error
	GetItems(ctx context.Context) ([]model.QuestionnaireItem, error)
	Invalidate(ctx context.Context) error
}

type itemCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewItemCache creates a new item cache
func NewItemCache(client *redis.Client, ttl time.Duration) ItemCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &itemCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *itemCache) SetItems(ctx context.Context, items []model.QuestionnaireItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, activeItemsKey, data, c.ttl).Err()
}

// GetItems returns nil, nil on a cache miss
func (c *itemCache) GetItems(ctx context.Context) ([]model.QuestionnaireItem, error) {
	data, err := c.client.Get(ctx, activeItemsKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var items []model.QuestionnaireItem
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *itemCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, activeItemsKey).Err()
}
