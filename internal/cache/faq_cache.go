package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"faqdesk/internal/model"
)

const (
	faqListKey  = "faq:list"
	faqDirtyKey = "faq:list:dirty"
)

// FaqListCache keeps the full FAQ list; mutations mark it dirty and drop the
// entry, and readers repopulate from the store (full reload is the
// consistency mechanism).
type FaqListCache struct {
	client         *redisv9.Client
	listTTL        time.Duration
	dirtyMarkerTTL time.Duration
}

func NewFaqListCache(client *redisv9.Client, listTTL, dirtyMarkerTTL time.Duration) *FaqListCache {
	if listTTL <= 0 {
		listTTL = 60 * time.Second
	}
	if dirtyMarkerTTL <= 0 {
		dirtyMarkerTTL = 5 * time.Second
	}
	return &FaqListCache{
		client:         client,
		listTTL:        listTTL,
		dirtyMarkerTTL: dirtyMarkerTTL,
	}
}

func (c *FaqListCache) Get(ctx context.Context) ([]model.Faq, bool, error) {
	raw, err := c.client.Get(ctx, faqListKey).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get faq list failed: %w", err)
	}

	var faqs []model.Faq
	if err := json.Unmarshal([]byte(raw), &faqs); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached faq list failed: %w", err)
	}
	return faqs, true, nil
}

func (c *FaqListCache) Set(ctx context.Context, faqs []model.Faq) error {
	payload, err := json.Marshal(faqs)
	if err != nil {
		return fmt.Errorf("marshal faq list failed: %w", err)
	}
	if err := c.client.Set(ctx, faqListKey, payload, c.listTTL).Err(); err != nil {
		return fmt.Errorf("redis set faq list failed: %w", err)
	}
	return nil
}

func (c *FaqListCache) Invalidate(ctx context.Context) error {
	if err := c.client.Set(ctx, faqDirtyKey, "1", c.dirtyMarkerTTL).Err(); err != nil {
		return fmt.Errorf("redis set faq dirty marker failed: %w", err)
	}
	if err := c.client.Del(ctx, faqListKey).Err(); err != nil {
		return fmt.Errorf("redis delete faq list failed: %w", err)
	}
	return nil
}

func (c *FaqListCache) IsDirty(ctx context.Context) (bool, error) {
	exists, err := c.client.Exists(ctx, faqDirtyKey).Result()
	if err != nil {
		return false, fmt.Errorf("redis check faq dirty marker failed: %w", err)
	}
	return exists > 0, nil
}
