package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"survey_backend/internal/model"

	"github.com/go-redis/redis/v8"
)

// DraftCache 答题草稿，按 (问卷, 设备) 存储且不过期
type DraftCache struct {
	Redis *redis.Client
}

func NewDraftCache(rdb *redis.Client) *DraftCache {
	return &DraftCache{Redis: rdb}
}

func draftKey(surveyID uint, deviceID string) string {
	return fmt.Sprintf("draft:%d:%s", surveyID, deviceID)
}

func (c *DraftCache) Save(ctx context.Context, surveyID uint, deviceID string, draft *model.Draft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	return c.Redis.Set(ctx, draftKey(surveyID, deviceID), data, 0).Err()
}

// Load 没有草稿时返回 nil, nil
func (c *DraftCache) Load(ctx context.Context, surveyID uint, deviceID string) (*model.Draft, error) {
	data, err := c.Redis.Get(ctx, draftKey(surveyID, deviceID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var draft model.Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

func (c *DraftCache) Clear(ctx context.Context, surveyID uint, deviceID string) error {
	return c.Redis.Del(ctx, draftKey(surveyID, deviceID)).Err()
}
