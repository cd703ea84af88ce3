package history

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a persistent Store backed by Redis sets, one per
// (run_id, action_kind). It exists to demonstrate that a run's history
// can survive process restarts without touching the orchestrator (spec
// §9): the orchestrator depends only on the Store interface.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) HasLiked(ctx context.Context, runID, agentHandle, postID string) (bool, error) {
	return s.isMember(ctx, "liked", runID, agentHandle, postID)
}

func (s *RedisStore) HasCommented(ctx context.Context, runID, agentHandle, postID string) (bool, error) {
	return s.isMember(ctx, "commented", runID, agentHandle, postID)
}

func (s *RedisStore) HasFollowed(ctx context.Context, runID, agentHandle, userID string) (bool, error) {
	return s.isMember(ctx, "followed", runID, agentHandle, userID)
}

func (s *RedisStore) RecordLike(ctx context.Context, runID, agentHandle, postID string) error {
	return s.add(ctx, "liked", runID, agentHandle, postID)
}

func (s *RedisStore) RecordComment(ctx context.Context, runID, agentHandle, postID string) error {
	return s.add(ctx, "commented", runID, agentHandle, postID)
}

func (s *RedisStore) RecordFollow(ctx context.Context, runID, agentHandle, userID string) error {
	return s.add(ctx, "followed", runID, agentHandle, userID)
}

func (s *RedisStore) Clear(ctx context.Context, runID string) error {
	keys := []string{s.key("liked", runID), s.key("commented", runID), s.key("followed", runID)}
	return s.client.Del(ctx, keys...).Err()
}

func (s *RedisStore) isMember(ctx context.Context, kind, runID, agentHandle, target string) (bool, error) {
	ok, err := s.client.SIsMember(ctx, s.key(kind, runID), member(agentHandle, target)).Result()
	if err != nil {
		return false, fmt.Errorf("history: check %s membership: %w", kind, err)
	}
	return ok, nil
}

func (s *RedisStore) add(ctx context.Context, kind, runID, agentHandle, target string) error {
	if err := s.client.SAdd(ctx, s.key(kind, runID), member(agentHandle, target)).Err(); err != nil {
		return fmt.Errorf("history: record %s: %w", kind, err)
	}
	return nil
}

func (s *RedisStore) key(kind, runID string) string {
	return fmt.Sprintf("simengine:history:%s:%s:%s", runID, kind, "v1")
}

func member(agentHandle, target string) string {
	return agentHandle + "\x00" + target
}
