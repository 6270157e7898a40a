package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vogiaan1904/playgram-matchroom/pkg/logger"
)

// PresenceRepository tracks which players currently hold a live event channel.
// Presence is connection bookkeeping, not match state: a missing entry never
// ends a match, it only means the player is not receiving events right now.
type PresenceRepository interface {
	SetOnline(ctx context.Context, playerID string) error
	SetOffline(ctx context.Context, playerID string) error
	Refresh(ctx context.Context, playerID string) error
	IsOnline(ctx context.Context, playerID string) (bool, error)
}

type redisPresenceRepository struct {
	cli *redis.Client
	ttl time.Duration
	l   logger.Logger
}

func NewRedisPresenceRepository(cli *redis.Client, ttl time.Duration, l logger.Logger) PresenceRepository {
	return &redisPresenceRepository{
		cli: cli,
		ttl: ttl,
		l:   l,
	}
}

func (r *redisPresenceRepository) SetOnline(ctx context.Context, playerID string) error {
	key := r.presenceKey(playerID)

	if err := r.cli.Set(ctx, key, time.Now().Format(time.RFC3339), r.ttl).Err(); err != nil {
		r.l.Errorf(ctx, "redisPresenceRepository.SetOnline: %v", err)
		return err
	}

	return nil
}

func (r *redisPresenceRepository) SetOffline(ctx context.Context, playerID string) error {
	key := r.presenceKey(playerID)

	if err := r.cli.Del(ctx, key).Err(); err != nil {
		r.l.Errorf(ctx, "redisPresenceRepository.SetOffline: %v", err)
		return err
	}

	return nil
}

// Refresh extends the TTL; called on heartbeats so a stalled connection ages
// out on its own.
func (r *redisPresenceRepository) Refresh(ctx context.Context, playerID string) error {
	key := r.presenceKey(playerID)

	if err := r.cli.Expire(ctx, key, r.ttl).Err(); err != nil {
		r.l.Errorf(ctx, "redisPresenceRepository.Refresh: %v", err)
		return err
	}

	return nil
}

func (r *redisPresenceRepository) IsOnline(ctx context.Context, playerID string) (bool, error) {
	key := r.presenceKey(playerID)

	n, err := r.cli.Exists(ctx, key).Result()
	if err != nil {
		r.l.Errorf(ctx, "redisPresenceRepository.IsOnline: %v", err)
		return false, err
	}

	return n > 0, nil
}

func (r *redisPresenceRepository) presenceKey(playerID string) string {
	return fmt.Sprintf("matchroom:presence:%s", playerID)
}
