package repository

import (
	"context"
	"errors"
	"fmt"

	domainRepo "dental-center/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

type redisSlotRepository struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisSlotRepository keeps each slot as a plain string key <keyPrefix><key> without expiry
func NewRedisSlotRepository(client redis.UniversalClient, keyPrefix string) domainRepo.SlotRepository {
	return &redisSlotRepository{client: client, keyPrefix: keyPrefix}
}

func (r *redisSlotRepository) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domainRepo.ErrSlotNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, nil
}

// Write relies on SET replacing the value atomically
func (r *redisSlotRepository) Write(ctx context.Context, key string, payload []byte) error {
	if err := r.client.Set(ctx, r.keyPrefix+key, payload, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *redisSlotRepository) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
