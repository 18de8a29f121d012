package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"parodybot/internal/domain"
)

const (
	processedKey = "parodybot:processed"
	lastKey      = "parodybot:last"
)

// Redis keeps processed IDs in a set and the last one per account in a hash.
type Redis struct {
	rdb *redis.Client
}

func NewRedis(ctx context.Context, addr string) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return &Redis{rdb: rdb}, nil
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}

func (r *Redis) Contains(ctx context.Context, _, postID string) (bool, error) {
	return r.rdb.SIsMember(ctx, processedKey, postID).Result()
}

func (r *Redis) Add(ctx context.Context, rec domain.Record) error {
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, processedKey, rec.PostID)
		pipe.HSet(ctx, lastKey, rec.Account, rec.PostID)
		return nil
	})
	return err
}

// Last returns the most recent processed post of account, or "" when none.
func (r *Redis) Last(ctx context.Context, account string) (string, error) {
	id, err := r.rdb.HGet(ctx, lastKey, account).Result()
	if err == redis.Nil {
		return "", nil
	}
	return id, err
}
