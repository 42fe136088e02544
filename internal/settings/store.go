// Package settings reads the feature configuration written by the web
// configuration screens. The orchestrator only ever reads it.
package settings

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/skylanix/MamieHenriette/internal/domain"
)

const (
	KeyAutoRoomsEnable    = "auto_rooms_enable"
	KeyAutoRoomsChannelID = "auto_rooms_channel_id"
)

// Store exposes the configuration values the auto-rooms core consumes.
type Store interface {
	// GetBool returns false for a missing key.
	GetBool(ctx context.Context, key string) (bool, error)
	// GetChannelID returns "" for a missing key.
	GetChannelID(ctx context.Context, key string) (domain.ChannelID, error)
}

// RedisStore is the redis-backed Store implementation.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

func NewRedisStore(client *redis.Client, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "mh:config:"
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix}
}

func (s *RedisStore) GetBool(ctx context.Context, key string) (bool, error) {
	val, err := s.client.Get(ctx, s.keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("settings %q: %w", key, err)
	}
	switch val {
	case "1", "true", "on":
		return true, nil
	}
	return false, nil
}

func (s *RedisStore) GetChannelID(ctx context.Context, key string) (domain.ChannelID, error) {
	val, err := s.client.Get(ctx, s.keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("settings %q: %w", key, err)
	}
	if _, err := strconv.ParseUint(val, 10, 64); err != nil {
		return "", fmt.Errorf("settings %q: not a channel id: %q", key, val)
	}
	return domain.ChannelID(val), nil
}

// InitRedis connects and pings with a bounded timeout.
func InitRedis(addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info().Str("module", "settings").Str("addr", addr).Msg("Redis connection established")
	return rdb, nil
}
