package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bloXbandit/CreditKadabbra-sub000/internal/models"
)

// ErrMiss is returned when nothing is cached under the key
var ErrMiss = errors.New("cache miss")

// BureauCache stores simulated bureau scores so repeated requests return the same numbers
type BureauCache interface {
	GetBureauScores(ctx context.Context, userID int64, known models.Bureau, knownScore, accountCount int) ([]models.BureauScore, error)
	SetBureauScores(ctx context.Context, userID int64, known models.Bureau, knownScore, accountCount int, scores []models.BureauScore) error
}

// RedisBureauCache is a BureauCache backed by Redis
type RedisBureauCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient creates a Redis client
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

// NewRedisBureauCache keeps entries for ttl; zero means no expiry
func NewRedisBureauCache(client *redis.Client, ttl time.Duration) *RedisBureauCache {
	return &RedisBureauCache{client: client, ttl: ttl}
}

// Ping checks the Redis connection
func (c *RedisBureauCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// accountCount is part of the key because it drives variance and confidence
func bureauKey(userID int64, known models.Bureau, knownScore, accountCount int) string {
	return fmt.Sprintf("bureau:%d:%s:%d:%d", userID, known, knownScore, accountCount)
}

// GetBureauScores returns ErrMiss when no entry exists
func (c *RedisBureauCache) GetBureauScores(ctx context.Context, userID int64, known models.Bureau, knownScore, accountCount int) ([]models.BureauScore, error) {
	val, err := c.client.Get(ctx, bureauKey(userID, known, knownScore, accountCount)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read bureau scores: %w", err)
	}

	var scores []models.BureauScore
	if err := json.Unmarshal(val, &scores); err != nil {
		return nil, fmt.Errorf("failed to decode bureau scores: %w", err)
	}
	return scores, nil
}

func (c *RedisBureauCache) SetBureauScores(ctx context.Context, userID int64, known models.Bureau, knownScore, accountCount int, scores []models.BureauScore) error {
	data, err := json.Marshal(scores)
	if err != nil {
		return fmt.Errorf("failed to encode bureau scores: %w", err)
	}
	if err := c.client.Set(ctx, bureauKey(userID, known, knownScore, accountCount), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write bureau scores: %w", err)
	}
	return nil
}
