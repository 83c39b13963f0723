package redisclient

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrRoomsNotTracked reports that no counters exist yet for a room type.
// Callers seed via InitRoomAvailability and retry.
var ErrRoomsNotTracked = errors.New("room availability not tracked")

//go:embed scripts/reserve_room.lua
var reserveRoomScript string

//go:embed scripts/release_room.lua
var releaseRoomScript string

type Client struct {
	rdb           *redis.Client
	reserveScript *redis.Script
	releaseScript *redis.Script
}

// NewClient creates a new Redis client with Lua scripts loaded
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{
		rdb:           rdb,
		reserveScript: redis.NewScript(reserveRoomScript),
		releaseScript: redis.NewScript(releaseRoomScript),
	}, nil
}

// Ping verifies the Redis connection, used by the readiness endpoint
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func roomKey(pgID int64, roomType string) string {
	return fmt.Sprintf("rooms:%d:%s", pgID, roomType)
}

// ReserveRoom atomically decrements the cached availability for a room
// type. Returns true when a room was reserved, false when the counter is
// at zero, and ErrRoomsNotTracked when no counters exist for the key.
// Postgres remains the authority either way.
func (c *Client) ReserveRoom(ctx context.Context, pgID int64, roomType string) (bool, error) {
	result, err := c.reserveScript.Run(ctx, c.rdb, []string{roomKey(pgID, roomType)}).Result()
	if err != nil {
		return false, fmt.Errorf("reserve room script failed: %w", err)
	}

	n, ok := result.(int64)
	if !ok {
		return false, fmt.Errorf("unexpected script result type")
	}
	if n == -1 {
		return false, ErrRoomsNotTracked
	}
	return n == 1, nil
}

// ReleaseRoom atomically increments the cached availability, clamped at
// the tracked total. Releasing an untracked key reports ErrRoomsNotTracked.
func (c *Client) ReleaseRoom(ctx context.Context, pgID int64, roomType string) error {
	result, err := c.releaseScript.Run(ctx, c.rdb, []string{roomKey(pgID, roomType)}).Result()
	if err != nil {
		return fmt.Errorf("release room script failed: %w", err)
	}
	if n, ok := result.(int64); ok && n == -1 {
		return ErrRoomsNotTracked
	}
	return nil
}

// InitRoomAvailability seeds the cached counters for a room type
func (c *Client) InitRoomAvailability(ctx context.Context, pgID int64, roomType string, available, total int) error {
	key := roomKey(pgID, roomType)

	pipe := c.rdb.Pipeline()
	pipe.HSet(ctx, key, "available", available)
	pipe.HSet(ctx, key, "total", total)

	_, err := pipe.Exec(ctx)
	return err
}

// SetVerifyLock takes a short-lived lock keyed by gateway order ID so
// concurrent verifications of the same payment short-circuit before the
// database round trip. Returns true when the lock was acquired.
func (c *Client) SetVerifyLock(ctx context.Context, orderID string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, fmt.Sprintf("verify:%s", orderID), "1", ttl).Result()
}

// ReleaseVerifyLock drops the verification lock for an order
func (c *Client) ReleaseVerifyLock(ctx context.Context, orderID string) error {
	return c.rdb.Del(ctx, fmt.Sprintf("verify:%s", orderID)).Err()
}
