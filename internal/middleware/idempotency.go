package middleware

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const IdempotencyHeader = "Idempotency-Key"

// KeyStore is the subset of a redis client the idempotency guard uses.
type KeyStore interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Idempotency lets a request carrying an Idempotency-Key through once per
// user per ttl. Repeats get 409. A failed attempt releases its key so the
// client can retry. With a nil store, or without the header, requests pass
// straight through.
func Idempotency(store KeyStore, ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get(IdempotencyHeader)
		if store == nil || raw == "" {
			return c.Next()
		}
		if len(raw) > 128 {
			return c.Status(400).JSON(fiber.Map{"error": IdempotencyHeader + " must be at most 128 characters"})
		}

		user, _ := c.Locals("user_id").(string)
		key := fmt.Sprintf("idempotency:%s:%s", user, raw)
		ctx := c.UserContext()

		claimed, err := store.SetNX(ctx, key, time.Now().Unix(), ttl).Result()
		if err != nil {
			// Redis trouble must not block stock operations.
			log.Printf("idempotency: redis unavailable, skipping check: %v", err)
			return c.Next()
		}
		if !claimed {
			return c.Status(409).JSON(fiber.Map{"error": "Duplicate request: this Idempotency-Key was already used"})
		}

		err = c.Next()
		if err != nil || c.Response().StatusCode() >= 400 {
			if delErr := store.Del(context.WithoutCancel(ctx), key).Err(); delErr != nil {
				log.Printf("idempotency: release key %s: %v", key, delErr)
			}
		}
		return err
	}
}
