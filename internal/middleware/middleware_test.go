package middleware

import (
	"context"
	"io"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type stubUsers map[uuid.UUID]*model.User

func (s stubUsers) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, model.ErrNotFound
}

func TestRequireAuth(t *testing.T) {
	tokens := jwt.NewManager("secret", time.Hour)
	active, inactive := uuid.New(), uuid.New()
	users := stubUsers{
		active:   {BaseModel: model.BaseModel{ID: active}, IsActive: true},
		inactive: {BaseModel: model.BaseModel{ID: inactive}, IsActive: false},
	}

	app := fiber.New()
	app.Get("/me", RequireAuth(users, tokens), RequirePrivilege(model.PrivTransactionSell), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("user_id").(string) + "|" + c.Locals("user_name").(string))
	})

	token := func(id uuid.UUID, privs ...string) string {
		s, err := tokens.GenerateToken(id, "a@example.com", "Ana", model.RoleStaff, privs)
		require.NoError(t, err)
		return s
	}
	call := func(header string) (int, string) {
		req := httptest.NewRequest("GET", "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, string(body)
	}

	status, body := call("Bearer " + token(active, model.PrivTransactionSell))
	require.Equal(t, 200, status)
	require.Equal(t, active.String()+"|Ana", body)

	status, _ = call("")
	require.Equal(t, 401, status)
	status, _ = call("Token abc")
	require.Equal(t, 401, status)
	status, _ = call("Bearer not-a-jwt")
	require.Equal(t, 401, status)
	status, _ = call("Bearer " + token(uuid.New(), model.PrivTransactionSell))
	require.Equal(t, 401, status)
	status, _ = call("Bearer " + token(inactive, model.PrivTransactionSell))
	require.Equal(t, 401, status)
	status, _ = call("Bearer " + token(active, model.PrivProductView))
	require.Equal(t, 403, status)
}

type memKeys struct {
	mu   sync.Mutex
	keys map[string]bool
}

func (m *memKeys) SetNX(_ context.Context, key string, _ interface{}, _ time.Duration) *redis.BoolCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.keys[key] {
		return redis.NewBoolResult(false, nil)
	}
	m.keys[key] = true
	return redis.NewBoolResult(true, nil)
}

func (m *memKeys) Del(_ context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.keys, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestIdempotency(t *testing.T) {
	store := &memKeys{keys: map[string]bool{}}
	status := 201

	app := fiber.New()
	app.Post("/sell", func(c *fiber.Ctx) error {
		c.Locals("user_id", "u-1")
		return c.Next()
	}, Idempotency(store, time.Hour), func(c *fiber.Ctx) error {
		return c.SendStatus(status)
	})

	post := func(key string) int {
		req := httptest.NewRequest("POST", "/sell", nil)
		if key != "" {
			req.Header.Set(IdempotencyHeader, key)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	require.Equal(t, 201, post("k1"))
	require.Equal(t, 409, post("k1"))
	require.Equal(t, 201, post("k2"))
	require.Equal(t, 201, post(""))
	require.Equal(t, 201, post(""))

	status = 409
	require.Equal(t, 409, post("k3"))
	status = 201
	require.Equal(t, 201, post("k3"), "failed attempt releases the key")
}

func TestIdempotency_NilStorePassesThrough(t *testing.T) {
	app := fiber.New()
	app.Post("/sell", Idempotency(nil, time.Hour), func(c *fiber.Ctx) error {
		return c.SendStatus(201)
	})
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("POST", "/sell", nil)
		req.Header.Set(IdempotencyHeader, "same")
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, 201, resp.StatusCode)
	}
}

func TestIdempotency_Redis(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}

	app := fiber.New()
	app.Post("/sell", Idempotency(rdb, time.Minute), func(c *fiber.Ctx) error {
		return c.SendStatus(201)
	})
	key := "test-" + uuid.NewString()
	defer rdb.Del(context.Background(), "idempotency::"+key)

	for _, want := range []int{201, 409} {
		req := httptest.NewRequest("POST", "/sell", nil)
		req.Header.Set(IdempotencyHeader, key)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, want, resp.StatusCode)
	}
}
