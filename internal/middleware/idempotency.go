package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/Windi-Fikriyansyah/studio_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/studio_be/internal/metrics"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	ReplayHeader      = "Idempotent-Replay"
)

var ErrKeyNotFound = errors.New("idempotency key not found")

// IdempotencyStore persists one record per key. Implementations must make SetNX atomic.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

type RedisStore struct {
	Client *redis.Client
}

func (s RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrKeyNotFound
	}
	return b, err
}

func (s RedisStore) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	return s.Client.SetNX(ctx, key, value, ttl).Result()
}

func (s RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.Client.Set(ctx, key, value, ttl).Err()
}

func (s RedisStore) Del(ctx context.Context, key string) error {
	return s.Client.Del(ctx, key).Err()
}

type idemRecord struct {
	Pending     bool   `json:"pending,omitempty"`
	RequestHash string `json:"request_hash"`
	Status      int    `json:"status,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

type idemResponse struct {
	hash   string
	status int
	body   []byte
}

type IdempotencyConfig struct {
	Store IdempotencyStore
	TTL   time.Duration
	// pending records expire after this so a crashed request does not lock the key forever
	PendingTTL time.Duration
}

// Idempotency guards public POSTs against double submission. A request must carry
// an Idempotency-Key. The first 2xx response is stored and replayed to later
// requests with the same key and body. Concurrent duplicates inside one process
// collapse into a single handler execution.
func Idempotency(cfg IdempotencyConfig) fiber.Handler {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.PendingTTL <= 0 {
		cfg.PendingTTL = time.Minute
	}
	var group singleflight.Group

	return func(c *fiber.Ctx) error {
		key := c.Get(IdempotencyHeader)
		if key == "" || len(key) > 128 {
			return apperr.Validation(IdempotencyHeader, "Header Idempotency-Key wajib diisi (maks. 128 karakter)")
		}
		storeKey := "idem:" + c.Path() + ":" + key
		sum := sha256.Sum256(c.Body())
		hash := hex.EncodeToString(sum[:])
		ctx := c.UserContext()

		rec, found, err := loadRecord(ctx, cfg.Store, storeKey)
		if err != nil {
			return apperr.Wrap(apperr.CodeDependency, err, "Layanan sedang sibuk, coba lagi")
		}
		if found {
			return replay(c, rec, hash)
		}

		leader := false
		v, err, _ := group.Do(storeKey, func() (any, error) {
			leader = true
			return execute(c, cfg, storeKey, hash)
		})
		if err != nil {
			return err
		}
		if leader {
			return nil
		}

		// waiter: answer with what the leader produced, if it ran the same body
		res := v.(idemResponse)
		if res.hash != hash {
			return errBodyChanged()
		}
		metrics.IdempotencyReplays.Inc()
		c.Set(ReplayHeader, "true")
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Status(res.status).Send(res.body)
	}
}

func loadRecord(ctx context.Context, store IdempotencyStore, key string) (idemRecord, bool, error) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		return idemRecord{}, false, nil
	}
	if err != nil {
		return idemRecord{}, false, err
	}
	var rec idemRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return idemRecord{}, false, err
	}
	return rec, true, nil
}

func replay(c *fiber.Ctx, rec idemRecord, hash string) error {
	if rec.RequestHash != hash {
		return errBodyChanged()
	}
	if rec.Pending {
		return apperr.New(apperr.CodeDuplicate, "Permintaan yang sama sedang diproses")
	}
	metrics.IdempotencyReplays.Inc()
	c.Set(ReplayHeader, "true")
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(rec.Status).Send(rec.Body)
}

func errBodyChanged() error {
	return apperr.New(apperr.CodeDuplicate, "Idempotency-Key sudah dipakai untuk data yang berbeda")
}

// execute claims the key, runs the rest of the chain and stores a successful response.
// Failed responses release the key so the client can retry.
func execute(c *fiber.Ctx, cfg IdempotencyConfig, key, hash string) (idemResponse, error) {
	ctx := c.UserContext()
	pending, _ := json.Marshal(idemRecord{Pending: true, RequestHash: hash})
	ok, err := cfg.Store.SetNX(ctx, key, pending, cfg.PendingTTL)
	if err != nil {
		return idemResponse{}, apperr.Wrap(apperr.CodeDependency, err, "Layanan sedang sibuk, coba lagi")
	}
	if !ok {
		// another instance won the race
		return idemResponse{}, apperr.New(apperr.CodeDuplicate, "Permintaan yang sama sedang diproses")
	}

	if err := c.Next(); err != nil {
		if herr := c.App().Config().ErrorHandler(c, err); herr != nil {
			_ = cfg.Store.Del(context.Background(), key)
			return idemResponse{}, herr
		}
	}

	res := idemResponse{
		hash:   hash,
		status: c.Response().StatusCode(),
		body:   append([]byte(nil), c.Response().Body()...),
	}
	// ctx may already be past its deadline here
	bg := context.Background()
	if res.status < 200 || res.status >= 300 {
		_ = cfg.Store.Del(bg, key)
		return res, nil
	}
	done, _ := json.Marshal(idemRecord{RequestHash: hash, Status: res.status, Body: res.body})
	_ = cfg.Store.Set(bg, key, done, cfg.TTL)
	return res, nil
}
