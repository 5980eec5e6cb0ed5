package caching

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheService is the panel's only shared state besides the session cookie:
// the per-entity list cache (read-through, invalidated wholesale on any
// mutation), the server-side sessions, and the per-session flash messages.
type CacheService interface {
	// Entity list caching
	GetList(ctx context.Context, entity string, dest interface{}) (bool, error)
	SetList(ctx context.Context, entity string, value interface{}, ttl time.Duration) error
	InvalidateList(ctx context.Context, entity string) error

	// Session management
	SetSession(ctx context.Context, sessionID, payload string, ttl time.Duration) error
	GetSession(ctx context.Context, sessionID string) (string, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Flash messages (one slot per session, replaced on write)
	SetFlash(ctx context.Context, sessionID, payload string, ttl time.Duration) error
	TakeFlash(ctx context.Context, sessionID string) (string, error)

	// Ping backs the health endpoint.
	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Parse Redis URL to extract host:port if protocol is included
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

// NewCacheServiceWithClient wires an existing client, used by tests.
func NewCacheServiceWithClient(client *redis.Client) CacheService {
	return &redisCacheService{client: client}
}

func listKey(entity string) string {
	return "disparabot:list:" + entity
}

func sessionKey(sessionID string) string {
	return "disparabot:session:" + sessionID
}

func flashKey(sessionID string) string {
	return "disparabot:flash:" + sessionID
}

func (r *redisCacheService) GetList(ctx context.Context, entity string, dest interface{}) (bool, error) {
	data, err := r.client.Get(ctx, listKey(entity)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil // cache miss
		}
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (r *redisCacheService) SetList(ctx context.Context, entity string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, listKey(entity), data, ttl).Err()
}

func (r *redisCacheService) InvalidateList(ctx context.Context, entity string) error {
	return r.client.Del(ctx, listKey(entity)).Err()
}

func (r *redisCacheService) SetSession(ctx context.Context, sessionID, payload string, ttl time.Duration) error {
	return r.client.Set(ctx, sessionKey(sessionID), payload, ttl).Err()
}

func (r *redisCacheService) GetSession(ctx context.Context, sessionID string) (string, error) {
	val, err := r.client.Get(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil // not found
		}
		return "", err
	}
	return val, nil
}

func (r *redisCacheService) DeleteSession(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, sessionKey(sessionID)).Err()
}

func (r *redisCacheService) SetFlash(ctx context.Context, sessionID, payload string, ttl time.Duration) error {
	return r.client.Set(ctx, flashKey(sessionID), payload, ttl).Err()
}

func (r *redisCacheService) TakeFlash(ctx context.Context, sessionID string) (string, error) {
	val, err := r.client.GetDel(ctx, flashKey(sessionID)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", err
	}
	return val, nil
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
