package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"BoleiaWeb/internal/config"

	"github.com/redis/go-redis/v9"
)

// ReceiverHintStore is the session-scoped chatID -> counterpart-user-id
// cache. Written whenever a counterpart is confidently resolved, read only as
// a last-resort fallback. Best-effort: a Get miss or a failed Set is never an
// error the caller acts on.
type ReceiverHintStore interface {
	Set(ctx context.Context, chatID, receiverID string)
	Get(ctx context.Context, chatID string) string
}

func hintKey(chatID string) string {
	return fmt.Sprintf("chat-receiver:%s", chatID)
}

// MemoryHintStore keeps hints for the lifetime of the process. Last write
// wins; no per-entry expiry since the process itself is the session.
type MemoryHintStore struct {
	mu    sync.RWMutex
	hints map[string]string
}

func NewMemoryHintStore() *MemoryHintStore {
	return &MemoryHintStore{hints: make(map[string]string)}
}

func (s *MemoryHintStore) Set(_ context.Context, chatID, receiverID string) {
	if chatID == "" || receiverID == "" {
		return
	}
	s.mu.Lock()
	s.hints[hintKey(chatID)] = receiverID
	s.mu.Unlock()
}

func (s *MemoryHintStore) Get(_ context.Context, chatID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hints[hintKey(chatID)]
}

// RedisHintStore keeps hints in Redis with a TTL so they survive gateway
// restarts within the same session window.
type RedisHintStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisHintStore(cfg *config.AppConfig) (*RedisHintStore, error) {
	addr := fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort)
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		slog.Error("Failed to connect to Redis", "error", err, "addr", addr)
		return nil, err
	}

	slog.Info("Connected to Redis", "addr", addr)

	return &RedisHintStore{
		client: client,
		ttl:    cfg.HintTTL,
	}, nil
}

func (s *RedisHintStore) Set(ctx context.Context, chatID, receiverID string) {
	if chatID == "" || receiverID == "" {
		return
	}
	if err := s.client.Set(ctx, hintKey(chatID), receiverID, s.ttl).Err(); err != nil {
		slog.Warn("Failed to store receiver hint", "error", err, "chatID", chatID)
	}
}

func (s *RedisHintStore) Get(ctx context.Context, chatID string) string {
	value, err := s.client.Get(ctx, hintKey(chatID)).Result()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("Failed to read receiver hint", "error", err, "chatID", chatID)
		}
		return ""
	}
	return value
}
