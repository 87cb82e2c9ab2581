// Package redis backs the Repository contract with a Redis server.
// Keys keep their slash-path shape and are namespaced under a
// configurable prefix. Ephemeral values are TTL-bound and refreshed in
// the background while the client lives; change notifications ride on
// keyspace notifications.
//
// Recognized candidate properties: addr (default 127.0.0.1:6379),
// password, db, keyPrefix (default coordctl), ephemeralTTL (Go
// duration, default 30s).
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/coordkit/coordctl/internal/center"
	"github.com/coordkit/coordctl/internal/provider"
)

// Type is the registry key for this backend.
const Type = "redis"

// Register wires the backend into the provider registry.
func Register() {
	provider.Register(Type, func() provider.Repository { return &Repository{} })
}

const defaultEphemeralTTL = 30 * time.Second

type Repository struct {
	client *redis.Client
	prefix string
	db     int
	ttl    time.Duration

	mu         sync.Mutex
	ephemerals map[string]bool

	refreshCtx    context.Context
	refreshCancel context.CancelFunc
	refreshOnce   sync.Once
}

func (r *Repository) Init(cfg center.Config) error {
	db := 0
	if raw := cfg.Prop("db", ""); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("redis db property invalid (%s): %w", cfg.Name, err)
		}
		db = parsed
	}
	r.client = redis.NewClient(&redis.Options{
		Addr:     cfg.Prop("addr", "127.0.0.1:6379"),
		Password: cfg.Prop("password", ""),
		DB:       db,
	})
	r.prefix = cfg.Prop("keyPrefix", "coordctl")
	r.db = db
	r.ttl = defaultEphemeralTTL
	if raw := cfg.Prop("ephemeralTTL", ""); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			r.ttl = d
		}
	}
	r.ephemerals = make(map[string]bool)
	r.refreshCtx, r.refreshCancel = context.WithCancel(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connect failed (%s): %w", cfg.Name, err)
	}
	// Best effort; watch degrades to silence when the server refuses.
	r.client.ConfigSet(ctx, "notify-keyspace-events", "KA")
	return nil
}

func (r *Repository) key(key string) string {
	return r.prefix + key
}

func (r *Repository) Get(key string) (string, error) {
	val, err := r.client.Get(context.Background(), r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

func (r *Repository) Children(key string) ([]string, error) {
	pattern := r.key(strings.TrimSuffix(key, "/")) + "/*"
	keys, err := r.client.Keys(context.Background(), pattern).Result()
	if err != nil {
		return nil, err
	}
	trimmed := make([]string, 0, len(keys))
	for _, k := range keys {
		trimmed = append(trimmed, strings.TrimPrefix(k, r.prefix))
	}
	return provider.ChildNames(key, trimmed), nil
}

func (r *Repository) Persist(key, value string) error {
	return r.client.Set(context.Background(), r.key(key), value, 0).Err()
}

func (r *Repository) PersistEphemeral(key, value string) error {
	if err := r.client.Set(context.Background(), r.key(key), value, r.ttl).Err(); err != nil {
		return err
	}
	r.mu.Lock()
	r.ephemerals[r.key(key)] = true
	r.mu.Unlock()
	r.refreshOnce.Do(func() { go r.refreshLoop() })
	return nil
}

// refreshLoop keeps ephemeral TTLs alive while the client is open, so
// the values disappear shortly after the process does.
func (r *Repository) refreshLoop() {
	interval := r.ttl / 3
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-r.refreshCtx.Done():
			return
		case <-ticker.C:
			r.mu.Lock()
			keys := make([]string, 0, len(r.ephemerals))
			for k := range r.ephemerals {
				keys = append(keys, k)
			}
			r.mu.Unlock()
			for _, k := range keys {
				r.client.Expire(context.Background(), k, r.ttl)
			}
		}
	}
}

func (r *Repository) Watch(ctx context.Context, key string, events chan<- provider.Event) error {
	pattern := fmt.Sprintf("__keyspace@%d__:%s*", r.db, r.key(key))
	sub := r.client.PSubscribe(ctx, pattern)
	ch := sub.Channel()
	prefix := fmt.Sprintf("__keyspace@%d__:%s", r.db, r.prefix)
	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				storeKey := strings.TrimPrefix(msg.Channel, prefix)
				ev := provider.Event{Key: storeKey}
				switch msg.Payload {
				case "set":
					val, err := r.Get(storeKey)
					if err != nil {
						continue
					}
					ev.Type = provider.EventPut
					ev.Value = val
				case "del", "expired":
					ev.Type = provider.EventDelete
				default:
					continue
				}
				select {
				case events <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return nil
}

func (r *Repository) Close() error {
	if r.refreshCancel != nil {
		r.refreshCancel()
	}
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
