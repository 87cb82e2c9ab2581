// Package memory provides an in-process Repository used for tests and
// single-node runs. Ephemeral values live as long as the process, which
// matches the session lifetime the contract asks for.
package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/coordkit/coordctl/internal/center"
	"github.com/coordkit/coordctl/internal/provider"
)

// Type is the registry key for this backend.
const Type = "memory"

// Register wires the backend into the provider registry.
func Register() {
	provider.Register(Type, func() provider.Repository { return New() })
}

var errClosed = errors.New("memory repository closed")

type watcher struct {
	ctx    context.Context
	prefix string
	events chan<- provider.Event
}

// Repository is a mutex-guarded map store with prefix-watch fanout.
type Repository struct {
	mu       sync.RWMutex
	data     map[string]string
	watchers []watcher
	closed   bool
}

func New() *Repository {
	return &Repository{data: make(map[string]string)}
}

func (r *Repository) Init(center.Config) error {
	return nil
}

func (r *Repository) Get(key string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return "", errClosed
	}
	return r.data[key], nil
}

func (r *Repository) Children(key string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return nil, errClosed
	}
	keys := make([]string, 0, len(r.data))
	for k := range r.data {
		keys = append(keys, k)
	}
	return provider.ChildNames(key, keys), nil
}

func (r *Repository) Persist(key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return errClosed
	}
	r.data[key] = value
	r.notify(provider.Event{Type: provider.EventPut, Key: key, Value: value})
	return nil
}

func (r *Repository) PersistEphemeral(key, value string) error {
	return r.Persist(key, value)
}

// Delete removes a key. Not part of the Repository contract; used by
// tests to drive delete notifications.
func (r *Repository) Delete(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return errClosed
	}
	delete(r.data, key)
	r.notify(provider.Event{Type: provider.EventDelete, Key: key})
	return nil
}

func (r *Repository) Watch(ctx context.Context, key string, events chan<- provider.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return errClosed
	}
	r.watchers = append(r.watchers, watcher{ctx: ctx, prefix: key, events: events})
	return nil
}

func (r *Repository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.watchers = nil
	return nil
}

// notify is called with the write lock held. Sends are non-blocking;
// a subscriber that cannot keep up misses events rather than stalling
// writers.
func (r *Repository) notify(ev provider.Event) {
	for _, w := range r.watchers {
		if w.ctx.Err() != nil {
			continue
		}
		if ev.Key != w.prefix && !strings.HasPrefix(ev.Key, strings.TrimSuffix(w.prefix, "/")+"/") {
			continue
		}
		select {
		case w.events <- ev:
		default:
		}
	}
}
