package provider

import (
	"context"
	"sort"
	"strings"

	"github.com/coordkit/coordctl/internal/center"
)

// EventType classifies a change notification from a store.
type EventType int

const (
	EventPut EventType = iota
	EventDelete
)

func (t EventType) String() string {
	if t == EventDelete {
		return "delete"
	}
	return "put"
}

// Event is a single change notification for a watched key.
type Event struct {
	Type  EventType
	Key   string
	Value string
}

// Repository is the contract every coordination-store backend
// implements. Keys are slash-separated paths. Every method may block
// on network I/O to the external store; no retry is performed here.
type Repository interface {
	// Init connects the client using the candidate's properties.
	Init(cfg center.Config) error
	// Get returns the value at key, or "" when the key is absent.
	Get(key string) (string, error)
	// Children returns the immediate child names under key.
	Children(key string) ([]string, error)
	// Persist writes value at key, creating or replacing it.
	Persist(key, value string) error
	// PersistEphemeral writes a value whose lifetime is bound to this
	// client's session with the store.
	PersistEphemeral(key, value string) error
	// Watch delivers change events for key and everything below it to
	// events until ctx is done.
	Watch(ctx context.Context, key string, events chan<- Event) error
	// Close releases the client. Safe to call once after Init.
	Close() error
}

// ChildNames extracts the unique immediate child segments of base from
// a flat key listing. Shared by backends whose stores expose a flat
// keyspace rather than a tree.
func ChildNames(base string, keys []string) []string {
	prefix := strings.TrimSuffix(base, "/") + "/"
	seen := map[string]bool{}
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		rest, ok := strings.CutPrefix(key, prefix)
		if !ok || rest == "" {
			continue
		}
		name, _, _ := strings.Cut(rest, "/")
		if name != "" && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
