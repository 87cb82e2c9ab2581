// Package etcd backs the Repository contract with an etcd v3 cluster.
//
// Recognized candidate properties: endpoints (comma-separated, default
// 127.0.0.1:2379), username, password, dialTimeout, operationTimeout
// (Go durations), ephemeralTTL (seconds the session lease survives a
// lost client).
package etcd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.etcd.io/etcd/api/v3/mvccpb"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/coordkit/coordctl/internal/center"
	"github.com/coordkit/coordctl/internal/provider"
)

// Type is the registry key for this backend.
const Type = "etcd"

// Register wires the backend into the provider registry.
func Register() {
	provider.Register(Type, func() provider.Repository { return &Repository{} })
}

const (
	defaultDialTimeout = 10 * time.Second
	defaultOpTimeout   = 5 * time.Second
	defaultLeaseTTL    = 30
)

type Repository struct {
	client    *clientv3.Client
	opTimeout time.Duration
	leaseTTL  int64

	leaseOnce sync.Once
	leaseID   clientv3.LeaseID
	leaseErr  error
}

func (r *Repository) Init(cfg center.Config) error {
	dialTimeout := durationProp(cfg, "dialTimeout", defaultDialTimeout)
	client, err := clientv3.New(clientv3.Config{
		Endpoints:   splitEndpoints(cfg.Prop("endpoints", "127.0.0.1:2379")),
		DialTimeout: dialTimeout,
		Username:    cfg.Prop("username", ""),
		Password:    cfg.Prop("password", ""),
	})
	if err != nil {
		return fmt.Errorf("etcd connect failed (%s): %w", cfg.Name, err)
	}
	r.client = client
	r.opTimeout = durationProp(cfg, "operationTimeout", defaultOpTimeout)
	r.leaseTTL = defaultLeaseTTL
	if raw := cfg.Prop("ephemeralTTL", ""); raw != "" {
		if ttl, err := strconv.ParseInt(raw, 10, 64); err == nil && ttl > 0 {
			r.leaseTTL = ttl
		}
	}
	return nil
}

func (r *Repository) Get(key string) (string, error) {
	ctx, cancel := r.opCtx()
	defer cancel()
	resp, err := r.client.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if len(resp.Kvs) == 0 {
		return "", nil
	}
	return string(resp.Kvs[0].Value), nil
}

func (r *Repository) Children(key string) ([]string, error) {
	ctx, cancel := r.opCtx()
	defer cancel()
	resp, err := r.client.Get(ctx, key+"/", clientv3.WithPrefix(), clientv3.WithKeysOnly())
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		keys = append(keys, string(kv.Key))
	}
	return provider.ChildNames(key, keys), nil
}

func (r *Repository) Persist(key, value string) error {
	ctx, cancel := r.opCtx()
	defer cancel()
	_, err := r.client.Put(ctx, key, value)
	return err
}

// PersistEphemeral writes under a session lease kept alive in the
// background; the store drops the key once the lease expires after
// this client disappears.
func (r *Repository) PersistEphemeral(key, value string) error {
	lease, err := r.sessionLease()
	if err != nil {
		return err
	}
	ctx, cancel := r.opCtx()
	defer cancel()
	_, err = r.client.Put(ctx, key, value, clientv3.WithLease(lease))
	return err
}

func (r *Repository) sessionLease() (clientv3.LeaseID, error) {
	r.leaseOnce.Do(func() {
		ctx, cancel := r.opCtx()
		defer cancel()
		grant, err := r.client.Grant(ctx, r.leaseTTL)
		if err != nil {
			r.leaseErr = fmt.Errorf("etcd lease grant failed: %w", err)
			return
		}
		keepAlive, err := r.client.KeepAlive(context.Background(), grant.ID)
		if err != nil {
			r.leaseErr = fmt.Errorf("etcd lease keep-alive failed: %w", err)
			return
		}
		go func() {
			for range keepAlive {
			}
		}()
		r.leaseID = grant.ID
	})
	return r.leaseID, r.leaseErr
}

func (r *Repository) Watch(ctx context.Context, key string, events chan<- provider.Event) error {
	watchCh := r.client.Watch(ctx, key, clientv3.WithPrefix())
	go func() {
		for resp := range watchCh {
			for _, ev := range resp.Events {
				out := provider.Event{Key: string(ev.Kv.Key), Value: string(ev.Kv.Value)}
				if ev.Type == mvccpb.DELETE {
					out.Type = provider.EventDelete
				}
				select {
				case events <- out:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return nil
}

func (r *Repository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}

func (r *Repository) opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), r.opTimeout)
}

func splitEndpoints(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if ep := strings.TrimSpace(part); ep != "" {
			out = append(out, ep)
		}
	}
	return out
}

func durationProp(cfg center.Config, key string, def time.Duration) time.Duration {
	raw := cfg.Prop(key, "")
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
