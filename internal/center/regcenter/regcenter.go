// Package regcenter wraps a resolved provider as the membership store:
// an ephemeral instance-online node plus the data-source topology
// nodes other processes read and flip.
package regcenter

import (
	"context"
	"fmt"
	"net"
	"os"
	"path"

	"github.com/google/uuid"

	"github.com/coordkit/coordctl/internal/provider"
)

// Center is the registry-store handle.
type Center struct {
	name       string
	repo       provider.Repository
	instanceID string
}

func New(name string, repo provider.Repository) *Center {
	return &Center{
		name:       name,
		repo:       repo,
		instanceID: fmt.Sprintf("%s@%d@%s", localIP(), os.Getpid(), uuid.NewString()),
	}
}

// Name returns the resolved candidate name backing this center.
func (c *Center) Name() string {
	return c.name
}

// InstanceID identifies this process instance in the registry store.
func (c *Center) InstanceID() string {
	return c.instanceID
}

func (c *Center) node(parts ...string) string {
	return "/" + path.Join(append([]string{c.name, "state"}, parts...)...)
}

// PersistInstanceOnline publishes this instance as online. The node is
// ephemeral: it disappears when the provider session ends. Repeated
// calls re-publish; callers are expected to call once per process
// lifetime.
func (c *Center) PersistInstanceOnline() error {
	return c.repo.PersistEphemeral(c.node("instances", c.instanceID), "")
}

// PersistDataSourcesNode publishes the data-source topology root.
func (c *Center) PersistDataSourcesNode() error {
	return c.repo.Persist(c.node("datanodes"), "")
}

// PersistDataSourceDisabled flips one data source's disabled marker.
func (c *Center) PersistDataSourceDisabled(schema, dataSource string, disabled bool) error {
	value := ""
	if disabled {
		value = "disabled"
	}
	return c.repo.Persist(c.node("datanodes", schema, dataSource), value)
}

// OnlineInstances lists the instance IDs currently online.
func (c *Center) OnlineInstances() ([]string, error) {
	return c.repo.Children(c.node("instances"))
}

// WatchInstances subscribes to instance online/offline changes.
func (c *Center) WatchInstances(ctx context.Context, events chan<- provider.Event) error {
	return c.repo.Watch(ctx, c.node("instances"), events)
}

// WatchDataSources subscribes to data-source state changes.
func (c *Center) WatchDataSources(ctx context.Context, events chan<- provider.Event) error {
	return c.repo.Watch(ctx, c.node("datanodes"), events)
}

func localIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "127.0.0.1"
	}
	for _, addr := range addrs {
		if ipNet, ok := addr.(*net.IPNet); ok && !ipNet.IP.IsLoopback() && ipNet.IP.To4() != nil {
			return ipNet.IP.String()
		}
	}
	return "127.0.0.1"
}
