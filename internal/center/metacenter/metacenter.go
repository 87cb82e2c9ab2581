// Package metacenter wraps a resolved provider as the metadata store.
// Metadata documents are opaque YAML owned by the schema's consumers;
// this handle only places and watches them.
package metacenter

import (
	"context"
	"path"

	"github.com/coordkit/coordctl/internal/provider"
)

// Center is the metadata-store handle.
type Center struct {
	name string
	repo provider.Repository
}

func New(name string, repo provider.Repository) *Center {
	return &Center{name: name, repo: repo}
}

// Name returns the resolved candidate name backing this center.
func (c *Center) Name() string {
	return c.name
}

func (c *Center) node(parts ...string) string {
	return "/" + path.Join(append([]string{c.name, "metadata"}, parts...)...)
}

// PersistMetaData writes one schema's metadata document.
func (c *Center) PersistMetaData(schema, metaData string) error {
	return c.repo.Persist(c.node(schema), metaData)
}

// LoadMetaData reads one schema's metadata document, "" when absent.
func (c *Center) LoadMetaData(schema string) (string, error) {
	return c.repo.Get(c.node(schema))
}

// WatchSchema subscribes to one schema's metadata changes.
func (c *Center) WatchSchema(ctx context.Context, schema string, events chan<- provider.Event) error {
	return c.repo.Watch(ctx, c.node(schema), events)
}
