// Package confcenter wraps a resolved provider as the configuration
// store: global auth/props plus per-schema data-source and rule
// documents, all YAML, all guarded by the overwrite flag.
package confcenter

import (
	"context"
	"fmt"
	"path"

	"gopkg.in/yaml.v3"

	"github.com/coordkit/coordctl/internal/provider"
)

// Center is the config-store handle. Created once per facade init and
// owned by the facade; never re-created.
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
	return "/" + path.Join(append([]string{c.name, "config"}, parts...)...)
}

// persist honors the overwrite policy: with overwrite off, a path that
// already holds data is left untouched so a restarting process cannot
// clobber configuration another live process has advanced. Presence is
// judged by Repository.Get, which reports "" for an absent key, so an
// empty stored document counts as absent and may be rewritten.
func (c *Center) persist(key, value string, overwrite bool) error {
	if !overwrite {
		existing, err := c.repo.Get(key)
		if err != nil {
			return err
		}
		if existing != "" {
			return nil
		}
	}
	return c.repo.Persist(key, value)
}

func (c *Center) persistYAML(key string, doc any, overwrite bool) error {
	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("config marshal failed (%s): %w", key, err)
	}
	return c.persist(key, string(out), overwrite)
}

// PersistGlobalConfiguration writes the authentication record and the
// global properties.
func (c *Center) PersistGlobalConfiguration(auth Authentication, props map[string]string, overwrite bool) error {
	if err := c.persistYAML(c.node("authentication"), auth, overwrite); err != nil {
		return err
	}
	if props == nil {
		props = map[string]string{}
	}
	return c.persistYAML(c.node("props"), props, overwrite)
}

// PersistConfigurations writes one schema's data-source and rule
// documents. A nil rule set is persisted as empty, not rejected.
func (c *Center) PersistConfigurations(schema string, dataSources map[string]DataSourceConfig, rules []RuleConfig, overwrite bool) error {
	if len(dataSources) == 0 {
		return fmt.Errorf("no available data source in schema %q", schema)
	}
	if err := c.persistYAML(c.node("schema", schema, "datasource"), dataSources, overwrite); err != nil {
		return err
	}
	if rules == nil {
		rules = []RuleConfig{}
	}
	return c.persistYAML(c.node("schema", schema, "rule"), rules, overwrite)
}

// PersistClusterConfiguration writes the cluster heartbeat record.
func (c *Center) PersistClusterConfiguration(cfg ClusterConfig, overwrite bool) error {
	return c.persistYAML(c.node("cluster"), cfg, overwrite)
}

// PersistMetricsConfiguration writes the metrics collector record.
func (c *Center) PersistMetricsConfiguration(cfg MetricsConfig, overwrite bool) error {
	return c.persistYAML(c.node("metrics"), cfg, overwrite)
}

// AllSchemaNames lists every schema known to the store.
func (c *Center) AllSchemaNames() ([]string, error) {
	return c.repo.Children(c.node("schema"))
}

// LoadAuthentication reads the global authentication record back.
func (c *Center) LoadAuthentication() (Authentication, error) {
	var auth Authentication
	err := c.loadYAML(c.node("authentication"), &auth)
	return auth, err
}

// LoadProps reads the global properties back.
func (c *Center) LoadProps() (map[string]string, error) {
	props := map[string]string{}
	err := c.loadYAML(c.node("props"), &props)
	return props, err
}

// LoadDataSourceConfigs reads one schema's data sources back.
func (c *Center) LoadDataSourceConfigs(schema string) (map[string]DataSourceConfig, error) {
	out := map[string]DataSourceConfig{}
	err := c.loadYAML(c.node("schema", schema, "datasource"), &out)
	return out, err
}

// LoadRuleConfigs reads one schema's rules back.
func (c *Center) LoadRuleConfigs(schema string) ([]RuleConfig, error) {
	var out []RuleConfig
	err := c.loadYAML(c.node("schema", schema, "rule"), &out)
	return out, err
}

func (c *Center) loadYAML(key string, out any) error {
	raw, err := c.repo.Get(key)
	if err != nil {
		return err
	}
	if raw == "" {
		return nil
	}
	if err := yaml.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("config unmarshal failed (%s): %w", key, err)
	}
	return nil
}

// WatchSchema subscribes to changes of one schema's configuration.
func (c *Center) WatchSchema(ctx context.Context, schema string, events chan<- provider.Event) error {
	return c.repo.Watch(ctx, c.node("schema", schema), events)
}

// WatchGlobal subscribes to changes of the authentication and
// properties records.
func (c *Center) WatchGlobal(ctx context.Context, events chan<- provider.Event) error {
	if err := c.repo.Watch(ctx, c.node("authentication"), events); err != nil {
		return err
	}
	return c.repo.Watch(ctx, c.node("props"), events)
}
