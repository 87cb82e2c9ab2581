// Package facade selects, sequences, and supervises the three
// coordination-store clients a process depends on. It implements no
// coordination protocol itself; providers own their wire protocols and
// consistency guarantees.
package facade

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coordkit/coordctl/internal/center"
	"github.com/coordkit/coordctl/internal/center/confcenter"
	"github.com/coordkit/coordctl/internal/center/metacenter"
	"github.com/coordkit/coordctl/internal/center/regcenter"
	"github.com/coordkit/coordctl/internal/listener"
	"github.com/coordkit/coordctl/internal/observability"
	"github.com/coordkit/coordctl/internal/provider"
)

// OverwritePropKey is the candidate property on the config-store
// candidate that governs whether persistence calls may replace
// existing stored values. Absent means false.
const OverwritePropKey = "overwrite"

// Facade orchestrates resolution and initialization of the three
// store handles in Config, Registry, Metadata order, exposes the
// persistence operations, and owns the listener subscription set.
//
// Init, the persistence calls, and Close are meant to run on a single
// orchestrating goroutine during startup and shutdown. Calling Init
// twice on one instance is a caller error and is not guarded; a failed
// Init leaves the facade unusable and the instance must be discarded
// after calling Close to release whatever was opened.
type Facade struct {
	overwrite bool

	configRepo   provider.Repository
	registryRepo provider.Repository
	metaRepo     provider.Repository

	configCenter   *confcenter.Center
	registryCenter *regcenter.Center
	metaCenter     *metacenter.Center
	listeners      *listener.Manager

	watchCtx    context.Context
	watchCancel context.CancelFunc
}

func New() *Facade {
	return &Facade{}
}

// Init resolves one candidate per role from the pool and brings the
// three stores up in dependency order, then builds the listener
// subscription set. An empty schemaNames collection falls back to the
// full schema set reported by the config store. Any failure is fatal
// and aborts the sequence.
func (f *Facade) Init(pool center.Pool, schemaNames []string) error {
	start := time.Now()
	err := f.init(pool, schemaNames)
	observability.RecordCenterOp("facade", "init", err, time.Since(start))
	return err
}

func (f *Facade) init(pool center.Pool, schemaNames []string) error {
	if err := f.initConfigCenter(pool); err != nil {
		return err
	}
	if err := f.initRegistryCenter(pool); err != nil {
		return err
	}
	if err := f.initMetaDataCenter(pool); err != nil {
		return err
	}
	return f.initListeners(schemaNames)
}

func (f *Facade) initConfigCenter(pool center.Pool) error {
	name, repo, cfg, err := resolveAndInit(pool, center.RoleConfig)
	if err != nil {
		return err
	}
	f.overwrite = cfg.BoolProp(OverwritePropKey, false)
	f.configRepo = repo
	f.configCenter = confcenter.New(name, repo)
	log.Info().Str("candidate", name).Str("type", cfg.Type).Bool("overwrite", f.overwrite).Msg("config center ready")
	return nil
}

func (f *Facade) initRegistryCenter(pool center.Pool) error {
	name, repo, cfg, err := resolveAndInit(pool, center.RoleRegistry)
	if err != nil {
		return err
	}
	f.registryRepo = repo
	f.registryCenter = regcenter.New(name, repo)
	log.Info().Str("candidate", name).Str("type", cfg.Type).Msg("registry center ready")
	return nil
}

func (f *Facade) initMetaDataCenter(pool center.Pool) error {
	name, repo, cfg, err := resolveAndInit(pool, center.RoleMetadata)
	if err != nil {
		return err
	}
	f.metaRepo = repo
	f.metaCenter = metacenter.New(name, repo)
	log.Info().Str("candidate", name).Str("type", cfg.Type).Msg("metadata center ready")
	return nil
}

func (f *Facade) initListeners(schemaNames []string) error {
	schemas := schemaNames
	if len(schemas) == 0 {
		all, err := f.configCenter.AllSchemaNames()
		if err != nil {
			return fmt.Errorf("schema name lookup failed: %w", err)
		}
		schemas = all
	}
	f.watchCtx, f.watchCancel = context.WithCancel(context.Background())
	f.listeners = listener.NewManager(f.configCenter, f.registryCenter, f.metaCenter, schemas)
	return f.listeners.Activate(f.watchCtx)
}

// resolveAndInit turns "no match" into the fatal configuration error
// each required role demands.
func resolveAndInit(pool center.Pool, role center.Role) (string, provider.Repository, center.Config, error) {
	name, ok := center.Resolve(pool, role)
	if !ok {
		return "", nil, center.Config{}, fmt.Errorf("no candidate tagged for role %q", role)
	}
	cfg, ok := pool[name]
	if !ok {
		return "", nil, center.Config{}, fmt.Errorf("candidate configuration missing for %q (role %q)", name, role)
	}
	repo, err := provider.New(cfg.Type)
	if err != nil {
		return "", nil, center.Config{}, fmt.Errorf("role %q: %w", role, err)
	}
	if err := repo.Init(cfg); err != nil {
		return "", nil, center.Config{}, fmt.Errorf("provider init failed for %q (role %q): %w", name, role, err)
	}
	return name, repo, cfg, nil
}

// Overwrite reports the persistence overwrite policy derived from the
// config-store candidate.
func (f *Facade) Overwrite() bool {
	return f.overwrite
}

// ConfigCenter returns the config-store handle.
func (f *Facade) ConfigCenter() *confcenter.Center {
	return f.configCenter
}

// RegistryCenter returns the registry-store handle.
func (f *Facade) RegistryCenter() *regcenter.Center {
	return f.registryCenter
}

// MetaDataCenter returns the metadata-store handle.
func (f *Facade) MetaDataCenter() *metacenter.Center {
	return f.metaCenter
}

// Events is the merged change-notification stream, nil before Init.
func (f *Facade) Events() <-chan provider.Event {
	if f.listeners == nil {
		return nil
	}
	return f.listeners.Events()
}

// InitConfigurations persists the global configuration record and
// every schema's data-source and rule configuration, honoring the
// overwrite policy, then activates the runtime. A schema present in
// dataSourceConfigs but absent from ruleConfigs gets an empty rule
// set.
func (f *Facade) InitConfigurations(
	dataSourceConfigs map[string]map[string]confcenter.DataSourceConfig,
	ruleConfigs map[string][]confcenter.RuleConfig,
	auth confcenter.Authentication,
	props map[string]string,
) error {
	start := time.Now()
	err := f.initConfigurations(dataSourceConfigs, ruleConfigs, auth, props)
	observability.RecordCenterOp("config", "init_configurations", err, time.Since(start))
	return err
}

func (f *Facade) initConfigurations(
	dataSourceConfigs map[string]map[string]confcenter.DataSourceConfig,
	ruleConfigs map[string][]confcenter.RuleConfig,
	auth confcenter.Authentication,
	props map[string]string,
) error {
	if err := f.configCenter.PersistGlobalConfiguration(auth, props, f.overwrite); err != nil {
		return err
	}
	schemas := make([]string, 0, len(dataSourceConfigs))
	for schema := range dataSourceConfigs {
		schemas = append(schemas, schema)
	}
	sort.Strings(schemas)
	for _, schema := range schemas {
		if err := f.configCenter.PersistConfigurations(schema, dataSourceConfigs[schema], ruleConfigs[schema], f.overwrite); err != nil {
			return err
		}
	}
	return f.ActivateRuntime()
}

// ActivateRuntime publishes this instance as online and publishes the
// data-source topology node, then re-asserts listener activation,
// which is idempotent. The online publication is not: repeated calls
// re-publish, so callers publish once per process lifetime.
func (f *Facade) ActivateRuntime() error {
	start := time.Now()
	err := f.activateRuntime()
	observability.RecordCenterOp("registry", "activate_runtime", err, time.Since(start))
	return err
}

func (f *Facade) activateRuntime() error {
	if err := f.registryCenter.PersistInstanceOnline(); err != nil {
		return err
	}
	if err := f.registryCenter.PersistDataSourcesNode(); err != nil {
		return err
	}
	return f.listeners.Activate(f.watchCtx)
}

// InitMetricsConfiguration persists the metrics configuration record.
func (f *Facade) InitMetricsConfiguration(cfg confcenter.MetricsConfig) error {
	start := time.Now()
	err := f.configCenter.PersistMetricsConfiguration(cfg, f.overwrite)
	observability.RecordCenterOp("config", "init_metrics_configuration", err, time.Since(start))
	return err
}

// InitClusterConfiguration persists the cluster configuration record.
func (f *Facade) InitClusterConfiguration(cfg confcenter.ClusterConfig) error {
	start := time.Now()
	err := f.configCenter.PersistClusterConfiguration(cfg, f.overwrite)
	observability.RecordCenterOp("config", "init_cluster_configuration", err, time.Since(start))
	return err
}

// Close releases the three providers independently. A failed close is
// logged as a warning and never stops the remaining closes or reaches
// the caller: best-effort release against stores that may already be
// unreachable must not block process shutdown. Safe after a failed
// Init; handles never opened are skipped.
func (f *Facade) Close() {
	if f.watchCancel != nil {
		f.watchCancel()
	}
	closeRepo("config", f.configRepo)
	closeRepo("registry", f.registryRepo)
	closeRepo("metadata", f.metaRepo)
}

func closeRepo(role string, repo provider.Repository) {
	if repo == nil {
		return
	}
	if err := repo.Close(); err != nil {
		log.Warn().Err(err).Str("center", role).Msg("center close failed")
	}
}
