package facade

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/coordkit/coordctl/internal/center"
	"github.com/coordkit/coordctl/internal/center/confcenter"
	"github.com/coordkit/coordctl/internal/provider"
	"github.com/coordkit/coordctl/internal/provider/memory"
)

// trackingRepo records init/close calls so tests can observe the
// facade's sequencing and shutdown behavior.
type trackingRepo struct {
	*memory.Repository
	log      *[]string
	closeErr error
	name     string
}

func (r *trackingRepo) Init(cfg center.Config) error {
	r.name = cfg.Name
	*r.log = append(*r.log, "init:"+cfg.Name)
	return r.Repository.Init(cfg)
}

func (r *trackingRepo) Close() error {
	*r.log = append(*r.log, "close:"+r.name)
	if r.closeErr != nil {
		return r.closeErr
	}
	return r.Repository.Close()
}

// registerTracking registers a per-test provider type whose instances
// share one op log and optionally one backing store.
func registerTracking(t *testing.T, shared *memory.Repository, closeErr error) (string, *[]string) {
	t.Helper()
	opLog := &[]string{}
	typeName := "tracking-" + t.Name()
	provider.Register(typeName, func() provider.Repository {
		backing := shared
		if backing == nil {
			backing = memory.New()
		}
		return &trackingRepo{Repository: backing, log: opLog, closeErr: closeErr}
	})
	return typeName, opLog
}

// drainEvents discards notifications already queued, such as the
// instance-online publication ActivateRuntime itself triggers.
func drainEvents(f *Facade) {
	for {
		select {
		case <-f.Events():
		case <-time.After(50 * time.Millisecond):
			return
		}
	}
}

func TestInitOrder(t *testing.T) {
	typeName, opLog := registerTracking(t, nil, nil)
	pool := center.Pool{
		"A": {Name: "A", Type: typeName, Roles: "configCenter"},
		"B": {Name: "B", Type: typeName, Roles: "registryCenter"},
		"C": {Name: "C", Type: typeName, Roles: "metadataCenter"},
	}

	f := New()
	defer f.Close()
	require.NoError(t, f.Init(pool, []string{"orders"}))

	require.Equal(t, []string{"init:A", "init:B", "init:C"}, *opLog)
	require.NotNil(t, f.ConfigCenter())
	require.NotNil(t, f.RegistryCenter())
	require.NotNil(t, f.MetaDataCenter())
}

func TestInitMissingRoleFailsBeforeLaterStores(t *testing.T) {
	typeName, opLog := registerTracking(t, nil, nil)
	pool := center.Pool{
		"A": {Name: "A", Type: typeName, Roles: "configCenter"},
		"C": {Name: "C", Type: typeName, Roles: "metadataCenter"},
	}

	f := New()
	defer f.Close()
	err := f.Init(pool, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "registryCenter")
	require.Equal(t, []string{"init:A"}, *opLog, "no store may be constructed for roles after the failing one")
}

func TestInitMissingConfigRole(t *testing.T) {
	typeName, opLog := registerTracking(t, nil, nil)
	pool := center.Pool{
		"B": {Name: "B", Type: typeName, Roles: "registryCenter,metadataCenter"},
	}

	f := New()
	err := f.Init(pool, nil)
	require.Error(t, err)
	require.Empty(t, *opLog)
}

func TestInitUnregisteredProvider(t *testing.T) {
	pool := center.Pool{
		"A": {Name: "A", Type: "no-such-backend", Roles: "configCenter,registryCenter,metadataCenter"},
	}

	f := New()
	err := f.Init(pool, nil)
	require.ErrorIs(t, err, provider.ErrUnregisteredProvider)
}

func TestInitOneCandidateServingTwoRoles(t *testing.T) {
	typeName, opLog := registerTracking(t, nil, nil)
	pool := center.Pool{
		"A": {Name: "A", Type: typeName, Roles: "configCenter"},
		"B": {Name: "B", Type: typeName, Roles: "registryCenter,metadataCenter"},
	}

	f := New()
	defer f.Close()
	require.NoError(t, f.Init(pool, []string{"orders"}))

	require.Equal(t, "A", f.ConfigCenter().Name())
	require.Equal(t, "B", f.RegistryCenter().Name())
	require.Equal(t, "B", f.MetaDataCenter().Name())
	// B's properties are initialized independently for each role.
	require.Equal(t, []string{"init:A", "init:B", "init:B"}, *opLog)
}

func TestOverwriteFlagDerivation(t *testing.T) {
	typeName, _ := registerTracking(t, nil, nil)
	pool := center.Pool{
		"A": {Name: "A", Type: typeName, Roles: "configCenter", Props: map[string]string{"overwrite": "true"}},
		"B": {Name: "B", Type: typeName, Roles: "registryCenter,metadataCenter", Props: map[string]string{"overwrite": "false"}},
	}

	f := New()
	defer f.Close()
	require.NoError(t, f.Init(pool, []string{"orders"}))
	require.True(t, f.Overwrite(), "overwrite comes from the config-store candidate only")
}

func TestInitSchemaNameFallback(t *testing.T) {
	shared := memory.New()
	typeName, _ := registerTracking(t, shared, nil)
	pool := center.Pool{
		"one": {Name: "one", Type: typeName, Roles: "configCenter,registryCenter,metadataCenter"},
	}

	// The config store already knows two schemas.
	seed := confcenter.New("one", shared)
	ds := map[string]confcenter.DataSourceConfig{"ds_0": {URL: "jdbc:mysql://db0:3306/x"}}
	require.NoError(t, seed.PersistConfigurations("orders", ds, nil, true))
	require.NoError(t, seed.PersistConfigurations("users", ds, nil, true))

	f := New()
	defer f.Close()
	require.NoError(t, f.Init(pool, nil))
	require.NoError(t, f.ActivateRuntime())
	drainEvents(f)

	// A change to a discovered schema must reach the listener set.
	require.NoError(t, shared.Persist("/one/config/schema/users/rule", "type: sharding"))
	select {
	case ev := <-f.Events():
		require.Equal(t, "/one/config/schema/users/rule", ev.Key)
	case <-time.After(time.Second):
		t.Fatal("expected event for schema discovered from the config store")
	}
}

func TestInitExplicitSchemaNamesUsedVerbatim(t *testing.T) {
	shared := memory.New()
	typeName, _ := registerTracking(t, shared, nil)
	pool := center.Pool{
		"one": {Name: "one", Type: typeName, Roles: "configCenter,registryCenter,metadataCenter"},
	}

	seed := confcenter.New("one", shared)
	ds := map[string]confcenter.DataSourceConfig{"ds_0": {URL: "jdbc:mysql://db0:3306/x"}}
	require.NoError(t, seed.PersistConfigurations("orders", ds, nil, true))
	require.NoError(t, seed.PersistConfigurations("users", ds, nil, true))

	f := New()
	defer f.Close()
	require.NoError(t, f.Init(pool, []string{"users"}))
	require.NoError(t, f.ActivateRuntime())
	drainEvents(f)

	require.NoError(t, shared.Persist("/one/config/schema/orders/rule", "ignored"))
	select {
	case ev := <-f.Events():
		t.Fatalf("expected no event for unsubscribed schema, got %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, shared.Persist("/one/config/schema/users/rule", "type: sharding"))
	select {
	case ev := <-f.Events():
		require.Equal(t, "/one/config/schema/users/rule", ev.Key)
	case <-time.After(time.Second):
		t.Fatal("expected event for the caller-supplied schema")
	}
}

func TestInitConfigurationsPersistsAndActivates(t *testing.T) {
	shared := memory.New()
	typeName, _ := registerTracking(t, shared, nil)
	pool := center.Pool{
		"one": {Name: "one", Type: typeName, Roles: "configCenter,registryCenter,metadataCenter"},
	}

	f := New()
	defer f.Close()
	require.NoError(t, f.Init(pool, []string{"orders", "users"}))

	dataSources := map[string]map[string]confcenter.DataSourceConfig{
		"orders": {"ds_0": {URL: "jdbc:mysql://db0:3306/orders"}},
		"users":  {"ds_0": {URL: "jdbc:mysql://db0:3306/users"}},
	}
	rules := map[string][]confcenter.RuleConfig{
		"orders": {{"type": "sharding"}},
		// no entry for users: best effort, empty rule set
	}
	auth := confcenter.Authentication{Username: "root", Password: "root"}

	require.NoError(t, f.InitConfigurations(dataSources, rules, auth, map[string]string{"sql.show": "true"}))

	gotAuth, err := f.ConfigCenter().LoadAuthentication()
	require.NoError(t, err)
	require.Equal(t, "root", gotAuth.Username)

	usersRules, err := f.ConfigCenter().LoadRuleConfigs("users")
	require.NoError(t, err)
	require.Empty(t, usersRules)

	online, err := f.RegistryCenter().OnlineInstances()
	require.NoError(t, err)
	require.Len(t, online, 1)
}

func TestCloseSwallowsErrorsAndClosesAll(t *testing.T) {
	typeName, opLog := registerTracking(t, nil, errors.New("backend unreachable"))
	pool := center.Pool{
		"A": {Name: "A", Type: typeName, Roles: "configCenter"},
		"B": {Name: "B", Type: typeName, Roles: "registryCenter"},
		"C": {Name: "C", Type: typeName, Roles: "metadataCenter"},
	}

	f := New()
	require.NoError(t, f.Init(pool, []string{"orders"}))

	*opLog = (*opLog)[:0]
	f.Close() // must not panic or surface the close errors
	require.Equal(t, []string{"close:A", "close:B", "close:C"}, *opLog)
}

func TestCloseAfterFailedInit(t *testing.T) {
	typeName, opLog := registerTracking(t, nil, nil)
	pool := center.Pool{
		"A": {Name: "A", Type: typeName, Roles: "configCenter"},
		// registry role unresolvable
	}

	f := New()
	require.Error(t, f.Init(pool, nil))

	*opLog = (*opLog)[:0]
	f.Close()
	require.Equal(t, []string{"close:A"}, *opLog, "only the store opened before the failure is closed")
}

func TestInstanceSingleton(t *testing.T) {
	ResetInstance()
	t.Cleanup(ResetInstance)

	a := Instance()
	b := Instance()
	if a != b {
		t.Fatal("expected the same facade instance on repeated access")
	}

	ResetInstance()
	if c := Instance(); c == a {
		t.Fatal("expected a fresh instance after reset")
	}
}

func TestRepeatedActivateRuntimeRepublishes(t *testing.T) {
	shared := memory.New()
	typeName, _ := registerTracking(t, shared, nil)
	pool := center.Pool{
		"one": {Name: "one", Type: typeName, Roles: fmt.Sprintf("%s,%s,%s", center.RoleConfig, center.RoleRegistry, center.RoleMetadata)},
	}

	f := New()
	defer f.Close()
	require.NoError(t, f.Init(pool, []string{"orders"}))
	require.NoError(t, f.ActivateRuntime())
	// Listener activation is idempotent; the publication simply
	// repeats, which is the documented caller responsibility.
	require.NoError(t, f.ActivateRuntime())
}
