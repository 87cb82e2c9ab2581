// Package listener builds the change-notification subscription set
// spanning the three live store handles. Events arrive on whatever
// goroutines the providers dispatch from, concurrently with facade
// calls; no ordering between a persisted write and its notification is
// assumed beyond what the store guarantees.
package listener

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/coordkit/coordctl/internal/center/confcenter"
	"github.com/coordkit/coordctl/internal/center/metacenter"
	"github.com/coordkit/coordctl/internal/center/regcenter"
	"github.com/coordkit/coordctl/internal/provider"
)

// Manager owns the subscription set. It holds no persistent state;
// subscriptions die with the context the facade activates them under.
type Manager struct {
	config   *confcenter.Center
	registry *regcenter.Center
	metadata *metacenter.Center
	schemas  []string

	events chan provider.Event

	once        sync.Once
	activateErr error
}

func NewManager(config *confcenter.Center, registry *regcenter.Center, metadata *metacenter.Center, schemas []string) *Manager {
	return &Manager{
		config:   config,
		registry: registry,
		metadata: metadata,
		schemas:  schemas,
		events:   make(chan provider.Event, 64),
	}
}

// Schemas returns the schema names this manager subscribes for.
func (m *Manager) Schemas() []string {
	return m.schemas
}

// Events is the merged notification stream across all subscriptions.
func (m *Manager) Events() <-chan provider.Event {
	return m.events
}

// Activate begins dispatch: per-schema config and metadata watches,
// the global auth/props watch, and the registry instance and
// data-source state watches. Activation happens at most once; repeated
// calls return the first outcome.
func (m *Manager) Activate(ctx context.Context) error {
	m.once.Do(func() {
		m.activateErr = m.activate(ctx)
	})
	return m.activateErr
}

func (m *Manager) activate(ctx context.Context) error {
	for _, schema := range m.schemas {
		if err := m.config.WatchSchema(ctx, schema, m.events); err != nil {
			return err
		}
		if err := m.metadata.WatchSchema(ctx, schema, m.events); err != nil {
			return err
		}
	}
	if err := m.config.WatchGlobal(ctx, m.events); err != nil {
		return err
	}
	if err := m.registry.WatchInstances(ctx, m.events); err != nil {
		return err
	}
	if err := m.registry.WatchDataSources(ctx, m.events); err != nil {
		return err
	}
	log.Info().Strs("schemas", m.schemas).Msg("listeners activated")
	return nil
}
