// Package autorooms is the room lifecycle and access-control
// orchestrator: it turns presence and reaction events into temporary,
// member-owned voice rooms controlled through a reaction panel.
package autorooms

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/skylanix/MamieHenriette/internal/domain"
	"github.com/skylanix/MamieHenriette/internal/gateway"
	"github.com/skylanix/MamieHenriette/internal/settings"
)

const defaultPendingTTL = 60 * time.Second

// Manager owns the registry and implements every event handler. All
// handlers are expected to run on the orchestrator Loop; nothing here
// takes its own locks beyond the registry's.
type Manager struct {
	gw         gateway.Client
	settings   settings.Store
	reg        *Registry
	pendingTTL time.Duration

	// now is swappable for pending-input expiry tests.
	now func() time.Time
}

func NewManager(gw gateway.Client, store settings.Store, reg *Registry) *Manager {
	return &Manager{
		gw:         gw,
		settings:   store,
		reg:        reg,
		pendingTTL: defaultPendingTTL,
		now:        time.Now,
	}
}

// Registry exposes the room store for read-only consumers (status API).
func (m *Manager) Registry() *Registry { return m.reg }

// enabled reads the feature flag, failing closed on store errors.
func (m *Manager) enabled(ctx context.Context) bool {
	on, err := m.settings.GetBool(ctx, settings.KeyAutoRoomsEnable)
	if err != nil {
		log.Warn().Err(err).Str("module", "autorooms").Msg("cannot read feature flag")
		return false
	}
	return on
}

func (m *Manager) triggerChannel(ctx context.Context) domain.ChannelID {
	id, err := m.settings.GetChannelID(ctx, settings.KeyAutoRoomsChannelID)
	if err != nil {
		log.Warn().Err(err).Str("module", "autorooms").Msg("cannot read trigger channel")
		return ""
	}
	return id
}

// reply sends a plain message into the room's text surface, best effort.
func (m *Manager) reply(ctx context.Context, channel domain.ChannelID, content string) {
	if _, err := m.gw.SendMessage(ctx, channel, content, nil); err != nil {
		log.Warn().Err(err).Str("module", "autorooms").Str("channel", string(channel)).Msg("cannot send reply")
	}
}

// stale reports platform errors that mean the target no longer exists.
func stale(err error) bool {
	return errors.Is(err, gateway.ErrNotFound)
}
