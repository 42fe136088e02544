package autorooms

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/skylanix/MamieHenriette/internal/domain"
	"github.com/skylanix/MamieHenriette/internal/gateway"
)

// HandlePresence drives the room state machine: a join on the trigger
// channel spawns a room, a leave of a governed channel may tear it down.
func (m *Manager) HandlePresence(ctx context.Context, ev gateway.PresenceUpdate) {
	if !m.enabled(ctx) {
		return
	}
	trigger := m.triggerChannel(ctx)
	if trigger == "" {
		return
	}

	if ev.AfterChannelID == trigger {
		m.createRoom(ctx, ev, trigger)
	}

	if ev.BeforeChannelID != "" && ev.BeforeChannelID != trigger {
		m.handleLeave(ctx, ev)
	}
}

func (m *Manager) createRoom(ctx context.Context, ev gateway.PresenceUpdate, trigger domain.ChannelID) {
	// One live room per owner: a stray earlier room is replaced, not
	// duplicated.
	if old, ok := m.reg.Get(ev.GuildID, ev.UserID); ok {
		m.teardown(ctx, old)
	}

	var category domain.ChannelID
	if tch, err := m.gw.GetChannel(ctx, trigger); err == nil {
		category = tch.CategoryID
	}

	name := ev.UserName
	if name == "" {
		name = string(ev.UserID)
	}
	channelName := fmt.Sprintf("Salon de %s %s", name, domain.AccessOpen.Glyph())

	channelID, err := m.gw.CreateVoiceChannel(ctx, ev.GuildID, channelName, category)
	if err != nil {
		log.Error().Err(err).Str("module", "autorooms").Str("guild", string(ev.GuildID)).Str("owner", string(ev.UserID)).Msg("cannot create room channel")
		return
	}
	if err := m.gw.MoveMember(ctx, ev.GuildID, ev.UserID, channelID); err != nil {
		log.Error().Err(err).Str("module", "autorooms").Str("channel", string(channelID)).Msg("cannot move owner into room")
		// No partial room: the channel is orphaned otherwise.
		if derr := m.gw.DeleteChannel(ctx, channelID); derr != nil && !stale(derr) {
			log.Warn().Err(derr).Str("module", "autorooms").Str("channel", string(channelID)).Msg("cannot delete orphaned channel")
		}
		return
	}

	room := domain.NewRoom(ev.GuildID, ev.UserID, channelID)
	if ch, err := m.gw.GetChannel(ctx, channelID); err == nil {
		room.ControlMessageID = m.sendControlPanel(ctx, ev.UserID, ch)
	}
	m.reg.Set(room)
	log.Info().Str("module", "autorooms").Str("channel", string(channelID)).Str("owner", string(ev.UserID)).Msg("auto room created")
}

func (m *Manager) handleLeave(ctx context.Context, ev gateway.PresenceUpdate) {
	room, ok := m.reg.FindByChannel(ev.GuildID, ev.BeforeChannelID)
	if !ok {
		return
	}

	if ev.UserID == room.OwnerID {
		m.teardown(ctx, room)
		return
	}

	// Owner may have left earlier with stragglers remaining; the last
	// departure empties the channel and the room goes with it.
	ch, err := m.gw.GetChannel(ctx, ev.BeforeChannelID)
	if err != nil {
		if stale(err) {
			m.teardown(ctx, room)
		} else {
			log.Warn().Err(err).Str("module", "autorooms").Str("channel", string(ev.BeforeChannelID)).Msg("cannot inspect room occupancy")
		}
		return
	}
	remaining := 0
	for _, id := range ch.MemberIDs {
		if id != ev.UserID {
			remaining++
		}
	}
	if remaining == 0 {
		m.teardown(ctx, room)
	}
}

// teardown removes the room from the registry, then deletes the channel
// best effort. Channel deletion is idempotent: an already-gone channel
// counts as success.
func (m *Manager) teardown(ctx context.Context, room *domain.Room) {
	if _, ok := m.reg.Get(room.GuildID, room.OwnerID); !ok {
		return
	}
	m.reg.Delete(room.GuildID, room.OwnerID)
	if err := m.gw.DeleteChannel(ctx, room.VoiceChannelID); err != nil && !stale(err) {
		log.Warn().Err(err).Str("module", "autorooms").Str("channel", string(room.VoiceChannelID)).Msg("cannot delete room channel")
	}
	log.Info().Str("module", "autorooms").Str("channel", string(room.VoiceChannelID)).Str("owner", string(room.OwnerID)).Msg("auto room removed")
}
