package autorooms

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/skylanix/MamieHenriette/internal/domain"
	"github.com/skylanix/MamieHenriette/internal/gateway"
)

// HandleReaction routes a panel reaction. The panel is single-operator:
// anyone but the owner gets their reaction removed and nothing else.
func (m *Manager) HandleReaction(ctx context.Context, ev gateway.ReactionAdd) {
	if ev.UserID == m.gw.CurrentUserID() {
		return
	}
	if !m.enabled(ctx) {
		return
	}
	room, ok := m.reg.FindByMessage(ev.MessageID)
	if !ok {
		return
	}

	if ev.UserID != room.OwnerID {
		if err := m.gw.RemoveReaction(ctx, ev.ChannelID, ev.MessageID, ev.Emoji, ev.UserID); err != nil && !stale(err) {
			log.Warn().Err(err).Str("module", "autorooms").Str("user", string(ev.UserID)).Msg("cannot remove non-owner reaction")
		}
		return
	}

	if action, ok := domain.ActionForEmoji(ev.Emoji); ok {
		m.dispatchAction(ctx, room, action, ev.ChannelID)
	}

	// The palette stays reusable: the triggering reaction always comes
	// off again, handled or not.
	if err := m.gw.RemoveReaction(ctx, ev.ChannelID, ev.MessageID, ev.Emoji, ev.UserID); err != nil && !stale(err) {
		log.Warn().Err(err).Str("module", "autorooms").Str("emoji", ev.Emoji).Msg("cannot remove owner reaction")
	}
}

func (m *Manager) dispatchAction(ctx context.Context, room *domain.Room, action domain.RoomAction, panelChannel domain.ChannelID) {
	// The room may have been torn down while an earlier platform call
	// was in flight.
	if _, ok := m.reg.Get(room.GuildID, room.OwnerID); !ok {
		m.reply(ctx, panelChannel, "Ce salon n’existe plus.")
		return
	}

	switch action {
	case domain.ActionSetOpen:
		m.setAccessMode(ctx, room, domain.AccessOpen, panelChannel)
	case domain.ActionSetClosed:
		m.setAccessMode(ctx, room, domain.AccessClosed, panelChannel)
	case domain.ActionSetPrivate:
		m.setAccessMode(ctx, room, domain.AccessPrivate, panelChannel)
	case domain.ActionWhitelist:
		m.awaitInput(room, domain.PendingWhitelist)
		m.reply(ctx, panelChannel, "Liste blanche : mentionnez un membre pour l’ajouter/retirer.")
	case domain.ActionBlacklist:
		m.awaitInput(room, domain.PendingBlacklist)
		m.reply(ctx, panelChannel, "Liste noire : mentionnez un membre pour l’ajouter/retirer.")
	case domain.ActionPurge:
		m.purge(ctx, room, panelChannel)
	case domain.ActionTransfer:
		m.awaitInput(room, domain.PendingTransfer)
		m.reply(ctx, panelChannel, "Transférer le salon : mentionnez le membre à qui donner la propriété.")
	case domain.ActionToggleMic:
		m.toggleEveryonePerm(ctx, room, gateway.PermSpeak, "Micro", panelChannel)
	case domain.ActionToggleVideo:
		m.toggleEveryonePerm(ctx, room, gateway.PermStream, "Vidéo", panelChannel)
	case domain.ActionStatus:
		m.awaitInput(room, domain.PendingRename)
		m.reply(ctx, panelChannel, fmt.Sprintf("Statut du salon : %s\nRépondez avec le nouveau nom du salon pour le modifier.", room.Mode.Display()))
	}
}

func (m *Manager) awaitInput(room *domain.Room, kind domain.PendingKind) {
	room.Pending = &domain.PendingInput{Kind: kind, ExpiresAt: m.now().Add(m.pendingTTL)}
}

// setAccessMode applies the overwrite table first and records the mode
// only once the platform accepted it. Name re-glyph and panel edit are
// best effort.
func (m *Manager) setAccessMode(ctx context.Context, room *domain.Room, mode domain.AccessMode, panelChannel domain.ChannelID) {
	overwrites := OverwritesFor(room.GuildID, mode, room.Whitelist, room.Blacklist)
	if err := m.gw.EditChannelOverwrites(ctx, room.VoiceChannelID, overwrites); err != nil {
		log.Error().Err(err).Str("module", "autorooms").Str("channel", string(room.VoiceChannelID)).Msg("cannot apply access mode")
		return
	}
	room.Mode = mode

	if ch, err := m.gw.GetChannel(ctx, room.VoiceChannelID); err == nil {
		if err := m.gw.EditChannelName(ctx, room.VoiceChannelID, glyphName(ch.Name, mode)); err != nil {
			log.Warn().Err(err).Str("module", "autorooms").Str("channel", string(room.VoiceChannelID)).Msg("cannot re-glyph channel name")
		}
	}

	m.reply(ctx, panelChannel, fmt.Sprintf("Accès du salon défini sur **%s**.", mode))
	m.updatePanelField(ctx, room, panelStatusField, mode.Display())
}

// purge force-disconnects everyone but the owner and whitelisted users.
func (m *Manager) purge(ctx context.Context, room *domain.Room, panelChannel domain.ChannelID) {
	ch, err := m.gw.GetChannel(ctx, room.VoiceChannelID)
	if err != nil {
		if !stale(err) {
			log.Warn().Err(err).Str("module", "autorooms").Str("channel", string(room.VoiceChannelID)).Msg("cannot list members for purge")
		}
		m.reply(ctx, panelChannel, "Salon vocal introuvable.")
		return
	}
	kicked := 0
	for _, id := range ch.MemberIDs {
		if id == room.OwnerID {
			continue
		}
		if _, white := room.Whitelist[id]; white {
			continue
		}
		if err := m.gw.DisconnectMember(ctx, room.GuildID, id); err != nil {
			if !stale(err) {
				log.Warn().Err(err).Str("module", "autorooms").Str("user", string(id)).Msg("cannot disconnect member")
			}
			continue
		}
		kicked++
	}
	m.reply(ctx, panelChannel, fmt.Sprintf("Purge effectuée : %d membre(s) déconnecté(s).", kicked))
}

// toggleEveryonePerm flips one everyone-role bit on the channel. An
// unset bit counts as allowed, so the first toggle always disables. The
// rewrite goes through a single overwrite-table edit.
func (m *Manager) toggleEveryonePerm(ctx context.Context, room *domain.Room, perm gateway.Permissions, label string, panelChannel domain.ChannelID) {
	ch, err := m.gw.GetChannel(ctx, room.VoiceChannelID)
	if err != nil {
		if !stale(err) {
			log.Warn().Err(err).Str("module", "autorooms").Str("channel", string(room.VoiceChannelID)).Msg("cannot read channel overwrites")
		}
		m.reply(ctx, panelChannel, "Salon vocal introuvable.")
		return
	}

	overwrites := make([]gateway.Overwrite, len(ch.Overwrites))
	copy(overwrites, ch.Overwrites)
	idx := -1
	for i := range overwrites {
		if overwrites[i].Type == gateway.OverwriteRole && overwrites[i].TargetID == string(room.GuildID) {
			idx = i
			break
		}
	}
	if idx < 0 {
		overwrites = append(overwrites, gateway.Overwrite{TargetID: string(room.GuildID), Type: gateway.OverwriteRole})
		idx = len(overwrites) - 1
	}

	allowed := overwrites[idx].Deny&perm == 0
	if allowed {
		overwrites[idx].Allow &^= perm
		overwrites[idx].Deny |= perm
	} else {
		overwrites[idx].Deny &^= perm
		overwrites[idx].Allow |= perm
	}

	if err := m.gw.EditChannelOverwrites(ctx, room.VoiceChannelID, overwrites); err != nil {
		log.Error().Err(err).Str("module", "autorooms").Str("channel", string(room.VoiceChannelID)).Msg("cannot toggle permission")
		return
	}

	state := "désactivé"
	if !allowed {
		state = "autorisé"
	}
	m.reply(ctx, panelChannel, fmt.Sprintf("%s : %s pour tous.", label, state))
}
