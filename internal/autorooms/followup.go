package autorooms

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/skylanix/MamieHenriette/internal/domain"
	"github.com/skylanix/MamieHenriette/internal/gateway"
)

// HandleFollowUp consumes the owner's next message after a two-step
// action (list edit, transfer, rename). The awaiting-input sub-state is
// owner-scoped and expires on its own; anything else in the text
// surface is ignored.
func (m *Manager) HandleFollowUp(ctx context.Context, ev gateway.MessageCreate) {
	if ev.AuthorID == m.gw.CurrentUserID() {
		return
	}
	if !m.enabled(ctx) {
		return
	}
	room, ok := m.reg.FindByChannel(ev.GuildID, ev.ChannelID)
	if !ok {
		return
	}
	if ev.AuthorID != room.OwnerID || room.Pending == nil {
		return
	}

	pending := room.Pending
	if m.now().After(pending.ExpiresAt) {
		room.Pending = nil
		return
	}

	switch pending.Kind {
	case domain.PendingWhitelist:
		m.toggleList(ctx, room, ev, room.Whitelist, "liste blanche")
	case domain.PendingBlacklist:
		m.toggleList(ctx, room, ev, room.Blacklist, "liste noire")
	case domain.PendingTransfer:
		m.transfer(ctx, room, ev)
	case domain.PendingRename:
		m.rename(ctx, room, ev)
	}
}

// toggleList adds or removes the first mentioned member, then re-applies
// the overwrite table so the change takes effect in the current mode.
func (m *Manager) toggleList(ctx context.Context, room *domain.Room, ev gateway.MessageCreate, list map[domain.UserID]struct{}, label string) {
	if len(ev.Mentions) == 0 {
		return
	}
	room.Pending = nil
	target := ev.Mentions[0]

	verb := "Ajouté à"
	if _, ok := list[target]; ok {
		delete(list, target)
		verb = "Retiré de"
	} else {
		list[target] = struct{}{}
	}

	overwrites := OverwritesFor(room.GuildID, room.Mode, room.Whitelist, room.Blacklist)
	if err := m.gw.EditChannelOverwrites(ctx, room.VoiceChannelID, overwrites); err != nil {
		log.Warn().Err(err).Str("module", "autorooms").Str("channel", string(room.VoiceChannelID)).Msg("cannot re-apply overwrites after list edit")
	}
	m.reply(ctx, ev.ChannelID, fmt.Sprintf("%s la %s : %s", verb, label, mention(target)))
}

// transfer re-keys the room under the mentioned member and reflects the
// new owner on the panel.
func (m *Manager) transfer(ctx context.Context, room *domain.Room, ev gateway.MessageCreate) {
	if len(ev.Mentions) == 0 {
		return
	}
	room.Pending = nil
	target := ev.Mentions[0]
	if target == room.OwnerID {
		return
	}

	if !m.reg.Rekey(room.GuildID, room.OwnerID, target) {
		m.reply(ctx, ev.ChannelID, "Transfert impossible : ce membre possède déjà un salon.")
		return
	}
	m.updatePanelField(ctx, room, "Propriétaire", mention(target))
	m.reply(ctx, ev.ChannelID, fmt.Sprintf("Salon transféré à %s.", mention(target)))
}

// rename applies the owner's new channel name, keeping the mode glyph.
func (m *Manager) rename(ctx context.Context, room *domain.Room, ev gateway.MessageCreate) {
	name := strings.TrimSpace(ev.Content)
	if name == "" {
		return
	}
	room.Pending = nil

	newName := glyphName(name, room.Mode)
	if err := m.gw.EditChannelName(ctx, room.VoiceChannelID, newName); err != nil {
		if !stale(err) {
			log.Warn().Err(err).Str("module", "autorooms").Str("channel", string(room.VoiceChannelID)).Msg("cannot rename channel")
		}
		return
	}
	m.updatePanelField(ctx, room, "Nom du salon", newName)
	m.reply(ctx, ev.ChannelID, fmt.Sprintf("Salon renommé en **%s**.", newName))
}
