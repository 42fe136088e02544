package autorooms

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/skylanix/MamieHenriette/internal/domain"
	"github.com/skylanix/MamieHenriette/internal/gateway"
)

const (
	panelColor       = 0x5865F2
	panelStatusField = "Statut du salon"
)

func mention(user domain.UserID) string {
	return fmt.Sprintf("<@%s>", user)
}

// buildPanelEmbed renders the control panel body: owner, status, live
// occupancy against the configured limit, bitrate, and the reaction
// legend.
func buildPanelEmbed(owner domain.UserID, ch *gateway.Channel, mode domain.AccessMode) *gateway.Embed {
	membersText := strconv.Itoa(len(ch.MemberIDs))
	limitText := "Illimitée"
	if ch.UserLimit > 0 {
		membersText = fmt.Sprintf("%d / %d", len(ch.MemberIDs), ch.UserLimit)
		limitText = fmt.Sprintf("%d max", ch.UserLimit)
	}

	return &gateway.Embed{
		Title: "Configuration du salon",
		Description: "Voici l’espace de configuration de votre salon vocal. " +
			"Utilisez les réactions ci-dessous — seul le propriétaire peut réagir.",
		Color: panelColor,
		Fields: []gateway.EmbedField{
			{Name: "Propriétaire", Value: mention(owner), Inline: true},
			{Name: panelStatusField, Value: mode.Display(), Inline: true},
			{Name: "Nom du salon", Value: ch.Name, Inline: true},
			{Name: "Membres", Value: membersText, Inline: true},
			{Name: "Limite", Value: limitText, Inline: true},
			{Name: "Bitrate", Value: fmt.Sprintf("%d kbps", ch.Bitrate/1000), Inline: true},
			{Name: "Accès", Value: "🔓 Ouvert · 🔒 Fermé · 🛡️ Privé", Inline: false},
			{Name: "Listes", Value: "✅ Liste blanche · 🚫 Liste noire", Inline: false},
			{Name: "Actions", Value: "🧹 Purge · 👑 Propriété · 🎤 Micro · 📹 Vidéo · 📝 Statut", Inline: false},
		},
	}
}

// sendControlPanel posts the panel into the voice channel's text surface
// and attaches the reaction palette. Returns "" on failure; panel
// creation is non-fatal to room creation.
func (m *Manager) sendControlPanel(ctx context.Context, owner domain.UserID, ch *gateway.Channel) domain.MessageID {
	embed := buildPanelEmbed(owner, ch, domain.AccessOpen)
	msgID, err := m.gw.SendMessage(ctx, ch.ID, "", embed)
	if err != nil {
		log.Error().Err(err).Str("module", "autorooms.panel").Str("channel", string(ch.ID)).Msg("cannot send control panel")
		return ""
	}
	for _, entry := range domain.ReactionPalette() {
		if err := m.gw.AddReaction(ctx, ch.ID, msgID, entry.Emoji); err != nil {
			log.Warn().Err(err).Str("module", "autorooms.panel").Str("emoji", entry.Emoji).Msg("cannot attach palette reaction")
		}
	}
	return msgID
}

// updatePanelField edits a single field of the existing panel in place.
// A full re-render is deliberately avoided; failures are benign.
func (m *Manager) updatePanelField(ctx context.Context, room *domain.Room, name, value string) {
	if room.ControlMessageID == "" {
		return
	}
	msg, err := m.gw.FetchMessage(ctx, room.VoiceChannelID, room.ControlMessageID)
	if err != nil || len(msg.Embeds) == 0 {
		return
	}
	embed := msg.Embeds[0]
	found := false
	for i := range embed.Fields {
		if embed.Fields[i].Name == name {
			embed.Fields[i].Value = value
			found = true
			break
		}
	}
	if !found {
		embed.Fields = append(embed.Fields, gateway.EmbedField{Name: name, Value: value})
	}
	if err := m.gw.EditMessage(ctx, room.VoiceChannelID, room.ControlMessageID, &embed); err != nil {
		log.Warn().Err(err).Str("module", "autorooms.panel").Str("message", string(room.ControlMessageID)).Msg("cannot update panel")
	}
}
