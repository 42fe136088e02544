package domain

import "time"

// PendingKind marks which follow-up message the room owner was asked for.
type PendingKind int

const (
	PendingWhitelist PendingKind = iota
	PendingBlacklist
	PendingTransfer
	PendingRename
)

// PendingInput is a short-lived, owner-scoped awaiting-input sub-state.
// It expires instead of blocking the room forever.
type PendingInput struct {
	Kind      PendingKind
	ExpiresAt time.Time
}

// Room governs one member-owned temporary voice channel.
// GuildID and OwnerID are its identity and never change except through
// an explicit ownership transfer, which re-keys the registry entry.
type Room struct {
	GuildID GuildID
	OwnerID UserID

	VoiceChannelID ChannelID

	// ControlMessageID is empty when panel creation failed.
	ControlMessageID MessageID

	Whitelist map[UserID]struct{}
	Blacklist map[UserID]struct{}

	Mode AccessMode

	Pending *PendingInput
}

// NewRoom avoids raw literals in handlers and keeps construction obvious.
func NewRoom(guild GuildID, owner UserID, channel ChannelID) *Room {
	return &Room{
		GuildID:        guild,
		OwnerID:        owner,
		VoiceChannelID: channel,
		Whitelist:      make(map[UserID]struct{}),
		Blacklist:      make(map[UserID]struct{}),
		Mode:           AccessOpen,
	}
}
