// Package gateway is the platform-facing surface: a REST client for
// imperative channel/message operations and a websocket session for the
// event stream. The core never talks to the wire directly.
package gateway

import "github.com/skylanix/MamieHenriette/internal/domain"

// Permissions is the platform permission bitset.
type Permissions uint64

const (
	PermStream      Permissions = 1 << 9
	PermViewChannel Permissions = 1 << 10
	PermConnect     Permissions = 1 << 20
	PermSpeak       Permissions = 1 << 21
)

type OverwriteType int

const (
	OverwriteRole OverwriteType = iota
	OverwriteMember
)

// Overwrite is one entry of a channel's permission-overwrite table.
// The everyone role shares its id with the guild.
type Overwrite struct {
	TargetID string        `json:"id"`
	Type     OverwriteType `json:"type"`
	Allow    Permissions   `json:"allow,string"`
	Deny     Permissions   `json:"deny,string"`
}

type Channel struct {
	ID         domain.ChannelID `json:"id"`
	GuildID    domain.GuildID   `json:"guild_id"`
	Name       string           `json:"name"`
	CategoryID domain.ChannelID `json:"parent_id,omitempty"`
	UserLimit  int              `json:"user_limit"`
	Bitrate    int              `json:"bitrate"`
	Overwrites []Overwrite      `json:"permission_overwrites"`

	// MemberIDs are the users currently connected to the voice channel.
	MemberIDs []domain.UserID `json:"member_ids"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
}

type Message struct {
	ID        domain.MessageID `json:"id"`
	ChannelID domain.ChannelID `json:"channel_id"`
	AuthorID  domain.UserID    `json:"author_id"`
	Content   string           `json:"content"`
	Embeds    []Embed          `json:"embeds,omitempty"`
	Mentions  []domain.UserID  `json:"mentions,omitempty"`
}

// PresenceUpdate reports a member moving between voice channels.
// An empty channel id means "not connected" on that side.
type PresenceUpdate struct {
	GuildID         domain.GuildID   `json:"guild_id"`
	UserID          domain.UserID    `json:"user_id"`
	UserName        string           `json:"user_name"`
	BeforeChannelID domain.ChannelID `json:"before_channel_id"`
	AfterChannelID  domain.ChannelID `json:"after_channel_id"`
}

type ReactionAdd struct {
	GuildID   domain.GuildID   `json:"guild_id"`
	ChannelID domain.ChannelID `json:"channel_id"`
	MessageID domain.MessageID `json:"message_id"`
	UserID    domain.UserID    `json:"user_id"`
	Emoji     string           `json:"emoji"`
}

type MessageCreate struct {
	Message
	GuildID domain.GuildID `json:"guild_id"`
}
