package gateway

import (
	"context"
	"errors"

	"github.com/skylanix/MamieHenriette/internal/domain"
)

var (
	// ErrNotFound covers channels, messages and members that no longer
	// exist. Callers treat it as a benign no-op.
	ErrNotFound = errors.New("gateway: not found")

	// ErrPermission is a platform side permission rejection.
	ErrPermission = errors.New("gateway: missing permissions")
)

// Client is the imperative half of the platform surface.
type Client interface {
	CreateVoiceChannel(ctx context.Context, guild domain.GuildID, name string, category domain.ChannelID) (domain.ChannelID, error)
	DeleteChannel(ctx context.Context, channel domain.ChannelID) error
	EditChannelName(ctx context.Context, channel domain.ChannelID, name string) error

	// EditChannelOverwrites replaces the channel's whole overwrite table
	// in one call. Overwrites are never edited incrementally.
	EditChannelOverwrites(ctx context.Context, channel domain.ChannelID, overwrites []Overwrite) error

	GetChannel(ctx context.Context, channel domain.ChannelID) (*Channel, error)

	MoveMember(ctx context.Context, guild domain.GuildID, user domain.UserID, channel domain.ChannelID) error
	DisconnectMember(ctx context.Context, guild domain.GuildID, user domain.UserID) error

	SendMessage(ctx context.Context, channel domain.ChannelID, content string, embed *Embed) (domain.MessageID, error)
	EditMessage(ctx context.Context, channel domain.ChannelID, message domain.MessageID, embed *Embed) error
	FetchMessage(ctx context.Context, channel domain.ChannelID, message domain.MessageID) (*Message, error)

	AddReaction(ctx context.Context, channel domain.ChannelID, message domain.MessageID, emoji string) error
	RemoveReaction(ctx context.Context, channel domain.ChannelID, message domain.MessageID, emoji string, user domain.UserID) error

	// CurrentUserID identifies the bot account, used to ignore its own
	// events.
	CurrentUserID() domain.UserID
}
