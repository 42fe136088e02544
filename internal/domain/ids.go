// Package domain contains entity without logic, just meta-data
package domain

// Platform snowflake identifiers. Kept as opaque strings so the gateway
// wire format never leaks into the core.
type (
	GuildID   string
	UserID    string
	ChannelID string
	MessageID string
)
