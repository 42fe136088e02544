package domain

// RoomAction is one of the fixed control panel actions.
type RoomAction int

const (
	ActionSetOpen RoomAction = iota
	ActionSetClosed
	ActionSetPrivate
	ActionWhitelist
	ActionBlacklist
	ActionPurge
	ActionTransfer
	ActionToggleMic
	ActionToggleVideo
	ActionStatus
)

// PaletteEntry binds a reaction emoji to an action and its legend label.
type PaletteEntry struct {
	Emoji  string
	Action RoomAction
	Label  string
}

// reactionPalette is the fixed, ordered reaction set of the control panel.
var reactionPalette = []PaletteEntry{
	{"\U0001F513", ActionSetOpen, "Ouvert"},
	{"\U0001F512", ActionSetClosed, "Fermé"},
	{"\U0001F6E1️", ActionSetPrivate, "Privé"},
	{"✅", ActionWhitelist, "Liste blanche"},
	{"\U0001F6AB", ActionBlacklist, "Liste noire"},
	{"\U0001F9F9", ActionPurge, "Purge"},
	{"\U0001F451", ActionTransfer, "Propriété"},
	{"\U0001F3A4", ActionToggleMic, "Micro"},
	{"\U0001F4F9", ActionToggleVideo, "Vidéo"},
	{"\U0001F4DD", ActionStatus, "Statut"},
}

var actionByEmoji = func() map[string]RoomAction {
	m := make(map[string]RoomAction, len(reactionPalette))
	for _, e := range reactionPalette {
		m[e.Emoji] = e.Action
	}
	return m
}()

// ReactionPalette returns the palette in panel order.
func ReactionPalette() []PaletteEntry {
	return reactionPalette
}

// ActionForEmoji resolves a reaction emoji to its action.
func ActionForEmoji(emoji string) (RoomAction, bool) {
	a, ok := actionByEmoji[emoji]
	return a, ok
}
