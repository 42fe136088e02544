package domain

// AccessMode is the access policy of a room. It fully determines the
// permission overwrites applied to the voice channel.
type AccessMode int

const (
	AccessOpen AccessMode = iota
	AccessClosed
	AccessPrivate
)

func (m AccessMode) String() string {
	switch m {
	case AccessOpen:
		return "open"
	case AccessClosed:
		return "closed"
	case AccessPrivate:
		return "private"
	}
	return "open"
}

// Glyph is the lone padlock appended to the channel name.
func (m AccessMode) Glyph() string {
	if m == AccessOpen {
		return "\U0001F513"
	}
	return "\U0001F512"
}

// Display is the status shown in the control panel.
func (m AccessMode) Display() string {
	switch m {
	case AccessClosed:
		return "\U0001F512 Fermé"
	case AccessPrivate:
		return "\U0001F512 Privé"
	default:
		return "\U0001F513 Ouvert"
	}
}
