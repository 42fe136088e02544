package autorooms

import (
	"fmt"
	"sort"
	"strings"

	"github.com/skylanix/MamieHenriette/internal/domain"
	"github.com/skylanix/MamieHenriette/internal/gateway"
)

// OverwritesFor computes the full permission-overwrite table for a room
// in the given mode. The everyone role shares its id with the guild.
// Pure: the caller applies the result in a single channel edit.
func OverwritesFor(guild domain.GuildID, mode domain.AccessMode, whitelist, blacklist map[domain.UserID]struct{}) []gateway.Overwrite {
	everyone := gateway.Overwrite{TargetID: string(guild), Type: gateway.OverwriteRole}
	var listed []domain.UserID
	var member gateway.Overwrite

	switch mode {
	case domain.AccessOpen:
		everyone.Allow = gateway.PermConnect | gateway.PermViewChannel
		listed = sortedIDs(blacklist)
		member = gateway.Overwrite{Type: gateway.OverwriteMember, Allow: gateway.PermViewChannel, Deny: gateway.PermConnect}
	case domain.AccessClosed:
		everyone.Allow = gateway.PermViewChannel
		everyone.Deny = gateway.PermConnect
		listed = sortedIDs(whitelist)
		member = gateway.Overwrite{Type: gateway.OverwriteMember, Allow: gateway.PermConnect | gateway.PermViewChannel}
	case domain.AccessPrivate:
		everyone.Deny = gateway.PermConnect | gateway.PermViewChannel
		listed = sortedIDs(whitelist)
		member = gateway.Overwrite{Type: gateway.OverwriteMember, Allow: gateway.PermConnect | gateway.PermViewChannel}
	}

	out := make([]gateway.Overwrite, 0, len(listed)+1)
	out = append(out, everyone)
	for _, id := range listed {
		ow := member
		ow.TargetID = string(id)
		out = append(out, ow)
	}
	return out
}

func sortedIDs(set map[domain.UserID]struct{}) []domain.UserID {
	out := make([]domain.UserID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// glyphName strips any trailing padlock glyphs and tags the name with
// the mode's glyph.
func glyphName(name string, mode domain.AccessMode) string {
	base := strings.TrimRight(name, " \U0001F513\U0001F512")
	return fmt.Sprintf("%s %s", base, mode.Glyph())
}
