package autorooms

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skylanix/MamieHenriette/internal/domain"
	"github.com/skylanix/MamieHenriette/internal/gateway"
)

const (
	testGuild   = domain.GuildID("100")
	testTrigger = domain.ChannelID("200")
	testOwner   = domain.UserID("300")
	botUser     = domain.UserID("1")
)

// fakeStore is an in-memory settings.Store.
type fakeStore struct {
	enabled bool
	trigger domain.ChannelID
}

func (s *fakeStore) GetBool(context.Context, string) (bool, error) { return s.enabled, nil }
func (s *fakeStore) GetChannelID(context.Context, string) (domain.ChannelID, error) {
	return s.trigger, nil
}

// fakeGateway is an in-memory platform. It keeps channels and messages
// so handlers can be exercised end to end.
type fakeGateway struct {
	selfID   domain.UserID
	channels map[domain.ChannelID]*gateway.Channel
	messages map[domain.MessageID]*gateway.Message
	nextID   int

	removedReactions []string
	disconnected     []domain.UserID
	reactions        map[domain.MessageID][]string

	failCreate error
	failMove   error
	failEdit   error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		selfID:    botUser,
		channels:  make(map[domain.ChannelID]*gateway.Channel),
		messages:  make(map[domain.MessageID]*gateway.Message),
		reactions: make(map[domain.MessageID][]string),
		nextID:    1000,
	}
}

func (g *fakeGateway) id() string {
	g.nextID++
	return fmt.Sprintf("%d", g.nextID)
}

func (g *fakeGateway) CurrentUserID() domain.UserID { return g.selfID }

func (g *fakeGateway) CreateVoiceChannel(_ context.Context, guild domain.GuildID, name string, category domain.ChannelID) (domain.ChannelID, error) {
	if g.failCreate != nil {
		return "", g.failCreate
	}
	id := domain.ChannelID(g.id())
	g.channels[id] = &gateway.Channel{ID: id, GuildID: guild, Name: name, CategoryID: category, Bitrate: 64000}
	return id, nil
}

func (g *fakeGateway) DeleteChannel(_ context.Context, channel domain.ChannelID) error {
	if _, ok := g.channels[channel]; !ok {
		return gateway.ErrNotFound
	}
	delete(g.channels, channel)
	return nil
}

func (g *fakeGateway) EditChannelName(_ context.Context, channel domain.ChannelID, name string) error {
	ch, ok := g.channels[channel]
	if !ok {
		return gateway.ErrNotFound
	}
	ch.Name = name
	return nil
}

func (g *fakeGateway) EditChannelOverwrites(_ context.Context, channel domain.ChannelID, overwrites []gateway.Overwrite) error {
	if g.failEdit != nil {
		return g.failEdit
	}
	ch, ok := g.channels[channel]
	if !ok {
		return gateway.ErrNotFound
	}
	ch.Overwrites = overwrites
	return nil
}

func (g *fakeGateway) GetChannel(_ context.Context, channel domain.ChannelID) (*gateway.Channel, error) {
	ch, ok := g.channels[channel]
	if !ok {
		return nil, gateway.ErrNotFound
	}
	cp := *ch
	return &cp, nil
}

func (g *fakeGateway) MoveMember(_ context.Context, _ domain.GuildID, user domain.UserID, channel domain.ChannelID) error {
	if g.failMove != nil {
		return g.failMove
	}
	ch, ok := g.channels[channel]
	if !ok {
		return gateway.ErrNotFound
	}
	g.removeFromVoice(user)
	ch.MemberIDs = append(ch.MemberIDs, user)
	return nil
}

func (g *fakeGateway) DisconnectMember(_ context.Context, _ domain.GuildID, user domain.UserID) error {
	g.removeFromVoice(user)
	g.disconnected = append(g.disconnected, user)
	return nil
}

func (g *fakeGateway) removeFromVoice(user domain.UserID) {
	for _, ch := range g.channels {
		for i, id := range ch.MemberIDs {
			if id == user {
				ch.MemberIDs = append(ch.MemberIDs[:i], ch.MemberIDs[i+1:]...)
				break
			}
		}
	}
}

func (g *fakeGateway) SendMessage(_ context.Context, channel domain.ChannelID, content string, embed *gateway.Embed) (domain.MessageID, error) {
	id := domain.MessageID(g.id())
	msg := &gateway.Message{ID: id, ChannelID: channel, AuthorID: g.selfID, Content: content}
	if embed != nil {
		msg.Embeds = []gateway.Embed{*embed}
	}
	g.messages[id] = msg
	return id, nil
}

func (g *fakeGateway) EditMessage(_ context.Context, _ domain.ChannelID, message domain.MessageID, embed *gateway.Embed) error {
	msg, ok := g.messages[message]
	if !ok {
		return gateway.ErrNotFound
	}
	msg.Embeds = []gateway.Embed{*embed}
	return nil
}

func (g *fakeGateway) FetchMessage(_ context.Context, _ domain.ChannelID, message domain.MessageID) (*gateway.Message, error) {
	msg, ok := g.messages[message]
	if !ok {
		return nil, gateway.ErrNotFound
	}
	cp := *msg
	return &cp, nil
}

func (g *fakeGateway) AddReaction(_ context.Context, _ domain.ChannelID, message domain.MessageID, emoji string) error {
	g.reactions[message] = append(g.reactions[message], emoji)
	return nil
}

func (g *fakeGateway) RemoveReaction(_ context.Context, _ domain.ChannelID, message domain.MessageID, emoji string, user domain.UserID) error {
	g.removedReactions = append(g.removedReactions, fmt.Sprintf("%s/%s/%s", message, emoji, user))
	return nil
}

// lastReply returns the most recent plain message sent to channel.
func (g *fakeGateway) lastReply(channel domain.ChannelID) string {
	last := ""
	lastID := ""
	for id, msg := range g.messages {
		if msg.ChannelID == channel && msg.Content != "" && string(id) > lastID {
			lastID = string(id)
			last = msg.Content
		}
	}
	return last
}

func newTestManager() (*Manager, *fakeGateway, *fakeStore) {
	gw := newFakeGateway()
	gw.channels[testTrigger] = &gateway.Channel{ID: testTrigger, GuildID: testGuild, Name: "Créer un salon", CategoryID: "42"}
	store := &fakeStore{enabled: true, trigger: testTrigger}
	m := NewManager(gw, store, NewRegistry())
	return m, gw, store
}

func joinTrigger(m *Manager, user domain.UserID, name string) {
	m.HandlePresence(context.Background(), gateway.PresenceUpdate{
		GuildID:        testGuild,
		UserID:         user,
		UserName:       name,
		AfterChannelID: testTrigger,
	})
}

func leave(m *Manager, user domain.UserID, channel domain.ChannelID) {
	m.HandlePresence(context.Background(), gateway.PresenceUpdate{
		GuildID:         testGuild,
		UserID:          user,
		BeforeChannelID: channel,
	})
}

func mustRoom(t *testing.T, m *Manager) *domain.Room {
	t.Helper()
	room, ok := m.reg.Get(testGuild, testOwner)
	require.True(t, ok, "room should exist")
	return room
}

func TestCreateRoomScenario(t *testing.T) {
	m, gw, _ := newTestManager()

	joinTrigger(m, testOwner, "Alice")

	room := mustRoom(t, m)
	assert.Equal(t, domain.AccessOpen, room.Mode)
	assert.Empty(t, room.Whitelist)
	assert.Empty(t, room.Blacklist)

	ch, ok := gw.channels[room.VoiceChannelID]
	require.True(t, ok, "voice channel should exist")
	assert.Equal(t, "Salon de Alice \U0001F513", ch.Name)
	assert.Equal(t, domain.ChannelID("42"), ch.CategoryID)
	assert.Equal(t, []domain.UserID{testOwner}, ch.MemberIDs)

	require.NotEmpty(t, room.ControlMessageID)
	found, ok := m.reg.FindByMessage(room.ControlMessageID)
	require.True(t, ok)
	assert.Same(t, room, found)

	assert.Len(t, gw.reactions[room.ControlMessageID], len(domain.ReactionPalette()))
}

func TestCreateRoomReplacesExisting(t *testing.T) {
	m, gw, _ := newTestManager()

	joinTrigger(m, testOwner, "Alice")
	first := mustRoom(t, m).VoiceChannelID

	joinTrigger(m, testOwner, "Alice")
	second := mustRoom(t, m).VoiceChannelID

	assert.NotEqual(t, first, second)
	assert.Equal(t, 1, m.reg.Len(), "at most one room per owner")
	_, stillThere := gw.channels[first]
	assert.False(t, stillThere, "old channel should be deleted")
}

func TestCreateRoomDisabledFlag(t *testing.T) {
	m, _, store := newTestManager()
	store.enabled = false

	joinTrigger(m, testOwner, "Alice")

	assert.Equal(t, 0, m.reg.Len())
}

func TestCreateRoomMoveFailureLeavesNoPartialRoom(t *testing.T) {
	m, gw, _ := newTestManager()
	gw.failMove = gateway.ErrPermission

	joinTrigger(m, testOwner, "Alice")

	assert.Equal(t, 0, m.reg.Len())
	assert.Len(t, gw.channels, 1, "orphaned channel should be deleted, trigger remains")
}

func TestOwnerDepartureDeletesRoom(t *testing.T) {
	m, gw, _ := newTestManager()
	joinTrigger(m, testOwner, "Alice")
	room := mustRoom(t, m)

	leave(m, testOwner, room.VoiceChannelID)

	_, ok := m.reg.Get(testGuild, testOwner)
	assert.False(t, ok)
	_, ok = gw.channels[room.VoiceChannelID]
	assert.False(t, ok, "voice channel should be deleted")
	_, ok = m.reg.FindByMessage(room.ControlMessageID)
	assert.False(t, ok, "reverse index should be cleaned")
}

func TestLeaveCleanupIdempotent(t *testing.T) {
	m, _, _ := newTestManager()
	joinTrigger(m, testOwner, "Alice")
	room := mustRoom(t, m)

	leave(m, testOwner, room.VoiceChannelID)
	require.NotPanics(t, func() { leave(m, testOwner, room.VoiceChannelID) })

	assert.Equal(t, 0, m.reg.Len())
}

func TestEmptyChannelCleanup(t *testing.T) {
	m, gw, _ := newTestManager()
	joinTrigger(m, testOwner, "Alice")
	room := mustRoom(t, m)
	visitor := domain.UserID("400")
	require.NoError(t, gw.MoveMember(context.Background(), testGuild, visitor, room.VoiceChannelID))

	// Owner leaves first: room goes, governed by owner departure.
	leave(m, testOwner, room.VoiceChannelID)
	_, ok := m.reg.Get(testGuild, testOwner)
	assert.False(t, ok)
}

func TestStragglerDepartureCleansEmptyRoom(t *testing.T) {
	m, gw, _ := newTestManager()
	joinTrigger(m, testOwner, "Alice")
	room := mustRoom(t, m)
	visitor := domain.UserID("400")
	require.NoError(t, gw.MoveMember(context.Background(), testGuild, visitor, room.VoiceChannelID))

	// Simulate the owner having vanished without a leave event, then the
	// last straggler leaves.
	gw.removeFromVoice(testOwner)
	gw.removeFromVoice(visitor)
	leave(m, visitor, room.VoiceChannelID)

	_, ok := m.reg.Get(testGuild, testOwner)
	assert.False(t, ok, "empty room should be removed")
}

func TestNonOwnerLeaveKeepsOccupiedRoom(t *testing.T) {
	m, gw, _ := newTestManager()
	joinTrigger(m, testOwner, "Alice")
	room := mustRoom(t, m)
	visitor := domain.UserID("400")
	require.NoError(t, gw.MoveMember(context.Background(), testGuild, visitor, room.VoiceChannelID))

	gw.removeFromVoice(visitor)
	leave(m, visitor, room.VoiceChannelID)

	_, ok := m.reg.Get(testGuild, testOwner)
	assert.True(t, ok, "room with the owner still inside stays")
}

func react(m *Manager, room *domain.Room, user domain.UserID, emoji string) {
	m.HandleReaction(context.Background(), gateway.ReactionAdd{
		GuildID:   testGuild,
		ChannelID: room.VoiceChannelID,
		MessageID: room.ControlMessageID,
		UserID:    user,
		Emoji:     emoji,
	})
}

func TestOwnershipGate(t *testing.T) {
	m, gw, _ := newTestManager()
	joinTrigger(m, testOwner, "Alice")
	room := mustRoom(t, m)
	stranger := domain.UserID("666")

	react(m, room, stranger, "\U0001F512")

	assert.Equal(t, domain.AccessOpen, room.Mode, "non-owner must not change the mode")
	require.Len(t, gw.removedReactions, 1)
	assert.Contains(t, gw.removedReactions[0], string(stranger))
}

func TestModeChangeScenario(t *testing.T) {
	m, gw, _ := newTestManager()
	joinTrigger(m, testOwner, "Alice")
	room := mustRoom(t, m)
	room.Whitelist[domain.UserID("500")] = struct{}{}

	react(m, room, testOwner, "\U0001F512")

	assert.Equal(t, domain.AccessClosed, room.Mode)

	ch := gw.channels[room.VoiceChannelID]
	require.NotEmpty(t, ch.Overwrites)
	everyone := ch.Overwrites[0]
	assert.Equal(t, string(testGuild), everyone.TargetID)
	assert.Equal(t, gateway.PermViewChannel, everyone.Allow)
	assert.Equal(t, gateway.PermConnect, everyone.Deny)

	require.Len(t, ch.Overwrites, 2)
	assert.Equal(t, "500", ch.Overwrites[1].TargetID)
	assert.Equal(t, gateway.PermConnect|gateway.PermViewChannel, ch.Overwrites[1].Allow)

	assert.True(t, strings.HasSuffix(ch.Name, "\U0001F512"), "name should carry the closed glyph")

	// The panel status field is edited in place.
	panel := gw.messages[room.ControlMessageID]
	require.NotEmpty(t, panel.Embeds)
	var status string
	for _, f := range panel.Embeds[0].Fields {
		if f.Name == panelStatusField {
			status = f.Value
		}
	}
	assert.Equal(t, domain.AccessClosed.Display(), status)

	// Triggering reaction removed so the palette stays reusable.
	require.NotEmpty(t, gw.removedReactions)
	assert.Contains(t, gw.removedReactions[len(gw.removedReactions)-1], string(testOwner))
}

func TestStaleMessageIgnored(t *testing.T) {
	m, gw, _ := newTestManager()

	m.HandleReaction(context.Background(), gateway.ReactionAdd{
		GuildID:   testGuild,
		ChannelID: "999",
		MessageID: "888",
		UserID:    testOwner,
		Emoji:     "\U0001F512",
	})

	assert.Empty(t, gw.removedReactions)
}

func TestBotOwnReactionIgnored(t *testing.T) {
	m, gw, _ := newTestManager()
	joinTrigger(m, testOwner, "Alice")
	room := mustRoom(t, m)

	react(m, room, botUser, "\U0001F512")

	assert.Equal(t, domain.AccessOpen, room.Mode)
	assert.Empty(t, gw.removedReactions)
}

func TestPurge(t *testing.T) {
	m, gw, _ := newTestManager()
	joinTrigger(m, testOwner, "Alice")
	room := mustRoom(t, m)

	white := domain.UserID("500")
	other := domain.UserID("600")
	room.Whitelist[white] = struct{}{}
	require.NoError(t, gw.MoveMember(context.Background(), testGuild, white, room.VoiceChannelID))
	require.NoError(t, gw.MoveMember(context.Background(), testGuild, other, room.VoiceChannelID))

	react(m, room, testOwner, "\U0001F9F9")

	assert.Equal(t, []domain.UserID{other}, gw.disconnected)
	assert.Contains(t, gw.lastReply(room.VoiceChannelID), "1 membre(s)")
}

func TestToggleMic(t *testing.T) {
	m, gw, _ := newTestManager()
	joinTrigger(m, testOwner, "Alice")
	room := mustRoom(t, m)

	react(m, room, testOwner, "\U0001F3A4")
	everyone := gw.channels[room.VoiceChannelID].Overwrites[0]
	assert.NotZero(t, everyone.Deny&gateway.PermSpeak, "first toggle disables")

	react(m, room, testOwner, "\U0001F3A4")
	everyone = gw.channels[room.VoiceChannelID].Overwrites[0]
	assert.Zero(t, everyone.Deny&gateway.PermSpeak)
	assert.NotZero(t, everyone.Allow&gateway.PermSpeak, "second toggle allows")
}

func followUp(m *Manager, room *domain.Room, author domain.UserID, content string, mentions ...domain.UserID) {
	m.HandleFollowUp(context.Background(), gateway.MessageCreate{
		GuildID: testGuild,
		Message: gateway.Message{
			ID:        "777",
			ChannelID: room.VoiceChannelID,
			AuthorID:  author,
			Content:   content,
			Mentions:  mentions,
		},
	})
}

func TestWhitelistFollowUp(t *testing.T) {
	m, _, _ := newTestManager()
	joinTrigger(m, testOwner, "Alice")
	room := mustRoom(t, m)
	target := domain.UserID("500")

	react(m, room, testOwner, "✅")
	require.NotNil(t, room.Pending)

	followUp(m, room, testOwner, "ajoute", target)

	assert.Contains(t, room.Whitelist, target)
	assert.Nil(t, room.Pending)

	// Toggling again removes.
	react(m, room, testOwner, "✅")
	followUp(m, room, testOwner, "retire", target)
	assert.NotContains(t, room.Whitelist, target)
}

func TestBlacklistFollowUpReappliesOverwrites(t *testing.T) {
	m, gw, _ := newTestManager()
	joinTrigger(m, testOwner, "Alice")
	room := mustRoom(t, m)
	target := domain.UserID("500")

	react(m, room, testOwner, "\U0001F6AB")
	followUp(m, room, testOwner, "dehors", target)

	require.Contains(t, room.Blacklist, target)
	ch := gw.channels[room.VoiceChannelID]
	require.Len(t, ch.Overwrites, 2, "open mode: everyone + one blacklisted")
	assert.Equal(t, "500", ch.Overwrites[1].TargetID)
	assert.Equal(t, gateway.PermConnect, ch.Overwrites[1].Deny)
}

func TestFollowUpFromNonOwnerIgnored(t *testing.T) {
	m, _, _ := newTestManager()
	joinTrigger(m, testOwner, "Alice")
	room := mustRoom(t, m)
	target := domain.UserID("500")

	react(m, room, testOwner, "✅")
	followUp(m, room, domain.UserID("666"), "moi", target)

	assert.NotContains(t, room.Whitelist, target)
	assert.NotNil(t, room.Pending, "pending input stays for the owner")
}

func TestPendingExpiry(t *testing.T) {
	m, _, _ := newTestManager()
	joinTrigger(m, testOwner, "Alice")
	room := mustRoom(t, m)
	target := domain.UserID("500")

	react(m, room, testOwner, "✅")
	m.now = func() time.Time { return time.Now().Add(5 * time.Minute) }
	followUp(m, room, testOwner, "trop tard", target)

	assert.NotContains(t, room.Whitelist, target)
	assert.Nil(t, room.Pending, "expired pending input is dropped")
}

func TestTransferRekeysRoom(t *testing.T) {
	m, _, _ := newTestManager()
	joinTrigger(m, testOwner, "Alice")
	room := mustRoom(t, m)
	heir := domain.UserID("500")

	react(m, room, testOwner, "\U0001F451")
	followUp(m, room, testOwner, "tiens", heir)

	assert.Equal(t, heir, room.OwnerID)
	_, oldOk := m.reg.Get(testGuild, testOwner)
	assert.False(t, oldOk)
	got, ok := m.reg.Get(testGuild, heir)
	require.True(t, ok)
	assert.Same(t, room, got)

	found, ok := m.reg.FindByMessage(room.ControlMessageID)
	require.True(t, ok, "reverse index survives the transfer")
	assert.Same(t, room, found)
}

func TestRenameFollowUp(t *testing.T) {
	m, gw, _ := newTestManager()
	joinTrigger(m, testOwner, "Alice")
	room := mustRoom(t, m)

	react(m, room, testOwner, "\U0001F4DD")
	require.NotNil(t, room.Pending)
	assert.Contains(t, gw.lastReply(room.VoiceChannelID), domain.AccessOpen.Display())

	followUp(m, room, testOwner, "Le repaire")

	assert.Equal(t, "Le repaire \U0001F513", gw.channels[room.VoiceChannelID].Name)
	assert.Nil(t, room.Pending)
}
