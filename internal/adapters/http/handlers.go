package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skylanix/MamieHenriette/internal/autorooms"
	"github.com/skylanix/MamieHenriette/internal/domain"
)

// RoomView is the read-only JSON shape of a room.
type RoomView struct {
	GuildID        string   `json:"guild_id"`
	OwnerID        string   `json:"owner_id"`
	VoiceChannelID string   `json:"voice_channel_id"`
	Mode           string   `json:"access_mode"`
	Whitelist      []string `json:"whitelist"`
	Blacklist      []string `json:"blacklist"`
}

type StatusController struct {
	Loop        *autorooms.Loop
	Registry    *autorooms.Registry
	CallTimeout time.Duration
}

func viewOf(room *domain.Room) RoomView {
	v := RoomView{
		GuildID:        string(room.GuildID),
		OwnerID:        string(room.OwnerID),
		VoiceChannelID: string(room.VoiceChannelID),
		Mode:           room.Mode.String(),
		Whitelist:      make([]string, 0, len(room.Whitelist)),
		Blacklist:      make([]string, 0, len(room.Blacklist)),
	}
	for id := range room.Whitelist {
		v.Whitelist = append(v.Whitelist, string(id))
	}
	for id := range room.Blacklist {
		v.Blacklist = append(v.Blacklist, string(id))
	}
	return v
}

func (ctl *StatusController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "rooms": ctl.Registry.Len()})
}

func (ctl *StatusController) ListRooms(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.CallTimeout)
	defer cancel()

	var views []RoomView
	err := ctl.Loop.Call(ctx, func() {
		for _, room := range ctl.Registry.Snapshot() {
			views = append(views, viewOf(room))
		}
	})
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	if views == nil {
		views = []RoomView{}
	}
	c.JSON(http.StatusOK, views)
}

func (ctl *StatusController) GetRoom(c *gin.Context) {
	guild := domain.GuildID(c.Param("guild"))
	owner := domain.UserID(c.Param("owner"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.CallTimeout)
	defer cancel()

	var view *RoomView
	err := ctl.Loop.Call(ctx, func() {
		if room, ok := ctl.Registry.Get(guild, owner); ok {
			v := viewOf(room)
			view = &v
		}
	})
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	if view == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	c.JSON(http.StatusOK, view)
}
