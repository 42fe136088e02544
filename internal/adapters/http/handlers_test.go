package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skylanix/MamieHenriette/internal/autorooms"
	"github.com/skylanix/MamieHenriette/internal/config"
	"github.com/skylanix/MamieHenriette/internal/domain"
)

func newTestServer(t *testing.T) (*httptest.Server, *autorooms.Registry) {
	t.Helper()
	reg := autorooms.NewRegistry()
	loop := autorooms.NewLoop(16)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go loop.Run(ctx)

	cfg := &config.Config{Mode: "release"}
	ctl := &StatusController{Loop: loop, Registry: reg, CallTimeout: time.Second}
	srv := httptest.NewServer(SetupRouter(cfg, ctl))
	t.Cleanup(srv.Close)
	return srv, reg
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestListRooms(t *testing.T) {
	srv, reg := newTestServer(t)

	room := domain.NewRoom("g1", "u1", "c1")
	room.Mode = domain.AccessClosed
	room.Whitelist["u2"] = struct{}{}
	reg.Set(room)

	resp, err := http.Get(srv.URL + "/api/rooms")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var views []RoomView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&views))
	require.Len(t, views, 1)
	assert.Equal(t, "g1", views[0].GuildID)
	assert.Equal(t, "closed", views[0].Mode)
	assert.Equal(t, []string{"u2"}, views[0].Whitelist)
}

func TestListRoomsEmpty(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/rooms")
	require.NoError(t, err)
	defer resp.Body.Close()

	var views []RoomView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&views))
	assert.Empty(t, views)
}

func TestGetRoom(t *testing.T) {
	srv, reg := newTestServer(t)
	reg.Set(domain.NewRoom("g1", "u1", "c1"))

	resp, err := http.Get(srv.URL + "/api/rooms/g1/u1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var view RoomView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.Equal(t, "c1", view.VoiceChannelID)
	assert.Equal(t, "open", view.Mode)

	resp, err = http.Get(srv.URL + "/api/rooms/g1/nobody")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
