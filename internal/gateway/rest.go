package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/skylanix/MamieHenriette/internal/domain"
)

const channelTypeVoice = 2

// RestClient talks to the platform HTTP API. All methods map a 404 to
// ErrNotFound and a 403 to ErrPermission so handlers can stay oblivious
// to HTTP.
type RestClient struct {
	baseURL string
	token   string
	selfID  domain.UserID
	http    *http.Client
}

func NewRestClient(baseURL, token string, selfID domain.UserID) *RestClient {
	return &RestClient{
		baseURL: baseURL,
		token:   token,
		selfID:  selfID,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *RestClient) CurrentUserID() domain.UserID { return c.selfID }

func (c *RestClient) do(ctx context.Context, method, path string, body any, out any) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusForbidden:
		return ErrPermission
	case resp.StatusCode >= 400:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, msg)
	}
	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *RestClient) CreateVoiceChannel(ctx context.Context, guild domain.GuildID, name string, category domain.ChannelID) (domain.ChannelID, error) {
	payload := map[string]any{"name": name, "type": channelTypeVoice}
	if category != "" {
		payload["parent_id"] = category
	}
	var ch Channel
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/guilds/%s/channels", guild), payload, &ch); err != nil {
		return "", err
	}
	log.Debug().Str("module", "gateway.rest").Str("guild", string(guild)).Str("channel", string(ch.ID)).Msg("voice channel created")
	return ch.ID, nil
}

func (c *RestClient) DeleteChannel(ctx context.Context, channel domain.ChannelID) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/channels/%s", channel), nil, nil)
}

func (c *RestClient) EditChannelName(ctx context.Context, channel domain.ChannelID, name string) error {
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/channels/%s", channel), map[string]any{"name": name}, nil)
}

func (c *RestClient) EditChannelOverwrites(ctx context.Context, channel domain.ChannelID, overwrites []Overwrite) error {
	payload := map[string]any{"permission_overwrites": overwrites}
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/channels/%s", channel), payload, nil)
}

func (c *RestClient) GetChannel(ctx context.Context, channel domain.ChannelID) (*Channel, error) {
	var ch Channel
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/channels/%s", channel), nil, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

func (c *RestClient) MoveMember(ctx context.Context, guild domain.GuildID, user domain.UserID, channel domain.ChannelID) error {
	payload := map[string]any{"channel_id": channel}
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/guilds/%s/members/%s", guild, user), payload, nil)
}

func (c *RestClient) DisconnectMember(ctx context.Context, guild domain.GuildID, user domain.UserID) error {
	payload := map[string]any{"channel_id": nil}
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/guilds/%s/members/%s", guild, user), payload, nil)
}

func (c *RestClient) SendMessage(ctx context.Context, channel domain.ChannelID, content string, embed *Embed) (domain.MessageID, error) {
	payload := map[string]any{}
	if content != "" {
		payload["content"] = content
	}
	if embed != nil {
		payload["embeds"] = []Embed{*embed}
	}
	var msg Message
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/channels/%s/messages", channel), payload, &msg); err != nil {
		return "", err
	}
	return msg.ID, nil
}

func (c *RestClient) EditMessage(ctx context.Context, channel domain.ChannelID, message domain.MessageID, embed *Embed) error {
	payload := map[string]any{"embeds": []Embed{*embed}}
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/channels/%s/messages/%s", channel, message), payload, nil)
}

func (c *RestClient) FetchMessage(ctx context.Context, channel domain.ChannelID, message domain.MessageID) (*Message, error) {
	var msg Message
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/channels/%s/messages/%s", channel, message), nil, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (c *RestClient) AddReaction(ctx context.Context, channel domain.ChannelID, message domain.MessageID, emoji string) error {
	path := fmt.Sprintf("/channels/%s/messages/%s/reactions/%s/@me", channel, message, url.PathEscape(emoji))
	return c.do(ctx, http.MethodPut, path, nil, nil)
}

func (c *RestClient) RemoveReaction(ctx context.Context, channel domain.ChannelID, message domain.MessageID, emoji string, user domain.UserID) error {
	path := fmt.Sprintf("/channels/%s/messages/%s/reactions/%s/%s", channel, message, url.PathEscape(emoji), user)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}
