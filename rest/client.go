// Package rest implements the stateless request/response control surface
// against a single node's HTTP API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Deivu/Anchorage/logging"
	"github.com/Deivu/Anchorage/model"
)

// Config configures a Client.
type Config struct {
	// BaseURL is the node's HTTP prefix, e.g. "http://host:2333/v4".
	BaseURL    string
	Auth       string
	UserAgent  string
	HTTPClient *http.Client
	// SessionID is the cell shared with the owning node manager, written
	// on Ready and read here before any session-scoped call.
	SessionID *model.SharedSessionID
	Logger    logging.Logger
}

// Client is a stateless issuer of control requests against one node. All
// methods are safe for concurrent use; the only shared mutable state they
// touch is the read-only SessionID cell.
type Client struct {
	baseURL    string
	auth       string
	userAgent  string
	httpClient *http.Client
	sessionID  *model.SharedSessionID
	logger     logging.Logger
}

// NewClient builds a Client from cfg.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		auth:       cfg.Auth,
		userAgent:  cfg.UserAgent,
		httpClient: httpClient,
		sessionID:  cfg.SessionID,
		logger:     cfg.Logger,
	}
}

func (c *Client) sessionPrefix() (string, error) {
	id, ok := c.sessionID.Get()
	if !ok {
		return "", model.ErrNoSessionId
	}
	return fmt.Sprintf("%s/sessions/%s", c.baseURL, id), nil
}

// request issues method against fullURL (already including any query
// string) with an optional JSON body, and decodes the response into out.
// A nil out means the caller does not care about the body at all (e.g.
// destroy_player). request never retries.
func (c *Client) request(ctx context.Context, method, fullURL string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return &model.HttpError{Err: fmt.Errorf("encode request body: %w", err)}
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return &model.HttpError{Err: err}
	}
	req.Header.Set("Authorization", c.auth)
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &model.HttpError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &model.HttpError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &model.ResponseNotOkError{StatusCode: resp.StatusCode}
	}
	if len(data) == 0 {
		if out == nil {
			return nil
		}
		return model.ErrNothingReturned
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &model.DecodeError{Err: err}
	}
	return nil
}

// Resolve issues GET /loadtracks?identifier=identifier.
func (c *Client) Resolve(ctx context.Context, identifier string) (*model.LoadResult, error) {
	u := fmt.Sprintf("%s/loadtracks?identifier=%s", c.baseURL, url.QueryEscape(identifier))
	var out model.LoadResult
	if err := c.request(ctx, http.MethodGet, u, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Decode issues GET /decodetrack?track=encoded.
func (c *Client) Decode(ctx context.Context, encoded string) (*model.Track, error) {
	u := fmt.Sprintf("%s/decodetrack?track=%s", c.baseURL, url.QueryEscape(encoded))
	var out model.Track
	if err := c.request(ctx, http.MethodGet, u, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPlayer issues GET /sessions/{sid}/players/{gid}.
func (c *Client) GetPlayer(ctx context.Context, guildID model.GuildID) (*model.Player, error) {
	prefix, err := c.sessionPrefix()
	if err != nil {
		return nil, err
	}
	var out model.Player
	if err := c.request(ctx, http.MethodGet, fmt.Sprintf("%s/players/%s", prefix, guildID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPlayers issues GET /sessions/{sid}/players.
func (c *Client) GetPlayers(ctx context.Context) ([]model.Player, error) {
	prefix, err := c.sessionPrefix()
	if err != nil {
		return nil, err
	}
	var out []model.Player
	if err := c.request(ctx, http.MethodGet, prefix+"/players", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdatePlayer issues PATCH /sessions/{sid}/players/{gid}[?noReplace=true].
func (c *Client) UpdatePlayer(ctx context.Context, guildID model.GuildID, noReplace bool, update model.PlayerUpdateOptions) (*model.Player, error) {
	prefix, err := c.sessionPrefix()
	if err != nil {
		return nil, err
	}
	u := fmt.Sprintf("%s/players/%s", prefix, guildID)
	if noReplace {
		u += "?noReplace=" + strconv.FormatBool(noReplace)
	}
	var out model.Player
	if err := c.request(ctx, http.MethodPatch, u, update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DestroyPlayer issues DELETE /sessions/{sid}/players/{gid}.
func (c *Client) DestroyPlayer(ctx context.Context, guildID model.GuildID) error {
	prefix, err := c.sessionPrefix()
	if err != nil {
		return err
	}
	return c.request(ctx, http.MethodDelete, fmt.Sprintf("%s/players/%s", prefix, guildID), nil, nil)
}

// UpdateSession issues PATCH /sessions/{sid}.
func (c *Client) UpdateSession(ctx context.Context, info model.SessionInfo) (*model.SessionInfo, error) {
	prefix, err := c.sessionPrefix()
	if err != nil {
		return nil, err
	}
	var out model.SessionInfo
	if err := c.request(ctx, http.MethodPatch, prefix, info, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Stats issues GET /stats.
func (c *Client) Stats(ctx context.Context) (*model.Stats, error) {
	var out model.Stats
	if err := c.request(ctx, http.MethodGet, c.baseURL+"/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RoutePlannerStatus issues GET /routeplanner/status.
func (c *Client) RoutePlannerStatus(ctx context.Context) (*model.RoutePlanner, error) {
	var out model.RoutePlanner
	if err := c.request(ctx, http.MethodGet, c.baseURL+"/routeplanner/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UnmarkFailedAddress issues POST /routeplanner/free/address.
func (c *Client) UnmarkFailedAddress(ctx context.Context, address string) error {
	body := struct {
		Address string `json:"address"`
	}{Address: address}
	return c.request(ctx, http.MethodPost, c.baseURL+"/routeplanner/free/address", body, nil)
}

// Info issues GET /info.
func (c *Client) Info(ctx context.Context) (*model.NodeInfo, error) {
	var out model.NodeInfo
	if err := c.request(ctx, http.MethodGet, c.baseURL+"/info", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
