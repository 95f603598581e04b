// Package adminclient talks to the bot's HTTP API: it reads status and
// sends admin commands with the bearer token.
package adminclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/talgya/auctionbot/internal/engine"
)

// StatusResponse mirrors GET /api/v1/status.
type StatusResponse struct {
	Name    string        `json:"name"`
	Bot     engine.Status `json:"bot"`
	Tick    uint64        `json:"tick"`
	Speed   float64       `json:"speed"`
	Running bool          `json:"running"`
}

// Client is an API client. AdminKey may be empty for read-only use.
type Client struct {
	BaseURL    string
	AdminKey   string
	HTTPClient *http.Client
}

// New creates a Client targeting the given API base URL.
func New(baseURL, adminKey string) *Client {
	return &Client{
		BaseURL:  baseURL,
		AdminKey: adminKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Status fetches GET /api/v1/status.
func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	var s StatusResponse
	if err := c.fetchJSON(ctx, "/api/v1/status", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Venues fetches GET /api/v1/venues.
func (c *Client) Venues(ctx context.Context) ([]engine.VenueStatus, error) {
	var vs []engine.VenueStatus
	if err := c.fetchJSON(ctx, "/api/v1/venues", &vs); err != nil {
		return nil, err
	}
	return vs, nil
}

// Expire ends the bot's listings in a venue, optionally only one item class.
// It returns how many were expired.
func (c *Client) Expire(ctx context.Context, venue string, class *uint8) (int, error) {
	req := struct {
		Class *uint8 `json:"class,omitempty"`
	}{Class: class}
	var resp struct {
		Expired int `json:"expired"`
	}
	if err := c.postJSON(ctx, venuePath(venue, "expire"), req, &resp); err != nil {
		return 0, err
	}
	return resp.Expired, nil
}

// SetField sets one configuration field. quality is a colour name and only
// used by per-quality fields.
func (c *Client) SetField(ctx context.Context, venue, field, quality string, value uint32) error {
	req := map[string]any{"field": field, "quality": quality, "value": value}
	return c.postJSON(ctx, venuePath(venue, "config"), req, nil)
}

// SetPercentages replaces all tier percentages of a venue.
func (c *Client) SetPercentages(ctx context.Context, venue string, pct []uint32) error {
	req := map[string]any{"percentages": pct}
	return c.postJSON(ctx, venuePath(venue, "percentages"), req, nil)
}

// Reload makes the bot reread a venue's configuration and returns the new
// generation.
func (c *Client) Reload(ctx context.Context, venue string) (uint64, error) {
	var resp struct {
		Generation uint64 `json:"generation"`
	}
	if err := c.postJSON(ctx, venuePath(venue, "reload"), struct{}{}, &resp); err != nil {
		return 0, err
	}
	return resp.Generation, nil
}

// SetSpeed changes the tick speed multiplier; zero pauses the bot.
func (c *Client) SetSpeed(ctx context.Context, speed float64) (float64, error) {
	var resp struct {
		Speed float64 `json:"speed"`
	}
	if err := c.postJSON(ctx, "/api/v1/speed", map[string]float64{"speed": speed}, &resp); err != nil {
		return 0, err
	}
	return resp.Speed, nil
}

func venuePath(venue, action string) string {
	return "/api/v1/venue/" + url.PathEscape(venue) + "/" + action
}

// fetchJSON GETs a path and decodes the JSON response into target.
func (c *Client) fetchJSON(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, target)
}

// postJSON POSTs body with admin auth and decodes the response into target
// when target is non-nil.
func (c *Client) postJSON(ctx context.Context, path string, body, target any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.AdminKey)
	return c.do(req, target)
}

func (c *Client) do(req *http.Request, target any) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s returned %d: %s", req.Method, req.URL.Path, resp.StatusCode, bytes.TrimSpace(body))
	}
	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", req.URL.Path, err)
	}
	return nil
}
