// Package plug is the transport glue between the bot and the room platform.
// It implements service.RoomGateway over the platform's REST API, keeping a
// polled snapshot of the online users and waitlist for the read methods.
package plug

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"plugbot/models"

	log "github.com/sirupsen/logrus"
)

// Config holds room platform connection settings
type Config struct {
	BaseURL string
	Auth    string
	Slug    string
}

// Client talks to the room platform REST API
type Client struct {
	config Config
	http   *http.Client

	mu       sync.RWMutex
	users    map[int64]*models.RoomUser
	waitlist []int64
}

// NewClient creates a room platform client
func NewClient(config Config) *Client {
	return &Client{
		config: config,
		http:   &http.Client{Timeout: 10 * time.Second},
		users:  make(map[int64]*models.RoomUser),
	}
}

// StartPolling refreshes the room snapshot every interval until ctx is done.
func (c *Client) StartPolling(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := c.Refresh(ctx); err != nil {
					log.Errorf("Failed to refresh room state: %v", err)
				}
			}
		}
	}()
}

type roomState struct {
	Users []struct {
		ID         int64  `json:"id"`
		Username   string `json:"username"`
		Role       int    `json:"role"`
		GlobalRole int    `json:"gRole"`
	} `json:"users"`
	Waitlist []int64 `json:"waitlist"`
}

// Refresh fetches the current room state snapshot
func (c *Client) Refresh(ctx context.Context) error {
	var state roomState
	if err := c.get(ctx, fmt.Sprintf("/rooms/%s/state", c.config.Slug), &state); err != nil {
		return err
	}

	users := make(map[int64]*models.RoomUser, len(state.Users))
	for _, u := range state.Users {
		users[u.ID] = &models.RoomUser{
			ID:         u.ID,
			Username:   u.Username,
			Role:       models.Role(u.Role),
			GlobalRole: models.GlobalRole(u.GlobalRole),
		}
	}

	c.mu.Lock()
	c.users = users
	c.waitlist = state.Waitlist
	c.mu.Unlock()

	return nil
}

// GetOnlineUser returns a user currently in the room, or false
func (c *Client) GetOnlineUser(userID int64) (*models.RoomUser, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	user, ok := c.users[userID]
	if !ok || user.Username == "" {
		return nil, false
	}
	return user, true
}

// ListStaff returns the room's staff listing, online or not
func (c *Client) ListStaff(ctx context.Context) ([]*models.RoomUser, error) {
	var staff []struct {
		ID         int64  `json:"id"`
		Username   string `json:"username"`
		Role       int    `json:"role"`
		GlobalRole int    `json:"gRole"`
	}
	if err := c.get(ctx, fmt.Sprintf("/rooms/%s/staff", c.config.Slug), &staff); err != nil {
		return nil, err
	}

	users := make([]*models.RoomUser, 0, len(staff))
	for _, u := range staff {
		users = append(users, &models.RoomUser{
			ID:         u.ID,
			Username:   u.Username,
			Role:       models.Role(u.Role),
			GlobalRole: models.GlobalRole(u.GlobalRole),
		})
	}
	return users, nil
}

// GetWaitlist returns the ordered waitlist of user ids
func (c *Client) GetWaitlist() []int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	waitlist := make([]int64, len(c.waitlist))
	copy(waitlist, c.waitlist)
	return waitlist
}

// GetWaitlistPosition returns a user's waitlist index, or the sentinel
func (c *Client) GetWaitlistPosition(userID int64) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for i, id := range c.waitlist {
		if id == userID {
			return i
		}
	}
	return models.WaitlistPositionNone
}

// SetQueuePosition moves a user to an absolute waitlist position
func (c *Client) SetQueuePosition(ctx context.Context, userID int64, position int) error {
	return c.post(ctx, fmt.Sprintf("/rooms/%s/waitlist/move", c.config.Slug), map[string]any{
		"userID":   userID,
		"position": position,
	})
}

// SetRole changes a user's room role
func (c *Client) SetRole(ctx context.Context, userID int64, role models.Role) error {
	return c.post(ctx, fmt.Sprintf("/rooms/%s/staff", c.config.Slug), map[string]any{
		"userID": userID,
		"role":   int(role),
	})
}

// MuteUser mutes a user for the given duration
func (c *Client) MuteUser(ctx context.Context, userID int64, reason models.MuteReason, duration models.MuteDuration) error {
	return c.post(ctx, fmt.Sprintf("/rooms/%s/mutes", c.config.Slug), map[string]any{
		"userID":   userID,
		"reason":   int(reason),
		"duration": int(duration),
	})
}

// SendChat posts a message to the room chat
func (c *Client) SendChat(ctx context.Context, message string) error {
	return c.post(ctx, fmt.Sprintf("/rooms/%s/chat", c.config.Slug), map[string]any{
		"message": message,
	})
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.Auth)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request to %s returned status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body map[string]any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.Auth)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("request to %s returned status %d", path, resp.StatusCode)
	}
	return nil
}
