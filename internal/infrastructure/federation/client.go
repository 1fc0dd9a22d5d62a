// Package federation speaks the JSON-over-HTTP federation API to peer
// homeservers. Delivery is best-effort per destination; retry and backoff
// are left to callers out-of-band.
package federation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/fedroom/fedroom/internal/domain/room"
)

// Client implements room.Federation.
type Client struct {
	http   *http.Client
	scheme string
	logger zerolog.Logger
}

// NewClient creates a federation client. scheme is "https" in production;
// tests and local meshes use "http".
func NewClient(timeout time.Duration, scheme string, logger zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if scheme == "" {
		scheme = "https"
	}
	return &Client{
		http:   &http.Client{Timeout: timeout},
		scheme: scheme,
		logger: logger.With().Str("service", "federation").Logger(),
	}
}

// Send forwards the event to every destination host. Per-destination
// failures are joined; delivery to the remaining hosts is still attempted.
func (c *Client) Send(ctx context.Context, event *room.Event) error {
	if len(event.Destinations) == 0 {
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	var errs []error
	for _, host := range event.Destinations {
		if err := c.sendTo(ctx, host, body); err != nil {
			c.logger.Warn().Err(err).Str("host", host).Str("event_id", event.ID).Msg("federation delivery failed")
			errs = append(errs, fmt.Errorf("send to %s: %w", host, err))
		}
	}
	return errors.Join(errs...)
}

func (c *Client) sendTo(ctx context.Context, host string, body []byte) error {
	endpoint := fmt.Sprintf("%s://%s/v1/federation/send", c.scheme, host)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

// RoomState fetches the room's current state snapshot from host during the
// invite-join handshake.
func (c *Client) RoomState(ctx context.Context, host, roomID string) (map[string]any, error) {
	endpoint := fmt.Sprintf("%s://%s/v1/federation/rooms/%s/state", c.scheme, host, url.PathEscape(roomID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, host)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var state map[string]any
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode room state: %w", err)
	}
	return state, nil
}
