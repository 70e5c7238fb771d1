package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"portfolio-chat/internal/models"
)

// Client talks to the remote portfolio assistant over HTTP. It performs no
// retries and no queueing: a failed turn is surfaced immediately and the
// caller decides what to show the user.
type Client struct {
	baseURL    string
	sessionID  string
	httpClient *http.Client
	logger     *zerolog.Logger
}

func NewClient(baseURL string, sessionID string, timeout time.Duration, logger *zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		sessionID:  sessionID,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// SendTurn submits one chat turn. The message must be non-blank and the mode
// one of the defined interaction modes; both are checked before any I/O.
// Transport errors, non-2xx statuses and undecodable bodies all come back as
// plain errors so the session controller can substitute its fallback message.
func (c *Client) SendTurn(ctx context.Context, message string, mode models.InteractionMode) (*models.ChatResponse, error) {
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("message must not be blank")
	}
	if !models.ValidMode(mode) {
		return nil, fmt.Errorf("unknown interaction mode %q", mode)
	}

	body, err := json.Marshal(models.ChatRequest{
		Message:   message,
		Mode:      string(mode),
		SessionID: c.sessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("assistant returned status %d", resp.StatusCode)
	}

	var chatResp models.ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("failed to decode chat response: %w", err)
	}

	c.logger.Info().
		Str("mode", chatResp.Mode).
		Int("sources", len(chatResp.Sources)).
		Bool("judged", chatResp.JudgeScore != nil).
		Dur("duration", time.Since(start)).
		Msg("chat turn complete")

	return &chatResp, nil
}

// Health probes the assistant's liveness endpoint. Not on the chat critical
// path; a failure means only that the probe failed.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to build health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}
