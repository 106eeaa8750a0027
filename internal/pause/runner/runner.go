// Package runner is the HTTP adapter for the external Flow Runner: the
// system that actually executes client automation flows. This service only
// tells it to pause and resume.
package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"flowguard/internal/pause/models"
	"flowguard/internal/pause/ports"
	id "flowguard/pkg/domain"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) PauseFlow(ctx context.Context, flowID id.FlowID) error {
	return c.post(ctx, fmt.Sprintf("/flows/%s/pause", flowID))
}

func (c *Client) ResumeFlow(ctx context.Context, flowID id.FlowID) error {
	return c.post(ctx, fmt.Sprintf("/flows/%s/resume", flowID))
}

func (c *Client) ListActiveFlows(ctx context.Context, clientID id.ClientID) ([]models.FlowRef, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+fmt.Sprintf("/clients/%s/flows", clientID), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("flow runner unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("flow runner returned %d listing flows", resp.StatusCode)
	}

	var body struct {
		Flows []models.FlowRef `json:"flows"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding flow list: %w", err)
	}
	return body.Flows, nil
}

func (c *Client) post(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("flow runner unreachable: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ports.ErrFlowNotFound
	case resp.StatusCode >= 300:
		return fmt.Errorf("flow runner returned %d", resp.StatusCode)
	}
	return nil
}
