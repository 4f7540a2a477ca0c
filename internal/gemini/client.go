// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gemini is a minimal transport for the Generative Language REST API
// shared by the price lookup and image synthesis clients.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/price-scout/internal/httputil"
	"github.com/pdiddy/price-scout/pkg/types"
)

// DefaultBaseURL is the Generative Language API root.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("AI API key is not configured")

// Client posts JSON requests to {BaseURL}/models/{model}:{method}.
type Client struct {
	APIKey     string
	BaseURL    string
	HTTP       *http.Client
	MaxRetries int
	UserAgent  string
}

// NewClient builds a Client from the AI configuration.
func NewClient(httpClient *http.Client, cfg types.AIConfig) *Client {
	c := &Client{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		HTTP:       httpClient,
		MaxRetries: cfg.MaxRetries,
		UserAgent:  cfg.UserAgent,
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	return c
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool { return c != nil && c.APIKey != "" }

// Call marshals req, posts it to model:method and decodes the reply into resp.
func (c *Client) Call(ctx context.Context, model, method string, req, resp any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	reqURL := strings.TrimSuffix(c.BaseURL, "/") + "/models/" + model + ":" + method
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.APIKey)
	if c.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.UserAgent)
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}

	httpResp, err := httputil.DoWithRetry(ctx, client, httpReq, c.MaxRetries)
	if err != nil {
		return fmt.Errorf("calling AI API: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(httpResp.Body, 512))
		return &APIError{Status: httpResp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	if err := json.NewDecoder(httpResp.Body).Decode(resp); err != nil {
		return fmt.Errorf("decoding AI response: %w", err)
	}
	return nil
}

// APIError is a non-200 reply from the API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("AI API returned %d: %s", e.Status, e.Body)
}

// InvalidKey reports whether the API rejected the configured key.
func (e *APIError) InvalidKey() bool {
	return strings.Contains(e.Body, "API key not valid") || strings.Contains(e.Body, "API_KEY_INVALID")
}
