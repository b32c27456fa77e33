// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/danielhkuo/ideaboard/models"
)

const defaultTimeout = 10 * time.Second

// APIError is a non-2xx response from the server
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
}

// Client talks to an ideaboard server over HTTP and websocket
type Client struct {
	BaseURL    *url.URL
	HTTPClient *http.Client
	Dialer     *websocket.Dialer
}

// New returns a client for the server at baseURL, e.g. http://127.0.0.1:3318
func New(baseURL string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", baseURL)
	}
	return &Client{
		BaseURL:    u,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
		Dialer:     websocket.DefaultDialer,
	}, nil
}

// FetchIdeas returns every idea newest first, with viewer's own directions
func (c *Client) FetchIdeas(ctx context.Context, viewer string) ([]models.IdeaView, error) {
	u := c.BaseURL.JoinPath("ideas")
	if viewer != "" {
		u.RawQuery = url.Values{"viewer": {viewer}}.Encode()
	}

	var ideas []models.IdeaView
	if err := c.do(ctx, http.MethodGet, u, nil, &ideas); err != nil {
		return nil, err
	}
	return ideas, nil
}

// GetIdea returns one idea as seen by viewer
func (c *Client) GetIdea(ctx context.Context, ideaID int64, viewer string) (models.IdeaView, error) {
	u := c.BaseURL.JoinPath("ideas", strconv.FormatInt(ideaID, 10))
	if viewer != "" {
		u.RawQuery = url.Values{"viewer": {viewer}}.Encode()
	}

	var idea models.IdeaView
	err := c.do(ctx, http.MethodGet, u, nil, &idea)
	return idea, err
}

// CreateIdea posts a new idea
func (c *Client) CreateIdea(ctx context.Context, req models.CreateIdeaRequest) (models.IdeaView, error) {
	var resp models.CreateIdeaResponse
	if err := c.do(ctx, http.MethodPost, c.BaseURL.JoinPath("ideas"), req, &resp); err != nil {
		return models.IdeaView{}, err
	}
	if resp.Idea == nil {
		return models.IdeaView{}, fmt.Errorf("create idea: response has no idea")
	}
	return *resp.Idea, nil
}

// CastVote sends one vote. Repeating the current direction withdraws it.
func (c *Client) CastVote(ctx context.Context, ideaID int64, voter string, dir models.Direction) (models.CastVoteResponse, error) {
	u := c.BaseURL.JoinPath("ideas", strconv.FormatInt(ideaID, 10), "votes")
	body := models.CastVoteRequest{Voter: voter, Direction: string(dir)}

	var resp models.CastVoteResponse
	err := c.do(ctx, http.MethodPost, u, body, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method string, u *url.URL, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to %s %s: %w", method, u.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errResp models.ErrorResponse
		if json.Unmarshal(raw, &errResp) == nil {
			apiErr.Code = errResp.Error
			apiErr.Message = errResp.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
