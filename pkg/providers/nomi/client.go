// Package nomi is a client for the Nomi.ai companion API. A Nomi keeps its
// own conversation memory server-side, so the chat endpoint is single-turn:
// one message in, one reply out.
package nomi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.nomi.ai"

// Client talks to one Nomi identified by its UUID.
type Client struct {
	apiKey     string
	nomiID     string
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(apiKey, nomiID string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		nomiID:  nomiID,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			// Nomi replies are generated synchronously and can take a while.
			Timeout: 90 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Name() string {
	return "nomi"
}

type chatRequest struct {
	MessageText string `json:"messageText"`
}

type chatMessage struct {
	UUID string `json:"uuid"`
	Text string `json:"text"`
	Sent string `json:"sent"`
}

type chatResponse struct {
	SentMessage  chatMessage `json:"sentMessage"`
	ReplyMessage chatMessage `json:"replyMessage"`
}

// Profile is the subset of the Nomi profile the gateway reports at startup.
type Profile struct {
	UUID    string `json:"uuid"`
	Name    string `json:"name"`
	Gender  string `json:"gender"`
	Created string `json:"created"`
}

type apiError struct {
	Error struct {
		Type string `json:"type"`
	} `json:"error"`
}

// SendMessage forwards one message to the Nomi and returns its reply text.
func (c *Client) SendMessage(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(chatRequest{MessageText: text})
	if err != nil {
		return "", fmt.Errorf("encoding chat request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/nomis/%s/chat", c.baseURL, c.nomiID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building chat request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("nomi API call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", decodeError(resp)
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return "", fmt.Errorf("decoding chat response: %w", err)
	}
	return chat.ReplyMessage.Text, nil
}

// FetchProfile retrieves the Nomi's profile, used for the startup greeting.
func (c *Client) FetchProfile(ctx context.Context) (*Profile, error) {
	url := fmt.Sprintf("%s/v1/nomis/%s", c.baseURL, c.nomiID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building profile request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nomi API call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var p Profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decoding profile response: %w", err)
	}
	return &p, nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var ae apiError
	if err := json.Unmarshal(raw, &ae); err == nil && ae.Error.Type != "" {
		return fmt.Errorf("nomi API error (HTTP %d): %s", resp.StatusCode, ae.Error.Type)
	}
	return fmt.Errorf("nomi API error: HTTP %d", resp.StatusCode)
}
