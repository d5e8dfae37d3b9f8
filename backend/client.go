package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"assistui/config"
	"assistui/model"
)

const errorBodyLimit = 512

type requestIDKey struct{}

// WithRequestID tags outgoing requests made with ctx with an X-Request-ID
// header so client and server logs can be correlated.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// Client talks to the assistant backend over HTTP. It does no retries and
// sets no deadline of its own.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a backend client. An empty baseURL falls back to
// config.DefaultAPIURL.
func NewClient(baseURL string) (*Client, error) {
	if baseURL == "" {
		baseURL = config.DefaultAPIURL
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("invalid API URL %q: scheme must be http or https", baseURL)
	}

	return &Client{
		httpClient: http.DefaultClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}, nil
}

// SetHTTPClient swaps the underlying HTTP client.
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Chat posts the history to /api/chat and returns the complete reply text.
func (c *Client) Chat(ctx context.Context, messages []model.Message) (string, error) {
	resp, err := c.post(ctx, ChatPath, messages, "application/json")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &RequestError{Endpoint: ChatPath, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	if out.Message == nil {
		return "", &RequestError{Endpoint: ChatPath, Err: errors.New("response has no message field")}
	}

	return *out.Message, nil
}

// OpenStream posts the history to /api/chat/stream. On success the caller
// owns the returned stream and must Close it.
func (c *Client) OpenStream(ctx context.Context, messages []model.Message) (*EventStream, error) {
	resp, err := c.post(ctx, StreamPath, messages, "text/event-stream")
	if err != nil {
		return nil, err
	}
	return NewEventStream(resp.Body), nil
}

// Ping checks that the backend answers GET /health.
func (c *Client) Ping(ctx context.Context) (*HealthStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+HealthPath, nil)
	if err != nil {
		return nil, &RequestError{Endpoint: HealthPath, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Endpoint: HealthPath, Err: err}
	}
	defer resp.Body.Close()

	if err := checkStatus(HealthPath, resp); err != nil {
		return nil, err
	}

	var status HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, &RequestError{Endpoint: HealthPath, Err: fmt.Errorf("failed to decode health: %w", err)}
	}
	return &status, nil
}

// post sends the chat request body and returns a response with a 2xx status.
func (c *Client) post(ctx context.Context, path string, messages []model.Message, accept string) (*http.Response, error) {
	if messages == nil {
		messages = []model.Message{}
	}
	body, err := json.Marshal(ChatRequest{Messages: messages})
	if err != nil {
		return nil, &RequestError{Endpoint: path, Err: fmt.Errorf("failed to encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, &RequestError{Endpoint: path, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", accept)
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	config.DebugLog.Debug().Str("endpoint", path).Int("messages", len(messages)).Msg("POST")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Endpoint: path, Err: err}
	}

	if err := checkStatus(path, resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

func checkStatus(path string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
	return &RequestError{
		Endpoint:   path,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(snippet)),
	}
}
