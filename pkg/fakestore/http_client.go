package fakestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	dashboard "github.com/goliatone/go-insights/components/dashboard"
)

// HTTPConfig configures the upstream users client.
type HTTPConfig struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// HTTPClient reads users from a FakeStore-compatible REST API.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient builds a client for the configured base URL.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("fakestore: base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  httpClient,
	}, nil
}

// NewFromConfig builds a client from the dashboard source settings.
func NewFromConfig(cfg dashboard.SourceConfig) (*HTTPClient, error) {
	return NewHTTPClient(HTTPConfig{BaseURL: cfg.BaseURL, Timeout: cfg.Timeout})
}

// FetchUsers implements dashboard.UserSource via GET /users.
func (c *HTTPClient) FetchUsers(ctx context.Context) ([]dashboard.SourceUser, error) {
	var resp []userResponse
	if err := c.do(ctx, http.MethodGet, "/users", &resp); err != nil {
		return nil, err
	}
	users := make([]dashboard.SourceUser, len(resp))
	for i, u := range resp {
		users[i] = u.toSourceUser()
	}
	return users, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("fakestore: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("fakestore: http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return fmt.Errorf("fakestore: remote error %d: %s", resp.StatusCode, buf.String())
	}
	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("fakestore: decode response: %w", err)
	}
	return nil
}

type userName struct {
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
}

type userResponse struct {
	ID    int      `json:"id"`
	Email string   `json:"email"`
	Phone string   `json:"phone"`
	Name  userName `json:"name"`
}

func (u userResponse) toSourceUser() dashboard.SourceUser {
	return dashboard.SourceUser{
		ID:        u.ID,
		FirstName: u.Name.FirstName,
		LastName:  u.Name.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
	}
}
