package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/GriffinCanCode/Reze/backend/internal/infrastructure/httpclient"
	"github.com/GriffinCanCode/Reze/backend/internal/shared/types"
	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL is where a locally started server listens
const DefaultBaseURL = "http://localhost:5001/api"

const maxErrorBody = 64 * 1024

// APIError is a non-2xx answer from the relay server
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// APIOptions configures an APIClient
type APIOptions struct {
	BaseURL string
	// Timeout bounds every call except chat, whose body is read for as long
	// as the context allows.
	Timeout time.Duration
}

// APIClient calls the relay server's JSON and streaming endpoints
type APIClient struct {
	http    *httpclient.Client
	timeout time.Duration
}

// NewAPIClient creates a client for the server at opts.BaseURL
func NewAPIClient(opts APIOptions) *APIClient {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}

	hc := httpclient.New(httpclient.Options{
		Name:    "reze-api",
		BaseURL: strings.TrimRight(opts.BaseURL, "/"),
	})
	hc.Resty.SetJSONMarshaler(sonic.Marshal)
	hc.Resty.SetJSONUnmarshaler(sonic.Unmarshal)

	return &APIClient{http: hc, timeout: opts.Timeout}
}

// Signup registers a new account and returns its first session
func (c *APIClient) Signup(ctx context.Context, username, password string) (*types.AuthResponse, error) {
	var out types.AuthResponse
	if _, err := c.do(ctx, http.MethodPost, "/auth/signup", "", types.AuthRequest{Username: username, Password: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login opens a session for an existing account
func (c *APIClient) Login(ctx context.Context, username, password string) (*types.AuthResponse, error) {
	var out types.AuthResponse
	if _, err := c.do(ctx, http.MethodPost, "/auth/login", "", types.AuthRequest{Username: username, Password: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes token on the server
func (c *APIClient) Logout(ctx context.Context, token string) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/logout", token, nil, nil)
	return err
}

// Settings fetches the stored credentials of the token's user
func (c *APIClient) Settings(ctx context.Context, token string) (types.Credentials, error) {
	var out types.Credentials
	_, err := c.do(ctx, http.MethodGet, "/user/settings", token, nil, &out)
	return out, err
}

// UpdateSettings replaces the stored credentials of the token's user
func (c *APIClient) UpdateSettings(ctx context.Context, token string, req types.SettingsRequest) (*types.SettingsResponse, error) {
	var out types.SettingsResponse
	if _, err := c.do(ctx, http.MethodPost, "/user/settings", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Research runs the search step and returns the context JSON as received,
// ready to be forwarded to Chat untouched.
func (c *APIClient) Research(ctx context.Context, req types.ResearchRequest) (json.RawMessage, error) {
	resp, err := c.do(ctx, http.MethodPost, "/research", "", req, nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(resp.Body()), nil
}

// Chat posts req and returns the plain-text answer body as it streams. The
// caller must close it. Errors the server reports before streaming come back
// as *APIError.
func (c *APIClient) Chat(ctx context.Context, req types.ChatRequest) (io.ReadCloser, error) {
	r, err := c.http.Request(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := r.SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetDoNotParseResponse(true).
		Post("/chat")
	if err != nil {
		return nil, fmt.Errorf("chat request: %w", err)
	}

	raw := resp.RawBody()
	if resp.IsSuccess() {
		return raw, nil
	}

	defer raw.Close()
	data, _ := io.ReadAll(io.LimitReader(raw, maxErrorBody))
	return nil, newAPIError(resp.StatusCode(), data)
}

func (c *APIClient) do(ctx context.Context, method, path, token string, body, out any) (*resty.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	r, err := c.http.Request(ctx)
	if err != nil {
		return nil, err
	}

	r.SetHeader("Accept", "application/json")
	if token != "" {
		r.SetAuthToken(token)
	}
	if body != nil {
		r.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if out != nil {
		r.SetResult(out)
	}

	resp, err := r.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if !resp.IsSuccess() {
		return nil, newAPIError(resp.StatusCode(), resp.Body())
	}
	return resp, nil
}

// newAPIError prefers the server's {"error": "..."} message and falls back
// to the raw body, then to the status text.
func newAPIError(status int, body []byte) *APIError {
	var payload types.ErrorResponse
	if err := sonic.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return &APIError{StatusCode: status, Message: payload.Error}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{StatusCode: status, Message: msg}
}
