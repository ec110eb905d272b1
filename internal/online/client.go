package online

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrUnauthorized is returned (wrapped in *APIError) for 401 responses.
var ErrUnauthorized = errors.New("unauthorized")

// Transport defines the remote calls the request queue performs.
// This interface is implemented by *Client and can be used for testing.
type Transport interface {
	GetBeatmapSet(ctx context.Context, onlineID int64) (*APIBeatmapSet, error)
	PostBeatmapFavourite(ctx context.Context, onlineID int64, action FavouriteAction) error
	GetMe(ctx context.Context) (*APIUser, error)
}

// Ensure Client implements Transport at compile time.
var _ Transport = (*Client)(nil)

// Client talks to the osu! web API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string

	mu    sync.RWMutex
	token string
}

const (
	DefaultBaseURL   = "https://osu.ppy.sh"
	defaultUserAgent = "heart/0.1"
	requestTimeout   = 10 * time.Second
)

// ClientOption customises a Client.
type ClientOption func(*Client)

// WithToken sets the bearer token sent with every request.
func WithToken(token string) ClientOption {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// NewClient builds a Client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetToken replaces the bearer token. Safe to call while requests run.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = strings.TrimSpace(token)
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// BaseURL returns the API root.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// BeatmapSetURL returns the public web page for a beatmap set.
func (c *Client) BeatmapSetURL(onlineID int64) string {
	return c.baseURL.ResolveReference(&url.URL{Path: "/beatmapsets/" + strconv.FormatInt(onlineID, 10)}).String()
}

// GetBeatmapSet retrieves a beatmap set including the caller's favourite state.
func (c *Client) GetBeatmapSet(ctx context.Context, onlineID int64) (*APIBeatmapSet, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if onlineID <= 0 {
		return nil, fmt.Errorf("beatmap set id required")
	}
	var payload APIBeatmapSet
	path := "/api/v2/beatmapsets/" + strconv.FormatInt(onlineID, 10)
	if err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// PostBeatmapFavourite favourites or unfavourites a beatmap set.
func (c *Client) PostBeatmapFavourite(ctx context.Context, onlineID int64, action FavouriteAction) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if onlineID <= 0 {
		return fmt.Errorf("beatmap set id required")
	}
	form := url.Values{}
	form.Set("action", action.String())
	path := "/api/v2/beatmapsets/" + strconv.FormatInt(onlineID, 10) + "/favourites"
	return c.do(ctx, http.MethodPost, path, form, nil)
}

// GetMe retrieves the user the token belongs to.
func (c *Client) GetMe(ctx context.Context) (*APIUser, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload APIUser
	if err := c.do(ctx, http.MethodGet, "/api/v2/me", nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// APIError reports a non-success HTTP status.
type APIError struct {
	Status  int
	Path    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api %s returned status %d: %s", e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("api %s returned status %d", e.Path, e.Status)
}

// Is lets errors.Is match ErrUnauthorized for 401 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values, dest any) error {
	rel := &url.URL{Path: path}
	reqURL := c.baseURL.ResolveReference(rel)

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if id, ok := requestIDFrom(ctx); ok {
		req.Header.Set("X-Request-Id", id.String())
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode, Path: rel.String()}
		var eb errorBody
		if data, readErr := io.ReadAll(io.LimitReader(resp.Body, 64*1024)); readErr == nil && json.Unmarshal(data, &eb) == nil {
			apiErr.Message = strings.TrimSpace(eb.Error)
			if apiErr.Message == "" {
				apiErr.Message = strings.TrimSpace(eb.Message)
			}
		}
		return apiErr
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type requestIDKey struct{}

func withRequestID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFrom(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(requestIDKey{}).(uuid.UUID)
	return id, ok
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api url %q: missing host", raw)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
