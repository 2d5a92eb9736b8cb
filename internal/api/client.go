package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmcdole/huddle/internal/config"
	"github.com/mmcdole/huddle/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "Huddle/1.0"
)

// Client implements every endpoint repository in domain: AuthClient,
// PostClient, CommunityClient, FriendClient, NotificationClient and
// PlaylistClient. Playlists are served by the posts endpoint.
type Client struct {
	endpoints  config.EndpointsConfig
	clientID   string
	httpClient *http.Client
	logger     *slog.Logger

	mu       sync.RWMutex
	identity domain.Identity
}

// NewClient creates a new endpoint client
func NewClient(endpoints config.EndpointsConfig, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		endpoints: endpoints,
		clientID:  uuid.NewString(),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// SetIdentity attaches the session provider whose id and token are sent
// with every request
func (c *Client) SetIdentity(identity domain.Identity) {
	c.mu.Lock()
	c.identity = identity
	c.mu.Unlock()
}

// ClientID returns the per-process client identifier
func (c *Client) ClientID() string {
	return c.clientID
}

// errorResponse is the failure body every endpoint returns
type errorResponse struct {
	Error string `json:"error"`
}

// doRequest performs an HTTP request and returns the body of a 2xx response
func (c *Client) doRequest(ctx context.Context, op, method, reqURL string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Client-Id", c.clientID)
	req.Header.Set("X-Request-Id", requestID)
	c.setIdentityHeaders(req)

	c.logger.Debug("api request", "op", op, "method", method, "url", reqURL, "request_id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("api request failed", "op", op, "error", err)
		return nil, &domain.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.NetworkError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var failure errorResponse
		_ = json.Unmarshal(data, &failure)
		c.logger.Error("api request error", "op", op, "status", resp.StatusCode, "error", failure.Error)

		nerr := &domain.NetworkError{Op: op, StatusCode: resp.StatusCode, Message: failure.Error}
		if resp.StatusCode == http.StatusUnauthorized {
			nerr.Err = domain.ErrUnauthorized
		}
		return nil, nerr
	}

	return data, nil
}

func (c *Client) setIdentityHeaders(req *http.Request) {
	c.mu.RLock()
	identity := c.identity
	c.mu.RUnlock()
	if identity == nil {
		return
	}
	sess, ok := identity.Current()
	if !ok {
		return
	}
	req.Header.Set("X-User-Id", strconv.FormatInt(sess.ID, 10))
	if sess.AuthToken != "" {
		req.Header.Set("X-Auth-Token", sess.AuthToken)
	}
}

// get performs a GET against endpoint and decodes the JSON body into dest
func (c *Client) get(ctx context.Context, op, endpoint string, query url.Values, dest any) error {
	reqURL := endpoint
	if len(query) > 0 {
		reqURL = fmt.Sprintf("%s?%s", endpoint, query.Encode())
	}
	data, err := c.doRequest(ctx, op, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	return c.decode(op, data, dest)
}

// post sends payload to endpoint and decodes the JSON body into dest when non-nil
func (c *Client) post(ctx context.Context, op, endpoint string, payload any, dest any) error {
	data, err := c.doRequest(ctx, op, http.MethodPost, endpoint, payload)
	if err != nil {
		return err
	}
	if dest == nil {
		return nil
	}
	return c.decode(op, data, dest)
}

func (c *Client) decode(op string, data []byte, dest any) error {
	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Error("JSON parse error", "op", op, "error", err, "bodyLen", len(data))
		return &domain.NetworkError{Op: op, Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	return nil
}

func idParam(id int64) string {
	return strconv.FormatInt(id, 10)
}

var (
	_ domain.AuthClient         = (*Client)(nil)
	_ domain.PostClient         = (*Client)(nil)
	_ domain.CommunityClient    = (*Client)(nil)
	_ domain.FriendClient       = (*Client)(nil)
	_ domain.NotificationClient = (*Client)(nil)
	_ domain.PlaylistClient     = (*Client)(nil)
)
