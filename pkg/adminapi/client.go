package adminapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	pkgerrors "github.com/petrescue/admin-notifier/pkg/errors"
)

const (
	unreadCountPath   = "/api/admin/notifications/unread-count/"
	listPath          = "/api/admin/notifications/"
	markReadPath      = "/api/admin/notifications/mark-read/%s/"
	markAllReadPath   = "/api/admin/notifications/mark-all-read/"
	requestIDHeader   = "X-Request-Id"
	requestedWithHdr  = "X-Requested-With"
	defaultTimeout    = 10 * time.Second
	errorBodyReadSize = 1024
)

var errBaseURLRequired = errors.New("notification api base url is required")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// Client talks to the admin notification endpoints of the rescue site.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	tokens     TokenSource
	timeout    time.Duration
	requestID  func() string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client. Its cookie jar, if any,
// backs the default cookie token source.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTokenSource overrides where the anti-forgery token comes from.
func WithTokenSource(tokens TokenSource) Option {
	return func(c *Client) {
		if tokens != nil {
			c.tokens = tokens
		}
	}
}

// WithTimeout bounds each request; zero keeps the default.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// NewClient builds a notification API client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, errBaseURLRequired
	}
	parsed, err := url.Parse(strings.TrimRight(trimmed, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	client := &Client{
		baseURL:   parsed,
		timeout:   defaultTimeout,
		requestID: uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("cookie jar: %w", err)
		}
		client.httpClient = &http.Client{Jar: jar}
	}
	if client.tokens == nil {
		client.tokens = CookieToken{Jar: client.httpClient.Jar, BaseURL: parsed}
	}

	return client, nil
}

// UnreadCount fetches the server's unread notification count.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var payload unreadCountPayload
	if err := c.do(ctx, http.MethodGet, unreadCountPath, "fetch unread count", &payload); err != nil {
		return 0, err
	}
	return *payload.UnreadCount, nil
}

// List fetches the notification list, newest first.
func (c *Client) List(ctx context.Context) ([]Notification, error) {
	var payload listPayload
	if err := c.do(ctx, http.MethodGet, listPath, "fetch notifications", &payload); err != nil {
		return nil, err
	}
	items := make([]Notification, 0, len(payload.Notifications))
	for _, n := range payload.Notifications {
		items = append(items, n.toNotification())
	}
	return items, nil
}

// MarkRead marks one notification read. Marking an already-read notification succeeds.
func (c *Client) MarkRead(ctx context.Context, id ID) (Confirmation, error) {
	trimmed := strings.TrimSpace(string(id))
	if trimmed == "" {
		return Confirmation{}, pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}
	return c.mutate(ctx, fmt.Sprintf(markReadPath, url.PathEscape(trimmed)), "mark notification read")
}

// MarkAllRead marks every notification read.
func (c *Client) MarkAllRead(ctx context.Context) (Confirmation, error) {
	return c.mutate(ctx, markAllReadPath, "mark all notifications read")
}

func (c *Client) mutate(ctx context.Context, path, op string) (Confirmation, error) {
	var payload confirmationPayload
	if err := c.do(ctx, http.MethodPost, path, op, &payload); err != nil {
		return Confirmation{}, err
	}
	if payload.Success != nil && !*payload.Success {
		return Confirmation{}, pkgerrors.New(pkgerrors.CodeNetwork, op+": server reported failure")
	}
	return Confirmation{Success: true, Updated: payload.Updated}, nil
}

func (c *Client) do(ctx context.Context, method, path, op string, dest any) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "notification client not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, method, c.buildURL(path), nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "build "+op+" request")
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(requestedWithHdr, "XMLHttpRequest")
	httpReq.Header.Set(requestIDHeader, c.requestID())

	token, tokenErr := c.tokens.Token(ctx)
	switch {
	case tokenErr == nil:
		httpReq.Header.Set(CSRFHeader, token)
	case method != http.MethodGet:
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, tokenErr, op)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "execute "+op+" request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadSize))
		details := map[string]any{"status": resp.StatusCode}
		if apiErr, ok := decodeErrorEnvelope(msg); ok {
			details["server_code"] = apiErr.Code
		}
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), op+" request failed").
			WithDetails(details)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "read "+op+" response")
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		if method == http.MethodGet {
			return pkgerrors.New(pkgerrors.CodeParse, "decode "+op+" response: empty body")
		}
		return nil
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeParse, err, "decode "+op+" response")
	}
	if err := validate.Struct(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeParse, err, "validate "+op+" response")
	}
	return nil
}

func (c *Client) buildURL(path string) string {
	base := strings.TrimRight(c.baseURL.String(), "/")
	return base + "/" + strings.TrimLeft(path, "/")
}
