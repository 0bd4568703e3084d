package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"jordanella.com/animix-go/internal/game"
	"jordanella.com/animix-go/internal/logging"
	"jordanella.com/animix-go/internal/session"
)

const (
	defaultTimeout = 30 * time.Second
	gameOrigin     = "https://tele-game.animix.tech"
)

// StatusError is returned for non-2xx responses
type StatusError struct {
	Op   string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.Code, e.Body)
}

// Options configures one account's HTTP client
type Options struct {
	BaseURL      string
	InitData     string
	UserAgent    string
	Proxy        string        // http, https, socks5 or bare host:port
	Timeout      time.Duration // per request, 30s when zero
	FailurePause time.Duration // taken after every failed request
	Logger       *logging.ContextLogger
}

// Client performs game operations over HTTP for a single account. It
// implements game.Requester.
type Client struct {
	baseURL      string
	initData     string
	headers      http.Header
	http         *http.Client
	failurePause time.Duration
	log          *logging.ContextLogger
}

// NewClient builds a client. The proxy, when set, routes every request.
func NewClient(opts Options) (*Client, error) {
	httpClient, err := NewHTTPClient(opts.Proxy, opts.Timeout)
	if err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	return &Client{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		initData:     opts.InitData,
		headers:      browserHeaders(opts.UserAgent),
		http:         httpClient,
		failurePause: opts.FailurePause,
		log:          log,
	}, nil
}

// HTTPClient exposes the underlying client so the identity check uses the
// same route as game calls
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

func browserHeaders(userAgent string) http.Header {
	platform := session.DetectPlatform(userAgent)
	h := http.Header{}
	h.Set("Accept", "application/json, text/plain, */*")
	h.Set("Accept-Language", "en-US,en;q=0.9")
	h.Set("Content-Type", "application/json")
	h.Set("Origin", gameOrigin)
	h.Set("Referer", gameOrigin+"/")
	h.Set("Sec-Ch-Ua", session.SecCHUA(platform))
	h.Set("Sec-Ch-Ua-Mobile", "?1")
	h.Set("Sec-Ch-Ua-Platform", platform)
	h.Set("Sec-Fetch-Dest", "empty")
	h.Set("Sec-Fetch-Mode", "cors")
	h.Set("Sec-Fetch-Site", "same-site")
	h.Set("Cache-Control", "no-cache")
	if userAgent != "" {
		h.Set("User-Agent", userAgent)
	}
	return h
}

type envelope struct {
	Result json.RawMessage `json:"result"`
}

// Request executes op and returns the unwrapped result field. A failed call
// is logged, followed by the failure pause, and returned without retrying.
func (c *Client) Request(ctx context.Context, op game.Operation, body any) (json.RawMessage, error) {
	result, err := c.do(ctx, op, body)
	if err != nil {
		c.log.Warn(fmt.Sprintf("Request failed: %s%s | %v", c.baseURL, op.Path, err))
		sleep(ctx, c.failurePause)
		return nil, err
	}
	return result, nil
}

func (c *Client) do(ctx context.Context, op game.Operation, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode body: %w", op.Name, err)
		}
		reader = bytes.NewReader(payload)
	} else if op.Method == http.MethodPost {
		reader = strings.NewReader("{}")
	}

	req, err := http.NewRequestWithContext(ctx, op.Method, c.baseURL+op.Path, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op.Name, err)
	}
	req.Header = c.headers.Clone()
	req.Header.Set("tg-init-data", c.initData)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op.Name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", op.Name, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Op: op.Name, Code: resp.StatusCode, Body: truncate(string(data), 200)}
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%s: decode envelope: %w", op.Name, err)
	}
	return env.Result, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
