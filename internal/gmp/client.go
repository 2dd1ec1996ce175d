package gmp

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	commandPath    = "/gmp"
	defaultTimeout = 30 * time.Second
	maxBodySize    = 16 << 20
)

type Options struct {
	BaseURL            string
	Username           string
	Password           string
	Timeout            time.Duration
	InsecureSkipVerify bool
	HTTPClient         *http.Client
}

// Client talks to the manager's legacy command endpoint. Requests carry a
// session token obtained by Login; a 401 triggers one re-login when
// credentials are known.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("server url is empty")
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url must use http or https: %q", base)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if opts.InsecureSkipVerify {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
		}
		httpClient = &http.Client{Timeout: timeout, Transport: transport}
	}

	return &Client{
		baseURL:    base,
		username:   opts.Username,
		password:   opts.Password,
		httpClient: httpClient,
	}, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken installs a token from an existing session.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Login(ctx context.Context) error {
	slog.Debug("gmp login", "user", c.username)

	form := url.Values{}
	form.Set("cmd", "login")
	form.Set("login", c.username)
	form.Set("password", c.password)

	body, err := c.send(ctx, http.MethodPost, "login", form)
	if err != nil {
		slog.Error("gmp login failed", "error", err)
		return err
	}
	env, err := parseEnvelope(body)
	if err != nil {
		return err
	}
	if env.Token == "" {
		return fmt.Errorf("login response carried no token")
	}
	c.SetToken(env.Token)
	slog.Info("gmp session established", "user", c.username)
	return nil
}

// Logout drops the local token.
func (c *Client) Logout() {
	c.SetToken("")
}

func (c *Client) get(ctx context.Context, cmd string, params url.Values) ([]byte, error) {
	return c.command(ctx, http.MethodGet, cmd, params)
}

func (c *Client) post(ctx context.Context, cmd string, params url.Values) ([]byte, error) {
	return c.command(ctx, http.MethodPost, cmd, params)
}

func (c *Client) command(ctx context.Context, method, cmd string, params url.Values) ([]byte, error) {
	body, err := c.authed(ctx, method, cmd, params)
	if err == nil || !errors.Is(err, ErrUnauthorized) || c.username == "" {
		return body, err
	}

	slog.Warn("gmp session expired, logging in again", "cmd", cmd)
	if loginErr := c.Login(ctx); loginErr != nil {
		return nil, err
	}
	return c.authed(ctx, method, cmd, params)
}

func (c *Client) authed(ctx context.Context, method, cmd string, params url.Values) ([]byte, error) {
	token := c.Token()
	if token == "" && c.username == "" {
		return nil, ErrNoToken
	}
	form := url.Values{}
	for k, v := range params {
		form[k] = v
	}
	form.Set("cmd", cmd)
	form.Set("token", token)
	return c.send(ctx, method, cmd, form)
}

func (c *Client) send(ctx context.Context, method, cmd string, form url.Values) ([]byte, error) {
	slog.Debug("gmp call", "method", method, "cmd", cmd)

	endpoint := c.baseURL + commandPath
	var req *http.Request
	var err error
	if method == http.MethodGet {
		req, err = http.NewRequestWithContext(ctx, method, endpoint+"?"+form.Encode(), nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, endpoint, strings.NewReader(form.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return nil, fmt.Errorf("gmp %s: build request: %w", cmd, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("gmp call failed", "cmd", cmd, "error", err)
		return nil, fmt.Errorf("gmp %s: %w", cmd, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("gmp %s: read body: %w", cmd, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Command: cmd, Message: errorMessage(body)}
		slog.Error("gmp call rejected", "cmd", cmd, "status", resp.StatusCode, "message", apiErr.Message)
		return nil, apiErr
	}
	return body, nil
}

func actionResponse(cmd string, body []byte) (*Response, error) {
	env, err := parseEnvelope(body)
	if err != nil {
		return nil, fmt.Errorf("gmp %s: %w", cmd, err)
	}
	if env.ActionResult == nil {
		return nil, fmt.Errorf("gmp %s: response carried no action_result", cmd)
	}
	return &Response{
		Action:  env.ActionResult.Action,
		ID:      env.ActionResult.ID,
		Message: env.ActionResult.Message,
	}, nil
}
