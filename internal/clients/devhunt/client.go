package devhunt

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/devhunt/devhunt-agent/internal/metrics"
	"github.com/devhunt/devhunt-agent/internal/store"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const DefaultTimeout = 20 * time.Second

const (
	tokenPath        = "/auth/token/"
	tokenRefreshPath = "/auth/token/refresh/"
	oauthPath        = "/auth/oauth/"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Tokens is the pair returned by the token endpoints. Refresh may be empty when the
// server does not rotate refresh tokens.
type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type Client struct {
	baseURL     string
	credentials store.KeyValueStore
	httpClient  HTTPClient
	rateLimiter *rate.Limiter
	timeout     time.Duration
}

func NewClient(baseURL string, credentials store.KeyValueStore) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		credentials: credentials,
		httpClient:  &http.Client{},
		timeout:     DefaultTimeout,
	}
}

func (c *Client) SetHTTPClient(client HTTPClient) {
	c.httpClient = client
}

func (c *Client) SetRateLimit(maxRequestsPerSecond float32) {
	if maxRequestsPerSecond <= 0 {
		c.rateLimiter = nil
		return
	}
	c.rateLimiter = rate.NewLimiter(rate.Limit(maxRequestsPerSecond), 1)
}

func (c *Client) SetTimeout(timeout time.Duration) {
	c.timeout = timeout
}

func (c *Client) List(ctx context.Context, endpoint string) ([]json.RawMessage, error) {
	page, err := c.ListPage(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}

func (c *Client) ListPage(ctx context.Context, endpoint string, params url.Values) (Page, error) {

	target := endpoint
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	body, err := c.sendRequest(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Page{}, err
	}

	return decodeList(body)
}

func (c *Client) Create(ctx context.Context, endpoint string, fields url.Values) (json.RawMessage, error) {
	return c.sendRequest(ctx, http.MethodPost, endpoint, fields)
}

func (c *Client) Update(ctx context.Context, endpoint string, id int, fields url.Values) (json.RawMessage, error) {
	return c.sendRequest(ctx, http.MethodPatch, itemPath(endpoint, id), fields)
}

func (c *Client) Delete(ctx context.Context, endpoint string, id int) error {
	_, err := c.sendRequest(ctx, http.MethodDelete, itemPath(endpoint, id), nil)
	return err
}

func (c *Client) ObtainToken(ctx context.Context, username, password string) (Tokens, error) {
	return c.requestTokens(ctx, tokenPath, url.Values{"username": {username}, "password": {password}})
}

func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (Tokens, error) {
	return c.requestTokens(ctx, tokenRefreshPath, url.Values{"refresh": {refreshToken}})
}

func (c *Client) ExchangeOAuthCode(ctx context.Context, provider, code string) (Tokens, error) {
	return c.requestTokens(ctx, oauthPath+url.PathEscape(provider)+"/", url.Values{"code": {code}})
}

func (c *Client) requestTokens(ctx context.Context, path string, form url.Values) (Tokens, error) {

	body, err := c.sendRequest(ctx, http.MethodPost, path, form)
	if err != nil {
		return Tokens{}, err
	}

	var tokens Tokens
	if err = json.Unmarshal(body, &tokens); err != nil {
		return Tokens{}, fmt.Errorf("error decoding JSON response: %v", err)
	}
	if tokens.Access == "" {
		return Tokens{}, errors.New("token response has no access token")
	}
	return tokens, nil
}

func itemPath(endpoint string, id int) string {
	return endpoint + strconv.Itoa(id) + "/"
}

func (c *Client) sendRequest(ctx context.Context, method string, path string, form url.Values) ([]byte, error) {

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %v", err)
	}

	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Accept", "application/json")

	if err = c.authorize(ctx, req); err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.APIRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, errors.Wrapf(err, "error sending %s %s", method, path)
	}
	defer resp.Body.Close()

	return c.handleResponse(resp)
}

func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	if c.credentials == nil {
		return nil
	}

	token, found, err := c.credentials.Get(ctx, store.KeyAccessToken)
	if err != nil {
		return errors.Wrap(err, "error reading access token")
	}
	if found && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return nil
}

func (c *Client) handleResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %v", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, errors.Wrapf(ErrUnauthorized, "status %v, body: %v", resp.StatusCode, string(body))
	default:
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
}
