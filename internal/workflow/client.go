// Package workflow is the thin client for the remote no-code workflow
// backend that persists campaigns, shops, and malls. The console attaches
// the caller's session token as a bearer credential and pre-filters
// requested tenant IDs with the access resolver; response bodies are passed
// through opaque.
package workflow

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mallops-console/internal/access"
	profiledomain "mallops-console/internal/profile/domain"
)

// Client calls the workflow backend's resource endpoints.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient returns a Client for the given base URL. timeout bounds each
// request; zero means 30s.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
	}
}

// FetchList fetches the named resource list scoped to the given IDs, with
// the session token as the bearer credential. The caller is responsible for
// passing only IDs it may access; FetchShops and FetchMalls do that
// automatically.
func (c *Client) FetchList(ctx context.Context, token, resource string, ids []int) ([]byte, error) {
	u := c.baseURL + "/" + url.PathEscape(resource)
	if len(ids) > 0 {
		u += "?ids=" + joinIDs(ids)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req, token)
}

// FetchShops fetches the shops visible to the profile: the requested IDs are
// pre-filtered against the access resolver before the request is built, so
// the console never even asks for shops outside the caller's scope.
func (c *Client) FetchShops(ctx context.Context, token string, u access.Universe, p *profiledomain.Profile, requested []int) ([]byte, error) {
	allowed := access.AccessibleShops(u, p)
	ids := allowed
	if len(requested) > 0 {
		ids = access.Filter(allowed, requested)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no accessible shops in request")
	}
	return c.FetchList(ctx, token, "shops", ids)
}

// FetchMalls is FetchShops for malls.
func (c *Client) FetchMalls(ctx context.Context, token string, u access.Universe, p *profiledomain.Profile, requested []int) ([]byte, error) {
	allowed := access.AccessibleMalls(u, p)
	ids := allowed
	if len(requested) > 0 {
		ids = access.Filter(allowed, requested)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no accessible malls in request")
	}
	return c.FetchList(ctx, token, "malls", ids)
}

// SubmitMutation posts an authenticated mutation payload to the named
// resource endpoint and returns the raw response body.
func (c *Client) SubmitMutation(ctx context.Context, token, resource string, payload []byte) ([]byte, error) {
	u := c.baseURL + "/" + url.PathEscape(resource)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, token)
}

func (c *Client) do(req *http.Request, token string) ([]byte, error) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("workflow backend: %s %s: status %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	return body, nil
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
