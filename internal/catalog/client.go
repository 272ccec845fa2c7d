package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"logonorm/internal/services"
)

const (
	component          = "catalog"
	defaultHTTPTimeout = 30 * time.Second
	// maxPages bounds pagination against a server that never stops issuing cursors.
	maxPages = 500
)

// Client fetches teams and leagues from the SportsGameOdds v2 API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRequestsPerMinute paces page requests. Zero disables pacing.
func WithRequestsPerMinute(rpm int) Option {
	return func(c *Client) {
		if rpm > 0 {
			c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1)
		} else {
			c.limiter = nil
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// New creates a catalog client.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, component, "new", "api key required", nil)
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, component, "new", "base url required", nil)
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type page[T any] struct {
	Success    *bool  `json:"success"`
	Error      string `json:"error"`
	Data       []T    `json:"data"`
	NextCursor string `json:"nextCursor"`
}

// FetchTeams returns every team for a sport. On failure it returns the
// teams gathered from earlier pages together with the error.
func (c *Client) FetchTeams(ctx context.Context, sportID string) ([]Team, error) {
	teams, err := fetchAll[Team](ctx, c, "teams", sportID)
	for i := range teams {
		if teams[i].SportID == "" {
			teams[i].SportID = sportID
		}
	}
	return teams, err
}

// FetchLeagues returns every league for a sport. Partial results accompany
// any error, as with FetchTeams.
func (c *Client) FetchLeagues(ctx context.Context, sportID string) ([]League, error) {
	leagues, err := fetchAll[League](ctx, c, "leagues", sportID)
	for i := range leagues {
		if leagues[i].SportID == "" {
			leagues[i].SportID = sportID
		}
	}
	return leagues, err
}

// Ping fetches a single league page to confirm credentials and reachability.
func (c *Client) Ping(ctx context.Context, sportID string) error {
	_, err := fetchPage[League](ctx, c, "leagues", sportID, "")
	return err
}

func fetchAll[T any](ctx context.Context, c *Client, resource, sportID string) ([]T, error) {
	var (
		out    []T
		cursor string
		seen   = map[string]struct{}{}
	)
	for range maxPages {
		p, err := fetchPage[T](ctx, c, resource, sportID, cursor)
		if err != nil {
			return out, err
		}
		out = append(out, p.Data...)
		next := strings.TrimSpace(p.NextCursor)
		if next == "" {
			return out, nil
		}
		if _, dup := seen[next]; dup {
			return out, nil
		}
		seen[next] = struct{}{}
		cursor = next
	}
	return out, nil
}

func fetchPage[T any](ctx context.Context, c *Client, resource, sportID, cursor string) (page[T], error) {
	var p page[T]
	op := "fetch " + resource
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return p, services.Wrap(services.ErrTransport, component, op, "rate limiter", err)
		}
	}

	params := url.Values{}
	params.Set("sportID", sportID)
	if cursor != "" {
		params.Set("cursor", cursor)
	}
	endpoint := c.baseURL + "/" + resource + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return p, services.Wrap(services.ErrTransport, component, op, "build request", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return p, services.Wrap(services.ErrTransport, component, op, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return p, services.Wrap(services.ErrTransport, component, op, "read body", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("http %d: %s", resp.StatusCode, truncate(strings.TrimSpace(string(body)), 200))
		return p, services.Wrap(services.ErrTransport, component, op, msg, nil)
	}
	if err := json.Unmarshal(body, &p); err != nil {
		return p, services.Wrap(services.ErrMalformed, component, op, "decode page", err)
	}
	if p.Success != nil && !*p.Success {
		return p, services.Wrap(services.ErrTransport, component, op, "api reported failure: "+p.Error, nil)
	}
	return p, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
