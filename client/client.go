package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/openleadr/openleadr-go/wire"
)

// Credentials are the client id and secret used for the RFC 6749 client
// credentials grant against the VTN's token endpoint.
type Credentials struct {
	ClientID     string
	ClientSecret string
	// RefreshMargin is how long before expiry the token is refreshed.
	// Compensates clock skew and network latency. Default 60s.
	RefreshMargin time.Duration
	// DefaultExpiresIn is assumed when the token response carries no
	// expires_in. Default one hour.
	DefaultExpiresIn time.Duration
}

// NewCredentials builds credentials with the default refresh margin and
// expiry assumption.
func NewCredentials(clientID, clientSecret string) *Credentials {
	return &Credentials{
		ClientID:         clientID,
		ClientSecret:     clientSecret,
		RefreshMargin:    time.Minute,
		DefaultExpiresIn: time.Hour,
	}
}

// authToken is one cached bearer token.
type authToken struct {
	token     string
	expiresIn time.Duration
	since     time.Time
}

// Client talks to one VTN. It is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	auth       *Credentials
	pageSize   int

	tokenMu sync.RWMutex
	token   *authToken
}

// DefaultPageSize used by the *List convenience methods.
const DefaultPageSize = 50

// New creates a client for the VTN at baseURL. Pass nil credentials to skip
// authentication entirely (e.g. against a test server).
func New(baseURL string, auth *Credentials) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid VTN URL %q: %w", baseURL, err)
	}
	if !strings.HasSuffix(parsed.Path, "/") {
		parsed.Path += "/"
	}
	return &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		auth:       auth,
		pageSize:   DefaultPageSize,
	}, nil
}

// WithHTTPClient swaps the underlying HTTP client, e.g. to configure
// proxies or timeouts.
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	c.httpClient = httpClient
	return c
}

// ensureAuth makes sure a valid token is cached, refreshing when the
// remaining lifetime is inside the refresh margin. The refresh HTTP call
// runs outside the lock; only the swap happens under it.
func (c *Client) ensureAuth(ctx context.Context) error {
	if c.auth == nil {
		return nil
	}

	c.tokenMu.RLock()
	token := c.token
	c.tokenMu.RUnlock()
	if token != nil && time.Since(token.since) < token.expiresIn-c.auth.RefreshMargin {
		return nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	tokenURL := c.baseURL.JoinPath("auth/token")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL.String(),
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.auth.ClientID, c.auth.ClientSecret)

	since := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var oauthErr wire.OAuthError
		if err := json.Unmarshal(body, &oauthErr); err != nil {
			return fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
		}
		return &AuthError{OAuth: oauthErr}
	}

	var result wire.TokenResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("could not parse token response: %w", err)
	}
	if !strings.EqualFold(result.TokenType, "bearer") {
		return ErrTokenNotBearer
	}

	expiresIn := c.auth.DefaultExpiresIn
	if result.ExpiresIn > 0 {
		expiresIn = time.Duration(result.ExpiresIn) * time.Second
	}

	c.tokenMu.Lock()
	c.token = &authToken{token: result.AccessToken, expiresIn: expiresIn, since: since}
	c.tokenMu.Unlock()

	log.Debug().Str("client_id", c.auth.ClientID).Msg("access token refreshed")
	return nil
}

// request executes one call and decodes the JSON response into out. Non-2xx
// responses are decoded as problem details and surfaced as *ProblemError.
func (c *Client) request(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if err := c.ensureAuth(ctx); err != nil {
		return err
	}

	target := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.tokenMu.RLock()
	if c.token != nil {
		req.Header.Set("Authorization", "Bearer "+c.token.token)
	}
	c.tokenMu.RUnlock()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var problem wire.Problem
		if err := json.Unmarshal(raw, &problem); err != nil {
			return fmt.Errorf("VTN returned status %d", resp.StatusCode)
		}
		return &ProblemError{Problem: problem}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.request(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.request(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.request(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) delete(ctx context.Context, path string, out any) error {
	return c.request(ctx, http.MethodDelete, path, nil, nil, out)
}

// Pagination selects one page of a list query.
type Pagination struct {
	Skip  int
	Limit int
}

func (p Pagination) query(q url.Values) url.Values {
	if q == nil {
		q = url.Values{}
	}
	q.Set("skip", strconv.Itoa(p.Skip))
	q.Set("limit", strconv.Itoa(p.Limit))
	return q
}

// iteratePages drains all pages of a list query in order. It stops once a
// page comes back shorter than the page size, which costs one extra empty
// request when the total is an exact multiple of the page size.
func iteratePages[T any](pageSize int, page func(skip, limit int) ([]T, error)) ([]T, error) {
	var items []T
	for pageNum := 0; ; pageNum++ {
		received, err := page(pageNum*pageSize, pageSize)
		if err != nil {
			return nil, err
		}
		items = append(items, received...)
		if len(received) < pageSize {
			return items, nil
		}
	}
}
