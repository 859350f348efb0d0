package upstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Doer sends an HTTP request
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPClient calls the backend over HTTP, retrying transport failures
type HTTPClient struct {
	baseURL string
	apiKey  string
	policy  Policy
	doer    Doer
	backoff func() backoff.BackOff
}

// HTTPOption configures an HTTPClient
type HTTPOption func(*HTTPClient)

// WithAPIKey sends key in the x-api-key header
func WithAPIKey(key string) HTTPOption {
	return func(c *HTTPClient) {
		c.apiKey = key
	}
}

// WithDoer replaces the HTTP client built from the policy
func WithDoer(d Doer) HTTPOption {
	return func(c *HTTPClient) {
		c.doer = d
	}
}

// WithBackOff replaces the retry schedule
func WithBackOff(factory func() backoff.BackOff) HTTPOption {
	return func(c *HTTPClient) {
		c.backoff = factory
	}
}

// NewHTTPClient creates a client for the backend at baseURL
func NewHTTPClient(baseURL string, policy Policy, opts ...HTTPOption) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		policy:  policy,
		backoff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 200 * time.Millisecond
			b.MaxInterval = 2 * time.Second
			return b
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.doer == nil {
		c.doer = policy.HTTPClient()
	}
	return c
}

// Do sends req to the backend. Only transport failures are retried; any HTTP
// reply, whatever its status, is returned as is.
func (c *HTTPClient) Do(ctx context.Context, req Request) (*Response, error) {
	body, err := EncodeBody(req.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode body: %w", err)
	}

	target, err := c.url(req.Path, req.Query)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream url: %w", err)
	}

	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodPost
	}

	attempt := func() (*Response, error) {
		httpReq, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		for k, v := range req.Headers {
			httpReq.Header.Set(k, v)
		}
		if httpReq.Header.Get("Content-Type") == "" {
			httpReq.Header.Set("Content-Type", DefaultContentType)
		}
		if c.apiKey != "" {
			httpReq.Header.Set("x-api-key", c.apiKey)
		}

		resp, err := c.doer.Do(httpReq)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		return &Response{
			StatusCode:  resp.StatusCode,
			ContentType: ContentType(resp.Header.Get("Content-Type")),
			Body:        data,
		}, nil
	}

	resp, err := backoff.Retry(ctx, attempt,
		backoff.WithBackOff(c.backoff()),
		backoff.WithMaxTries(c.policy.attempts()),
	)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, target, err)
	}
	return resp, nil
}

func (c *HTTPClient) url(path string, query map[string]string) (string, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return "", err
	}
	if len(query) > 0 {
		q := u.Query()
		for k, v := range query {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
