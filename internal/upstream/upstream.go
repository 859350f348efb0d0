// Package upstream carries gateway requests to the issuance backend, either
// over HTTP or by invoking the backend Lambda directly.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
)

// ErrInvalidBody is returned when an event body is not valid JSON
var ErrInvalidBody = errors.New("request body is not valid JSON")

// DefaultContentType is assumed when a request or reply does not declare one
const DefaultContentType = "application/json"

// Request is a backend call built from an agent event
type Request struct {
	Method  string
	Path    string
	Query   map[string]string
	Headers map[string]string
	Body    json.RawMessage
}

// Response is the backend reply
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Client calls the backend
type Client interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

// Policy bounds a backend call. MaxAttempts includes the first attempt.
type Policy struct {
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	MaxAttempts    int
}

// DefaultPolicy is used when the environment sets nothing
var DefaultPolicy = Policy{
	ConnectTimeout: 10 * time.Second,
	ReadTimeout:    10 * time.Second,
	MaxAttempts:    3,
}

// HTTPClient builds an HTTP client honouring the policy's connect and read
// timeouts independently.
func (p Policy) HTTPClient() *awshttp.BuildableClient {
	return awshttp.NewBuildableClient().
		WithTimeout(p.ConnectTimeout + p.ReadTimeout).
		WithDialerOptions(func(d *net.Dialer) {
			d.Timeout = p.ConnectTimeout
		}).
		WithTransportOptions(func(tr *http.Transport) {
			tr.TLSHandshakeTimeout = p.ConnectTimeout
			tr.ResponseHeaderTimeout = p.ReadTimeout
		})
}

func (p Policy) attempts() uint {
	if p.MaxAttempts < 1 {
		return 1
	}
	return uint(p.MaxAttempts)
}

// ContentType reduces a Content-Type header to its media type
func ContentType(header string) string {
	mediaType, _, _ := strings.Cut(header, ";")
	mediaType = strings.TrimSpace(mediaType)
	if mediaType == "" {
		return DefaultContentType
	}
	return mediaType
}

// EncodeBody renders an event body for the wire. A JSON string is sent as its
// text, anything else as JSON. A nil result means no body.
func EncodeBody(raw json.RawMessage) ([]byte, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal([]byte(trimmed), &s); err != nil {
			return nil, err
		}
		return []byte(s), nil
	}
	if !json.Valid([]byte(trimmed)) {
		return nil, ErrInvalidBody
	}
	return []byte(trimmed), nil
}

// headerValue finds a header case-insensitively
func headerValue(headers map[string]string, name string) (string, bool) {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}
