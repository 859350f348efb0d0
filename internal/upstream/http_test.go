package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// mockDoer implements Doer for testing
type mockDoer struct {
	doFunc func(req *http.Request) (*http.Response, error)
	calls  int
}

func (m *mockDoer) Do(req *http.Request) (*http.Response, error) {
	m.calls++
	return m.doFunc(req)
}

func noWait() backoff.BackOff {
	return &backoff.ZeroBackOff{}
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json; charset=utf-8"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestHTTPClient_ForwardsRequest(t *testing.T) {
	var (
		gotMethod, gotPath, gotQuery, gotContentType, gotAPIKey, gotTrace string
		gotBody                                                           []byte
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("canal")
		gotContentType = r.Header.Get("Content-Type")
		gotAPIKey = r.Header.Get("x-api-key")
		gotTrace = r.Header.Get("X-Trace")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"descricao_etapa":"Em análise"}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL+"/", Policy{
		ConnectTimeout: time.Second,
		ReadTimeout:    time.Second,
		MaxAttempts:    3,
	}, WithAPIKey("secret-key"))

	resp, err := client.Do(context.Background(), Request{
		Method:  "post",
		Path:    "/exibir-dados",
		Query:   map[string]string{"canal": "agente"},
		Headers: map[string]string{"X-Trace": "abc"},
		Body:    json.RawMessage(`{"cpf":"12345678901"}`),
	})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("expected POST, got %s", gotMethod)
	}
	if gotPath != "/exibir-dados" {
		t.Errorf("expected path /exibir-dados, got %s", gotPath)
	}
	if gotQuery != "agente" {
		t.Errorf("expected query canal=agente, got %q", gotQuery)
	}
	if gotContentType != "application/json" {
		t.Errorf("expected default Content-Type application/json, got %q", gotContentType)
	}
	if gotAPIKey != "secret-key" {
		t.Errorf("expected x-api-key header, got %q", gotAPIKey)
	}
	if gotTrace != "abc" {
		t.Errorf("expected forwarded X-Trace header, got %q", gotTrace)
	}
	if string(gotBody) != `{"cpf":"12345678901"}` {
		t.Errorf("unexpected body %s", gotBody)
	}

	if resp.StatusCode != 200 {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
	if resp.ContentType != "application/json" {
		t.Errorf("expected content type application/json, got %q", resp.ContentType)
	}
	if string(resp.Body) != `{"descricao_etapa":"Em análise"}` {
		t.Errorf("unexpected response body %s", resp.Body)
	}
}

func TestHTTPClient_KeepsCallerContentType(t *testing.T) {
	var gotContentType string
	doer := &mockDoer{doFunc: func(req *http.Request) (*http.Response, error) {
		gotContentType = req.Header.Get("Content-Type")
		return jsonResponse(200, `{}`), nil
	}}

	client := NewHTTPClient("https://api.example.com", DefaultPolicy, WithDoer(doer), WithBackOff(noWait))
	_, err := client.Do(context.Background(), Request{
		Method:  "POST",
		Path:    "/exibir-dados",
		Headers: map[string]string{"content-type": "text/plain"},
		Body:    json.RawMessage(`"raw text"`),
	})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if gotContentType != "text/plain" {
		t.Errorf("expected caller Content-Type to be kept, got %q", gotContentType)
	}
}

func TestHTTPClient_RetriesTransportFailures(t *testing.T) {
	var bodies []string
	doer := &mockDoer{}
	doer.doFunc = func(req *http.Request) (*http.Response, error) {
		b, _ := io.ReadAll(req.Body)
		bodies = append(bodies, string(b))
		if doer.calls < 3 {
			return nil, errors.New("connection reset by peer")
		}
		return jsonResponse(200, `{"ok":true}`), nil
	}

	client := NewHTTPClient("https://api.example.com", DefaultPolicy, WithDoer(doer), WithBackOff(noWait))
	resp, err := client.Do(context.Background(), Request{
		Method: "POST",
		Path:   "/exibir-dados",
		Body:   json.RawMessage(`{"cpf":"12345678901"}`),
	})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
	if doer.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", doer.calls)
	}
	for i, b := range bodies {
		if b != `{"cpf":"12345678901"}` {
			t.Errorf("attempt %d sent body %q", i+1, b)
		}
	}
}

func TestHTTPClient_GivesUpAfterMaxAttempts(t *testing.T) {
	doer := &mockDoer{doFunc: func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("dial tcp: connection refused")
	}}

	client := NewHTTPClient("https://api.example.com", Policy{MaxAttempts: 2}, WithDoer(doer), WithBackOff(noWait))
	_, err := client.Do(context.Background(), Request{Method: "POST", Path: "/exibir-dados"})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("expected transport error in message, got %v", err)
	}
	if doer.calls != 2 {
		t.Errorf("expected 2 attempts, got %d", doer.calls)
	}
}

func TestHTTPClient_DoesNotRetryHTTPErrors(t *testing.T) {
	doer := &mockDoer{doFunc: func(req *http.Request) (*http.Response, error) {
		return jsonResponse(500, `{"message":"boom"}`), nil
	}}

	client := NewHTTPClient("https://api.example.com", DefaultPolicy, WithDoer(doer), WithBackOff(noWait))
	resp, err := client.Do(context.Background(), Request{Method: "POST", Path: "/exibir-dados"})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if resp.StatusCode != 500 {
		t.Errorf("expected status 500 passed through, got %d", resp.StatusCode)
	}
	if doer.calls != 1 {
		t.Errorf("expected a single attempt, got %d", doer.calls)
	}
}

func TestHTTPClient_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	doer := &mockDoer{doFunc: func(req *http.Request) (*http.Response, error) {
		cancel()
		return nil, context.Canceled
	}}

	client := NewHTTPClient("https://api.example.com", DefaultPolicy, WithDoer(doer), WithBackOff(noWait))
	_, err := client.Do(ctx, Request{Method: "POST", Path: "/exibir-dados"})
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if doer.calls != 1 {
		t.Errorf("expected no retry after cancellation, got %d attempts", doer.calls)
	}
}

func TestHTTPClient_InvalidBody(t *testing.T) {
	doer := &mockDoer{doFunc: func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{}`), nil
	}}

	client := NewHTTPClient("https://api.example.com", DefaultPolicy, WithDoer(doer))
	_, err := client.Do(context.Background(), Request{Path: "/x", Body: json.RawMessage(`{bad`)})
	if !errors.Is(err, ErrInvalidBody) {
		t.Errorf("expected ErrInvalidBody, got %v", err)
	}
	if doer.calls != 0 {
		t.Errorf("expected no call, got %d", doer.calls)
	}
}

func TestHTTPClient_ReadTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, Policy{
		ConnectTimeout: time.Second,
		ReadTimeout:    20 * time.Millisecond,
		MaxAttempts:    1,
	})

	_, err := client.Do(context.Background(), Request{Method: "POST", Path: "/exibir-dados"})
	if err == nil {
		t.Fatal("expected timeout error")
	}
}
