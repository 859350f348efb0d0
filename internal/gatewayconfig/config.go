// Package gatewayconfig loads the agent gateway's configuration from the
// environment, SSM Parameter Store and Secrets Manager.
package gatewayconfig

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jarrod-lowe/cnh-agent-actions/internal/upstream"
)

// ErrNotConfigured means no upstream was configured
var ErrNotConfigured = errors.New("API_BASE não configurado")

// Config holds gateway configuration
type Config struct {
	APIBase             string
	APIBaseParameter    string
	BackendFunctionName string
	APIKeySecretARN     string
	MetricNamespace     string
	EventQueueURL       string
	Policy              upstream.Policy
}

// FromEnv reads the configuration with getenv, typically os.Getenv
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		APIBase:             strings.TrimRight(strings.TrimSpace(getenv("API_BASE")), "/"),
		APIBaseParameter:    strings.TrimSpace(getenv("API_BASE_PARAMETER")),
		BackendFunctionName: strings.TrimSpace(getenv("BACKEND_FUNCTION_NAME")),
		APIKeySecretARN:     strings.TrimSpace(getenv("UPSTREAM_API_KEY_SECRET_ARN")),
		MetricNamespace:     strings.TrimSpace(getenv("METRIC_NAMESPACE")),
		EventQueueURL:       strings.TrimSpace(getenv("EVENT_QUEUE_URL")),
		Policy:              upstream.DefaultPolicy,
	}

	readTimeout, err := seconds(getenv("HTTP_TIMEOUT"), upstream.DefaultPolicy.ReadTimeout)
	if err != nil {
		return Config{}, fmt.Errorf("HTTP_TIMEOUT: %w", err)
	}
	connectTimeout, err := seconds(getenv("HTTP_CONNECT_TIMEOUT"), readTimeout)
	if err != nil {
		return Config{}, fmt.Errorf("HTTP_CONNECT_TIMEOUT: %w", err)
	}
	cfg.Policy.ReadTimeout = readTimeout
	cfg.Policy.ConnectTimeout = connectTimeout

	if s := strings.TrimSpace(getenv("HTTP_MAX_ATTEMPTS")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("HTTP_MAX_ATTEMPTS: must be a positive integer, got %q", s)
		}
		cfg.Policy.MaxAttempts = n
	}

	return cfg, nil
}

// Configured reports whether any upstream is available
func (c Config) Configured() bool {
	return c.APIBase != "" || c.APIBaseParameter != "" || c.BackendFunctionName != ""
}

// UsesLambda reports whether the backend is invoked directly
func (c Config) UsesLambda() bool {
	return c.BackendFunctionName != ""
}

// ResolveAPIBase fills APIBase from Parameter Store when only the parameter
// name was given
func (c *Config) ResolveAPIBase(ctx context.Context, params ParameterReader) error {
	if c.APIBase != "" || c.APIBaseParameter == "" {
		return nil
	}
	value, err := params.GetParameter(ctx, c.APIBaseParameter)
	if err != nil {
		return fmt.Errorf("failed to read API base parameter %s: %w", c.APIBaseParameter, err)
	}
	c.APIBase = strings.TrimRight(strings.TrimSpace(value), "/")
	if c.APIBase == "" {
		return fmt.Errorf("API base parameter %s is empty", c.APIBaseParameter)
	}
	return nil
}

// APIKey reads the upstream API key from secrets. It returns an empty key
// when no secret is configured.
func (c Config) APIKey(ctx context.Context, secrets SecretReader) (string, error) {
	if c.APIKeySecretARN == "" {
		return "", nil
	}
	key, err := secrets.GetSecret(ctx, c.APIKeySecretARN)
	if err != nil {
		return "", fmt.Errorf("failed to read API key secret: %w", err)
	}
	return strings.TrimSpace(key), nil
}

func seconds(s string, fallback time.Duration) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("must be a positive number of seconds, got %q", s)
	}
	return time.Duration(f * float64(time.Second)), nil
}
