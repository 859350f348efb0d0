package main

import (
	"context"
	"log/slog"
	"maps"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/jarrod-lowe/cnh-agent-actions/internal/envelope"
	"github.com/jarrod-lowe/cnh-agent-actions/internal/events"
	"github.com/jarrod-lowe/cnh-agent-actions/internal/gatewayconfig"
	"github.com/jarrod-lowe/cnh-agent-actions/internal/metrics"
	"github.com/jarrod-lowe/cnh-agent-actions/internal/operation"
	"github.com/jarrod-lowe/cnh-agent-actions/internal/upstream"
	"github.com/jarrod-lowe/cnh-agent-actions/pkg/actioncontract"
	"github.com/jarrod-lowe/jmap-service-libs/awsinit"
	"github.com/jarrod-lowe/jmap-service-libs/logging"
	"github.com/jarrod-lowe/jmap-service-libs/tracing"
	"go.opentelemetry.io/otel/attribute"
)

var logger = logging.New()

// EventPublisher publishes domain events
type EventPublisher interface {
	Publish(ctx context.Context, payload actioncontract.EventPayload) error
}

// Dependencies for handler (injectable for testing)
type Dependencies struct {
	Upstream upstream.Client
	Metrics  metrics.Publisher
	Events   EventPublisher
	Now      func() time.Time
}

var deps *Dependencies

// handler proxies an agent action group call to the backend and wraps the
// reply in the agent envelope
func handler(ctx context.Context, event actioncontract.ActionGroupEvent) (actioncontract.ActionGroupResponse, error) {
	ctx, span := tracing.StartHandlerSpan(ctx, "AgentGatewayHandler",
		tracing.Function("agent-gateway"),
		tracing.RequestID(event.SessionID),
	)
	defer span.End()

	op := operation.Guess(event.OperationID, event.ResolvedPath())
	path := event.ResolvedPath()
	method := strings.ToUpper(event.ResolvedMethod())
	span.SetAttributes(attribute.String("operation", op.String()))

	if deps.Upstream == nil {
		logger.ErrorContext(ctx, "No upstream configured",
			slog.String("session_id", event.SessionID),
			slog.String("operation", op.String()),
		)
		return envelope.ActionError(event, http.StatusInternalServerError, gatewayconfig.ErrNotConfigured.Error()), nil
	}

	headers := make(map[string]string, len(event.Headers))
	maps.Copy(headers, event.Headers)

	start := deps.Now()
	resp, err := deps.Upstream.Do(ctx, upstream.Request{
		Method:  method,
		Path:    path,
		Query:   event.ResolvedQuery(),
		Headers: headers,
		Body:    event.ResolvedBody(),
	})
	elapsed := deps.Now().Sub(start)
	publishMetric(ctx, deps.Metrics.Latency(ctx, metrics.UpstreamLatencyMs, op.String(), elapsed), metrics.UpstreamLatencyMs)

	if err != nil {
		span.RecordError(err)
		logger.ErrorContext(ctx, "Backend call failed",
			slog.String("session_id", event.SessionID),
			slog.String("operation", op.String()),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		publishMetric(ctx, deps.Metrics.Count(ctx, metrics.UpstreamFailure, op.String()), metrics.UpstreamFailure)
		return envelope.UpstreamFailure(event, err), nil
	}

	body := envelope.BodyText(resp.Body)
	session := envelope.SessionAttributes(op, resp.StatusCode, resp.ContentType, body)

	if op == operation.IssuePaymentGuide && resp.StatusCode == http.StatusOK {
		publishMetric(ctx, deps.Metrics.Count(ctx, metrics.GuideIssued, op.String()), metrics.GuideIssued)
		if deps.Events != nil {
			if err := deps.Events.Publish(ctx, events.GuideIssued(event.SessionID, session, deps.Now())); err != nil {
				logger.ErrorContext(ctx, "Failed to publish event",
					slog.String("event_type", actioncontract.EventGuideIssued),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	span.SetAttributes(
		attribute.Int("status_code", resp.StatusCode),
		attribute.Int("session_attributes", len(session)),
	)

	logger.InfoContext(ctx, "Request completed",
		slog.String("session_id", event.SessionID),
		slog.String("path", path),
		slog.String("method", method),
		slog.String("operation", op.String()),
		slog.Int("status_code", resp.StatusCode),
		slog.Int64("latency_ms", elapsed.Milliseconds()),
	)

	return envelope.Action(event, resp.StatusCode, body, session), nil
}

// publishMetric logs a failed metric publication; metrics never fail a request
func publishMetric(ctx context.Context, err error, name string) {
	if err != nil {
		logger.WarnContext(ctx, "Failed to publish metric",
			slog.String("metric", name),
			slog.String("error", err.Error()),
		)
	}
}

func main() {
	ctx := context.Background()

	cfg, err := gatewayconfig.FromEnv(os.Getenv)
	if err != nil {
		logger.Error("FATAL: Invalid configuration",
			slog.String("error", err.Error()),
		)
		panic(err)
	}

	result, err := awsinit.Init(ctx)
	if err != nil {
		logger.Error("FATAL: Failed to initialize AWS",
			slog.String("error", err.Error()),
		)
		panic(err)
	}
	defer result.Cleanup()

	if err := cfg.ResolveAPIBase(result.Ctx, gatewayconfig.NewSSMParameterReader(ssm.NewFromConfig(result.Config))); err != nil {
		logger.Error("FATAL: Failed to resolve API base",
			slog.String("error", err.Error()),
		)
		panic(err)
	}

	deps = &Dependencies{
		Metrics: metrics.Nop{},
		Now:     time.Now,
	}

	switch {
	case !cfg.Configured():
		logger.Warn("No upstream configured; every request will fail")
	case cfg.UsesLambda():
		lambdaClient := lambda.NewFromConfig(upstream.LambdaConfig(result.Config, cfg.Policy))
		deps.Upstream = upstream.NewLambdaClient(lambdaClient, cfg.BackendFunctionName)
	default:
		apiKey, err := cfg.APIKey(result.Ctx, gatewayconfig.NewSecretsManagerReader(secretsmanager.NewFromConfig(result.Config)))
		if err != nil {
			logger.Error("FATAL: Failed to read upstream API key from Secrets Manager",
				slog.String("error", err.Error()),
			)
			panic(err)
		}
		var opts []upstream.HTTPOption
		if apiKey != "" {
			opts = append(opts, upstream.WithAPIKey(apiKey))
		}
		deps.Upstream = upstream.NewHTTPClient(cfg.APIBase, cfg.Policy, opts...)
	}

	if cfg.MetricNamespace != "" {
		deps.Metrics = metrics.NewCloudWatchPublisher(cloudwatch.NewFromConfig(result.Config), cfg.MetricNamespace)
	}
	if cfg.EventQueueURL != "" {
		deps.Events = events.NewPublisher(sqs.NewFromConfig(result.Config), cfg.EventQueueURL)
	}

	logger.Info("Agent gateway configured",
		slog.Bool("lambda_upstream", cfg.UsesLambda()),
		slog.String("api_base", cfg.APIBase),
		slog.Int("max_attempts", cfg.Policy.MaxAttempts),
		slog.String("read_timeout", cfg.Policy.ReadTimeout.String()),
		slog.String("connect_timeout", cfg.Policy.ConnectTimeout.String()),
	)

	result.Start(handler)
}
