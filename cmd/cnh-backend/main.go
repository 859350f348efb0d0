package main

import (
	"context"
	"encoding/base64"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/jarrod-lowe/cnh-agent-actions/internal/backend"
	"github.com/jarrod-lowe/cnh-agent-actions/internal/envelope"
	"github.com/jarrod-lowe/cnh-agent-actions/internal/flow"
	"github.com/jarrod-lowe/cnh-agent-actions/internal/operation"
	"github.com/jarrod-lowe/cnh-agent-actions/pkg/actioncontract"
	"github.com/jarrod-lowe/jmap-service-libs/awsinit"
	"github.com/jarrod-lowe/jmap-service-libs/logging"
	"github.com/jarrod-lowe/jmap-service-libs/tracing"
	"go.opentelemetry.io/otel/attribute"
)

var logger = logging.New()

// Response is the API Gateway proxy response
type Response = actioncontract.ProxyResponse

// Dependencies for handler (injectable for testing)
type Dependencies struct {
	Backend *backend.Backend
}

var deps *Dependencies

// handler serves the mock issuance backend behind API Gateway
func handler(ctx context.Context, request events.APIGatewayProxyRequest) (Response, error) {
	ctx, span := tracing.StartHandlerSpan(ctx, "CnhBackendHandler",
		tracing.Function("cnh-backend"),
		tracing.RequestID(request.RequestContext.RequestID),
	)
	defer span.End()

	path := request.Path
	if path == "" {
		path = request.Resource
	}
	if path == "" {
		path = "/"
	}
	method := request.HTTPMethod
	if method == "" {
		method = "POST"
	}

	body := []byte(request.Body)
	if request.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(request.Body)
		if err != nil {
			logger.WarnContext(ctx, "Invalid base64 request body",
				slog.String("request_id", request.RequestContext.RequestID),
				slog.String("error", err.Error()),
			)
			return envelope.InputError(backend.NotObjectMessage), nil
		}
		body = decoded
	}

	resp, outcome := deps.Backend.Handle(ctx, backend.Request{
		RequestID: request.RequestContext.RequestID,
		Path:      path,
		Method:    method,
		Body:      body,
	})

	span.SetAttributes(
		attribute.String("operation", outcome.Operation.String()),
		attribute.String("body_shape", outcome.Shape.String()),
		attribute.Int("status_code", resp.StatusCode),
	)

	attrs := []any{
		slog.String("request_id", request.RequestContext.RequestID),
		slog.String("path", path),
		slog.String("method", method),
		slog.String("operation", outcome.Operation.String()),
		slog.Int("status_code", resp.StatusCode),
	}
	if outcome.Field != "" {
		span.SetAttributes(attribute.String("field", outcome.Field))
		attrs = append(attrs, slog.String("field", outcome.Field))
	}
	logger.InfoContext(ctx, "Request completed", attrs...)

	return resp, nil
}

func main() {
	ctx := context.Background()

	result, err := awsinit.Init(ctx, awsinit.WithHTTPHandler("cnh-backend"))
	if err != nil {
		logger.Error("FATAL: Failed to initialize AWS",
			slog.String("error", err.Error()),
		)
		panic(err)
	}
	defer result.Cleanup()

	var opts []operation.Option
	if tableName := os.Getenv("FLOW_TABLE"); tableName != "" {
		ttl := flow.TTLFromEnv(os.Getenv("FLOW_TTL_HOURS"))
		registry := flow.NewRegistry(dynamodb.NewFromConfig(result.Config), tableName, ttl)
		opts = append(opts, operation.WithFlowStore(registry))
		logger.Info("Flow registry enabled",
			slog.String("table", tableName),
			slog.String("ttl", ttl.String()),
		)
	}

	deps = &Dependencies{
		Backend: backend.New(operation.NewService(opts...), logger),
	}

	result.Start(handler)
}
