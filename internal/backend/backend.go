// Package backend runs one request through the reissuance core. The route is
// resolved before the body is decoded, so unknown routes are 404 whatever the
// body holds.
package backend

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jarrod-lowe/cnh-agent-actions/internal/envelope"
	"github.com/jarrod-lowe/cnh-agent-actions/internal/operation"
	"github.com/jarrod-lowe/cnh-agent-actions/internal/payload"
	"github.com/jarrod-lowe/cnh-agent-actions/internal/validate"
	"github.com/jarrod-lowe/cnh-agent-actions/pkg/actioncontract"
)

// NotObjectMessage is reported when the body is JSON but not an object
const NotObjectMessage = "Corpo da requisição deve ser um objeto JSON"

// Executor runs an operation against a normalized payload
type Executor interface {
	Execute(ctx context.Context, op operation.Operation, p payload.Payload) (any, error)
}

// Request is a transport-neutral backend request
type Request struct {
	RequestID string
	Path      string
	Method    string
	Body      []byte
}

// Outcome describes how a request was served, for logging and tracing
type Outcome struct {
	Operation operation.Operation
	Shape     payload.Shape
	Field     string
}

// Backend serves requests with an Executor
type Backend struct {
	executor Executor
	logger   *slog.Logger
}

// New creates a Backend
func New(executor Executor, logger *slog.Logger) *Backend {
	return &Backend{executor: executor, logger: logger}
}

// Handle serves req. It never returns an error: every failure becomes a
// well-formed response.
func (b *Backend) Handle(ctx context.Context, req Request) (actioncontract.ProxyResponse, Outcome) {
	var outcome Outcome

	op, err := operation.Route(req.Path, req.Method)
	if err != nil {
		b.logger.InfoContext(ctx, "Route not found",
			slog.String("request_id", req.RequestID),
			slog.String("path", req.Path),
			slog.String("method", req.Method),
		)
		return envelope.NotFound(), outcome
	}
	outcome.Operation = op

	in, err := payload.Decode(req.Body)
	if err != nil {
		outcome.Field = envelope.InputField
		b.logger.WarnContext(ctx, "Request body is not a JSON object",
			slog.String("request_id", req.RequestID),
			slog.String("operation", op.String()),
		)
		return envelope.InputError(NotObjectMessage), outcome
	}
	outcome.Shape = in.Shape
	p := payload.Normalize(in)

	result, err := b.executor.Execute(ctx, op, p)
	if err != nil {
		var fe *validate.FieldError
		if errors.As(err, &fe) {
			outcome.Field = fe.Field
			b.logger.WarnContext(ctx, "Validation failed",
				slog.String("request_id", req.RequestID),
				slog.String("operation", op.String()),
				slog.String("field", fe.Field),
				slog.String("reason", string(fe.Kind)),
			)
		} else {
			b.logger.ErrorContext(ctx, "Operation failed",
				slog.String("request_id", req.RequestID),
				slog.String("operation", op.String()),
				slog.String("error", err.Error()),
			)
		}
	}
	return envelope.FromResult(result, err), outcome
}
