// Package envelope wraps operation outcomes in the transport envelopes callers
// expect: API Gateway proxy responses from the backend and action-group
// responses for the agent.
package envelope

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jarrod-lowe/cnh-agent-actions/internal/operation"
	"github.com/jarrod-lowe/cnh-agent-actions/internal/validate"
	"github.com/jarrod-lowe/cnh-agent-actions/pkg/actioncontract"
)

const (
	// ValidationMessage is the top-level message of every 422 body
	ValidationMessage = "Ocorreu um erro na validação dos dados"
	// RouteNotFoundMessage is the message of the 404 body
	RouteNotFoundMessage = "Rota não encontrada"
	// InternalErrorMessage is the message of the 500 body
	InternalErrorMessage = "Erro interno ao processar a solicitação"
	// InputField keys errors that are not about a single named field
	InputField = "input"
)

// ErrorBody is the structured 422 body
type ErrorBody struct {
	Message string                       `json:"message"`
	Code    int                          `json:"code"`
	Errors  map[string]map[string]string `json:"errors"`
}

// MessageBody is the body of 404, 500 and 502 responses
type MessageBody struct {
	Message string `json:"message"`
}

func jsonHeaders() map[string]string {
	return map[string]string{"Content-Type": actioncontract.ContentTypeJSON}
}

// Marshal serializes v as compact JSON without HTML escaping, keeping non-ASCII
// text as-is
func Marshal(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// JSON builds a proxy response with body serialized as JSON
func JSON(statusCode int, body any) actioncontract.ProxyResponse {
	text, err := Marshal(body)
	if err != nil {
		return actioncontract.ProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    jsonHeaders(),
			Body:       `{"message":"` + InternalErrorMessage + `"}`,
		}
	}
	return actioncontract.ProxyResponse{
		StatusCode: statusCode,
		Headers:    jsonHeaders(),
		Body:       text,
	}
}

// ValidationError builds the 422 response for a field failure
func ValidationError(fe *validate.FieldError) actioncontract.ProxyResponse {
	field := fe.Field
	if field == "" {
		field = InputField
	}
	return JSON(http.StatusUnprocessableEntity, ErrorBody{
		Message: ValidationMessage,
		Code:    http.StatusUnprocessableEntity,
		Errors: map[string]map[string]string{
			field: {string(fe.Kind): fe.Message},
		},
	})
}

// InputError builds the 422 response for a body that cannot be read as fields
func InputError(message string) actioncontract.ProxyResponse {
	return ValidationError(&validate.FieldError{
		Field:   InputField,
		Kind:    validate.InvalidFormat,
		Message: message,
	})
}

// NotFound builds the 404 response for an unknown route
func NotFound() actioncontract.ProxyResponse {
	return Message(http.StatusNotFound, RouteNotFoundMessage)
}

// Message builds a response whose body only carries a message
func Message(statusCode int, message string) actioncontract.ProxyResponse {
	return JSON(statusCode, MessageBody{Message: message})
}

// FromResult converts an operation outcome into a proxy response: 200 with the
// result, 422 for field failures, 404 for unknown routes and 500 otherwise
func FromResult(result any, err error) actioncontract.ProxyResponse {
	if err == nil {
		return JSON(http.StatusOK, result)
	}

	var fe *validate.FieldError
	switch {
	case errors.As(err, &fe):
		return ValidationError(fe)
	case errors.Is(err, operation.ErrRouteNotFound):
		return NotFound()
	default:
		return Message(http.StatusInternalServerError, InternalErrorMessage)
	}
}
