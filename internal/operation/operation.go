// Package operation holds the three document-reissuance operations, the routing
// table that selects them and the records they return.
package operation

import (
	"errors"
	"strings"
)

// ErrRouteNotFound is returned when no operation serves a path and method
var ErrRouteNotFound = errors.New("route not found")

// Operation identifies one of the supported operations
type Operation int

const (
	// Unknown is the zero value and never routes
	Unknown Operation = iota
	// ConfirmIdentity validates the citizen's onboarding data and starts a flow
	ConfirmIdentity
	// IssuePaymentGuide issues the fee payment guide (DAE)
	IssuePaymentGuide
	// FetchStatus returns the delivery status of a reissuance request
	FetchStatus
)

// All lists every routable operation in routing-table order
var All = []Operation{ConfirmIdentity, IssuePaymentGuide, FetchStatus}

// String returns the operation name used by agents as operationId
func (o Operation) String() string {
	switch o {
	case ConfirmIdentity:
		return "confirmar-dados"
	case IssuePaymentGuide:
		return "exibir-opcoes-pagamento"
	case FetchStatus:
		return "exibir-dados"
	default:
		return "desconhecido"
	}
}

// Path returns the route path of the operation
func (o Operation) Path() string {
	if o == Unknown {
		return ""
	}
	return "/" + o.String()
}

// Method returns the HTTP method of the operation's route
func (o Operation) Method() string {
	if o == Unknown {
		return ""
	}
	return "POST"
}

// Route resolves an exact path and method pair. The method is compared
// case-insensitively.
func Route(path, method string) (Operation, error) {
	method = strings.ToUpper(method)
	for _, op := range All {
		if op.Path() == path && op.Method() == method {
			return op, nil
		}
	}
	return Unknown, ErrRouteNotFound
}

// Parse returns the operation with the given name
func Parse(name string) (Operation, bool) {
	for _, op := range All {
		if op.String() == name {
			return op, true
		}
	}
	return Unknown, false
}

// Guess identifies an operation from an explicit operation id, falling back to
// the first route path contained in path
func Guess(operationID, path string) Operation {
	if op, ok := Parse(operationID); ok {
		return op
	}
	for _, op := range All {
		if strings.Contains(path, op.Path()) {
			return op
		}
	}
	return Unknown
}
