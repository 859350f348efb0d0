package operation

import (
	"context"
	"fmt"
	"maps"
	"strings"

	"github.com/google/uuid"
	"github.com/jarrod-lowe/cnh-agent-actions/internal/payload"
	"github.com/jarrod-lowe/cnh-agent-actions/internal/validate"
)

// FlowStore records continuation identifiers issued by ConfirmIdentity
type FlowStore interface {
	Register(ctx context.Context, flowID, cpf string) error
	Lookup(ctx context.Context, flowID string) (cpf string, found bool, err error)
}

// Service executes operations. Without a FlowStore, continuation identifiers
// presented to IssuePaymentGuide are trusted as given.
type Service struct {
	newFlowID func() string
	flows     FlowStore
}

// Option configures a Service
type Option func(*Service)

// WithFlowStore makes the service register issued flows and reject unknown ones
func WithFlowStore(store FlowStore) Option {
	return func(s *Service) {
		s.flows = store
	}
}

// WithFlowIDGenerator replaces the random flow id generator
func WithFlowIDGenerator(gen func() string) Option {
	return func(s *Service) {
		s.newFlowID = gen
	}
}

// NewService creates a Service
func NewService(opts ...Option) *Service {
	s := &Service{newFlowID: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Execute runs op against p. Validation failures are returned as
// *validate.FieldError; any other error is an infrastructure failure.
func (s *Service) Execute(ctx context.Context, op Operation, p payload.Payload) (any, error) {
	switch op {
	case ConfirmIdentity:
		return s.confirmIdentity(ctx, p)
	case IssuePaymentGuide:
		return s.issuePaymentGuide(ctx, p)
	case FetchStatus:
		return HandleFetchStatus(p)
	default:
		return nil, ErrRouteNotFound
	}
}

func (s *Service) confirmIdentity(ctx context.Context, p payload.Payload) (*IdentityResult, error) {
	result, err := HandleConfirmIdentity(p, s.newFlowID())
	if err != nil {
		return nil, err
	}
	if s.flows != nil {
		if err := s.flows.Register(ctx, result.FlowID, result.Profile.CPF); err != nil {
			return nil, fmt.Errorf("failed to register flow: %w", err)
		}
	}
	return result, nil
}

// issuePaymentGuide resolves a registered flow. The flow's CPF fills an omitted
// cpf and must match a supplied one.
func (s *Service) issuePaymentGuide(ctx context.Context, p payload.Payload) (*GuideResult, error) {
	if s.flows == nil || !HasFlowID(p) {
		return HandleIssuePaymentGuide(p)
	}
	if err := ValidateIssuePaymentGuide(p); err != nil {
		return nil, err
	}

	flowID := p.TextOr(FlowIDField, "")
	cpf, found, err := s.flows.Lookup(ctx, flowID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up flow: %w", err)
	}
	if !found {
		return nil, validate.NewInvalidFormatError(FlowIDField, "Fluxo não encontrado ou expirado")
	}

	if cpf == "" {
		return HandleIssuePaymentGuide(p)
	}
	if !p.Present("cpf") {
		p = maps.Clone(p)
		p["cpf"] = cpf
	} else if strings.TrimSpace(p.TextOr("cpf", "")) != cpf {
		return nil, validate.NewInvalidFormatError("cpf", "CPF não corresponde ao fluxo informado")
	}
	return HandleIssuePaymentGuide(p)
}
