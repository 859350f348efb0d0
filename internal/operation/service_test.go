package operation

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jarrod-lowe/cnh-agent-actions/internal/payload"
	"github.com/jarrod-lowe/cnh-agent-actions/internal/validate"
)

// mockFlowStore implements FlowStore for testing
type mockFlowStore struct {
	flows       map[string]string
	registerErr error
	lookupErr   error
	registered  []string
}

func (m *mockFlowStore) Register(ctx context.Context, flowID, cpf string) error {
	if m.registerErr != nil {
		return m.registerErr
	}
	if m.flows == nil {
		m.flows = map[string]string{}
	}
	m.flows[flowID] = cpf
	m.registered = append(m.registered, flowID)
	return nil
}

func (m *mockFlowStore) Lookup(ctx context.Context, flowID string) (string, bool, error) {
	if m.lookupErr != nil {
		return "", false, m.lookupErr
	}
	cpf, ok := m.flows[flowID]
	return cpf, ok, nil
}

func continuation(flowID string) payload.Payload {
	return payload.Payload{
		"flow_id":                   flowID,
		"codigo_municipio_condutor": json.Number("4123"),
		"ddd_celular":               json.Number("31"),
		"numero_celular":            json.Number("999999999"),
		"email":                     "a@b.com",
		"numero_ip_micro":           "1.2.3.4",
	}
}

func TestService_ConfirmIdentityMintsFlowID(t *testing.T) {
	svc := NewService()

	out, err := svc.Execute(context.Background(), ConfirmIdentity, validIdentity())
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	result := out.(*IdentityResult)
	if _, err := uuid.Parse(result.FlowID); err != nil {
		t.Errorf("expected a UUID flow id, got %q", result.FlowID)
	}

	again, _ := svc.Execute(context.Background(), ConfirmIdentity, validIdentity())
	if again.(*IdentityResult).FlowID == result.FlowID {
		t.Error("expected a new flow id per confirmation")
	}
}

func TestService_UnknownOperation(t *testing.T) {
	_, err := NewService().Execute(context.Background(), Unknown, payload.Payload{})
	if !errors.Is(err, ErrRouteNotFound) {
		t.Errorf("expected ErrRouteNotFound, got %v", err)
	}
}

func TestService_WithoutFlowStoreTrustsFlowID(t *testing.T) {
	out, err := NewService().Execute(context.Background(), IssuePaymentGuide, continuation("never-issued"))
	if err != nil {
		t.Fatalf("expected trusted continuation to succeed, got %v", err)
	}
	if _, ok := out.(*GuideResult); !ok {
		t.Errorf("expected *GuideResult, got %T", out)
	}
}

func TestService_FlowStoreRegistersAndResolvesCPF(t *testing.T) {
	store := &mockFlowStore{}
	svc := NewService(WithFlowStore(store), WithFlowIDGenerator(func() string { return "flow-1" }))
	ctx := context.Background()

	if _, err := svc.Execute(ctx, ConfirmIdentity, validIdentity()); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if len(store.registered) != 1 || store.registered[0] != "flow-1" {
		t.Fatalf("expected flow-1 to be registered, got %v", store.registered)
	}

	p := continuation("flow-1")
	out, err := svc.Execute(ctx, IssuePaymentGuide, p)
	if err != nil {
		t.Fatalf("guide failed: %v", err)
	}
	if got := out.(*GuideResult).Guide.CPFContribuinte; got != "12345678901" {
		t.Errorf("expected cpf from flow registry, got %q", got)
	}
	if _, ok := p["cpf"]; ok {
		t.Error("expected caller payload not to be mutated")
	}
}

func TestService_FlowStoreRejectsUnknownFlow(t *testing.T) {
	svc := NewService(WithFlowStore(&mockFlowStore{}))

	_, err := svc.Execute(context.Background(), IssuePaymentGuide, continuation("forged"))
	assertFieldError(t, err, "flow_id", validate.InvalidFormat)
}

func TestService_FlowStoreValidatesBeforeLookup(t *testing.T) {
	store := &mockFlowStore{lookupErr: errors.New("should not be called")}
	svc := NewService(WithFlowStore(store))

	_, err := svc.Execute(context.Background(), IssuePaymentGuide, payload.Payload{"flow_id": "x"})
	assertFieldError(t, err, "codigo_municipio_condutor", validate.MissingField)
}

func TestService_FlowStoreFailuresAreNotFieldErrors(t *testing.T) {
	ctx := context.Background()

	svc := NewService(WithFlowStore(&mockFlowStore{registerErr: errors.New("ddb down")}))
	_, err := svc.Execute(ctx, ConfirmIdentity, validIdentity())
	var fe *validate.FieldError
	if err == nil || errors.As(err, &fe) {
		t.Errorf("expected infrastructure error, got %v", err)
	}

	svc = NewService(WithFlowStore(&mockFlowStore{lookupErr: errors.New("ddb down")}))
	_, err = svc.Execute(ctx, IssuePaymentGuide, continuation("x"))
	if err == nil || errors.As(err, &fe) {
		t.Errorf("expected infrastructure error, got %v", err)
	}
}

func TestService_FlowStoreAcceptsMatchingCPF(t *testing.T) {
	store := &mockFlowStore{flows: map[string]string{"flow-1": "11111111111"}}
	svc := NewService(WithFlowStore(store))

	p := continuation("flow-1")
	p["cpf"] = "11111111111"
	out, err := svc.Execute(context.Background(), IssuePaymentGuide, p)
	if err != nil {
		t.Fatal(err)
	}
	if got := out.(*GuideResult).Guide.CPFContribuinte; got != "11111111111" {
		t.Errorf("expected flow cpf, got %q", got)
	}
}

func TestService_FlowStoreRejectsCPFFromAnotherFlow(t *testing.T) {
	store := &mockFlowStore{flows: map[string]string{"flow-1": "11111111111"}}
	svc := NewService(WithFlowStore(store))

	p := continuation("flow-1")
	p["cpf"] = "22222222222"
	_, err := svc.Execute(context.Background(), IssuePaymentGuide, p)
	assertFieldError(t, err, "cpf", validate.InvalidFormat)
}

func TestService_FlowStoreBlankCPFUsesFlowCPF(t *testing.T) {
	store := &mockFlowStore{flows: map[string]string{"flow-1": "11111111111"}}
	svc := NewService(WithFlowStore(store))

	p := continuation("flow-1")
	p["cpf"] = "  "
	out, err := svc.Execute(context.Background(), IssuePaymentGuide, p)
	if err != nil {
		t.Fatal(err)
	}
	if got := out.(*GuideResult).Guide.CPFContribuinte; got != "11111111111" {
		t.Errorf("expected flow cpf, got %q", got)
	}
}
