package operation

import (
	"errors"
	"testing"
)

func TestRoute_ResolvesEveryRoute(t *testing.T) {
	cases := []struct {
		path   string
		method string
		want   Operation
	}{
		{"/confirmar-dados", "POST", ConfirmIdentity},
		{"/exibir-opcoes-pagamento", "POST", IssuePaymentGuide},
		{"/exibir-dados", "POST", FetchStatus},
		{"/exibir-dados", "post", FetchStatus},
	}
	for _, tc := range cases {
		got, err := Route(tc.path, tc.method)
		if err != nil {
			t.Fatalf("Route(%q, %q) returned error: %v", tc.path, tc.method, err)
		}
		if got != tc.want {
			t.Errorf("Route(%q, %q) = %s, want %s", tc.path, tc.method, got, tc.want)
		}
	}
}

func TestRoute_UnknownPairIsNotFound(t *testing.T) {
	cases := [][2]string{
		{"/unknown", "GET"},
		{"/confirmar-dados", "GET"},
		{"/confirmar-dados/", "POST"},
		{"/v1/exibir-dados", "POST"},
		{"", ""},
	}
	for _, tc := range cases {
		op, err := Route(tc[0], tc[1])
		if !errors.Is(err, ErrRouteNotFound) {
			t.Errorf("Route(%q, %q): expected ErrRouteNotFound, got %v", tc[0], tc[1], err)
		}
		if op != Unknown {
			t.Errorf("Route(%q, %q): expected Unknown, got %s", tc[0], tc[1], op)
		}
	}
}

func TestOperation_NamesAndPaths(t *testing.T) {
	for _, op := range All {
		parsed, ok := Parse(op.String())
		if !ok || parsed != op {
			t.Errorf("Parse(%q) = %s, %v", op.String(), parsed, ok)
		}
		if op.Path() != "/"+op.String() {
			t.Errorf("unexpected path %q for %s", op.Path(), op)
		}
	}
	if Unknown.String() != "desconhecido" {
		t.Errorf("expected unknown name 'desconhecido', got %q", Unknown.String())
	}
	if _, ok := Parse("desconhecido"); ok {
		t.Error("expected unknown name not to parse")
	}
}

func TestGuess(t *testing.T) {
	cases := []struct {
		operationID string
		path        string
		want        Operation
	}{
		{"exibir-dados", "/confirmar-dados", FetchStatus},
		{"", "/v1/confirmar-dados", ConfirmIdentity},
		{"", "/exibir-opcoes-pagamento", IssuePaymentGuide},
		{"", "/stage/exibir-dados?x=1", FetchStatus},
		{"", "/other", Unknown},
		{"other-op", "/other", Unknown},
	}
	for _, tc := range cases {
		if got := Guess(tc.operationID, tc.path); got != tc.want {
			t.Errorf("Guess(%q, %q) = %s, want %s", tc.operationID, tc.path, got, tc.want)
		}
	}
}
