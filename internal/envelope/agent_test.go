package envelope

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/jarrod-lowe/cnh-agent-actions/pkg/actioncontract"
)

func TestAction_EnvelopeShape(t *testing.T) {
	event := actioncontract.ActionGroupEvent{
		ActionGroup: "cnh-actions",
		APIPath:     "/exibir-dados",
		HTTPMethod:  "post",
	}

	resp := Action(event, 200, `{"cpf":"1"}`, map[string]string{"status_situacao_cnh": "Emitida"})

	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}

	if decoded["messageVersion"] != "1.0" {
		t.Errorf("expected messageVersion 1.0, got %v", decoded["messageVersion"])
	}
	r := decoded["response"].(map[string]any)
	if r["actionGroup"] != "cnh-actions" || r["apiPath"] != "/exibir-dados" || r["httpMethod"] != "POST" {
		t.Errorf("unexpected response block %v", r)
	}
	if r["httpStatusCode"] != float64(200) {
		t.Errorf("expected httpStatusCode 200, got %v", r["httpStatusCode"])
	}
	body := r["responseBody"].(map[string]any)["application/json"].(map[string]any)["body"]
	if body != `{"cpf":"1"}` {
		t.Errorf("expected body string to be embedded, got %v", body)
	}
	if decoded["sessionAttributes"].(map[string]any)["status_situacao_cnh"] != "Emitida" {
		t.Errorf("unexpected session attributes %v", decoded["sessionAttributes"])
	}
}

func TestAction_FallsBackToPathAndDefaultMethod(t *testing.T) {
	resp := Action(actioncontract.ActionGroupEvent{Path: "/confirmar-dados"}, 200, "{}", nil)

	if resp.Response.APIPath != "/confirmar-dados" {
		t.Errorf("expected path fallback, got %q", resp.Response.APIPath)
	}
	if resp.Response.HTTPMethod != "POST" {
		t.Errorf("expected POST default, got %q", resp.Response.HTTPMethod)
	}
	if resp.SessionAttributes == nil {
		t.Error("expected empty non-nil session attributes")
	}
}

func TestUpstreamFailure(t *testing.T) {
	resp := UpstreamFailure(actioncontract.ActionGroupEvent{APIPath: "/exibir-dados"}, errors.New("connection refused"))

	if resp.Response.HTTPStatusCode != 502 {
		t.Errorf("expected 502, got %d", resp.Response.HTTPStatusCode)
	}
	body := resp.Response.ResponseBody["application/json"].Body
	if body != `{"message":"Falha ao chamar backend: connection refused"}` {
		t.Errorf("unexpected body %s", body)
	}
	if resp.SessionAttributes["last_error"] != "Falha ao chamar backend: connection refused" {
		t.Errorf("unexpected last_error %q", resp.SessionAttributes["last_error"])
	}
	if resp.SessionAttributes["last_error_code"] != "502" {
		t.Errorf("unexpected last_error_code %q", resp.SessionAttributes["last_error_code"])
	}
}
