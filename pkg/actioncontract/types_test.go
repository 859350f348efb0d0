package actioncontract

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestActionGroupEvent_Unmarshal(t *testing.T) {
	input := `{
		"messageVersion": "1.0",
		"sessionId": "session-1",
		"actionGroup": "cnh",
		"apiPath": "/confirmar-dados",
		"httpMethod": "POST",
		"requestBody": {"content": {"application/json": {"properties": [{"name": "cpf", "value": "12345678901"}]}}},
		"sessionAttributes": {"flow_id": "flow-1"}
	}`

	var event ActionGroupEvent
	if err := json.Unmarshal([]byte(input), &event); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if event.ResolvedPath() != "/confirmar-dados" {
		t.Errorf("expected path from apiPath, got %s", event.ResolvedPath())
	}
	if event.ResolvedMethod() != "POST" {
		t.Errorf("expected POST, got %s", event.ResolvedMethod())
	}
	if !strings.Contains(string(event.ResolvedBody()), `"properties"`) {
		t.Errorf("expected requestBody, got %s", event.ResolvedBody())
	}
	if event.SessionAttributes["flow_id"] != "flow-1" {
		t.Errorf("expected session attributes, got %v", event.SessionAttributes)
	}
}

func TestActionGroupEvent_Fallbacks(t *testing.T) {
	var empty ActionGroupEvent
	if empty.ResolvedPath() != "/" {
		t.Errorf("expected default path /, got %s", empty.ResolvedPath())
	}
	if empty.ResolvedMethod() != "POST" {
		t.Errorf("expected default method POST, got %s", empty.ResolvedMethod())
	}
	if empty.ResolvedBody() != nil {
		t.Errorf("expected nil body, got %s", empty.ResolvedBody())
	}
	if empty.ResolvedQuery() != nil {
		t.Errorf("expected nil query, got %v", empty.ResolvedQuery())
	}

	event := ActionGroupEvent{
		Path:        "/exibir-dados",
		APIPath:     "/ignored",
		Method:      "get",
		RequestBody: json.RawMessage(`null`),
		Body:        json.RawMessage(`{"cpf":"1"}`),
		Query:       map[string]string{"a": "b"},
	}
	if event.ResolvedPath() != "/exibir-dados" {
		t.Errorf("expected path to win over apiPath, got %s", event.ResolvedPath())
	}
	if event.ResolvedMethod() != "get" {
		t.Errorf("expected method fallback, got %s", event.ResolvedMethod())
	}
	if string(event.ResolvedBody()) != `{"cpf":"1"}` {
		t.Errorf("expected body fallback, got %s", event.ResolvedBody())
	}
	if event.ResolvedQuery()["a"] != "b" {
		t.Errorf("expected query fallback, got %v", event.ResolvedQuery())
	}
}

func TestActionGroupResponse_JSONFieldNames(t *testing.T) {
	resp := ActionGroupResponse{
		MessageVersion: MessageVersion,
		Response: ActionResponse{
			ActionGroup:    "cnh",
			APIPath:        "/exibir-dados",
			HTTPMethod:     "POST",
			HTTPStatusCode: 200,
			ResponseBody:   map[string]BodyEnvelope{ContentTypeJSON: {Body: `{}`}},
		},
		SessionAttributes: map[string]string{},
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	want := `{"messageVersion":"1.0","response":{"actionGroup":"cnh","apiPath":"/exibir-dados","httpMethod":"POST","httpStatusCode":200,"responseBody":{"application/json":{"body":"{}"}}},"sessionAttributes":{}}`
	if string(data) != want {
		t.Errorf("unexpected JSON\n got: %s\nwant: %s", data, want)
	}
}
