// Package actioncontract defines the wire types exchanged with the conversational
// agent and with API Gateway. These types are shared by the backend, the gateway
// and any external caller that wants to talk to them.
package actioncontract

import "encoding/json"

// MessageVersion is the agent envelope version this service speaks
const MessageVersion = "1.0"

// ContentTypeJSON is the only content type the agent forwards bodies under
const ContentTypeJSON = "application/json"

// ActionGroupEvent is the event an agent action group delivers to the gateway.
// Older integrations send path/method/body instead of apiPath/httpMethod/requestBody,
// so both spellings are accepted.
type ActionGroupEvent struct {
	MessageVersion          string            `json:"messageVersion,omitempty"`
	SessionID               string            `json:"sessionId,omitempty"`
	InputText               string            `json:"inputText,omitempty"`
	ActionGroup             string            `json:"actionGroup,omitempty"`
	OperationID             string            `json:"operationId,omitempty"`
	APIPath                 string            `json:"apiPath,omitempty"`
	HTTPMethod              string            `json:"httpMethod,omitempty"`
	Path                    string            `json:"path,omitempty"`
	Method                  string            `json:"method,omitempty"`
	RequestBody             json.RawMessage   `json:"requestBody,omitempty"`
	Body                    json.RawMessage   `json:"body,omitempty"`
	QueryStringParameters   map[string]string `json:"queryStringParameters,omitempty"`
	Query                   map[string]string `json:"query,omitempty"`
	Headers                 map[string]string `json:"headers,omitempty"`
	SessionAttributes       map[string]string `json:"sessionAttributes,omitempty"`
	PromptSessionAttributes map[string]string `json:"promptSessionAttributes,omitempty"`
}

// ResolvedPath returns path, falling back to apiPath, then "/"
func (e ActionGroupEvent) ResolvedPath() string {
	if e.Path != "" {
		return e.Path
	}
	if e.APIPath != "" {
		return e.APIPath
	}
	return "/"
}

// ResolvedMethod returns httpMethod, falling back to method, then POST
func (e ActionGroupEvent) ResolvedMethod() string {
	if e.HTTPMethod != "" {
		return e.HTTPMethod
	}
	if e.Method != "" {
		return e.Method
	}
	return "POST"
}

// ResolvedBody returns requestBody, falling back to body. Nil when neither is set.
func (e ActionGroupEvent) ResolvedBody() json.RawMessage {
	if len(e.RequestBody) > 0 && string(e.RequestBody) != "null" {
		return e.RequestBody
	}
	if len(e.Body) > 0 && string(e.Body) != "null" {
		return e.Body
	}
	return nil
}

// ResolvedQuery returns queryStringParameters, falling back to query
func (e ActionGroupEvent) ResolvedQuery() map[string]string {
	if e.QueryStringParameters != nil {
		return e.QueryStringParameters
	}
	return e.Query
}

// ActionGroupResponse is the envelope returned to the agent
type ActionGroupResponse struct {
	MessageVersion    string            `json:"messageVersion"`
	Response          ActionResponse    `json:"response"`
	SessionAttributes map[string]string `json:"sessionAttributes"`
}

// ActionResponse carries the upstream outcome for one action invocation
type ActionResponse struct {
	ActionGroup    string                  `json:"actionGroup"`
	APIPath        string                  `json:"apiPath"`
	HTTPMethod     string                  `json:"httpMethod"`
	HTTPStatusCode int                     `json:"httpStatusCode"`
	ResponseBody   map[string]BodyEnvelope `json:"responseBody"`
}

// BodyEnvelope wraps a serialized body string under its content type
type BodyEnvelope struct {
	Body string `json:"body"`
}

// ProxyResponse is the API Gateway proxy response produced by the backend
type ProxyResponse struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
}
