package envelope

import (
	"net/http"
	"strings"

	"github.com/jarrod-lowe/cnh-agent-actions/pkg/actioncontract"
)

// Action builds the agent envelope for an upstream reply. body is the reply
// already serialized as text.
func Action(event actioncontract.ActionGroupEvent, statusCode int, body string, session map[string]string) actioncontract.ActionGroupResponse {
	if session == nil {
		session = map[string]string{}
	}
	apiPath := event.APIPath
	if apiPath == "" {
		apiPath = event.ResolvedPath()
	}
	return actioncontract.ActionGroupResponse{
		MessageVersion: actioncontract.MessageVersion,
		Response: actioncontract.ActionResponse{
			ActionGroup:    event.ActionGroup,
			APIPath:        apiPath,
			HTTPMethod:     strings.ToUpper(event.ResolvedMethod()),
			HTTPStatusCode: statusCode,
			ResponseBody: map[string]actioncontract.BodyEnvelope{
				actioncontract.ContentTypeJSON: {Body: body},
			},
		},
		SessionAttributes: session,
	}
}

// ActionError builds the agent envelope for a failure that produced no upstream
// reply. The message is recorded in the last_error session attributes.
func ActionError(event actioncontract.ActionGroupEvent, statusCode int, message string) actioncontract.ActionGroupResponse {
	body, err := Marshal(MessageBody{Message: message})
	if err != nil {
		body = `{"message":""}`
	}
	return Action(event, statusCode, body, ErrorSessionAttributes(statusCode, message))
}

// UpstreamFailure builds the 502 agent envelope for a failed upstream call
func UpstreamFailure(event actioncontract.ActionGroupEvent, err error) actioncontract.ActionGroupResponse {
	return ActionError(event, http.StatusBadGateway, "Falha ao chamar backend: "+err.Error())
}
