package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/jarrod-lowe/cnh-agent-actions/pkg/actioncontract"
)

// LambdaAPI defines the interface for Lambda operations
type LambdaAPI interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// LambdaClient calls the backend by invoking its function with an API Gateway
// proxy event
type LambdaClient struct {
	client       LambdaAPI
	functionName string
}

// NewLambdaClient creates a client for the named backend function
func NewLambdaClient(client LambdaAPI, functionName string) *LambdaClient {
	return &LambdaClient{client: client, functionName: functionName}
}

// LambdaConfig returns a copy of cfg whose SDK clients honour the policy.
// Retries of throttled or failed invocations are left to the SDK retryer.
func LambdaConfig(cfg aws.Config, policy Policy) aws.Config {
	cfg.RetryMaxAttempts = int(policy.attempts())
	cfg.HTTPClient = policy.HTTPClient()
	return cfg
}

// Do invokes the backend function with req
func (c *LambdaClient) Do(ctx context.Context, req Request) (*Response, error) {
	body, err := EncodeBody(req.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode body: %w", err)
	}

	headers := make(map[string]string, len(req.Headers)+1)
	for k, v := range req.Headers {
		headers[k] = v
	}
	if _, ok := headerValue(headers, "Content-Type"); !ok {
		headers["Content-Type"] = DefaultContentType
	}

	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodPost
	}

	payload, err := json.Marshal(events.APIGatewayProxyRequest{
		Resource:              req.Path,
		Path:                  req.Path,
		HTTPMethod:            method,
		Headers:               headers,
		QueryStringParameters: req.Query,
		Body:                  string(body),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	output, err := c.client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName: aws.String(c.functionName),
		Payload:      payload,
	})
	if err != nil {
		return nil, fmt.Errorf("lambda invocation failed: %w", err)
	}
	if output.FunctionError != nil {
		return nil, fmt.Errorf("backend function error %s: %s", aws.ToString(output.FunctionError), string(output.Payload))
	}

	var response actioncontract.ProxyResponse
	if err := json.Unmarshal(output.Payload, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	contentType, _ := headerValue(response.Headers, "Content-Type")
	return &Response{
		StatusCode:  response.StatusCode,
		ContentType: ContentType(contentType),
		Body:        []byte(response.Body),
	}, nil
}
