package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/jarrod-lowe/cnh-agent-actions/internal/backend"
	"github.com/jarrod-lowe/cnh-agent-actions/internal/flow"
	"github.com/jarrod-lowe/cnh-agent-actions/internal/operation"
	"github.com/jarrod-lowe/cnh-agent-actions/internal/upstream"
	"github.com/jarrod-lowe/cnh-agent-actions/pkg/actioncontract"
	"github.com/spf13/cobra"
)

type invokeOptions struct {
	path      string
	method    string
	body      string
	file      string
	flowTable string
	function  string
	region    string
	timeout   time.Duration
}

func newInvokeCmd(logger func(io.Writer) *slog.Logger) *cobra.Command {
	opts := &invokeOptions{}

	cmd := &cobra.Command{
		Use:   "invoke",
		Short: "Run one request through the backend and print the proxy response",
		Long: `Runs one request through the backend in-process, or against a deployed
backend function with --function, and prints the API Gateway proxy response.`,
		Example: `  cnhctl invoke --path /exibir-dados --body '{"cpf":"12345678901","data_nascimento":"01/01/1990"}'
  cnhctl invoke --path /confirmar-dados --file request.json
  cnhctl invoke --path /exibir-dados --function cnh-backend --file -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInvoke(cmd, opts, logger(cmd.ErrOrStderr()))
		},
	}

	cmd.Flags().StringVar(&opts.path, "path", "", "Request path, e.g. /confirmar-dados")
	cmd.Flags().StringVarP(&opts.method, "method", "X", "POST", "HTTP method")
	cmd.Flags().StringVarP(&opts.body, "body", "d", "", "Request body")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Read the request body from a file (- for stdin)")
	cmd.Flags().StringVar(&opts.flowTable, "flow-table", "", "DynamoDB flow registry table (in-process only)")
	cmd.Flags().StringVar(&opts.function, "function", "", "Invoke this deployed backend function instead of running in-process")
	cmd.Flags().StringVar(&opts.region, "region", "", "AWS region (default from the environment)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "Overall timeout")
	_ = cmd.MarkFlagRequired("path")
	cmd.MarkFlagsMutuallyExclusive("body", "file")
	cmd.MarkFlagsMutuallyExclusive("flow-table", "function")

	return cmd
}

func runInvoke(cmd *cobra.Command, opts *invokeOptions, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	body, err := readBody(cmd.InOrStdin(), opts)
	if err != nil {
		return err
	}

	var resp actioncontract.ProxyResponse
	if opts.function != "" {
		resp, err = invokeFunction(ctx, opts, body)
		if err != nil {
			return err
		}
	} else {
		svc, err := newService(ctx, opts, logger)
		if err != nil {
			return err
		}
		resp, _ = backend.New(svc, logger).Handle(ctx, backend.Request{
			RequestID: "cnhctl",
			Path:      opts.path,
			Method:    opts.method,
			Body:      body,
		})
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func readBody(stdin io.Reader, opts *invokeOptions) ([]byte, error) {
	switch opts.file {
	case "":
		return []byte(opts.body), nil
	case "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	default:
		data, err := os.ReadFile(opts.file)
		if err != nil {
			return nil, fmt.Errorf("failed to read body file: %w", err)
		}
		return data, nil
	}
}

func loadAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}

func newService(ctx context.Context, opts *invokeOptions, logger *slog.Logger) (*operation.Service, error) {
	if opts.flowTable == "" {
		return operation.NewService(), nil
	}
	cfg, err := loadAWSConfig(ctx, opts.region)
	if err != nil {
		return nil, err
	}
	logger.DebugContext(ctx, "Flow registry enabled", slog.String("table", opts.flowTable))
	registry := flow.NewRegistry(dynamodb.NewFromConfig(cfg), opts.flowTable, flow.DefaultTTL)
	return operation.NewService(operation.WithFlowStore(registry)), nil
}

func invokeFunction(ctx context.Context, opts *invokeOptions, body []byte) (actioncontract.ProxyResponse, error) {
	cfg, err := loadAWSConfig(ctx, opts.region)
	if err != nil {
		return actioncontract.ProxyResponse{}, err
	}

	raw := json.RawMessage(body)
	if len(body) > 0 && !json.Valid(body) {
		raw, err = json.Marshal(string(body))
		if err != nil {
			return actioncontract.ProxyResponse{}, err
		}
	}

	client := upstream.NewLambdaClient(lambda.NewFromConfig(cfg), opts.function)
	resp, err := client.Do(ctx, upstream.Request{
		Method: opts.method,
		Path:   opts.path,
		Body:   raw,
	})
	if err != nil {
		return actioncontract.ProxyResponse{}, err
	}
	return actioncontract.ProxyResponse{
		StatusCode: resp.StatusCode,
		Headers:    map[string]string{"Content-Type": resp.ContentType},
		Body:       string(resp.Body),
	}, nil
}
