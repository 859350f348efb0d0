package gatewayconfig

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ParameterReader reads parameters from SSM Parameter Store
type ParameterReader interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// SecretReader reads secret strings
type SecretReader interface {
	GetSecret(ctx context.Context, secretARN string) (string, error)
}

// SSMAPI defines the interface for SSM operations
type SSMAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// SecretsManagerAPI defines the interface for Secrets Manager operations
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SSMParameterReader implements ParameterReader using AWS SSM
type SSMParameterReader struct {
	client SSMAPI
}

// NewSSMParameterReader creates a new SSMParameterReader
func NewSSMParameterReader(client SSMAPI) *SSMParameterReader {
	return &SSMParameterReader{client: client}
}

// GetParameter retrieves a parameter from SSM, decrypting SecureString values
func (r *SSMParameterReader) GetParameter(ctx context.Context, name string) (string, error) {
	result, err := r.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", err
	}

	if result.Parameter == nil || result.Parameter.Value == nil {
		return "", fmt.Errorf("parameter value is empty")
	}

	return *result.Parameter.Value, nil
}

// SecretsManagerReader implements SecretReader using AWS Secrets Manager
type SecretsManagerReader struct {
	client SecretsManagerAPI
}

// NewSecretsManagerReader creates a new SecretsManagerReader
func NewSecretsManagerReader(client SecretsManagerAPI) *SecretsManagerReader {
	return &SecretsManagerReader{client: client}
}

// GetSecret retrieves a secret string from Secrets Manager
func (s *SecretsManagerReader) GetSecret(ctx context.Context, secretARN string) (string, error) {
	result, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretARN),
	})
	if err != nil {
		return "", err
	}

	if result.SecretString == nil {
		return "", fmt.Errorf("secret string is empty")
	}

	return *result.SecretString, nil
}
