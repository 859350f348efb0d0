// Package flow persists the continuation identifiers minted by identity
// confirmation so later operations can verify them.
package flow

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// Key prefixes for single-table design
const (
	PKPrefixFlow = "FLOW#"
	SKMeta       = "META#"
)

// DefaultTTL is how long a flow stays valid after confirmation
const DefaultTTL = 24 * time.Hour

// DynamoDBClient defines the interface for DynamoDB operations
type DynamoDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// Record is a flow registration in DynamoDB
type Record struct {
	PK        string `dynamodbav:"pk"`
	SK        string `dynamodbav:"sk"`
	FlowID    string `dynamodbav:"flowId"`
	CPF       string `dynamodbav:"cpf"`
	CreatedAt string `dynamodbav:"createdAt"`
	ExpiresAt int64  `dynamodbav:"expiresAt"` // epoch seconds, table TTL attribute
}

// Registry stores flows in a DynamoDB table
type Registry struct {
	ddb       DynamoDBClient
	tableName string
	ttl       time.Duration
	now       func() time.Time
}

// NewRegistry creates a flow registry. A non-positive ttl uses DefaultTTL.
func NewRegistry(client DynamoDBClient, tableName string, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{
		ddb:       client,
		tableName: tableName,
		ttl:       ttl,
		now:       time.Now,
	}
}

func flowKey(flowID string) (map[string]string, error) {
	if flowID == "" {
		return nil, fmt.Errorf("flow id is empty")
	}
	return map[string]string{"pk": PKPrefixFlow + flowID, "sk": SKMeta}, nil
}

// Register records a newly minted flow. Flow ids are never reused, so an
// existing item fails the write.
func (r *Registry) Register(ctx context.Context, flowID, cpf string) error {
	key, err := flowKey(flowID)
	if err != nil {
		return err
	}
	now := r.now().UTC()
	record := Record{
		PK:        key["pk"],
		SK:        key["sk"],
		FlowID:    flowID,
		CPF:       cpf,
		CreatedAt: now.Format(time.RFC3339),
		ExpiresAt: now.Add(r.ttl).Unix(),
	}

	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("failed to marshal flow record: %w", err)
	}

	cond := expression.AttributeNotExists(expression.Name("pk"))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tableName),
		Item:                     item,
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		return fmt.Errorf("failed to put flow record: %w", err)
	}
	return nil
}

// Lookup returns the CPF a flow was confirmed for. Expired flows are reported
// as not found even before the table TTL removes them.
func (r *Registry) Lookup(ctx context.Context, flowID string) (string, bool, error) {
	key, err := flowKey(flowID)
	if err != nil {
		return "", false, nil
	}
	av, err := attributevalue.MarshalMap(key)
	if err != nil {
		return "", false, fmt.Errorf("failed to marshal key: %w", err)
	}

	output, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            av,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to get flow record: %w", err)
	}
	if len(output.Item) == 0 {
		return "", false, nil
	}

	var record Record
	if err := attributevalue.UnmarshalMap(output.Item, &record); err != nil {
		return "", false, fmt.Errorf("failed to unmarshal flow record: %w", err)
	}
	if record.ExpiresAt != 0 && r.now().Unix() >= record.ExpiresAt {
		return "", false, nil
	}
	return record.CPF, true, nil
}

// TTLFromEnv parses an hour count, falling back to DefaultTTL
func TTLFromEnv(hours string) time.Duration {
	if hours == "" {
		return DefaultTTL
	}
	n, err := strconv.Atoi(hours)
	if err != nil || n <= 0 {
		return DefaultTTL
	}
	return time.Duration(n) * time.Hour
}
