// Package events publishes domain events to an SQS queue.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jarrod-lowe/cnh-agent-actions/pkg/actioncontract"
)

// SQSClient is the interface for SQS operations
type SQSClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// Publisher sends events to a single queue
type Publisher struct {
	client   SQSClient
	queueURL string
}

// NewPublisher creates a Publisher. queue may be a queue URL or a queue ARN.
func NewPublisher(client SQSClient, queue string) *Publisher {
	return &Publisher{client: client, queueURL: QueueURL(queue)}
}

// Publish sends payload as one message
func (p *Publisher) Publish(ctx context.Context, payload actioncontract.EventPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	_, err = p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("failed to send event %s: %w", payload.EventType, err)
	}
	return nil
}

// QueueURL converts an SQS ARN to a queue URL. Anything else is returned as is.
// arn:aws:sqs:region:account:queue-name -> https://sqs.region.amazonaws.com/account/queue-name
func QueueURL(queue string) string {
	if !strings.HasPrefix(queue, "arn:") {
		return queue
	}
	parts := strings.Split(queue, ":")
	if len(parts) != 6 {
		return queue
	}
	region := parts[3]
	account := parts[4]
	queueName := parts[5]
	return fmt.Sprintf("https://sqs.%s.amazonaws.com/%s/%s", region, account, queueName)
}

// GuideIssued builds the payment_guide.issued event from the session
// attributes promoted for an issued guide
func GuideIssued(sessionID string, session map[string]string, at time.Time) actioncontract.EventPayload {
	data := make(map[string]string)
	for k, v := range session {
		if strings.HasPrefix(k, "dae_") {
			data[k] = v
		}
	}
	return actioncontract.EventPayload{
		EventType:  actioncontract.EventGuideIssued,
		OccurredAt: at.UTC().Format(time.RFC3339),
		SessionID:  sessionID,
		Data:       data,
	}
}
