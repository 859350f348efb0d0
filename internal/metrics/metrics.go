// Package metrics publishes gateway outcome metrics to CloudWatch.
package metrics

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Metric names
const (
	UpstreamFailure   = "UpstreamFailure"
	UpstreamLatencyMs = "UpstreamLatencyMs"
	GuideIssued       = "GuideIssued"
)

// Publisher publishes metrics
type Publisher interface {
	Count(ctx context.Context, name, operation string) error
	Latency(ctx context.Context, name, operation string, d time.Duration) error
}

// CloudWatchAPI defines the interface for CloudWatch operations
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchPublisher implements Publisher using CloudWatch
type CloudWatchPublisher struct {
	client    CloudWatchAPI
	namespace string
}

// NewCloudWatchPublisher creates a new CloudWatchPublisher
func NewCloudWatchPublisher(client CloudWatchAPI, namespace string) *CloudWatchPublisher {
	return &CloudWatchPublisher{
		client:    client,
		namespace: namespace,
	}
}

// Count publishes a single occurrence
func (p *CloudWatchPublisher) Count(ctx context.Context, name, operation string) error {
	return p.put(ctx, name, operation, 1, types.StandardUnitCount)
}

// Latency publishes a duration in milliseconds
func (p *CloudWatchPublisher) Latency(ctx context.Context, name, operation string, d time.Duration) error {
	return p.put(ctx, name, operation, float64(d.Milliseconds()), types.StandardUnitMilliseconds)
}

func (p *CloudWatchPublisher) put(ctx context.Context, name, operation string, value float64, unit types.StandardUnit) error {
	_, err := p.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(p.namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String(name),
				Dimensions: []types.Dimension{
					{Name: aws.String("Operation"), Value: aws.String(operation)},
				},
				Value: aws.Float64(value),
				Unit:  unit,
			},
		},
	})
	return err
}

// Nop discards every metric
type Nop struct{}

// Count does nothing
func (Nop) Count(context.Context, string, string) error { return nil }

// Latency does nothing
func (Nop) Latency(context.Context, string, string, time.Duration) error { return nil }
