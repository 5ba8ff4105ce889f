package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"go.opentelemetry.io/otel/metric"
)

// EC2API is the subset of the EC2 client used by the gateway.
type EC2API interface {
	RunInstances(ctx context.Context, params *ec2.RunInstancesInput, optFns ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error)
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	CreateKeyPair(ctx context.Context, params *ec2.CreateKeyPairInput, optFns ...func(*ec2.Options)) (*ec2.CreateKeyPairOutput, error)
}

// DynamoDBAPI is the subset of the DynamoDB client used by the gateway.
type DynamoDBAPI interface {
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// AutoScalingAPI is the subset of the Auto Scaling client used by the gateway.
type AutoScalingAPI interface {
	CreateAutoScalingGroup(ctx context.Context, params *autoscaling.CreateAutoScalingGroupInput, optFns ...func(*autoscaling.Options)) (*autoscaling.CreateAutoScalingGroupOutput, error)
}

// CloudWatchAPI is the subset of the CloudWatch client used by the gateway.
type CloudWatchAPI interface {
	GetMetricStatistics(ctx context.Context, params *cloudwatch.GetMetricStatisticsInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricStatisticsOutput, error)
}

// Clients bundles the service clients. Tests substitute fakes.
type Clients struct {
	EC2         EC2API
	DynamoDB    DynamoDBAPI
	AutoScaling AutoScalingAPI
	CloudWatch  CloudWatchAPI
}

// AWS implements Gateway against the AWS APIs.
type AWS struct {
	clients  Clients
	subnetID string
	logger   *slog.Logger
	metrics  *Metrics
}

var _ Gateway = (*AWS)(nil)

// LoadAWSConfig resolves credentials from the default chain. The SDK retryer
// is replaced with aws.NopRetryer so each operation is attempted once.
func LoadAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }),
	}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

// NewClients builds the real service clients from an aws.Config.
func NewClients(cfg aws.Config) Clients {
	return Clients{
		EC2:         ec2.NewFromConfig(cfg),
		DynamoDB:    dynamodb.NewFromConfig(cfg),
		AutoScaling: autoscaling.NewFromConfig(cfg),
		CloudWatch:  cloudwatch.NewFromConfig(cfg),
	}
}

// NewAWS creates the gateway. subnetID is used for autoscaling groups and for
// launches whose spec leaves SubnetID empty. logger and meter may be nil.
func NewAWS(clients Clients, subnetID string, logger *slog.Logger, meter metric.Meter) (*AWS, error) {
	if clients.EC2 == nil || clients.DynamoDB == nil || clients.AutoScaling == nil || clients.CloudWatch == nil {
		return nil, fmt.Errorf("gateway: all service clients are required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	g := &AWS{
		clients:  clients,
		subnetID: subnetID,
		logger:   logger,
	}

	if meter != nil {
		metrics, err := newMetrics(meter)
		if err != nil {
			return nil, fmt.Errorf("create metrics: %w", err)
		}
		g.metrics = metrics
	}

	return g, nil
}

// observe logs and records the outcome of one provider call and returns the
// wrapped error.
func (g *AWS) observe(ctx context.Context, op string, start time.Time, err error) error {
	wrapped := wrapError(op, err)
	g.metrics.recordCall(ctx, op, time.Since(start), wrapped)

	if wrapped != nil {
		g.logger.DebugContext(ctx, "provider call failed", "op", op, "error", wrapped, "duration_ms", time.Since(start).Milliseconds())
		return wrapped
	}
	g.logger.DebugContext(ctx, "provider call succeeded", "op", op, "duration_ms", time.Since(start).Milliseconds())
	return nil
}
