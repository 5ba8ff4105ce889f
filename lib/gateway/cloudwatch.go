package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

const (
	cpuNamespace  = "AWS/EC2"
	cpuMetricName = "CPUUtilization"
	cpuDimension  = "InstanceId"
)

// GetCPUUtilization returns the average CPU utilization of an instance over
// window. An empty series is a valid result.
func (g *AWS) GetCPUUtilization(ctx context.Context, instanceID string, window Window) (series MetricSeries, err error) {
	const op = "GetCPUUtilization"
	start := time.Now()
	defer func() { err = g.observe(ctx, op, start, err) }()

	period := int32(window.Period / time.Second)
	if period <= 0 {
		return nil, fmt.Errorf("invalid period %s", window.Period)
	}

	out, err := g.clients.CloudWatch.GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
		Namespace:  aws.String(cpuNamespace),
		MetricName: aws.String(cpuMetricName),
		Dimensions: []cwtypes.Dimension{
			{Name: aws.String(cpuDimension), Value: aws.String(instanceID)},
		},
		StartTime:  aws.Time(window.Start),
		EndTime:    aws.Time(window.End),
		Period:     aws.Int32(period),
		Statistics: []cwtypes.Statistic{cwtypes.StatisticAverage},
	})
	if err != nil {
		return nil, err
	}

	series = make(MetricSeries, 0, len(out.Datapoints))
	for _, dp := range out.Datapoints {
		if dp.Timestamp == nil || dp.Average == nil {
			continue
		}
		series = append(series, Datapoint{
			Timestamp: aws.ToTime(dp.Timestamp),
			Value:     aws.ToFloat64(dp.Average),
		})
	}
	return series, nil
}
