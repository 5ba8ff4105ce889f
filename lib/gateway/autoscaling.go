package gateway

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
)

const (
	asgMinSize         = 1
	asgMaxSize         = 3
	asgDesiredCapacity = 1
)

// ASGName is the group name derived from the seed instance.
func ASGName(instanceID string) string {
	return instanceID + "-asg"
}

// CreateAutoscalingGroup creates a group seeded from instanceID in the
// configured subnet and attaches it to targetGroupARN.
func (g *AWS) CreateAutoscalingGroup(ctx context.Context, instanceID, targetGroupARN string) (err error) {
	const op = "CreateAutoscalingGroup"
	start := time.Now()
	defer func() { err = g.observe(ctx, op, start, err) }()

	_, err = g.clients.AutoScaling.CreateAutoScalingGroup(ctx, &autoscaling.CreateAutoScalingGroupInput{
		AutoScalingGroupName: aws.String(ASGName(instanceID)),
		InstanceId:           aws.String(instanceID),
		MinSize:              aws.Int32(asgMinSize),
		MaxSize:              aws.Int32(asgMaxSize),
		DesiredCapacity:      aws.Int32(asgDesiredCapacity),
		VPCZoneIdentifier:    aws.String(g.subnetID),
		TargetGroupARNs:      []string{targetGroupARN},
	})
	return err
}
