package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/adityagautam-dev/aws-telegram-bot/lib/secret"
)

// LaunchInstance starts exactly one instance tagged with spec.Name.
func (g *AWS) LaunchInstance(ctx context.Context, spec InstanceSpec) (id string, err error) {
	const op = "LaunchInstance"
	start := time.Now()
	defer func() { err = g.observe(ctx, op, start, err) }()

	subnetID := spec.SubnetID
	if subnetID == "" {
		subnetID = g.subnetID
	}

	out, err := g.clients.EC2.RunInstances(ctx, &ec2.RunInstancesInput{
		ImageId:      aws.String(spec.ImageID),
		InstanceType: ec2types.InstanceType(spec.InstanceType),
		KeyName:      aws.String(spec.KeyName),
		SubnetId:     aws.String(subnetID),
		MinCount:     aws.Int32(1),
		MaxCount:     aws.Int32(1),
		TagSpecifications: []ec2types.TagSpecification{
			{
				ResourceType: ec2types.ResourceTypeInstance,
				Tags: []ec2types.Tag{
					{Key: aws.String("Name"), Value: aws.String(spec.Name)},
				},
			},
		},
	})
	if err != nil {
		return "", err
	}

	if len(out.Instances) == 0 || aws.ToString(out.Instances[0].InstanceId) == "" {
		return "", ErrNoInstanceLaunched
	}
	return aws.ToString(out.Instances[0].InstanceId), nil
}

// DescribeInstance looks up one instance by id.
func (g *AWS) DescribeInstance(ctx context.Context, instanceID string) (desc *InstanceDescription, err error) {
	const op = "DescribeInstance"
	start := time.Now()
	defer func() { err = g.observe(ctx, op, start, err) }()

	out, err := g.clients.EC2.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []string{instanceID},
	})
	if err != nil {
		return nil, err
	}

	for _, reservation := range out.Reservations {
		for _, inst := range reservation.Instances {
			if aws.ToString(inst.InstanceId) != instanceID {
				continue
			}
			d := &InstanceDescription{
				InstanceID:    instanceID,
				PublicDNSName: aws.ToString(inst.PublicDnsName),
			}
			if inst.State != nil {
				d.State = string(inst.State.Name)
			}
			return d, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrInstanceNotFound, instanceID)
}

// CreateKeyPair creates a key pair and moves the private key into a locked
// buffer. The SDK's copy of the string cannot be wiped; ours can.
func (g *AWS) CreateKeyPair(ctx context.Context, keyName string) (material *KeyMaterial, err error) {
	const op = "CreateKeyPair"
	start := time.Now()
	defer func() { err = g.observe(ctx, op, start, err) }()

	out, err := g.clients.EC2.CreateKeyPair(ctx, &ec2.CreateKeyPairInput{
		KeyName: aws.String(keyName),
	})
	if err != nil {
		return nil, err
	}

	pem := aws.ToString(out.KeyMaterial)
	if pem == "" {
		return nil, ErrEmptyKeyMaterial
	}

	buf, err := secret.NewFromBytes([]byte(pem))
	if err != nil {
		return nil, fmt.Errorf("protect key material: %w", err)
	}

	name := aws.ToString(out.KeyName)
	if name == "" {
		name = keyName
	}
	return &KeyMaterial{KeyName: name, Private: buf}, nil
}
