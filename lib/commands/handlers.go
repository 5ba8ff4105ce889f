package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/adityagautam-dev/aws-telegram-bot/lib/clock"
	"github.com/adityagautam-dev/aws-telegram-bot/lib/gateway"
	"github.com/adityagautam-dev/aws-telegram-bot/lib/logger"
	"github.com/adityagautam-dev/aws-telegram-bot/lib/render"
	"github.com/adityagautam-dev/aws-telegram-bot/lib/replies"
)

const helpHeader = "Hello! Here are the available commands:"

// Handlers holds what the AWS commands need besides their arguments.
type Handlers struct {
	Gateway   gateway.Gateway
	Clock     clock.Clock
	ImageID   string
	SubnetID  string
	SSHUser   string
	CPUWindow time.Duration
	CPUPeriod time.Duration
}

// NewDefaultRegistry registers start, the AWS commands and help.
func NewDefaultRegistry(h *Handlers) (*Registry, error) {
	return NewRegistry(h.Commands()...)
}

// Commands returns the full command set in help order.
func (h *Handlers) Commands() []Command {
	aws := []Command{
		{
			Name:        "launch",
			Args:        []string{"<instance_name>", "<instance_type>", "<key_name>"},
			Description: "Launch an EC2 instance",
			Failure:     "Failed to launch instance.",
			Handler:     h.launch,
		},
		{
			Name:        "dynamo",
			Args:        []string{"<table_name>"},
			Description: "Create a DynamoDB table",
			Failure:     "Failed to create DynamoDB table.",
			Handler:     h.dynamo,
		},
		{
			Name:        "autoscale",
			Args:        []string{"<instance_id>", "<target_group_arn>"},
			Description: "Setup autoscaling",
			Failure:     "Failed to create autoscaling group.",
			Handler:     h.autoscale,
		},
		{
			Name:        "cpu",
			Args:        []string{"<instance_id>"},
			Description: "Get CPU utilization graph",
			Failure:     "Failed to retrieve CPU utilization.",
			Handler:     h.cpu,
		},
		{
			Name:        "connect",
			Args:        []string{"<instance_id>"},
			Description: "Connect to an EC2 instance",
			Failure:     "Failed to retrieve instance details.",
			Handler:     h.connect,
		},
		{
			Name:        "create_keypair",
			Args:        []string{"<key_name>"},
			Description: "Create a new key pair and download it",
			Failure:     "Failed to create key pair.",
			Handler:     h.createKeyPair,
		},
	}

	help := staticText(HelpText(aws))
	all := []Command{{
		Name:        "start",
		Description: "List the available commands",
		Failure:     "Failed to list commands.",
		Handler:     help,
	}}
	all = append(all, aws...)
	all = append(all, Command{
		Name:        "help",
		Description: "List the available commands",
		Failure:     "Failed to list commands.",
		Handler:     help,
	})
	return all
}

// HelpText lists cmds one per line as "/name <args> - description".
func HelpText(cmds []Command) string {
	var b strings.Builder
	b.WriteString(helpHeader)
	for _, cmd := range cmds {
		fmt.Fprintf(&b, "\n%s - %s", cmd.Synopsis(), cmd.Description)
	}
	return b.String()
}

func staticText(body string) HandlerFunc {
	return func(context.Context, []string) ([]replies.Reply, error) {
		return []replies.Reply{replies.Text{Body: body}}, nil
	}
}

func (h *Handlers) launch(ctx context.Context, args []string) ([]replies.Reply, error) {
	spec := gateway.InstanceSpec{
		Name:         args[0],
		InstanceType: args[1],
		KeyName:      args[2],
		ImageID:      h.ImageID,
		SubnetID:     h.SubnetID,
	}

	id, err := h.Gateway.LaunchInstance(ctx, spec)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).InfoContext(ctx, "instance launched", "instance_id", id, "instance_type", spec.InstanceType)
	return []replies.Reply{replies.Text{Body: "Instance ID: " + id}}, nil
}

func (h *Handlers) dynamo(ctx context.Context, args []string) ([]replies.Reply, error) {
	table := args[0]
	if err := h.Gateway.CreateTable(ctx, table); err != nil {
		return nil, err
	}
	return []replies.Reply{replies.Text{Body: fmt.Sprintf("DynamoDB table \"%s\" created.", table)}}, nil
}

func (h *Handlers) autoscale(ctx context.Context, args []string) ([]replies.Reply, error) {
	instanceID, targetGroupARN := args[0], args[1]
	if err := h.Gateway.CreateAutoscalingGroup(ctx, instanceID, targetGroupARN); err != nil {
		return nil, err
	}
	return []replies.Reply{replies.Text{Body: fmt.Sprintf("Autoscaling group created for instance %s.", instanceID)}}, nil
}

func (h *Handlers) cpu(ctx context.Context, args []string) ([]replies.Reply, error) {
	window := gateway.TrailingWindow(h.Clock.Now(), h.CPUWindow, h.CPUPeriod)

	series, err := h.Gateway.GetCPUUtilization(ctx, args[0], window)
	if err != nil {
		return nil, err
	}

	reply, err := render.CPUChart(series, render.WindowCaption(h.CPUWindow))
	if err != nil {
		return nil, fmt.Errorf("render cpu chart: %w", err)
	}
	return []replies.Reply{reply}, nil
}

func (h *Handlers) connect(ctx context.Context, args []string) ([]replies.Reply, error) {
	desc, err := h.Gateway.DescribeInstance(ctx, args[0])
	if err != nil {
		return nil, err
	}
	if !desc.HasPublicDNS() {
		return []replies.Reply{replies.Text{Body: render.NotReadyText}}, nil
	}
	return []replies.Reply{replies.Text{Body: render.SSHHint(h.SSHUser, desc.PublicDNSName)}}, nil
}

func (h *Handlers) createKeyPair(ctx context.Context, args []string) ([]replies.Reply, error) {
	name := args[0]

	material, err := h.Gateway.CreateKeyPair(ctx, name)
	if err != nil {
		return nil, err
	}

	return []replies.Reply{
		render.KeyFile(material),
		replies.Text{Body: render.KeyCreatedText(name)},
	}, nil
}
