// Package gateway performs the single AWS call behind each bot command.
//
// Every operation makes exactly one attempt and returns either its result or
// a *ProviderError. LoadAWSConfig disables the SDK's own retryer so that
// one command maps to one request.
package gateway

import (
	"context"
	"time"

	"github.com/adityagautam-dev/aws-telegram-bot/lib/secret"
)

// Gateway is the provider surface the command handlers need.
type Gateway interface {
	LaunchInstance(ctx context.Context, spec InstanceSpec) (string, error)
	CreateTable(ctx context.Context, name string) error
	CreateAutoscalingGroup(ctx context.Context, instanceID, targetGroupARN string) error
	DescribeInstance(ctx context.Context, instanceID string) (*InstanceDescription, error)
	CreateKeyPair(ctx context.Context, keyName string) (*KeyMaterial, error)
	GetCPUUtilization(ctx context.Context, instanceID string, window Window) (MetricSeries, error)
}

// InstanceSpec describes an instance to launch. ImageID and SubnetID come
// from process configuration, the rest from the command.
type InstanceSpec struct {
	Name         string
	InstanceType string
	KeyName      string
	ImageID      string
	SubnetID     string
}

// InstanceDescription is the subset of instance state the bot reports.
type InstanceDescription struct {
	InstanceID    string
	PublicDNSName string
	State         string
}

// HasPublicDNS reports whether the instance can be reached over SSH.
func (d *InstanceDescription) HasPublicDNS() bool {
	return d != nil && d.PublicDNSName != ""
}

// KeyMaterial is a freshly created private key. The caller owns it and must
// Close it once the key has been handed to the user.
type KeyMaterial struct {
	KeyName string
	Private *secret.Buffer
}

// Bytes returns the PEM bytes. See secret.Buffer.Bytes.
func (k *KeyMaterial) Bytes() []byte { return k.Private.Bytes() }

// Len returns the PEM length.
func (k *KeyMaterial) Len() int { return k.Private.Len() }

// Close wipes the key.
func (k *KeyMaterial) Close() error {
	if k == nil || k.Private == nil {
		return nil
	}
	return k.Private.Close()
}

// Datapoint is one aggregated metric sample.
type Datapoint struct {
	Timestamp time.Time
	Value     float64
}

// MetricSeries is a list of samples in provider order (not necessarily sorted).
type MetricSeries []Datapoint

// Window is a time range sampled at a fixed aggregation period.
type Window struct {
	Start  time.Time
	End    time.Time
	Period time.Duration
}

// TrailingWindow returns the window of length d ending at now.
func TrailingWindow(now time.Time, d, period time.Duration) Window {
	return Window{
		Start:  now.Add(-d),
		End:    now,
		Period: period,
	}
}
