package gateway

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

var (
	// ErrInstanceNotFound is returned when DescribeInstances has no match.
	ErrInstanceNotFound = errors.New("instance not found")

	// ErrNoInstanceLaunched is returned when RunInstances succeeds without
	// reporting an instance.
	ErrNoInstanceLaunched = errors.New("no instance launched")

	// ErrEmptyKeyMaterial is returned when CreateKeyPair returns no key.
	ErrEmptyKeyMaterial = errors.New("provider returned empty key material")
)

// ProviderError wraps any failure of a gateway operation.
type ProviderError struct {
	// Op is the gateway operation, e.g. "LaunchInstance".
	Op string
	// Code is the AWS error code when the provider returned one.
	Code string
	Err  error
}

func (e *ProviderError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// wrapError converts err into a *ProviderError, extracting the AWS code.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	pe := &ProviderError{Op: op, Err: err}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		pe.Code = apiErr.ErrorCode()
	}
	return pe
}

// IsProviderError reports whether err came from a gateway operation.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}
