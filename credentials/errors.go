// Copyright Smoke AWS Credentials Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package credentials

import (
	"errors"
	"fmt"
)

// ErrShutDown is returned by provider operations invoked once shutdown has
// begun.
var ErrShutDown = errors.New("credentials provider is shut down")

// ErrRefreshCancelled is delivered to refresh waiters when an in-flight
// refresh is cancelled by shutdown.
var ErrRefreshCancelled = errors.New("credentials refresh cancelled")

// MissingCredentialsError indicates that a credential payload failed
// validation: a "null" placeholder value, an expiration already in the past,
// or a field that could not be decoded.
type MissingCredentialsError struct {
	// Reason describes what made the payload unusable.
	Reason string
}

// Error implements the error interface.
func (e *MissingCredentialsError) Error() string {
	return fmt.Sprintf("missing credentials: %s", e.Reason)
}

// RoleAssumptionError indicates that an STS AssumeRole call failed or
// returned no credentials.
type RoleAssumptionError struct {
	// ARN is the role that could not be assumed.
	ARN string
	// Err is the underlying STS or validation failure.
	Err error
}

// Error implements the error interface.
func (e *RoleAssumptionError) Error() string {
	return fmt.Sprintf("failed to assume role %q: %v", e.ARN, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is and errors.As.
func (e *RoleAssumptionError) Unwrap() error { return e.Err }

// TransportError indicates a lower-level I/O failure from the container
// metadata endpoint or the credentials subprocess.
type TransportError struct {
	// Err is the underlying I/O failure.
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("credentials transport failure: %v", e.Err)
}

// Unwrap exposes the underlying cause for errors.Is and errors.As.
func (e *TransportError) Unwrap() error { return e.Err }
