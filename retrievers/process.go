// Copyright Smoke AWS Credentials Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package retrievers

import (
	"context"
	"os/exec"
	"strconv"

	"github.com/go-logr/logr"

	"github.com/amzn/smoke-aws-credentials/credentials"
)

const (
	// DevRoleARNEnvVar selects the subprocess retriever in dev builds.
	DevRoleARNEnvVar = "DEV_CREDENTIALS_IAM_ROLE_ARN"

	// devCredentialsCommand is the helper script invoked to mint dev
	// credentials.
	devCredentialsCommand = "/usr/local/bin/get-credentials.sh"

	// devCredentialsDuration is the credential lifetime requested from the
	// helper script, in seconds.
	devCredentialsDuration = 900
)

// ProcessRetriever obtains credentials by invoking a helper executable that
// writes the JSON credential payload to stdout. It backs the dev-mode flow
// where a workstation-local script assumes the role.
type ProcessRetriever struct {
	command         string
	roleARN         string
	durationSeconds int
	logger          logr.Logger
}

// NewProcessRetriever creates a retriever invoking the dev credentials script
// for the given role.
func NewProcessRetriever(roleARN string, logger logr.Logger) *ProcessRetriever {
	return &ProcessRetriever{
		command:         devCredentialsCommand,
		roleARN:         roleARN,
		durationSeconds: devCredentialsDuration,
		logger:          logger,
	}
}

// GetCredentials runs the helper and decodes its stdout. A failed or killed
// process yields a TransportError; payload validation failures yield
// MissingCredentialsError.
func (r *ProcessRetriever) GetCredentials(ctx context.Context) (credentials.ExpiringCredentials, error) {
	cmd := exec.CommandContext(ctx, r.command,
		"-r", r.roleARN,
		"-d", strconv.Itoa(r.durationSeconds))
	out, err := cmd.Output()
	if err != nil {
		return credentials.ExpiringCredentials{}, &credentials.TransportError{Err: err}
	}
	creds, err := credentials.ParsePayload(out)
	if err != nil {
		return credentials.ExpiringCredentials{}, err
	}
	r.logger.V(1).Info("retrieved dev credentials from subprocess",
		"role", r.roleARN,
		"expiration", creds.Expiration)
	return creds, nil
}

// Shutdown implements [credentials.Retriever]. The helper runs to completion
// per call, so there is nothing to release.
func (r *ProcessRetriever) Shutdown(context.Context) error {
	return nil
}
