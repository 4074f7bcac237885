// Copyright Smoke AWS Credentials Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

//go:build dev

package retrievers

import (
	"os"

	"github.com/go-logr/logr"

	"github.com/amzn/smoke-aws-credentials/credentials"
)

// devRetrieverFromEnvironment selects the subprocess retriever when a dev
// role is configured. Only dev builds compile this in.
func devRetrieverFromEnvironment(logger logr.Logger) credentials.Retriever {
	arn := os.Getenv(DevRoleARNEnvVar)
	if arn == "" {
		return nil
	}
	logger.V(1).Info("using dev subprocess credentials", "role", arn)
	return NewProcessRetriever(arn, logger)
}
