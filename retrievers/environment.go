// Copyright Smoke AWS Credentials Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package retrievers

import (
	"os"

	"github.com/go-logr/logr"

	"github.com/amzn/smoke-aws-credentials/credentials"
)

// FromEnvironment picks a retriever from the process environment:
// AWS_CONTAINER_CREDENTIALS_RELATIVE_URI selects the ECS container retriever,
// DEV_CREDENTIALS_IAM_ROLE_ARN selects the subprocess retriever in builds
// with the dev tag, and the static AWS_ACCESS_KEY_ID family is the fallback.
// When no source is configured a MissingCredentialsError is returned.
func FromEnvironment(logger logr.Logger) (credentials.Retriever, error) {
	if uri := os.Getenv(RelativeURIEnvVar); uri != "" {
		logger.V(1).Info("using container endpoint credentials", "relativeURI", uri)
		return NewECSContainerRetriever(uri, logger), nil
	}
	if r := devRetrieverFromEnvironment(logger); r != nil {
		return r, nil
	}
	if os.Getenv(AccessKeyIDEnvVar) != "" {
		logger.V(1).Info("using static environment credentials")
		return NewStaticRetrieverFromEnvironment()
	}
	return nil, &credentials.MissingCredentialsError{
		Reason: "no credentials source configured in the environment",
	}
}
