// Copyright Smoke AWS Credentials Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package retrievers

import (
	"context"
	"os"

	"github.com/amzn/smoke-aws-credentials/credentials"
)

// Environment variables carrying static long-lived credentials.
const (
	AccessKeyIDEnvVar     = "AWS_ACCESS_KEY_ID"
	SecretAccessKeyEnvVar = "AWS_SECRET_ACCESS_KEY"
	SessionTokenEnvVar    = "AWS_SESSION_TOKEN"
)

// StaticRetriever hands out a fixed credential set. It never rotates and
// carries no expiration.
type StaticRetriever struct {
	creds credentials.ExpiringCredentials
}

// NewStaticRetriever creates a retriever around a fixed credential set.
func NewStaticRetriever(creds credentials.ExpiringCredentials) *StaticRetriever {
	return &StaticRetriever{creds: creds}
}

// NewStaticRetrieverFromEnvironment builds a static retriever from
// AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY, and the optional
// AWS_SESSION_TOKEN.
func NewStaticRetrieverFromEnvironment() (*StaticRetriever, error) {
	creds, err := credentials.NewExpiringCredentials(
		os.Getenv(AccessKeyIDEnvVar),
		os.Getenv(SecretAccessKeyEnvVar),
		os.Getenv(SessionTokenEnvVar),
		nil,
	)
	if err != nil {
		return nil, err
	}
	return NewStaticRetriever(creds), nil
}

// GetCredentials implements [credentials.Retriever].
func (r *StaticRetriever) GetCredentials(context.Context) (credentials.ExpiringCredentials, error) {
	return r.creds, nil
}

// Shutdown implements [credentials.Retriever].
func (r *StaticRetriever) Shutdown(context.Context) error {
	return nil
}
