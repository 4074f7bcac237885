// Copyright Smoke AWS Credentials Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package retrievers

import (
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"

	"github.com/amzn/smoke-aws-credentials/credentials"
)

func TestFromEnvironment(t *testing.T) {
	t.Run("container endpoint takes precedence", func(t *testing.T) {
		t.Setenv(RelativeURIEnvVar, "/v2/credentials/uuid")
		t.Setenv(AccessKeyIDEnvVar, "AKIATEST")
		t.Setenv(SecretAccessKeyEnvVar, "secret")

		retriever, err := FromEnvironment(logr.Discard())
		require.NoError(t, err)
		require.IsType(t, &ECSContainerRetriever{}, retriever)
	})

	t.Run("static fallback", func(t *testing.T) {
		t.Setenv(RelativeURIEnvVar, "")
		t.Setenv(AccessKeyIDEnvVar, "AKIATEST")
		t.Setenv(SecretAccessKeyEnvVar, "secret")

		retriever, err := FromEnvironment(logr.Discard())
		require.NoError(t, err)
		require.IsType(t, &StaticRetriever{}, retriever)
	})

	t.Run("nothing configured", func(t *testing.T) {
		t.Setenv(RelativeURIEnvVar, "")
		t.Setenv(AccessKeyIDEnvVar, "")
		t.Setenv(DevRoleARNEnvVar, "")

		_, err := FromEnvironment(logr.Discard())
		var missing *credentials.MissingCredentialsError
		require.ErrorAs(t, err, &missing)
	})
}
