// Copyright Smoke AWS Credentials Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package retrievers

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amzn/smoke-aws-credentials/credentials"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("dev credentials script requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "get-credentials.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestProcessRetriever_GetCredentials(t *testing.T) {
	script := writeScript(t, `echo '{"AccessKeyId":"AKIADEV","SecretAccessKey":"devsecret","Token":"devtoken"}'`)
	retriever := NewProcessRetriever("arn:aws:iam::123456789012:role/dev", logr.Discard())
	retriever.command = script

	creds, err := retriever.GetCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AKIADEV", creds.AccessKeyID)
	assert.Equal(t, "devsecret", creds.SecretAccessKey)
	assert.Equal(t, "devtoken", creds.SessionToken)

	require.NoError(t, retriever.Shutdown(context.Background()))
}

func TestProcessRetriever_CommandFails(t *testing.T) {
	script := writeScript(t, `exit 1`)
	retriever := NewProcessRetriever("arn:aws:iam::123456789012:role/dev", logr.Discard())
	retriever.command = script

	_, err := retriever.GetCredentials(context.Background())
	var transport *credentials.TransportError
	require.ErrorAs(t, err, &transport)
}

func TestProcessRetriever_NullPayload(t *testing.T) {
	script := writeScript(t, `echo '{"AccessKeyId":"null","SecretAccessKey":"s","Token":"t"}'`)
	retriever := NewProcessRetriever("arn:aws:iam::123456789012:role/dev", logr.Discard())
	retriever.command = script

	_, err := retriever.GetCredentials(context.Background())
	var missing *credentials.MissingCredentialsError
	require.ErrorAs(t, err, &missing)
}
