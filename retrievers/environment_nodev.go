// Copyright Smoke AWS Credentials Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

//go:build !dev

package retrievers

import (
	"github.com/go-logr/logr"

	"github.com/amzn/smoke-aws-credentials/credentials"
)

// devRetrieverFromEnvironment never selects the subprocess retriever outside
// dev builds.
func devRetrieverFromEnvironment(logr.Logger) credentials.Retriever {
	return nil
}
