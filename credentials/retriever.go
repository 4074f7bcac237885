// Copyright Smoke AWS Credentials Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package credentials

import "context"

// Retriever is the pluggable source of fresh credentials: the container
// metadata endpoint, an STS AssumeRole client, a static environment set, or
// the dev credentials subprocess.
type Retriever interface {
	// GetCredentials fetches a fresh credential set. It may block and may
	// fail; the retriever owns its own deadlines.
	GetCredentials(ctx context.Context) (ExpiringCredentials, error)
	// Shutdown releases retriever-held resources such as connection pools
	// or subprocess handles. It must be idempotent.
	Shutdown(ctx context.Context) error
}
