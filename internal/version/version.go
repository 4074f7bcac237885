// Copyright Smoke AWS Credentials Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package version holds the build version stamped via -ldflags.
package version

// Version is overridden at build time with
// -ldflags "-X github.com/amzn/smoke-aws-credentials/internal/version.Version=vX.Y.Z".
var Version = "dev"
