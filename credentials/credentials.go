// Copyright Smoke AWS Credentials Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package credentials defines the value types shared by all credential
// retrievers and the rotating provider: the expiring credential set, the JSON
// payload codec used by the container endpoint and subprocess retrievers, and
// the error taxonomy.
package credentials

import (
	"time"
)

// nullLiteral in any credential string position means the source has no
// credentials to hand out.
const nullLiteral = "null"

// ExpiringCredentials is a single set of AWS credentials together with an
// optional expiration. Values are immutable once constructed; a refresh
// produces a new value rather than mutating the old one.
type ExpiringCredentials struct {
	// AccessKeyID is the AWS access key id.
	AccessKeyID string
	// SecretAccessKey is the AWS secret access key.
	SecretAccessKey string
	// SessionToken is the optional session token for temporary credentials.
	SessionToken string
	// Expiration is the instant the credentials stop being valid, if known.
	Expiration *time.Time
}

// NewExpiringCredentials validates and constructs an ExpiringCredentials
// value. The access key id and secret access key must be non-empty, none of
// the string fields may be the literal "null", and an expiration, when given,
// must be strictly in the future.
func NewExpiringCredentials(accessKeyID, secretAccessKey, sessionToken string, expiration *time.Time) (ExpiringCredentials, error) {
	switch {
	case accessKeyID == "":
		return ExpiringCredentials{}, &MissingCredentialsError{Reason: "access key id is empty"}
	case secretAccessKey == "":
		return ExpiringCredentials{}, &MissingCredentialsError{Reason: "secret access key is empty"}
	case accessKeyID == nullLiteral || secretAccessKey == nullLiteral || sessionToken == nullLiteral:
		return ExpiringCredentials{}, &MissingCredentialsError{Reason: "credential field is the null literal"}
	}
	if expiration != nil {
		if !expiration.After(time.Now()) {
			return ExpiringCredentials{}, &MissingCredentialsError{Reason: "credentials are already expired"}
		}
		utc := expiration.UTC()
		expiration = &utc
	}
	return ExpiringCredentials{
		AccessKeyID:     accessKeyID,
		SecretAccessKey: secretAccessKey,
		SessionToken:    sessionToken,
		Expiration:      expiration,
	}, nil
}

// IsExpired checks if the expiration minus the duration buffer is before the
// current time. Credentials without an expiration never expire.
func (c ExpiringCredentials) IsExpired(buffer time.Duration) bool {
	if c.Expiration == nil {
		return false
	}
	return c.Expiration.Add(-buffer).Before(time.Now())
}
