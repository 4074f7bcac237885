// Copyright Smoke AWS Credentials Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package credentials

import (
	"encoding/json"
	"time"
)

// payload is the wire form of a credential set as served by the ECS container
// metadata endpoint and the dev credentials subprocess. The session token may
// arrive under either the Token or the SessionToken key; Token wins when both
// are present.
type payload struct {
	AccessKeyID     string `json:"AccessKeyId"`
	SecretAccessKey string `json:"SecretAccessKey"`
	Expiration      string `json:"Expiration,omitempty"`
	Token           string `json:"Token,omitempty"`
	SessionToken    string `json:"SessionToken,omitempty"`
}

// ParsePayload decodes and validates a JSON credential payload. A "null"
// literal in any credential position, an unparsable or already-past
// expiration, and malformed JSON all fail with MissingCredentialsError.
func ParsePayload(data []byte) (ExpiringCredentials, error) {
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return ExpiringCredentials{}, &MissingCredentialsError{Reason: "malformed credential payload: " + err.Error()}
	}

	token := p.Token
	if token == "" {
		token = p.SessionToken
	}

	var expiration *time.Time
	if p.Expiration != "" {
		parsed, err := time.Parse(time.RFC3339, p.Expiration)
		if err != nil {
			return ExpiringCredentials{}, &MissingCredentialsError{Reason: "unparsable expiration: " + p.Expiration}
		}
		expiration = &parsed
	}

	return NewExpiringCredentials(p.AccessKeyID, p.SecretAccessKey, token, expiration)
}

// FormatPayload encodes credentials into the JSON payload form. The session
// token, when present, is emitted under the preferred Token key.
func FormatPayload(creds ExpiringCredentials) ([]byte, error) {
	p := payload{
		AccessKeyID:     creds.AccessKeyID,
		SecretAccessKey: creds.SecretAccessKey,
		Token:           creds.SessionToken,
	}
	if creds.Expiration != nil {
		p.Expiration = creds.Expiration.UTC().Format(time.RFC3339)
	}
	return json.Marshal(&p)
}
