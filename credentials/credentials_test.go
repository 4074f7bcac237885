// Copyright Smoke AWS Credentials Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package credentials

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExpiringCredentials(t *testing.T) {
	future := time.Now().Add(time.Hour)
	past := time.Now().Add(-time.Hour)

	tests := []struct {
		name            string
		accessKeyID     string
		secretAccessKey string
		sessionToken    string
		expiration      *time.Time
		expErr          string
	}{
		{
			name:            "valid without expiration",
			accessKeyID:     "AKIATEST",
			secretAccessKey: "secret",
			sessionToken:    "token",
		},
		{
			name:            "valid with expiration",
			accessKeyID:     "AKIATEST",
			secretAccessKey: "secret",
			expiration:      &future,
		},
		{
			name:            "empty access key id",
			secretAccessKey: "secret",
			expErr:          "access key id is empty",
		},
		{
			name:        "empty secret access key",
			accessKeyID: "AKIATEST",
			expErr:      "secret access key is empty",
		},
		{
			name:            "null access key id",
			accessKeyID:     "null",
			secretAccessKey: "secret",
			expErr:          "null literal",
		},
		{
			name:            "null session token",
			accessKeyID:     "AKIATEST",
			secretAccessKey: "secret",
			sessionToken:    "null",
			expErr:          "null literal",
		},
		{
			name:            "past expiration",
			accessKeyID:     "AKIATEST",
			secretAccessKey: "secret",
			expiration:      &past,
			expErr:          "already expired",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds, err := NewExpiringCredentials(tt.accessKeyID, tt.secretAccessKey, tt.sessionToken, tt.expiration)
			if tt.expErr != "" {
				require.Error(t, err)
				var missing *MissingCredentialsError
				require.ErrorAs(t, err, &missing)
				assert.Contains(t, err.Error(), tt.expErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.accessKeyID, creds.AccessKeyID)
			assert.Equal(t, tt.secretAccessKey, creds.SecretAccessKey)
			assert.Equal(t, tt.sessionToken, creds.SessionToken)
			if tt.expiration != nil {
				require.NotNil(t, creds.Expiration)
				assert.Equal(t, tt.expiration.UTC(), *creds.Expiration)
			}
		})
	}
}

func TestExpiringCredentials_IsExpired(t *testing.T) {
	noExpiration := ExpiringCredentials{AccessKeyID: "a", SecretAccessKey: "s"}
	require.False(t, noExpiration.IsExpired(0))
	require.False(t, noExpiration.IsExpired(time.Hour))

	soon := time.Now().Add(time.Minute)
	creds := ExpiringCredentials{AccessKeyID: "a", SecretAccessKey: "s", Expiration: &soon}
	require.False(t, creds.IsExpired(0))
	require.True(t, creds.IsExpired(2*time.Minute))

	past := time.Now().Add(-time.Minute)
	expired := ExpiringCredentials{AccessKeyID: "a", SecretAccessKey: "s", Expiration: &past}
	require.True(t, expired.IsExpired(0))
}
