// Copyright Smoke AWS Credentials Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package main

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_doMain(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		gf     getFn
		sf     serveFn
		expOut string
	}{
		{
			name:   "version",
			args:   []string{"version"},
			expOut: "awscreds: dev\n",
		},
		{
			name: "get",
			args: []string{"get", "--log-level", "debug"},
			gf: func(c cmdGet, stdout, stderr io.Writer) error {
				require.Equal(t, "debug", c.LogLevel)
				return nil
			},
		},
		{
			name: "serve",
			args: []string{"serve", "--credentials-file", "creds", "--profile", "tasks", "--region", "us-west-2"},
			sf: func(c cmdServe, stderr io.Writer) error {
				cwd, err := os.Getwd()
				require.NoError(t, err)
				require.Equal(t, cwd+"/creds", c.CredentialsFile)
				require.Equal(t, "tasks", c.Profile)
				require.Equal(t, "us-west-2", c.Region)
				require.Equal(t, "info", c.LogLevel)
				return nil
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			doMain(out, os.Stderr, tt.args, tt.gf, tt.sf)
			require.Equal(t, tt.expOut, out.String())
		})
	}
}

func Test_newLogger(t *testing.T) {
	out := &bytes.Buffer{}
	logger, err := newLogger(out, "info")
	require.NoError(t, err)

	logger.Info("credentials refreshed")
	require.Contains(t, out.String(), "credentials refreshed")

	_, err = newLogger(out, "noisy")
	require.ErrorContains(t, err, "invalid log level")
}
