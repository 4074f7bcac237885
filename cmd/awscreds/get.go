// Copyright Smoke AWS Credentials Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/amzn/smoke-aws-credentials/credentials"
	"github.com/amzn/smoke-aws-credentials/retrievers"
)

type getFn func(cmdGet, io.Writer, io.Writer) error

// newLogger builds a zap-backed logr.Logger writing to w at the given level.
func newLogger(w io.Writer, logLevel string) (logr.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return logr.Logger{}, fmt.Errorf("invalid log level: %s", logLevel)
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(w),
		level,
	)
	return zapr.NewLogger(zap.New(core)), nil
}

// runGet resolves a retriever from the environment, performs a single fetch,
// and prints the credential payload to stdout.
func runGet(c cmdGet, stdout, stderr io.Writer) error {
	logger, err := newLogger(stderr, c.LogLevel)
	if err != nil {
		return err
	}

	retriever, err := retrievers.FromEnvironment(logger)
	if err != nil {
		return err
	}
	ctx := context.Background()
	defer func() {
		if err := retriever.Shutdown(ctx); err != nil {
			logger.Error(err, "failed to shut down retriever")
		}
	}()

	creds, err := retriever.GetCredentials(ctx)
	if err != nil {
		return err
	}
	payload, err := credentials.FormatPayload(creds)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "%s\n", payload)
	return err
}
