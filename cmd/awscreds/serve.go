// Copyright Smoke AWS Credentials Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/amzn/smoke-aws-credentials/internal/credfile"
	"github.com/amzn/smoke-aws-credentials/retrievers"
	"github.com/amzn/smoke-aws-credentials/rotating"
)

type serveFn func(cmdServe, io.Writer) error

// runServe runs a rotating provider until SIGINT or SIGTERM, optionally
// persisting each installed credential set into a shared credentials file.
func runServe(c cmdServe, stderr io.Writer) error {
	logger, err := newLogger(stderr, c.LogLevel)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	retriever, err := retrievers.FromEnvironment(logger)
	if err != nil {
		return err
	}

	provider, err := rotating.New(ctx, retriever, rotating.Options{Logger: &logger})
	if err != nil {
		return err
	}
	updates := provider.Subscribe()
	provider.Start()

	if c.CredentialsFile != "" {
		initial, err := provider.CurrentCredentials()
		if err != nil {
			return err
		}
		if err := credfile.UpdateProfile(c.CredentialsFile, c.Profile, c.Region, initial); err != nil {
			return err
		}
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		for creds := range updates {
			if c.CredentialsFile == "" {
				continue
			}
			if err := credfile.UpdateProfile(c.CredentialsFile, c.Profile, c.Region, creds); err != nil {
				logger.Error(err, "failed to persist rotated credentials",
					"path", c.CredentialsFile)
			}
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down rotating credentials provider")
		return provider.Shutdown(context.Background())
	})

	err = group.Wait()
	provider.Wait()
	return err
}
