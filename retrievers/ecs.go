// Copyright Smoke AWS Credentials Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package retrievers provides the concrete credential retrievers fed to the
// rotating provider: the ECS container metadata endpoint, STS AssumeRole,
// static environment credentials, and the dev credentials subprocess, plus
// the environment discovery that picks between them.
package retrievers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/amzn/smoke-aws-credentials/credentials"
)

const (
	// RelativeURIEnvVar selects the ECS container retriever and carries the
	// path of the credentials endpoint.
	RelativeURIEnvVar = "AWS_CONTAINER_CREDENTIALS_RELATIVE_URI"

	// ecsEndpointHost is the fixed link-local address of the container
	// metadata service.
	ecsEndpointHost = "169.254.170.2"

	ecsUserAgent = "smoke-aws-credentials"

	// ecsRequestTimeout bounds a single metadata request; the rotation core
	// imposes no timeout of its own.
	ecsRequestTimeout = 10 * time.Second
)

// ECSContainerRetriever fetches credentials from the ECS container metadata
// endpoint at http://169.254.170.2 under the path given by
// AWS_CONTAINER_CREDENTIALS_RELATIVE_URI.
type ECSContainerRetriever struct {
	client   *http.Client
	endpoint string
	logger   logr.Logger
}

// NewECSContainerRetriever creates a retriever for the given relative URI. A
// missing leading slash is inserted.
func NewECSContainerRetriever(relativeURI string, logger logr.Logger) *ECSContainerRetriever {
	return newECSContainerRetriever("http://"+ecsEndpointHost, relativeURI, logger)
}

// newECSContainerRetriever exists so tests can point the retriever at a local
// server.
func newECSContainerRetriever(baseURL, relativeURI string, logger logr.Logger) *ECSContainerRetriever {
	if !strings.HasPrefix(relativeURI, "/") {
		relativeURI = "/" + relativeURI
	}
	return &ECSContainerRetriever{
		client:   &http.Client{Timeout: ecsRequestTimeout},
		endpoint: baseURL + relativeURI,
		logger:   logger,
	}
}

// GetCredentials performs a GET against the metadata endpoint and decodes the
// credential payload. Transport failures and non-2xx responses yield a
// TransportError; payload validation failures yield MissingCredentialsError.
func (r *ECSContainerRetriever) GetCredentials(ctx context.Context) (credentials.ExpiringCredentials, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint, http.NoBody)
	if err != nil {
		return credentials.ExpiringCredentials{}, &credentials.TransportError{Err: err}
	}
	req.Header.Set("User-Agent", ecsUserAgent)
	req.Header.Set("Accept", "*/*")
	req.ContentLength = 0

	resp, err := r.client.Do(req)
	if err != nil {
		return credentials.ExpiringCredentials{}, &credentials.TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return credentials.ExpiringCredentials{}, &credentials.TransportError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return credentials.ExpiringCredentials{}, &credentials.TransportError{
			Err: fmt.Errorf("container endpoint returned status %d", resp.StatusCode),
		}
	}

	creds, err := credentials.ParsePayload(body)
	if err != nil {
		return credentials.ExpiringCredentials{}, err
	}
	r.logger.V(1).Info("retrieved credentials from container endpoint",
		"expiration", creds.Expiration)
	return creds, nil
}

// Shutdown releases the retriever's pooled connections. Idempotent.
func (r *ECSContainerRetriever) Shutdown(context.Context) error {
	r.client.CloseIdleConnections()
	return nil
}
