// Copyright Smoke AWS Credentials Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package retrievers

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/go-logr/logr"

	"github.com/amzn/smoke-aws-credentials/credentials"
	"github.com/amzn/smoke-aws-credentials/rotating"
)

const (
	// minAssumeRoleDuration and maxAssumeRoleDuration bound the
	// DurationSeconds accepted by STS AssumeRole.
	minAssumeRoleDuration = 900
	maxAssumeRoleDuration = 3600
)

// STSClient defines the STS operations required by the assume-role retriever.
// The narrow interface lets tests inject a mock in place of the SDK client.
type STSClient interface {
	// AssumeRole exchanges the caller's identity for temporary credentials
	// under the given role.
	AssumeRole(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error)
}

// stsClient implements STSClient using the AWS SDK v2.
type stsClient struct {
	client *sts.Client
}

// NewSTSClient creates an STSClient from the given AWS config.
func NewSTSClient(cfg aws.Config) STSClient {
	return &stsClient{client: sts.NewFromConfig(cfg)}
}

// AssumeRole implements [STSClient.AssumeRole].
func (c *stsClient) AssumeRole(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error) {
	return c.client.AssumeRole(ctx, params, optFns...)
}

// DefaultAWSConfig returns an AWS config with adaptive retry mode enabled for
// better handling of transient STS failures and rate limiting.
func DefaultAWSConfig(ctx context.Context) (aws.Config, error) {
	return config.LoadDefaultConfig(ctx,
		config.WithRetryMode(aws.RetryModeAdaptive),
	)
}

// AssumeRoleOptions configures an AssumeRoleRetriever.
type AssumeRoleOptions struct {
	// RoleARN is the role to assume. Required.
	RoleARN string
	// RoleSessionName identifies the session in CloudTrail. Required.
	RoleSessionName string
	// DurationSeconds, when non-zero, requests a specific credential
	// lifetime and must lie in [900, 3600]. Zero means the server default.
	DurationSeconds int32
	// Logger receives retrieval logs. Optional.
	Logger *logr.Logger
}

// AssumeRoleRetriever obtains credentials by calling STS AssumeRole.
type AssumeRoleRetriever struct {
	sts             STSClient
	roleARN         string
	roleSessionName string
	durationSeconds *int32
	logger          logr.Logger
}

// NewAssumeRoleRetriever validates opts and creates the retriever.
func NewAssumeRoleRetriever(client STSClient, opts AssumeRoleOptions) (*AssumeRoleRetriever, error) {
	if opts.RoleARN == "" {
		return nil, errors.New("role ARN is required")
	}
	if opts.RoleSessionName == "" {
		return nil, errors.New("role session name is required")
	}
	var duration *int32
	if opts.DurationSeconds != 0 {
		if opts.DurationSeconds < minAssumeRoleDuration || opts.DurationSeconds > maxAssumeRoleDuration {
			return nil, fmt.Errorf("duration seconds %d outside [%d, %d]",
				opts.DurationSeconds, minAssumeRoleDuration, maxAssumeRoleDuration)
		}
		duration = aws.Int32(opts.DurationSeconds)
	}
	logger := logr.Discard()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &AssumeRoleRetriever{
		sts:             client,
		roleARN:         opts.RoleARN,
		roleSessionName: opts.RoleSessionName,
		durationSeconds: duration,
		logger:          logger,
	}, nil
}

// GetCredentials assumes the configured role and maps the STS output to an
// ExpiringCredentials value. A failed call or an output without credentials
// yields a RoleAssumptionError.
func (r *AssumeRoleRetriever) GetCredentials(ctx context.Context) (credentials.ExpiringCredentials, error) {
	out, err := r.sts.AssumeRole(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(r.roleARN),
		RoleSessionName: aws.String(r.roleSessionName),
		DurationSeconds: r.durationSeconds,
	})
	if err != nil {
		return credentials.ExpiringCredentials{}, &credentials.RoleAssumptionError{ARN: r.roleARN, Err: err}
	}
	if out.Credentials == nil {
		return credentials.ExpiringCredentials{}, &credentials.RoleAssumptionError{
			ARN: r.roleARN,
			Err: errors.New("assume role output contains no credentials"),
		}
	}

	creds, err := credentials.NewExpiringCredentials(
		aws.ToString(out.Credentials.AccessKeyId),
		aws.ToString(out.Credentials.SecretAccessKey),
		aws.ToString(out.Credentials.SessionToken),
		out.Credentials.Expiration,
	)
	if err != nil {
		return credentials.ExpiringCredentials{}, &credentials.RoleAssumptionError{ARN: r.roleARN, Err: err}
	}
	r.logger.V(1).Info("assumed role",
		"role", r.roleARN,
		"roleSessionName", r.roleSessionName,
		"expiration", creds.Expiration)
	return creds, nil
}

// Shutdown implements [credentials.Retriever]. The SDK client holds no
// resources the retriever needs to release.
func (r *AssumeRoleRetriever) Shutdown(context.Context) error {
	return nil
}

// NewRotatingAssumeRoleProvider wires an assume-role retriever into a started
// rotating provider.
func NewRotatingAssumeRoleProvider(ctx context.Context, client STSClient, arOpts AssumeRoleOptions, opts rotating.Options) (*rotating.Provider, error) {
	retriever, err := NewAssumeRoleRetriever(client, arOpts)
	if err != nil {
		return nil, err
	}
	if opts.RoleSessionName == "" {
		opts.RoleSessionName = arOpts.RoleSessionName
	}
	provider, err := rotating.New(ctx, retriever, opts)
	if err != nil {
		return nil, err
	}
	provider.Start()
	return provider, nil
}
