// Package identity talks to the Cognito user pool that backs sign-in.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/aws/smithy-go"
)

// RoleAttribute is the custom user attribute carrying the application role.
// Cognito copies it into issued ID and access tokens.
const RoleAttribute = "custom:role"

// AdminAPI is the subset of the Cognito client used here.
type AdminAPI interface {
	AdminUpdateUserAttributes(ctx context.Context, in *cip.AdminUpdateUserAttributesInput, optFns ...func(*cip.Options)) (*cip.AdminUpdateUserAttributesOutput, error)
}

// Settings locate the user pool and authenticate against it.
type Settings struct {
	Region          string
	UserPoolID      string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// Client updates user attributes in a single user pool.
type Client struct {
	api    AdminAPI
	poolID string
}

// NewClient wraps an existing API implementation.
func NewClient(api AdminAPI, userPoolID string) *Client {
	return &Client{api: api, poolID: userPoolID}
}

// Dial builds a Cognito client from static credentials. Requests are not retried.
func Dial(ctx context.Context, s Settings) (*Client, error) {
	if s.AccessKeyID == "" || s.SecretAccessKey == "" {
		return nil, errors.New("aws credentials are empty")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(s.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(s.AccessKeyID, s.SecretAccessKey, "")),
		awsconfig.WithRetryMaxAttempts(1),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	api := cip.NewFromConfig(cfg, func(o *cip.Options) {
		if s.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.Endpoint)
		}
	})
	return NewClient(api, s.UserPoolID), nil
}

// UpdateRole sets custom:role for the user addressed by its Cognito subject.
func (c *Client) UpdateRole(ctx context.Context, subject, role string) error {
	_, err := c.api.AdminUpdateUserAttributes(ctx, &cip.AdminUpdateUserAttributesInput{
		UserPoolId: aws.String(c.poolID),
		Username:   aws.String(subject),
		UserAttributes: []types.AttributeType{
			{Name: aws.String(RoleAttribute), Value: aws.String(role)},
		},
	})
	return err
}

// Describe renders an update error as "Code - Message" when Cognito reported
// one, and as the plain error text otherwise.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("%s - %s", apiErr.ErrorCode(), apiErr.ErrorMessage())
	}
	return err.Error()
}
