// Package iotdata updates device shadows through the AWS IoT data plane
// HTTPS API.
package iotdata

import (
	"context"
	"fmt"
	"strings"

	"bitbucket.org/sotavant/relay-skill/internal/shadow"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/iotdataplane"
)

type api interface {
	UpdateThingShadow(ctx context.Context, params *iotdataplane.UpdateThingShadowInput, optFns ...func(*iotdataplane.Options)) (*iotdataplane.UpdateThingShadowOutput, error)
}

type Options struct {
	// Endpoint is the account specific data endpoint,
	// e.g. xxxxxxxx-ats.iot.us-east-1.amazonaws.com.
	Endpoint string
	Region   string
}

type Client struct {
	api api
}

var _ shadow.Client = (*Client)(nil)

// New builds a client using the default AWS credential chain.
func New(ctx context.Context, opts Options) (*Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(opts.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := strings.ToLower(opts.Endpoint)
	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}

	return &Client{
		api: iotdataplane.NewFromConfig(cfg, func(o *iotdataplane.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		}),
	}, nil
}

func (c *Client) UpdateDesiredState(ctx context.Context, thingName string, desired shadow.DesiredState) ([]byte, error) {
	payload, err := shadow.NewDocument(desired).Marshal()
	if err != nil {
		return nil, err
	}

	out, err := c.api.UpdateThingShadow(ctx, &iotdataplane.UpdateThingShadowInput{
		ThingName: aws.String(thingName),
		Payload:   payload,
	})
	if err != nil {
		return nil, fmt.Errorf("update shadow of %s: %w", thingName, err)
	}

	return out.Payload, nil
}
