// Package objectstore builds AWS clients for document storage.
package objectstore

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// LoadAWS loads the default credential chain for region.
func LoadAWS(ctx context.Context, region string) (aws.Config, error) {
	return awsCfg.LoadDefaultConfig(ctx, awsCfg.WithRegion(region))
}

// NewS3Client returns an S3 client. A non-empty endpoint (LocalStack, MinIO)
// switches to path-style addressing.
func NewS3Client(cfg aws.Config, endpoint string) *s3.Client {
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
}
