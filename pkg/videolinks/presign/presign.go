// Package presign issues time-limited S3 URLs for entitled download links.
// When no bucket is configured the service falls back to plain CDN URLs.
package presign

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config options for the presigner.
type Config struct {
	Region          string // AWS region
	Bucket          string // S3 bucket name
	AccessKeyID     string // AWS access key ID
	SecretAccessKey string // AWS secret access key
	Endpoint        string // Optional custom endpoint for S3-compatible services
	UsePathStyle    bool   // Use path-style addressing (default: false)
	PresignDuration int    // Duration in seconds for presigned URLs (default: 3600)
}

// Signer presigns download URLs against one bucket.
type Signer struct {
	presignClient   *s3.PresignClient
	bucket          string
	presignDuration time.Duration
}

// New creates a Signer from the given config.
func New(config Config) (*Signer, error) {
	if config.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}
	if config.Region == "" {
		config.Region = "us-east-1"
	}
	if config.PresignDuration == 0 {
		config.PresignDuration = 3600
	}

	var awsCfg aws.Config
	var err error

	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(config.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				config.AccessKeyID,
				config.SecretAccessKey,
				"",
			)),
		)
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(config.Region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Options []func(*s3.Options)
	if config.Endpoint != "" {
		s3Options = append(s3Options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(config.Endpoint)
			o.UsePathStyle = config.UsePathStyle
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Options...)

	return &Signer{
		presignClient:   s3.NewPresignClient(client),
		bucket:          config.Bucket,
		presignDuration: time.Duration(config.PresignDuration) * time.Second,
	}, nil
}

// SignKey presigns a GET for one object key.
func (s *Signer) SignKey(ctx context.Context, objectKey string) (string, error) {
	req, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(s.presignDuration))
	if err != nil {
		return "", fmt.Errorf("failed to presign object %s: %w", objectKey, err)
	}
	return req.URL, nil
}

// SignURL presigns the object addressed by an already-resolved CDN URL,
// using the URL path as the object key. Relative inputs are treated as
// bare keys.
func (s *Signer) SignURL(ctx context.Context, rawURL string) (string, error) {
	key := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		key = u.Path
	}
	return s.SignKey(ctx, strings.TrimPrefix(key, "/"))
}
