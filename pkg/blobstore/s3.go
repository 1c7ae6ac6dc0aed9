package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3Client defines the minimal subset of the S3 client the store uses.
type s3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// s3Store uploads blobs to an S3 bucket with static credentials.
type s3Store struct {
	bucket string
	region string
	client s3Client
}

func newS3Store(ctx context.Context, cfg *S3Cfg) (Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("s3 configuration is missing")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3.bucket is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("s3.region is required")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	creds := credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	awsCfg, err := awscfg.LoadDefaultConfig(ctx,
		awscfg.WithRegion(cfg.Region),
		awscfg.WithCredentialsProvider(creds),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &s3Store{
		bucket: cfg.Bucket,
		region: cfg.Region,
		client: s3.NewFromConfig(awsCfg),
	}, nil
}

// Upload puts the blob and returns its public object URL.
func (s *s3Store) Upload(ctx context.Context, blobName string, data []byte, contentType string) (string, error) {
	key := strings.TrimLeft(blobName, "/")

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}
