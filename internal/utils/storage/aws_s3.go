package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"beautyfood-backend/internal/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var ErrStorageDisabled = errors.New("object storage is not configured")

type (
	AwsS3 interface {
		UploadBytes(ctx context.Context, key string, data []byte, contentType string) error
		PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
		DeleteObject(ctx context.Context, key string) error
	}

	awsS3 struct {
		client  *s3.Client
		presign *s3.PresignClient
		bucket  string
	}

	disabledS3 struct{}
)

// LoadAWSConfig loads the shared AWS config from AWS_* keys. Static
// credentials are used when both keys are set, otherwise the default AWS
// chain applies.
func LoadAWSConfig(ctx context.Context) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(utils.GetConfig("AWS_S3_REGION")),
	}
	accessKey, secretKey := utils.GetConfig("AWS_ACCESS_KEY"), utils.GetConfig("AWS_SECRET_KEY")
	if accessKey != "" && secretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

// NewAwsS3 builds the bucket client. A missing bucket yields a client whose
// calls all fail with ErrStorageDisabled.
func NewAwsS3(ctx context.Context) (AwsS3, error) {
	bucket := utils.GetConfig("AWS_S3_BUCKET")
	if bucket == "" || !utils.GetConfigBool("STORAGE_ENABLED", true) {
		return disabledS3{}, nil
	}

	cfg, err := LoadAWSConfig(ctx)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg)
	return &awsS3{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  bucket,
	}, nil
}

func (s *awsS3) UploadBytes(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

func (s *awsS3) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("presign object %s: %w", key, err)
	}
	return req.URL, nil
}

func (s *awsS3) DeleteObject(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

func (disabledS3) UploadBytes(context.Context, string, []byte, string) error {
	return ErrStorageDisabled
}

func (disabledS3) PresignGet(context.Context, string, time.Duration) (string, error) {
	return "", ErrStorageDisabled
}

func (disabledS3) DeleteObject(context.Context, string) error {
	return ErrStorageDisabled
}
