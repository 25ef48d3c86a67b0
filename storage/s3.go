package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/viper"
)

// S3 stores blobs as objects in an AWS S3 bucket.
type S3 struct {
	c      *s3.Client
	bucket *string
}

func NewS3() (*S3, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			viper.GetString("aws.access_key_id"),
			viper.GetString("aws.secret_access_key"),
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	bucket := aws.String(viper.GetString("aws.bucket"))

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.Region = viper.GetString("aws.region")
	})

	_, err = client.HeadBucket(context.TODO(), &s3.HeadBucketInput{
		Bucket: bucket,
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) {
			if apiErr.ErrorCode() == "NotFound" {
				return nil, fmt.Errorf("bucket '%s' does not exist", *bucket)
			}
		}

		return nil, fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	return &S3{
		c:      client,
		bucket: bucket,
	}, nil
}

func (s *S3) Save(ctx context.Context, path string, content io.ReadSeeker, size int64) error {
	mime, err := mimetype.DetectReader(content)
	if err != nil {
		return fmt.Errorf("failed to detect content type, %w", err)
	}

	if _, err := content.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind blob, %w", err)
	}

	_, err = s.c.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        s.bucket,
		Key:           aws.String(path),
		Body:          content,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(mime.String()),
	})
	if err != nil {
		return fmt.Errorf("failed to upload blob to S3, %w", err)
	}

	return nil
}

func (s *S3) Exists(ctx context.Context, path string) (bool, error) {
	_, err := s.c.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: s.bucket,
		Key:    aws.String(path),
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound" {
			return false, nil
		}

		return false, fmt.Errorf("failed to check if blob exists, %w", err)
	}

	return true, nil
}

// Delete is idempotent, S3 treats deleting a missing key as success
func (s *S3) Delete(ctx context.Context, path string) error {
	_, err := s.c.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: s.bucket,
		Key:    aws.String(path),
	})
	if err != nil {
		return fmt.Errorf("failed to delete blob from S3, %w", err)
	}

	return nil
}
