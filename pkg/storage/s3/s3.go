package s3

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	cfg "github.com/feichai0017/text-extractor/config"
	"github.com/feichai0017/text-extractor/pkg/logger"
)

// objectAPI is the part of the S3 client the storage uses.
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	s3.ListObjectsV2APIClient
}

type S3Storage struct {
	client     objectAPI
	bucketName string
	logger     logger.Logger
}

// Store 实现 Storage 接口的 Store 方法
func (s *S3Storage) Store(ctx context.Context, reader io.Reader, key string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        reader,
		ContentType: aws.String("text/plain"),
	}

	_, err := s.client.PutObject(ctx, input)
	if err != nil {
		s.logger.Error("Failed to store file to S3",
			logger.String("bucket", s.bucketName),
			logger.String("key", key),
			logger.Error(err),
		)
		return "", fmt.Errorf("failed to store file: %w", err)
	}

	return key, nil
}

// Get 实现 Storage 接口的 Get 方法
func (s *S3Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	}

	result, err := s.client.GetObject(ctx, input)
	if err != nil {
		s.logger.Error("Failed to get file from S3",
			logger.String("bucket", s.bucketName),
			logger.String("key", key),
			logger.Error(err),
		)
		return nil, fmt.Errorf("failed to get file: %w", err)
	}

	return result.Body, nil
}

// Delete 实现 Storage 接口的 Delete 方法
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	input := &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	}

	if _, err := s.client.DeleteObject(ctx, input); err != nil {
		s.logger.Error("Failed to delete file from S3",
			logger.String("bucket", s.bucketName),
			logger.String("key", key),
			logger.Error(err),
		)
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

// CleanupBefore 实现 Storage 接口的 CleanupBefore 方法
func (s *S3Storage) CleanupBefore(ctx context.Context, threshold time.Time) error {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucketName),
		Prefix: aws.String("exports/"),
	}

	paginator := s3.NewListObjectsV2Paginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			s.logger.Error("Failed to list objects",
				logger.String("bucket", s.bucketName),
				logger.Error(err),
			)
			return fmt.Errorf("failed to list objects: %w", err)
		}

		for _, obj := range page.Contents {
			if obj.LastModified == nil || !obj.LastModified.Before(threshold) {
				continue
			}
			key := aws.ToString(obj.Key)
			if err := s.Delete(ctx, key); err != nil {
				continue
			}
			s.logger.Info("Deleted expired object",
				logger.String("key", key),
				logger.Time("lastModified", *obj.LastModified),
			)
		}
	}

	return nil
}

func NewS3Storage(ctx context.Context, s3Config *cfg.S3Config, log logger.Logger) (*S3Storage, error) {
	if s3Config.BucketName == "" {
		return nil, fmt.Errorf("AWS_S3_BUCKET_NAME is not set")
	}

	log.Info("S3 Configuration",
		logger.String("bucket", s3Config.BucketName),
		logger.String("region", s3Config.Region),
		logger.String("endpoint", s3Config.Endpoint),
	)

	opts := []func(*config.LoadOptions) error{}
	if s3Config.Region != "" {
		opts = append(opts, config.WithRegion(s3Config.Region))
	}
	if s3Config.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s3Config.AccessKey,
			s3Config.SecretKey,
			"",
		)))
	}

	// AWS SDK 配置
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if s3Config.Endpoint != "" {
			o.BaseEndpoint = aws.String(s3Config.Endpoint)
		}
		o.UsePathStyle = s3Config.UsePathStyle
	})

	// 验证 bucket 是否存在
	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s3Config.BucketName),
	}); err != nil {
		return nil, fmt.Errorf("failed to verify bucket existence: %w", err)
	}

	return newS3Storage(client, s3Config.BucketName, log), nil
}

func newS3Storage(client objectAPI, bucket string, log logger.Logger) *S3Storage {
	return &S3Storage{
		client:     client,
		bucketName: bucket,
		logger:     log.Named("s3"),
	}
}
