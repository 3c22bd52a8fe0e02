package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/dd0wney/starry-habits/pkg/habits"
)

// DefaultObjectKey is used when no key is configured.
const DefaultObjectKey = "starry-habits/habits.json"

// ObjectAPI is the part of the S3 client the store needs.
type ObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Options configures an S3Store.
type S3Options struct {
	Bucket   string
	Key      string
	Region   string
	Endpoint string // set for S3-compatible services such as MinIO
	Compress bool
}

// S3Store keeps the tracker as one object in a bucket.
type S3Store struct {
	client   ObjectAPI
	bucket   string
	key      string
	compress bool
}

// NewS3Store builds a client from the default AWS credential chain. Static
// credentials in STARRY_S3_ACCESS_KEY and STARRY_S3_SECRET_KEY take precedence.
func NewS3Store(ctx context.Context, opts S3Options) (*S3Store, error) {
	if opts.Bucket == "" {
		return nil, errors.New("S3 bucket is required")
	}

	loaders := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loaders = append(loaders, awsconfig.WithRegion(opts.Region))
	}
	if key, secret := os.Getenv("STARRY_S3_ACCESS_KEY"), os.Getenv("STARRY_S3_SECRET_KEY"); key != "" && secret != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(key, secret, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3StoreWithClient(client, opts), nil
}

// NewS3StoreWithClient wraps an existing client.
func NewS3StoreWithClient(client ObjectAPI, opts S3Options) *S3Store {
	key := opts.Key
	if key == "" {
		key = DefaultObjectKey
	}
	return &S3Store{client: client, bucket: opts.Bucket, key: key, compress: opts.Compress}
}

func (s *S3Store) Load(ctx context.Context) (*habits.Data, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	var missing *types.NoSuchKey
	if errors.As(err, &missing) {
		return habits.NewData(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", s.bucket, s.key, err)
	}
	defer out.Body.Close()

	raw, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read s3://%s/%s: %w", s.bucket, s.key, err)
	}
	return decode(raw)
}

func (s *S3Store) Save(ctx context.Context, data *habits.Data) error {
	raw, err := encode(data, s.compress)
	if err != nil {
		return err
	}

	contentType := "application/json"
	if s.compress {
		contentType = "application/octet-stream"
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key),
		Body:          bytes.NewReader(raw),
		ContentLength: aws.Int64(int64(len(raw))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to put s3://%s/%s: %w", s.bucket, s.key, err)
	}
	return nil
}

func (s *S3Store) Close() error {
	return nil
}
