package sink

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/oy3o/smartbuf"
)

// S3Client is the subset of *s3.Client the S3 sink uses.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var (
	_ S3Client      = (*s3.Client)(nil)
	_ smartbuf.Sink = (*S3)(nil)
)

// S3 uploads images to an S3 bucket with a single PutObject each.
type S3 struct {
	client S3Client
	bucket string
	cfg    config
}

// NewS3 creates an S3 sink. WithPrefix sets a key prefix (e.g. "cooked/").
func NewS3(client S3Client, bucket string, opts ...Option) *S3 {
	return &S3{client: client, bucket: bucket, cfg: newConfig(opts)}
}

func (s *S3) Put(ctx context.Context, name string, data []byte) error {
	key, err := objectKey(s.cfg.prefix, name)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/octet-stream"),
	})
	if err != nil {
		return fmt.Errorf("sink: put s3://%s/%s: %w", s.bucket, key, err)
	}
	s.cfg.logger.Debug("sink: uploaded image", "bucket", s.bucket, "key", key, "size", len(data))
	return nil
}
