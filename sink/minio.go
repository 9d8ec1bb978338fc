package sink

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/oy3o/smartbuf"
)

// MinIOClient is the subset of *minio.Client the MinIO sink uses.
type MinIOClient interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

var (
	_ MinIOClient   = (*minio.Client)(nil)
	_ smartbuf.Sink = (*MinIO)(nil)
)

// MinIO uploads images to a MinIO or other S3 compatible bucket.
type MinIO struct {
	client MinIOClient
	bucket string
	cfg    config
}

// NewMinIO creates a MinIO sink.
func NewMinIO(client MinIOClient, bucket string, opts ...Option) *MinIO {
	return &MinIO{client: client, bucket: bucket, cfg: newConfig(opts)}
}

func (m *MinIO) Put(ctx context.Context, name string, data []byte) error {
	key, err := objectKey(m.cfg.prefix, name)
	if err != nil {
		return err
	}
	info, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return fmt.Errorf("sink: put minio %s/%s: %w", m.bucket, key, err)
	}
	m.cfg.logger.Debug("sink: uploaded image", "bucket", m.bucket, "key", key, "size", info.Size, "etag", info.ETag)
	return nil
}
