package s3

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/karandomguy/Store-Monitoring-System/pkg/client/s3"
)

// ReportSink stores completed report CSVs and hands out presigned
// download links.
type ReportSink struct {
	StorageS3 *s3.StorageS3
}

func NewReportSink(storageS3 *s3.StorageS3) *ReportSink {
	return &ReportSink{StorageS3: storageS3}
}

// Upload streams the CSV body into the bucket without buffering it;
// size -1 lets the client chunk the unknown-length stream.
func (s *ReportSink) Upload(ctx context.Context, key string, body io.Reader) error {
	if s.StorageS3 == nil || s.StorageS3.Client == nil {
		return fmt.Errorf("s3 client not initialized")
	}

	_, err := s.StorageS3.Client.PutObject(
		ctx,
		s.StorageS3.Bucket,
		key,
		body,
		-1,
		minio.PutObjectOptions{
			ContentType: "text/csv",
		},
	)
	if err != nil {
		return fmt.Errorf("s3 put object: %w", err)
	}

	return nil
}

func (s *ReportSink) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if s.StorageS3 == nil || s.StorageS3.Client == nil {
		return "", fmt.Errorf("s3 client not initialized")
	}

	reqParams := url.Values{}

	presignedURL, err := s.StorageS3.Client.PresignedGetObject(ctx, s.StorageS3.Bucket, key, expiry, reqParams)
	if err != nil {
		return "", fmt.Errorf("presigned get object: %w", err)
	}
	return presignedURL.String(), nil
}
