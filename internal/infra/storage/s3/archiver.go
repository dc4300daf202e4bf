package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"villastay/internal/domain/invoice"
)

// Archiver stores finalized invoice snapshots as JSON objects in an
// S3-compatible bucket and returns the object URL.
type Archiver struct {
	bucket         string
	publicBaseURL  string
	client         *minio.Client
	logger         *slog.Logger
	bucketInitOnce sync.Once
	bucketInitErr  error
}

// NewArchiver configures the archive target using the provided endpoint and
// credentials.
func NewArchiver(endpoint string, useSSL bool, accessKey, secretKey, bucket, publicBaseURL string, logger *slog.Logger) (*Archiver, error) {
	cleanEndpoint := strings.TrimSpace(endpoint)
	if cleanEndpoint == "" {
		return nil, errors.New("s3: endpoint is required")
	}
	if bucket = strings.TrimSpace(bucket); bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}

	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(accessKey), strings.TrimSpace(secretKey), ""),
		Secure: useSSL,
	}
	minioClient, err := minio.New(parseEndpoint(cleanEndpoint), opts)
	if err != nil {
		return nil, fmt.Errorf("s3: create client: %w", err)
	}

	base := strings.TrimSpace(publicBaseURL)
	if base == "" {
		base = cleanEndpoint
	}

	return &Archiver{
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(base, "/"),
		client:        minioClient,
		logger:        logger,
	}, nil
}

// Archive writes the invoice JSON under invoices/<booking-id>/<issued-at>.json
// so re-finalized invoices never overwrite an earlier snapshot.
func (a *Archiver) Archive(ctx context.Context, doc invoice.Document) (string, error) {
	if doc.BookingID == "" {
		return "", errors.New("s3: invoice missing booking id")
	}
	if err := a.ensureBucket(ctx); err != nil {
		return "", err
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("s3: encode invoice: %w", err)
	}
	key := fmt.Sprintf("invoices/%s/%d.json", doc.BookingID, doc.IssuedAt.UTC().UnixMilli())

	_, err = a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("s3: put object: %w", err)
	}

	location := a.objectURL(key)
	if a.logger != nil {
		a.logger.Info("invoice archived", "bucket", a.bucket, "key", key, "url", location)
	}
	return location, nil
}

// NoopArchiver reports a stable location without persisting anything; used
// when the archive bucket is not configured.
type NoopArchiver struct{}

func (NoopArchiver) Archive(_ context.Context, doc invoice.Document) (string, error) {
	return "memory://invoices/" + doc.BookingID, nil
}

func (a *Archiver) ensureBucket(ctx context.Context) error {
	a.bucketInitOnce.Do(func() {
		exists, err := a.client.BucketExists(ctx, a.bucket)
		if err != nil {
			a.bucketInitErr = fmt.Errorf("s3: check bucket: %w", err)
			return
		}
		if exists {
			return
		}
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			a.bucketInitErr = fmt.Errorf("s3: create bucket: %w", err)
		}
	})
	return a.bucketInitErr
}

func (a *Archiver) objectURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", a.publicBaseURL, a.bucket, strings.TrimLeft(key, "/"))
}

func parseEndpoint(endpoint string) string {
	if parsed, err := url.Parse(endpoint); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return endpoint
}
