// Package archive stores raw intake submissions in S3-compatible object
// storage so rejected or mangled payloads can be replayed later.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"leadintake_backend/platform/config"
	"leadintake_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// RawSubmission is the archived payload, stored verbatim with intake
// metadata alongside.
type RawSubmission struct {
	Source     string          `json:"source"`
	ReceivedAt time.Time       `json:"receivedAt"`
	Payload    json.RawMessage `json:"payload"`
}

// Archiver writes raw submissions to object storage.
type Archiver interface {
	Archive(ctx context.Context, source string, payload []byte) error
}

// MinIOArchiver implements Archiver on a MinIO bucket.
type MinIOArchiver struct {
	client *minio.Client
	bucket string
	log    *logger.Logger
}

// NewMinIOArchiver creates the archiver and ensures the bucket exists.
func NewMinIOArchiver(ctx context.Context, cfg config.ArchiveConfig, log *logger.Logger) (*MinIOArchiver, error) {
	if !cfg.IsArchiveEnabled() {
		return nil, fmt.Errorf("archive storage is not configured")
	}

	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	a := &MinIOArchiver{
		client: client,
		bucket: cfg.GetRawSubmissionsBucket(),
		log:    log,
	}
	if err := a.ensureBucketExists(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *MinIOArchiver) ensureBucketExists(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", a.bucket, err)
		}
	}

	return nil
}

// Archive stores one submission under <source>/<date>/<uuid>.json.
func (a *MinIOArchiver) Archive(ctx context.Context, source string, payload []byte) error {
	raw := RawSubmission{
		Source:     source,
		ReceivedAt: time.Now().UTC(),
		Payload:    payload,
	}

	body, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("marshal raw submission: %w", err)
	}

	key := fmt.Sprintf("%s/%s/%s.json", source, raw.ReceivedAt.Format("2006-01-02"), uuid.New())
	_, err = a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to archive submission %s: %w", key, err)
	}

	a.log.Debug("raw submission archived", "key", key, "source", source)
	return nil
}

// NoopArchiver satisfies Archiver when archiving is disabled.
type NoopArchiver struct{}

func (NoopArchiver) Archive(context.Context, string, []byte) error { return nil }
