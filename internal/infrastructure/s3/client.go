package s3infra

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/idv-gateway/internal/pkg/id"
)

// putter is the slice of the S3 API the dead-letter store uses.
type putter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// DeadLetterStore keeps webhook payloads that could not be persisted, one object
// per payload under webhook-failures/YYYY/MM/DD/<ulid>.json.
type DeadLetterStore struct {
	client putter
	bucket string
	now    func() time.Time
}

// NewClient creates an S3 client. A non-empty endpoint (LocalStack) overrides the
// endpoint and enables path-style addressing.
func NewClient(awsCfg aws.Config, endpoint string) *s3.Client {
	var clientOpts []func(*s3.Options)
	if endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
	}
	return s3.NewFromConfig(awsCfg, clientOpts...)
}

func NewDeadLetterStore(client *s3.Client, bucket string) *DeadLetterStore {
	return &DeadLetterStore{client: client, bucket: bucket, now: time.Now}
}

// Record stores payload with reason attached as object metadata.
func (s *DeadLetterStore) Record(ctx context.Context, reason string, payload []byte) error {
	now := s.now().UTC()
	key := fmt.Sprintf("webhook-failures/%s/%s.json", now.Format("2006/01/02"), id.NewAt(now))
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
		Metadata:    map[string]string{"reason": truncate(reason, 1024)},
	})
	if err != nil {
		return fmt.Errorf("s3 put object: %w", err)
	}
	slog.Info("webhook payload dead-lettered", "location", fmt.Sprintf("s3://%s/%s", s.bucket, key))
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
