package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/pomnim/backend/config"
	"github.com/pomnim/backend/errs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Uploader pushes image payloads to an S3-compatible object store and hands
// back durable URLs. The rest of the system only ever stores the URL, never
// the bytes.
type Uploader struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
	logger        zerolog.Logger
}

// NewUploader builds an object-store client from the environment:
// S3_BUCKET, S3_REGION, S3_ACCESS_KEY, S3_SECRET_KEY, and optionally
// S3_ENDPOINT plus S3_PUBLIC_BASE_URL for S3-compatible providers.
func NewUploader(cfg map[string]string) (*Uploader, error) {
	bucket := config.GetString(cfg, "S3_BUCKET", "")
	if bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET environment variable is required")
	}
	region := config.GetString(cfg, "S3_REGION", "us-east-1")
	accessKey := config.GetString(cfg, "S3_ACCESS_KEY", "")
	secretKey := config.GetString(cfg, "S3_SECRET_KEY", "")
	endpoint := config.GetString(cfg, "S3_ENDPOINT", "")

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("loading object store config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	publicBaseURL := config.GetString(cfg, "S3_PUBLIC_BASE_URL", "")
	if publicBaseURL == "" {
		publicBaseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}

	return &Uploader{
		client:        client,
		bucket:        bucket,
		publicBaseURL: publicBaseURL,
		logger:        log.With().Str("serviceName", "uploader").Logger(),
	}, nil
}

// Upload stores one image and returns its public URL and object key. A
// failure here aborts the enclosing request; the caller must not persist a
// story referencing an image that was never stored.
func (u *Uploader) Upload(ctx context.Context, body io.Reader, contentType string, size int64, filename string) (url string, key string, err error) {
	key = fmt.Sprintf("stories/%d-%s%s", time.Now().UnixNano(), uuid.NewString()[:8], path.Ext(filename))

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		u.logger.Error().Err(err).Str("key", key).Msg("object store upload failed")
		return "", "", errs.NewUpstreamError("object store", err)
	}

	u.logger.Debug().Str("key", key).Int64("size", size).Msg("image uploaded")
	return fmt.Sprintf("%s/%s", u.publicBaseURL, key), key, nil
}
