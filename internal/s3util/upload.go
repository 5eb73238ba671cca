// Package s3util publishes rendered story documents to S3.
package s3util

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

const (
	documentContentType  = "text/html; charset=utf-8"
	documentCacheControl = "public, max-age=300"
)

// PutObjectAPI is the subset of *s3.Client used for uploads.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// DocumentKey is the object key of a published collection document:
// "<prefix>/<slug>/<collectionId>.html".
func DocumentKey(prefix, slug, collectionID string) string {
	return strings.TrimPrefix(path.Join(prefix, slug, collectionID+".html"), "/")
}

// UploadDocument stores a rendered story document under key.
func UploadDocument(ctx context.Context, client PutObjectAPI, bucket, key, html string) error {
	log.Debug().Str("bucket", bucket).Str("key", key).Int("bytes", len(html)).Msg("Uploading story document to S3")

	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       &bucket,
		Key:          &key,
		Body:         strings.NewReader(html),
		ContentType:  aws.String(documentContentType),
		CacheControl: aws.String(documentCacheControl),
		Tagging:      ProjectTagging(),
	})
	if err != nil {
		return fmt.Errorf("failed to upload story document to S3: %w", err)
	}

	log.Info().Str("bucket", bucket).Str("key", key).Msg("Story document uploaded to S3")
	return nil
}

// GeneratePresignedURL creates a pre-signed GET URL for an S3 object.
func GeneratePresignedURL(ctx context.Context, presignClient *s3.PresignClient, bucket, key string, expiry time.Duration) (string, error) {
	result, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket, Key: &key,
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expiry
	})
	if err != nil {
		return "", fmt.Errorf("presign GetObject: %w", err)
	}
	return result.URL, nil
}
