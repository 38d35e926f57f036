package storage

import (
	"bytes"
	"context"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/opentracing/opentracing-go"

	"github.com/caseflowhq/mailroom/interfaces"
	"github.com/caseflowhq/mailroom/internal/tracing"
	"github.com/caseflowhq/mailroom/internal/utils"
	"github.com/caseflowhq/mailroom/services/storage/aws_client"
)

// ObjectStorageService stores email attachments as immutable objects.
type ObjectStorageService struct {
	client     aws_client.S3Client
	bucketName string
	cdnDomain  string
}

type StorageConfig struct {
	BucketName string
	CDNDomain  string
}

func NewStorageService(client aws_client.S3Client, config StorageConfig) interfaces.StorageService {
	return &ObjectStorageService{
		client:     client,
		bucketName: config.BucketName,
		cdnDomain:  config.CDNDomain,
	}
}

// AttachmentKey builds the storage key for an attachment. Keys are
// firm-scoped and never reuse the client-supplied file name, only its
// extension.
func AttachmentKey(firmID, fileName string) string {
	return firmID + "/" + utils.GenerateNanoIDWithPrefix("att", 21) + filepath.Ext(fileName)
}

func (s *ObjectStorageService) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ObjectStorageService.Upload")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("storage.key", key)
	span.SetTag("storage.size", len(data))

	return s.client.Upload(ctx, s3manager.UploadInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
}

func (s *ObjectStorageService) Download(ctx context.Context, key string) ([]byte, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ObjectStorageService.Download")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("storage.key", key)

	return s.client.Download(ctx, s.bucketName, key)
}

func (s *ObjectStorageService) Delete(ctx context.Context, key string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ObjectStorageService.Delete")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("storage.key", key)

	return s.client.Delete(ctx, s.bucketName, key)
}

// GetPublicURL returns a CDN URL for the object when a CDN domain is
// configured, empty otherwise. Attachment buckets are private by default.
func (s *ObjectStorageService) GetPublicURL(key string) string {
	if s.cdnDomain != "" {
		return "https://" + s.cdnDomain + "/" + key
	}
	return ""
}
