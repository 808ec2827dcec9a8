// Package exporter publishes scraped records and their documents to
// S3-compatible object storage such as DigitalOcean Spaces.
package exporter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"jobscribe/internal/config"
	"jobscribe/internal/logging"
	"jobscribe/internal/logging/types"
)

// ErrStorageConfig is returned when the bucket settings are incomplete
var ErrStorageConfig = errors.New("storage_configuration")

// Publisher uploads one object and returns where it can be read
type Publisher interface {
	Publish(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// SpacesPublisher uploads to a DigitalOcean Spaces (or other S3) bucket
type SpacesPublisher struct {
	client     s3iface.S3API
	bucketName string
	bucketURL  string
	cdnURL     string
	region     string
	prefix     string
	public     bool
	logger     types.Logger
}

// NewSpacesPublisher creates a publisher from cfg.Export.Spaces
func NewSpacesPublisher(cfg *config.Config) (*SpacesPublisher, error) {
	logger := logging.GetGlobalLogger()
	sc := cfg.Export.Spaces

	if sc.AccessKeyID == "" || sc.AccessKeySecret == "" {
		return nil, fmt.Errorf("%w: bucket credentials are required", ErrStorageConfig)
	}
	if sc.BucketName == "" {
		return nil, fmt.Errorf("%w: bucket name is required", ErrStorageConfig)
	}

	endpoint := sc.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.digitaloceanspaces.com", sc.Region)
	}

	sess, err := session.NewSession(&aws.Config{
		Credentials:      credentials.NewStaticCredentials(sc.AccessKeyID, sc.AccessKeySecret, ""),
		Endpoint:         aws.String(endpoint),
		Region:           aws.String(sc.Region),
		S3ForcePathStyle: aws.Bool(sc.PathStyle),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage session: %w", err)
	}

	logger.Info("Object storage export configured", map[string]interface{}{
		"endpoint":    endpoint,
		"bucket_name": sc.BucketName,
		"prefix":      sc.Prefix,
	})

	return NewSpacesPublisherWithClient(s3.New(sess), cfg), nil
}

// NewSpacesPublisherWithClient wraps an existing S3 client
func NewSpacesPublisherWithClient(client s3iface.S3API, cfg *config.Config) *SpacesPublisher {
	sc := cfg.Export.Spaces
	return &SpacesPublisher{
		client:     client,
		bucketName: sc.BucketName,
		bucketURL:  sc.BucketURL,
		cdnURL:     sc.CDNEndpoint,
		region:     sc.Region,
		prefix:     strings.Trim(sc.Prefix, "/"),
		public:     sc.PublicRead,
		logger:     logging.GetGlobalLogger(),
	}
}

// Publish uploads data under the configured prefix
func (sp *SpacesPublisher) Publish(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	objectKey := sp.objectKey(key)

	input := &s3.PutObjectInput{
		Bucket:      aws.String(sp.bucketName),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	}
	if sp.public {
		input.ACL = aws.String(s3.ObjectCannedACLPublicRead)
	}

	if _, err := sp.client.PutObjectWithContext(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", objectKey, err)
	}

	url := sp.publicURL(objectKey)
	sp.logger.Debug("Object uploaded", map[string]interface{}{
		"object_key": objectKey,
		"size_bytes": len(data),
		"url":        url,
	})
	return url, nil
}

// IsHealthy checks that the bucket is reachable with the configured credentials
func (sp *SpacesPublisher) IsHealthy(ctx context.Context) bool {
	_, err := sp.client.HeadBucketWithContext(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(sp.bucketName),
	})
	if err != nil {
		sp.logger.Error("Object storage health check failed", map[string]interface{}{
			"bucket_name": sp.bucketName,
			"error":       err.Error(),
		})
		return false
	}
	return true
}

func (sp *SpacesPublisher) objectKey(key string) string {
	key = strings.TrimLeft(key, "/")
	if sp.prefix == "" {
		return key
	}
	return path.Join(sp.prefix, key)
}

// publicURL prefers the CDN, then the bucket URL, then the regional default
func (sp *SpacesPublisher) publicURL(objectKey string) string {
	if sp.cdnURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(sp.cdnURL, "/"), objectKey)
	}
	if sp.bucketURL != "" {
		base := strings.TrimRight(sp.bucketURL, "/")
		if !strings.HasPrefix(base, "https://") && !strings.HasPrefix(base, "http://") {
			base = "https://" + base
		}
		return fmt.Sprintf("%s/%s", base, objectKey)
	}
	return fmt.Sprintf("https://%s.%s.digitaloceanspaces.com/%s", sp.bucketName, sp.region, objectKey)
}
