package aws

import (
	"fmt"
	"strings"
	"time"

	"schwarzesbrett/pkg/config"

	"github.com/gofiber/storage/s3/v2"
)

// S3 stores ad images. Objects never expire on their own.
type S3 struct {
	bucket   *s3.Storage
	endpoint string
	name     string
	region   string
}

func NewS3Bucket(cfg *config.AppConfig) *S3 {
	storage := s3.New(s3.Config{
		Endpoint: cfg.AWSEndpoint,
		Bucket:   cfg.AWSBucket,
		Region:   cfg.AWSDefaultRegion,
		Credentials: s3.Credentials{
			AccessKey:       cfg.AWSAccessKey,
			SecretAccessKey: cfg.AWSSecretKey,
		},
		MaxAttempts:    3,
		RequestTimeout: time.Second * 10,
		Reset:          false,
	})

	return &S3{
		bucket:   storage,
		endpoint: cfg.AWSEndpoint,
		name:     cfg.AWSBucket,
		region:   cfg.AWSDefaultRegion,
	}
}

func (s *S3) Upload(key string, data []byte) error {
	return s.bucket.Set(key, data, 0)
}

func (s *S3) Download(key string) ([]byte, error) {
	return s.bucket.Get(key)
}

func (s *S3) Delete(key string) error {
	return s.bucket.Delete(key)
}

// URL returns the public URL of key.
func (s *S3) URL(key string) string {
	return ObjectURL(s.endpoint, s.name, s.region, key)
}

// Key reverses URL.
func (s *S3) Key(url string) string {
	return ObjectKey(s.endpoint, s.name, s.region, url)
}

// ObjectURL builds the public URL of an object: endpoint/bucket/key for MinIO and
// custom endpoints, the virtual-hosted AWS form otherwise.
func ObjectURL(endpoint, bucket, region, key string) string {
	if endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(endpoint, "/"), bucket, key)
	}
	if region != "" {
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, region, key)
	}
	return key
}

func ObjectKey(endpoint, bucket, region, url string) string {
	prefix := ObjectURL(endpoint, bucket, region, "")
	if prefix == "" {
		return url
	}
	return strings.TrimPrefix(url, prefix)
}
