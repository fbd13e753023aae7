// Package storage provides the persistent channel implementations: an
// S3-compatible object store and a local SQLite file.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"brightroots/internal/keys"
)

// S3Config locates the bucket channel values are kept in.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Region    string
	Bucket    string
	// Namespace prefixes every object so several directories can share a bucket.
	Namespace string
}

// S3Channel is a persistent channel that keeps each key as a JSON object.
type S3Channel struct {
	client    *minio.Client
	bucket    string
	region    string
	namespace string

	mu    sync.Mutex
	ready bool
}

// NewS3Channel connects to an S3-compatible endpoint such as MinIO.
func NewS3Channel(cfg S3Config) (*S3Channel, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("object store channel needs an endpoint, access key, secret key and bucket")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("creating MinIO client: %w", err)
	}

	log.Println("Using object store endpoint:", cfg.Endpoint)
	return &S3Channel{client: client, bucket: cfg.Bucket, region: region, namespace: cfg.Namespace}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *S3Channel) EnsureBucket(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("checking bucket %q: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
			return fmt.Errorf("creating bucket %q: %w", s.bucket, err)
		}
		log.Printf("Created bucket %q", s.bucket)
	}
	s.ready = true
	return nil
}

func (s *S3Channel) Get(ctx context.Context, key string) (string, bool, error) {
	objectKey := keys.ChannelValue(s.namespace, key)

	object, err := s.client.GetObject(ctx, s.bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return "", false, fmt.Errorf("getting %q: %w", objectKey, err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		switch minio.ToErrorResponse(err).Code {
		case minio.NoSuchKey, minio.NoSuchBucket:
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading %q: %w", objectKey, err)
	}
	return string(data), true, nil
}

func (s *S3Channel) Set(ctx context.Context, key, value string) error {
	if err := s.EnsureBucket(ctx); err != nil {
		return err
	}

	objectKey := keys.ChannelValue(s.namespace, key)
	_, err := s.client.PutObject(
		ctx,
		s.bucket,
		objectKey,
		bytes.NewReader([]byte(value)),
		int64(len(value)),
		minio.PutObjectOptions{ContentType: "application/json"},
	)
	if err != nil {
		return fmt.Errorf("storing %q: %w", objectKey, err)
	}
	return nil
}
