package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/at-ishikawa/notekeeper/internal/config"
)

var _ ImageStorage = (*S3ImageStorage)(nil)

// S3ImageStorage implements ImageStorage on AWS S3 or any S3-compatible service.
type S3ImageStorage struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
	logger        *zap.Logger
}

// NewS3ImageStorage validates cfg and creates the S3 client.
func NewS3ImageStorage(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (*S3ImageStorage, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKey == "" {
		return nil, errors.New("storage access key is required")
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("storage secret key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	endpoint := cfg.Endpoint
	if endpoint != "" && !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if cfg.UseSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}
	if endpoint != "" {
		if _, err := url.Parse(endpoint); err != nil {
			return nil, fmt.Errorf("url.Parse(%s) > %w", endpoint, err)
		}
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("config.LoadDefaultConfig() > %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	publicBaseURL := strings.TrimSuffix(cfg.PublicBaseURL, "/")
	if publicBaseURL == "" {
		switch {
		case endpoint != "":
			publicBaseURL = strings.TrimSuffix(endpoint, "/") + "/" + cfg.Bucket
		default:
			publicBaseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, region)
		}
	}

	return &S3ImageStorage{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: publicBaseURL,
		logger:        logger,
	}, nil
}

// ObjectKey returns the key an image of recordID is stored under.
func ObjectKey(recordID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join("records", recordID, uuid.NewString()+ext)
}

func (s *S3ImageStorage) Upload(ctx context.Context, recordID, filename, contentType string, body io.Reader, size int64) (string, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return "", ErrUnsupportedType
	}
	if size > MaxImageSize {
		return "", ErrTooLarge
	}
	data, err := io.ReadAll(io.LimitReader(body, MaxImageSize+1))
	if err != nil {
		return "", fmt.Errorf("io.ReadAll() > %w", err)
	}
	if len(data) > MaxImageSize {
		return "", ErrTooLarge
	}

	key := ObjectKey(recordID, filename)
	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	}); err != nil {
		return "", fmt.Errorf("client.PutObject(%s) > %w", key, err)
	}

	s.logger.Info("stored record image",
		zap.String("recordId", recordID),
		zap.String("key", key),
		zap.Int("bytes", len(data)))
	return s.publicBaseURL + "/" + key, nil
}
