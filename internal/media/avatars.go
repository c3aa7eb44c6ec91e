// Package media stores client avatar images in an S3-compatible bucket via
// presigned URLs.
package media

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/netx"
	"github.com/google/uuid"
)

const defaultExpires = 15 * time.Minute

// ErrInvalidKey is returned for keys outside the avatars prefix.
var ErrInvalidKey = errors.New("invalid avatar key")

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// Config describes the bucket and credentials.
type Config struct {
	Bucket       string
	Region       string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
	Expires      time.Duration
}

// AvatarStorage issues presigned URLs for avatar objects.
type AvatarStorage struct {
	cfg     Config
	presign *s3.PresignClient
	http    *http.Client
	logger  logging.Logger
	now     func() time.Time
}

// NewAvatarStorage builds a presign client for cfg. Path-style addressing is
// used so MinIO-like endpoints work.
func NewAvatarStorage(ctx context.Context, cfg Config, logger logging.Logger) (*AvatarStorage, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("failed to load s3 config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
		}
		o.UsePathStyle = true
	})

	if cfg.Expires <= 0 {
		cfg.Expires = defaultExpires
	}
	return &AvatarStorage{
		cfg:     cfg,
		presign: newS3PresignClient(client),
		http:    &http.Client{Timeout: time.Minute},
		logger:  logger,
		now:     time.Now,
	}, nil
}

// NewKey returns a fresh object key for a client's avatar.
func (s *AvatarStorage) NewKey(clientID string) string {
	d := s.now().UTC()
	return fmt.Sprintf("avatars/%04d/%02d/%s/%s", d.Year(), int(d.Month()), clientID, uuid.New())
}

// PresignPut returns a new key and the URL to PUT its bytes to.
func (s *AvatarStorage) PresignPut(ctx context.Context, clientID string) (key, url string, err error) {
	if clientID == "" {
		return "", "", fmt.Errorf("%w: empty client id", ErrInvalidKey)
	}
	key = s.NewKey(clientID)

	req, err := presignPutObject(s.presign, ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.cfg.Expires))
	if err != nil {
		return "", "", fmt.Errorf("presign put: %w", err)
	}
	return key, req.URL, nil
}

// PresignGet returns a download URL for key.
func (s *AvatarStorage) PresignGet(ctx context.Context, key string) (string, error) {
	if !strings.HasPrefix(key, "avatars/") {
		return "", ErrInvalidKey
	}

	req, err := presignGetObject(s.presign, ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.cfg.Expires))
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}
	return req.URL, nil
}

// Upload stores data as a new avatar of clientID and returns its key.
func (s *AvatarStorage) Upload(ctx context.Context, clientID string, data []byte) (string, error) {
	key, url, err := s.PresignPut(ctx, clientID)
	if err != nil {
		return "", err
	}
	if err := netx.Upload(ctx, s.http, url, data); err != nil {
		s.logger.Error(ctx, "avatar upload failed", "op", "avatar.upload", "client", clientID, "err", err)
		return "", err
	}
	s.logger.Info(ctx, "avatar uploaded", "client", clientID, "key", key, "size", len(data))
	return key, nil
}
