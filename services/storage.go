package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"paletteapi/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// StorageProvider keeps uploaded images. Keys are bucket relative.
type StorageProvider interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	GetPresignedReadURL(ctx context.Context, key string) (string, error)
}

type R2Storage struct {
	Client        *s3.Client
	PresignClient *s3.PresignClient
	Bucket        string
	PresignTTL    time.Duration

	http *resty.Client
}

// NewR2Storage points the S3 client at the Cloudflare R2 endpoint of the
// configured account.
func NewR2Storage(ctx context.Context, cfg config.StorageConfig) (*R2Storage, error) {
	r2Resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID),
		}, nil
	})
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithEndpointResolverWithOptions(r2Resolver),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.AccessKeySecret, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return &R2Storage{
		Client:        client,
		PresignClient: s3.NewPresignClient(client),
		Bucket:        cfg.Bucket,
		PresignTTL:    time.Duration(cfg.PresignMinutes) * time.Minute,
		http:          resty.New().SetTimeout(30 * time.Second),
	}, nil
}

func (r *R2Storage) Upload(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := r.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: int64(len(body)),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	log.Debug().Str("key", key).Int("bytes", len(body)).Msg("object uploaded")
	return nil
}

// Download fetches an object through a presigned link, the same path
// clients use to display it.
func (r *R2Storage) Download(ctx context.Context, key string) ([]byte, error) {
	url, err := r.GetPresignedReadURL(ctx, key)
	if err != nil {
		return nil, err
	}
	res, err := r.http.R().
		SetContext(ctx).
		SetHeader("Cache-Control", "no-cache").
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", key, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("download %s: status %d", key, res.StatusCode())
	}
	return res.Body(), nil
}

func (r *R2Storage) Delete(ctx context.Context, key string) error {
	_, err := r.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (r *R2Storage) GetPresignedReadURL(ctx context.Context, key string) (string, error) {
	req, err := r.PresignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(r.PresignTTL))
	if err != nil {
		return "", fmt.Errorf("failed to presign request: %w", err)
	}
	return req.URL, nil
}
