package storage

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/matst80/plat-finder/pkg/types"
)

type S3Config struct {
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	Prefix        string
	PublicBaseUrl string
}

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader stores images in an S3 compatible bucket and returns their
// public url.
type S3Uploader struct {
	cfg    S3Config
	client putObjectAPI
}

func NewS3Uploader(ctx context.Context, cfg S3Config) (*S3Uploader, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Uploader{cfg: cfg, client: client}, nil
}

func (u *S3Uploader) objectKey(id types.EntryId, file types.FileHandle) string {
	ext := strings.ToLower(path.Ext(string(file)))
	return path.Join(u.cfg.Prefix, fmt.Sprintf("%d", id), uuid.New().String()+ext)
}

func (u *S3Uploader) publicUrl(key string) string {
	if u.cfg.PublicBaseUrl != "" {
		return strings.TrimRight(u.cfg.PublicBaseUrl, "/") + "/" + key
	}
	return strings.TrimRight(u.cfg.Endpoint, "/") + "/" + u.cfg.Bucket + "/" + key
}

func (u *S3Uploader) Upload(ctx context.Context, id types.EntryId, file types.FileHandle) (string, error) {
	f, err := os.Open(string(file))
	if err != nil {
		return "", err
	}
	defer f.Close()

	key := u.objectKey(id, file)
	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.cfg.Bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return u.publicUrl(key), nil
}
