package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

type S3Options struct {
	Endpoint      string
	Region        string
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicBaseURL string
}

// S3MediaStore keeps uploaded images in an S3 compatible bucket and hands
// out public URLs under PublicBaseURL.
type S3MediaStore struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

func NewS3MediaStore(ctx context.Context, opts S3Options) (*S3MediaStore, error) {
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, errors.New("s3 bucket is required")
	}
	region := opts.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	base := strings.TrimRight(opts.PublicBaseURL, "/")
	if base == "" {
		base = defaultPublicBaseURL(opts.Endpoint, region, opts.Bucket)
	}
	return &S3MediaStore{client: client, bucket: opts.Bucket, publicBaseURL: base}, nil
}

func (m *S3MediaStore) Upload(ctx context.Context, body io.ReadSeeker, contentType string, ext string, category string) (MediaObject, error) {
	key := objectKey(category, ext)
	_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return MediaObject{}, err
	}
	return MediaObject{Key: key, URL: m.publicBaseURL + "/" + key}, nil
}

func (m *S3MediaStore) Delete(ctx context.Context, key string) error {
	_, err := m.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(key),
	})
	return err
}

func (m *S3MediaStore) KeyFromURL(url string) (string, bool) {
	return keyFromURL(m.publicBaseURL, url)
}

func objectKey(category string, ext string) string {
	category = strings.Trim(category, "/")
	if category == "" {
		category = "misc"
	}
	return category + "/" + uuid.NewString() + ext
}

func keyFromURL(base string, url string) (string, bool) {
	prefix := strings.TrimRight(base, "/") + "/"
	if base == "" || !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	if key == "" {
		return "", false
	}
	return key, true
}

func defaultPublicBaseURL(endpoint string, region string, bucket string) string {
	if endpoint != "" {
		return strings.TrimRight(endpoint, "/") + "/" + bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
}

// detectImage sniffs the upload and rewinds it for the caller.
func detectImage(body io.ReadSeeker) (string, string, error) {
	if body == nil {
		return "", "", invalidInput("image file is required")
	}
	mime, err := mimetype.DetectReader(body)
	if err != nil {
		return "", "", invalidInput("unreadable image file")
	}
	if _, err := body.Seek(0, io.SeekStart); err != nil {
		return "", "", err
	}
	if !strings.HasPrefix(mime.String(), "image/") {
		return "", "", invalidInput("file must be an image, got %s", mime.String())
	}
	return mime.String(), mime.Extension(), nil
}
