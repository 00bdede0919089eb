package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const MaxUploadSize = 10 * 1024 * 1024

var allowedUploadMimeTypes = map[string]bool{
	"image/png":       true,
	"image/jpeg":      true,
	"image/webp":      true,
	"application/zip": true,
}

// StorageProvider hands out object storage URLs for reference images and delivery files.
// PublicURL and Upload return durable links that are safe to store upstream.
type StorageProvider interface {
	PresignUpload(ctx context.Context, key string) (string, error)
	PublicURL(key string) string
	Upload(ctx context.Context, key string, content []byte) (string, error)
}

// AWSService writes through presigned PUTs and serves objects from the
// bucket's public domain (r2.dev or a custom domain) at PublicBaseURL.
type AWSService struct {
	S3PresignClient *s3.PresignClient
	BucketName      string
	PublicBaseURL   string
	HTTPClient      *http.Client
}

type R2Credentials struct {
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
}

func (awsService *AWSService) InitPresignClient(ctx context.Context, creds R2Credentials) error {
	r2Resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.r2.cloudflarestorage.com", creds.AccountID),
		}, nil
	})
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithEndpointResolverWithOptions(r2Resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(creds.AccessKeyID, creds.AccessKeySecret, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return fmt.Errorf("unable to load SDK config: %w", err)
	}
	awsService.S3PresignClient = s3.NewPresignClient(s3.NewFromConfig(cfg))
	if awsService.HTTPClient == nil {
		awsService.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
	return nil
}

func (awsService *AWSService) PresignUpload(ctx context.Context, key string) (string, error) {
	request, err := awsService.S3PresignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(awsService.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign upload: %w", err)
	}
	return request.URL, nil
}

// PublicURL is the permanent link of key; unlike a presigned GET it never expires.
func (awsService *AWSService) PublicURL(key string) string {
	return PublicObjectURL(awsService.PublicBaseURL, key)
}

func PublicObjectURL(baseURL, key string) string {
	segments := strings.Split(strings.Trim(key, "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.Join(segments, "/")
}

// Upload PUTs the content to a freshly presigned URL and returns its public URL.
func (awsService *AWSService) Upload(ctx context.Context, key string, content []byte) (string, error) {
	mimeType, err := CheckUpload(content)
	if err != nil {
		return "", err
	}
	uploadURL, err := awsService.PresignUpload(ctx, key)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", mimeType)
	resp, err := awsService.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("failed to upload %s: status %d", key, resp.StatusCode)
	}
	log.WithFields(log.Fields{"key": key, "size": len(content)}).Info("uploaded object")
	return awsService.PublicURL(key), nil
}

var ErrInvalidUpload = errors.New("invalid upload")

// CheckUpload enforces the size limit and sniffs the content type.
func CheckUpload(content []byte) (string, error) {
	if len(content) == 0 {
		return "", fmt.Errorf("%w: file is empty", ErrInvalidUpload)
	}
	if len(content) > MaxUploadSize {
		return "", fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidUpload, MaxUploadSize)
	}
	mimeType := http.DetectContentType(content)
	if !allowedUploadMimeTypes[mimeType] {
		return "", fmt.Errorf("%w: unsupported file type: %s", ErrInvalidUpload, mimeType)
	}
	return mimeType, nil
}

// ObjectKey namespaces an uploaded file name under prefix with a random segment.
func ObjectKey(prefix, fileName string) string {
	base := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "file"
	}
	return fmt.Sprintf("%s/%s/%s", strings.Trim(prefix, "/"), uuid.NewString(), base)
}
