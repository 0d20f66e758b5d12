package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrDisabled          = errors.New("resume storage disabled")
	ErrUnsupportedFormat = errors.New("unsupported resume format")
	ErrTooLarge          = errors.New("resume too large")
)

// allowedResumeTypes mapea el MIME detectado a la extension con la que se guarda.
var allowedResumeTypes = map[string]string{
	"application/pdf":    ".pdf",
	"application/msword": ".doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
	"image/png":  ".png",
	"image/jpeg": ".jpg",
}

// ResumeStore guarda curriculums y devuelve la ruta persistida en el usuario.
type ResumeStore interface {
	Save(ctx context.Context, userID string, r io.Reader) (string, error)
}

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config agrupa los parametros del bucket de curriculums.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	MaxBytes        int64
}

// S3ResumeStore sube curriculums a S3 (o un endpoint compatible) bajo resumes/<userID>/.
type S3ResumeStore struct {
	client   putObjectAPI
	bucket   string
	maxBytes int64
	newID    func() string
}

func NewS3ResumeStore(ctx context.Context, cfg S3Config) (*S3ResumeStore, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(cfg.Bucket)}); err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound" {
			return nil, fmt.Errorf("bucket '%s' does not exist", cfg.Bucket)
		}
		return nil, fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	return newS3ResumeStore(client, cfg.Bucket, cfg.MaxBytes), nil
}

func newS3ResumeStore(client putObjectAPI, bucket string, maxBytes int64) *S3ResumeStore {
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	return &S3ResumeStore{
		client:   client,
		bucket:   bucket,
		maxBytes: maxBytes,
		newID:    uuid.NewString,
	}
}

func (s *S3ResumeStore) Save(ctx context.Context, userID string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > s.maxBytes {
		return "", ErrTooLarge
	}
	mtype := mimetype.Detect(data)
	ext, ok := allowedResumeTypes[mtype.String()]
	if !ok {
		for parent := mtype.Parent(); parent != nil && !ok; parent = parent.Parent() {
			ext, ok = allowedResumeTypes[parent.String()]
		}
	}
	if !ok {
		return "", ErrUnsupportedFormat
	}

	key := path.Join("resumes", userID, s.newID()+ext)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(mtype.String()),
	})
	if err != nil {
		return "", fmt.Errorf("put resume: %w", err)
	}
	return key, nil
}

type disabledStore struct{}

func NewDisabledStore() ResumeStore {
	return disabledStore{}
}

func (disabledStore) Save(context.Context, string, io.Reader) (string, error) {
	return "", ErrDisabled
}
