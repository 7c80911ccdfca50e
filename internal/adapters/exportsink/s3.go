package exportsink

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"peopledir/internal/domain"
	"peopledir/internal/ports"
)

// S3Config holds construction parameters for the S3 sink. Credentials come
// from the default AWS chain (environment, shared config, instance role).
type S3Config struct {
	Region    string
	Bucket    string
	Endpoint  string // optional, e.g. MinIO
	Prefix    string
	PathStyle bool
}

// S3 uploads exports to a single bucket
type S3 struct {
	client *s3.Client
	bucket string
	prefix string
}

var _ ports.ExportSink = (*S3)(nil)

// NewS3 creates an S3 sink from cfg
func NewS3(ctx context.Context, cfg S3Config, optFns ...func(*s3.Options)) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	fns := []func(*s3.Options){func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}}
	client := s3.NewFromConfig(awsCfg, append(fns, optFns...)...)
	return &S3{client: client, bucket: cfg.Bucket, prefix: strings.Trim(cfg.Prefix, "/")}, nil
}

// Key returns the object key a file named name is stored under
func (s *S3) Key(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

// Write uploads file and returns its s3:// location
func (s *S3) Write(ctx context.Context, file domain.ExportFile) (string, error) {
	name, err := sanitizeName(file.Name)
	if err != nil {
		return "", err
	}
	key := s.Key(name)
	contentType := file.ContentType
	if contentType == "" {
		contentType = "text/csv"
	}

	input := &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(file.Data),
		ContentType: &contentType,
		Metadata:    map[string]string{"total-records": strconv.Itoa(file.TotalRecords)},
	}
	if len(file.Fields) > 0 {
		input.Metadata["fields"] = strings.Join(file.Fields, ",")
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("upload export: %w", err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}
