package output

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"path"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// UploadTimeout bounds a single upload
const UploadTimeout = 30 * time.Second

// S3Config describes where renders are published
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // Optional, for S3-compatible stores
	AccessKey string // Optional, falls back to the default credential chain
	SecretKey string
	Prefix    string // Key prefix, e.g. "renders/"
	ACL       string // Optional canned ACL such as "public-read"
}

// S3Publisher uploads encoded renders to an S3 bucket
type S3Publisher struct {
	client s3iface.S3API
	config S3Config
	logger core.Logger
}

// NewS3Publisher creates a publisher with its own AWS session
func NewS3Publisher(config S3Config, logger core.Logger) (*S3Publisher, error) {
	if config.Bucket == "" {
		return nil, fmt.Errorf("s3: bucket is required")
	}

	awsConfig := &aws.Config{
		Region: aws.String(config.Region),
	}
	if config.Endpoint != "" {
		awsConfig.Endpoint = aws.String(config.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}
	if config.AccessKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(config.AccessKey, config.SecretKey, "")
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %w", err)
	}

	return NewS3PublisherWithClient(s3.New(sess), config, logger), nil
}

// NewS3PublisherWithClient creates a publisher around an existing client
func NewS3PublisherWithClient(client s3iface.S3API, config S3Config, logger core.Logger) *S3Publisher {
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &S3Publisher{
		client: client,
		config: config,
		logger: logger,
	}
}

// Key returns the object key used for a file name
func (p *S3Publisher) Key(name string) string {
	return path.Join(p.config.Prefix, name)
}

// Publish uploads data under the prefixed key and returns that key
func (p *S3Publisher) Publish(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, UploadTimeout)
	defer cancel()

	key := p.Key(name)
	size := int64(len(data))
	input := &s3.PutObjectInput{
		Bucket:        aws.String(p.config.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	}
	if p.config.ACL != "" {
		input.ACL = aws.String(p.config.ACL)
	}

	if _, err := p.client.PutObjectWithContext(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	p.logger.Printf("Uploaded %s to s3://%s (%d bytes)\n", key, p.config.Bucket, size)
	return key, nil
}

// PublishImage encodes img in the format implied by name and uploads it
func (p *S3Publisher) PublishImage(ctx context.Context, name string, img image.Image) (string, error) {
	format, err := FormatFromPath(name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := Encode(&buf, img, format); err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", name, err)
	}
	return p.Publish(ctx, name, buf.Bytes(), ContentType(format))
}
