package storage

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Archiver stores uploaded import files for audit. Archiving is best
// effort: an upload failure never fails the import itself, the caller
// just loses the audit copy.
type Archiver interface {
	ArchiveImportFile(ctx context.Context, userID, filename string, data []byte) (string, error)
}

// Config holds S3 archive configuration
type Config struct {
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSRegion          string
	S3Bucket           string
}

// S3Archiver uploads import files to an S3 bucket
type S3Archiver struct {
	client *s3.Client
	bucket string
}

var _ Archiver = (*S3Archiver)(nil)
var _ Archiver = (*NoopArchiver)(nil)

// NewS3Archiver creates an archiver backed by S3
func NewS3Archiver(cfg Config) (*S3Archiver, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.AWSRegion),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Archiver{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.S3Bucket,
	}, nil
}

// ArchiveImportFile uploads the raw file under imports/<user>/<ts>-<name>
func (a *S3Archiver) ArchiveImportFile(ctx context.Context, userID, filename string, data []byte) (string, error) {
	key := fmt.Sprintf("imports/%s/%s-%s",
		userID,
		time.Now().UTC().Format("20060102-150405"),
		path.Base(filename),
	)

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload import file: %w", err)
	}

	log.Printf("✅ Import file archived to s3://%s/%s", a.bucket, key)
	return key, nil
}

// NoopArchiver is used when no S3 bucket is configured
type NoopArchiver struct{}

// NewNoopArchiver creates an archiver that discards files
func NewNoopArchiver() *NoopArchiver {
	return &NoopArchiver{}
}

func (a *NoopArchiver) ArchiveImportFile(ctx context.Context, userID, filename string, data []byte) (string, error) {
	return "", nil
}
