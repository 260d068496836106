package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// S3Store uploads objects to an S3 bucket and returns their public URL.
type S3Store struct {
	bucket   string
	region   string
	uploader *s3manager.Uploader
}

func NewS3Store(bucket, region string) (*S3Store, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, err
	}
	return &S3Store{
		bucket:   bucket,
		region:   region,
		uploader: s3manager.NewUploader(sess),
	}, nil
}

func (s *S3Store) Put(ctx context.Context, data []byte, contentType string) (string, error) {
	ext := "png"
	if i := strings.IndexByte(contentType, '/'); i >= 0 && i+1 < len(contentType) {
		ext = contentType[i+1:]
	}
	key := ObjectKey(ext, time.Now())

	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload: %w", err)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}
