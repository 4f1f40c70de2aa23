package brserve

import (
	"context"
	"io"
	"path"

	"github.com/advdv/broute"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cockroachdb/errors"
)

// S3GetObjectAPI is the subset of the S3 client used to read error pages.
type S3GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3PageSource reads custom error pages (404.html, 500.html) from an S3 bucket. Pages are cached
// by the broute.Server's PageCache so every page is read at most once per process.
type S3PageSource struct {
	client S3GetObjectAPI
	bucket string
	prefix string
}

// NewS3PageSource creates a page source that reads s3://bucket/prefix/<name>.
func NewS3PageSource(client S3GetObjectAPI, bucket, prefix string) *S3PageSource {
	return &S3PageSource{client: client, bucket: bucket, prefix: prefix}
}

// Page implements broute.PageSource.
func (s *S3PageSource) Page(ctx context.Context, name string) (string, error) {
	key := path.Join(s.prefix, name)

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to get page s3://%s/%s", s.bucket, key)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read page s3://%s/%s", s.bucket, key)
	}

	return string(data), nil
}

var _ broute.PageSource = (*S3PageSource)(nil)

// providePageSource returns the S3 page source when BR_ERROR_PAGES_BUCKET is set, nil otherwise.
func providePageSource(env Environment, cfg aws.Config) broute.PageSource {
	bucket, prefix := env.errorPages()
	if bucket == "" {
		return nil
	}

	return NewS3PageSource(s3.NewFromConfig(cfg), bucket, prefix)
}
