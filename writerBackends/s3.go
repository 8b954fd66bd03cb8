package writerbackends

import (
	"context"
	"fmt"
	"io"

	"stillreel/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// UploadToS3WithCreds uploads the clip with static credentials.
// accessInfo: accessKey, secretKey, region, bucket; optional endpoint for
// S3-compatible stores and key to override the object name.
func UploadToS3WithCreds(ctx context.Context, accessInfo map[string]string, reader io.Reader) error {
	bucket := accessInfo["bucket"]
	if bucket == "" || accessInfo["accessKey"] == "" || accessInfo["secretKey"] == "" {
		return fmt.Errorf("missing required accessInfo keys: accessKey, secretKey, bucket")
	}
	key := objectKey(accessInfo)

	opts := s3.Options{
		Region:      accessInfo["region"],
		Credentials: credentials.NewStaticCredentialsProvider(accessInfo["accessKey"], accessInfo["secretKey"], ""),
	}
	if endpoint := accessInfo["endpoint"]; endpoint != "" {
		opts.BaseEndpoint = aws.String(endpoint)
		opts.UsePathStyle = true
	}
	uploader := manager.NewUploader(s3.New(opts))

	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   reader,
	}
	if ct := accessInfo["contentType"]; ct != "" {
		input.ContentType = aws.String(ct)
	}

	if _, err := uploader.Upload(ctx, input); err != nil {
		return fmt.Errorf("failed to upload object %s to bucket %s: %w", key, bucket, err)
	}

	logger.Infof("Uploaded object '%s' to bucket '%s'", key, bucket)
	return nil
}
