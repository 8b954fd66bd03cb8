package writerbackends

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"

	"stillreel/logger"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// UploadToGCSWithJSON uploads the clip using a service account key.
// accessInfo: credentialsJSON (raw or base64), bucket; optional object.
func UploadToGCSWithJSON(ctx context.Context, accessInfo map[string]string, reader io.Reader) error {
	bucketName := accessInfo["bucket"]
	if bucketName == "" || accessInfo["credentialsJSON"] == "" {
		return fmt.Errorf("missing required accessInfo keys: credentialsJSON, bucket")
	}
	objectName := accessInfo["object"]
	if objectName == "" {
		objectName = objectKey(accessInfo)
	}

	client, err := storage.NewClient(ctx, option.WithCredentialsJSON(decodeServiceAccount(accessInfo["credentialsJSON"])))
	if err != nil {
		return fmt.Errorf("storage.NewClient: %w", err)
	}
	defer client.Close()

	wc := client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	if ct := accessInfo["contentType"]; ct != "" {
		wc.ContentType = ct
	}

	if _, err = io.Copy(wc, reader); err != nil {
		wc.Close()
		return fmt.Errorf("io.Copy: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("Writer.Close: %w", err)
	}

	logger.Infof("Uploaded object '%s' to bucket '%s'", objectName, bucketName)
	return nil
}

// decodeServiceAccount accepts the key file as raw JSON or base64 of it.
func decodeServiceAccount(s string) []byte {
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding} {
		if decoded, err := enc.DecodeString(s); err == nil {
			return decoded
		}
	}
	return []byte(s)
}
