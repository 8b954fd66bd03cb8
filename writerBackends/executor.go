package writerbackends

import (
	"context"
	"fmt"
	"io"
)

// Backend types accepted by Write.
const (
	DirectServe = "directServe"
	S3          = "s3"
	GCS         = "gcs"
	SFTP        = "sftp"
)

// Backends lists every supported backend type.
var Backends = []string{DirectServe, S3, GCS, SFTP}

// Write streams one exported clip to the given backend. accessInfo holds the
// stored credentials plus "filename", "folder" and "contentType" set by the caller.
func Write(ctx context.Context, backendType string, accessInfo map[string]string, reader io.Reader) error {
	switch backendType {
	case DirectServe:
		if err := UploadToDirectServe(ctx, accessInfo, reader); err != nil {
			return fmt.Errorf("failed to export to direct serve: %w", err)
		}
	case S3:
		if err := UploadToS3WithCreds(ctx, accessInfo, reader); err != nil {
			return fmt.Errorf("failed to export to S3: %w", err)
		}
	case GCS:
		if err := UploadToGCSWithJSON(ctx, accessInfo, reader); err != nil {
			return fmt.Errorf("failed to export to GCS: %w", err)
		}
	case SFTP:
		if err := UploadToSFTPWithCreds(ctx, accessInfo, reader); err != nil {
			return fmt.Errorf("failed to export to SFTP: %w", err)
		}
	default:
		return fmt.Errorf("unknown backend type: %s", backendType)
	}
	return nil
}

// objectKey joins folder and filename into a slash separated object name.
func objectKey(accessInfo map[string]string) string {
	if key := accessInfo["key"]; key != "" {
		return key
	}
	if folder := accessInfo["folder"]; folder != "" {
		return folder + "/" + accessInfo["filename"]
	}
	return accessInfo["filename"]
}
