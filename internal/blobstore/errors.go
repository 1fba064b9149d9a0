package blobstore

import (
	"errors"

	"github.com/aws/smithy-go"
)

// IsRetryable reports whether err looks like a transient S3/API failure
// worth retrying, using smithy-go's APIError to inspect the AWS error code
// rather than string-matching err.Error().
func IsRetryable(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "RequestTimeout", "SlowDown", "InternalError", "ServiceUnavailable":
		return true
	default:
		return false
	}
}
